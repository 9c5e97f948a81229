package service

import (
	"encoding/csv"
	"io"
	"strconv"

	"feather-finance/internal/entity"
	"feather-finance/pkg/utils"
)

var barCSVHeader = []string{"ticker", "open", "high", "low", "close", "volume", "timestamp", "datetime"}

// WriteBarsCSV writes bars as CSV with a header row. The datetime column is
// the timestamp rendered in UTC.
func WriteBarsCSV(w io.Writer, bars []entity.StockData) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(barCSVHeader); err != nil {
		return err
	}
	for _, bar := range bars {
		record := []string{
			bar.Ticker,
			bar.Open.StringFixed(pricePlaces),
			bar.High.StringFixed(pricePlaces),
			bar.Low.StringFixed(pricePlaces),
			bar.Close.StringFixed(pricePlaces),
			strconv.FormatInt(bar.Volume, 10),
			strconv.FormatInt(bar.Timestamp, 10),
			utils.FormatEpoch(bar.Timestamp),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
