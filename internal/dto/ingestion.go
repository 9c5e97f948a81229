package dto

const (
	IngestionStatusSuccess = "success"
	IngestionStatusFailed  = "failed"
	IngestionStatusSkipped = "skipped"
)

// IngestionResult is the outcome of one ticker in an ingestion run.
type IngestionResult struct {
	Ticker      string `json:"ticker"`
	Status      string `json:"status"`
	Fetched     int    `json:"fetched"`
	RowsWritten int64  `json:"rows_written"`
	Error       string `json:"error,omitempty"`
}
