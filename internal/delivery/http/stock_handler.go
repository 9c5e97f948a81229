package http

import (
	"net/http"

	"feather-finance/internal/dto"
	"feather-finance/internal/service"
	"feather-finance/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StockHandler handles HTTP requests for stocks and their market data.
type StockHandler struct {
	marketDataService service.MarketDataService
	predictionService service.PredictionService
	newsService       service.NewsService
	logger            *logger.Logger
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(marketDataService service.MarketDataService, predictionService service.PredictionService, newsService service.NewsService, logger *logger.Logger) *StockHandler {
	return &StockHandler{
		marketDataService: marketDataService,
		predictionService: predictionService,
		newsService:       newsService,
		logger:            logger,
	}
}

// RegisterRoutes registers the stock routes to the Echo group.
func (h *StockHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.GetAllStocks)
	g.GET("/:ticker/bars", h.GetStockData)
	g.POST("/:ticker/bars", h.InsertStockData)
	g.GET("/:ticker/quote", h.GetQuote)
	g.GET("/:ticker/predictions", h.ListPredictions)
	g.GET("/:ticker/predictions/latest", h.GetLatestPrediction)
	g.POST("/:ticker/predictions", h.InsertPrediction)
	g.GET("/:ticker/news", h.GetRecentNews)
	g.POST("/:ticker/news", h.InsertNewsArticle)
}

// GetAllStocks godoc
// @Summary List stocks
// @Tags stocks
// @Produce  json
// @Success 200 {array} entity.Stock
// @Failure 500 {object} dto.ErrorResponse
// @Router /stocks [get]
func (h *StockHandler) GetAllStocks(c echo.Context) error {
	stocks, err := h.marketDataService.GetAllStocks(c.Request().Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, stocks)
}

// GetStockData godoc
// @Summary Bars of a stock
// @Description Without from and to, returns the most recent bars newest first.
// @Description With both, returns the bars inside the epoch range oldest first.
// @Tags stocks
// @Produce  json
// @Param   ticker  path   string true  "Ticker"
// @Param   limit   query  int    false "Number of bars (default 30)"
// @Param   from    query  int    false "Range start, unix seconds"
// @Param   to      query  int    false "Range end, unix seconds"
// @Success 200 {array} entity.StockData
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /stocks/{ticker}/bars [get]
func (h *StockHandler) GetStockData(c echo.Context) error {
	if c.QueryParam("from") != "" || c.QueryParam("to") != "" {
		return h.getStockDataRange(c)
	}

	limit, ok := parseLimit(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
	}

	bars, err := h.marketDataService.GetStockData(c.Request().Context(), c.Param("ticker"), limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, bars)
}

func (h *StockHandler) getStockDataRange(c echo.Context) error {
	from, fromOK := parseEpoch(c, "from")
	to, toOK := parseEpoch(c, "to")
	if !fromOK || !toOK {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from and to must both be unix timestamps"})
	}

	bars, err := h.marketDataService.GetStockDataRange(c.Request().Context(), c.Param("ticker"), from, to)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, bars)
}

// InsertStockData godoc
// @Summary Store one bar
// @Description Stores a bar unless one already exists for the same ticker and timestamp.
// @Tags stocks
// @Accept  json
// @Produce  json
// @Param   ticker  path  string                     true "Ticker"
// @Param   bar     body  dto.InsertStockDataRequest true "Bar"
// @Success 201 {object} map[string]bool
// @Success 200 {object} map[string]bool
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /stocks/{ticker}/bars [post]
func (h *StockHandler) InsertStockData(c echo.Context) error {
	var req dto.InsertStockDataRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}
	req.Ticker = c.Param("ticker")

	written, err := h.marketDataService.InsertStockData(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	status := http.StatusOK
	if written {
		status = http.StatusCreated
	}
	return c.JSON(status, echo.Map{"written": written})
}

// GetQuote godoc
// @Summary Current quote of a stock
// @Tags stocks
// @Produce  json
// @Param   ticker  path  string true "Ticker"
// @Success 200 {object} dto.Quote
// @Failure 404 {object} dto.ErrorResponse
// @Router /stocks/{ticker}/quote [get]
func (h *StockHandler) GetQuote(c echo.Context) error {
	quote, err := h.marketDataService.GetQuote(c.Request().Context(), c.Param("ticker"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, quote)
}

// ListPredictions godoc
// @Summary Prediction history of a stock
// @Tags predictions
// @Produce  json
// @Param   ticker  path   string true  "Ticker"
// @Param   limit   query  int    false "Number of predictions (default 10)"
// @Success 200 {array} entity.Prediction
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /stocks/{ticker}/predictions [get]
func (h *StockHandler) ListPredictions(c echo.Context) error {
	limit, ok := parseLimit(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
	}

	predictions, err := h.predictionService.ListPredictions(c.Request().Context(), c.Param("ticker"), limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, predictions)
}

// GetLatestPrediction godoc
// @Summary Latest prediction of a stock
// @Tags predictions
// @Produce  json
// @Param   ticker  path  string true "Ticker"
// @Success 200 {object} entity.Prediction
// @Failure 404 {object} dto.ErrorResponse
// @Router /stocks/{ticker}/predictions/latest [get]
func (h *StockHandler) GetLatestPrediction(c echo.Context) error {
	prediction, err := h.predictionService.GetLatestPrediction(c.Request().Context(), c.Param("ticker"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if prediction == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "No prediction for ticker"})
	}
	return c.JSON(http.StatusOK, prediction)
}

// InsertPrediction godoc
// @Summary Store a prediction
// @Tags predictions
// @Accept  json
// @Produce  json
// @Param   ticker      path  string                      true "Ticker"
// @Param   prediction  body  dto.CreatePredictionRequest true "Prediction"
// @Success 201 {object} entity.Prediction
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /stocks/{ticker}/predictions [post]
func (h *StockHandler) InsertPrediction(c echo.Context) error {
	var req dto.CreatePredictionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}
	req.Ticker = c.Param("ticker")

	prediction, err := h.predictionService.InsertPrediction(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, prediction)
}

// GetRecentNews godoc
// @Summary Recent news of a stock
// @Tags news
// @Produce  json
// @Param   ticker  path   string true  "Ticker"
// @Param   limit   query  int    false "Number of articles (default 5)"
// @Success 200 {array} entity.NewsArticle
// @Failure 404 {object} dto.ErrorResponse
// @Router /stocks/{ticker}/news [get]
func (h *StockHandler) GetRecentNews(c echo.Context) error {
	limit, ok := parseLimit(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid limit"})
	}

	articles, err := h.newsService.GetRecentNews(c.Request().Context(), c.Param("ticker"), limit)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, articles)
}

// InsertNewsArticle godoc
// @Summary Store a news article
// @Description Articles whose url is already stored are ignored.
// @Tags news
// @Accept  json
// @Produce  json
// @Param   ticker   path  string                       true "Ticker"
// @Param   article  body  dto.CreateNewsArticleRequest true "Article"
// @Success 201 {object} entity.NewsArticle
// @Success 200 {object} map[string]bool
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /stocks/{ticker}/news [post]
func (h *StockHandler) InsertNewsArticle(c echo.Context) error {
	var req dto.CreateNewsArticleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}
	req.Ticker = c.Param("ticker")

	article, written, err := h.newsService.InsertNewsArticle(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if !written {
		return c.JSON(http.StatusOK, echo.Map{"written": false})
	}
	return c.JSON(http.StatusCreated, article)
}
