package http

import (
	"net/http"
	"strconv"

	"feather-finance/internal/dto"
	"feather-finance/internal/service"
	"feather-finance/pkg/logger"
	"feather-finance/pkg/utils"

	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests for users, their watchlists and alerts.
type UserHandler struct {
	userService      service.UserService
	watchlistService service.WatchlistService
	alertService     service.AlertService
	logger           *logger.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, watchlistService service.WatchlistService, alertService service.AlertService, logger *logger.Logger) *UserHandler {
	return &UserHandler{
		userService:      userService,
		watchlistService: watchlistService,
		alertService:     alertService,
		logger:           logger,
	}
}

// RegisterRoutes registers the user routes to the Echo group.
func (h *UserHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.CreateUser)
	g.GET("/:id", h.GetUser)

	g.GET("/:id/watchlist", h.GetWatchlist)
	g.POST("/:id/watchlist", h.AddToWatchlist)
	g.DELETE("/:id/watchlist/:ticker", h.RemoveFromWatchlist)

	g.GET("/:id/alerts", h.ListAlerts)
	g.POST("/:id/alerts", h.CreateAlert)
	g.PUT("/:id/alerts/:alertID/active", h.SetAlertActive)
}

// CreateUser godoc
// @Summary Create a user
// @Tags users
// @Accept  json
// @Produce  json
// @Param   user  body  dto.CreateUserRequest true "User to create"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req dto.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	user, err := h.userService.CreateUser(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// GetUser godoc
// @Summary Get a user by ID
// @Tags users
// @Produce  json
// @Param   id  path  int true "User ID"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	user, err := h.userService.GetUser(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, user)
}

// GetWatchlist godoc
// @Summary Stocks watched by a user
// @Tags watchlist
// @Produce  json
// @Param   id  path  int true "User ID"
// @Success 200 {array} entity.WatchlistItem
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{id}/watchlist [get]
func (h *UserHandler) GetWatchlist(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	items, err := h.watchlistService.GetUserWatchlist(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, items)
}

// AddToWatchlist godoc
// @Summary Add a stock to a watchlist
// @Description Adding a ticker that is already watched returns 200 with added=false.
// @Tags watchlist
// @Accept  json
// @Produce  json
// @Param   id    path  int                     true "User ID"
// @Param   body  body  dto.AddWatchlistRequest true "Ticker"
// @Success 201 {object} dto.AddWatchlistResponse
// @Success 200 {object} dto.AddWatchlistResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /users/{id}/watchlist [post]
func (h *UserHandler) AddToWatchlist(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}
	var req dto.AddWatchlistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	added, err := h.watchlistService.AddToWatchlist(c.Request().Context(), id, req.Ticker)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	return c.JSON(status, dto.AddWatchlistResponse{Ticker: utils.NormalizeTicker(req.Ticker), Added: added})
}

// RemoveFromWatchlist godoc
// @Summary Remove a stock from a watchlist
// @Tags watchlist
// @Param   id      path  int    true "User ID"
// @Param   ticker  path  string true "Ticker"
// @Success 204 {object} nil
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{id}/watchlist/{ticker} [delete]
func (h *UserHandler) RemoveFromWatchlist(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}

	if err := h.watchlistService.RemoveFromWatchlist(c.Request().Context(), id, c.Param("ticker")); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAlerts godoc
// @Summary Alerts of a user
// @Tags alerts
// @Produce  json
// @Param   id      path   int  true  "User ID"
// @Param   active  query  bool false "Only active alerts"
// @Success 200 {array} entity.Alert
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{id}/alerts [get]
func (h *UserHandler) ListAlerts(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}
	activeOnly := false
	if raw := c.QueryParam("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid active flag"})
		}
		activeOnly = parsed
	}

	alerts, err := h.alertService.ListAlerts(c.Request().Context(), id, activeOnly)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, alerts)
}

// CreateAlert godoc
// @Summary Create an alert
// @Tags alerts
// @Accept  json
// @Produce  json
// @Param   id     path  int                    true "User ID"
// @Param   alert  body  dto.CreateAlertRequest true "Alert"
// @Success 201 {object} entity.Alert
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /users/{id}/alerts [post]
func (h *UserHandler) CreateAlert(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}
	var req dto.CreateAlertRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}
	req.UserID = id

	alert, err := h.alertService.CreateAlert(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusCreated, alert)
}

// SetAlertActive godoc
// @Summary Enable or disable an alert
// @Tags alerts
// @Accept  json
// @Produce  json
// @Param   id       path  int                        true "User ID"
// @Param   alertID  path  int                        true "Alert ID"
// @Param   body     body  dto.SetAlertActiveRequest  true "Flag"
// @Success 200 {object} entity.Alert
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{id}/alerts/{alertID}/active [put]
func (h *UserHandler) SetAlertActive(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID"})
	}
	alertID, ok := parseID(c, "alertID")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid alert ID"})
	}
	var req dto.SetAlertActiveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	alert, err := h.alertService.SetAlertActive(c.Request().Context(), id, alertID, req.IsActive)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, alert)
}
