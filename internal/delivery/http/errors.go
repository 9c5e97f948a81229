package http

import (
	"errors"
	"net/http"
	"strconv"

	"feather-finance/internal/repository"
	"feather-finance/internal/service"
	"feather-finance/pkg/logger"

	"github.com/labstack/echo/v4"
)

// statusFor maps service and repository errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, repository.ErrForeignKey), errors.Is(err, repository.ErrNotNull):
		return http.StatusUnprocessableEntity
	case errors.Is(err, repository.ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body. Internal errors are logged and their
// text is not returned to the client.
func respondError(c echo.Context, log *logger.Logger, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.ErrorContext(c.Request().Context(), "Request failed", logger.ErrorField(err),
			logger.StringField("path", c.Path()))
		return c.JSON(status, echo.Map{"error": "Internal server error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func parseID(c echo.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parseEpoch(c echo.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.QueryParam(name), 10, 64)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

func parseLimit(c echo.Context) (int, bool) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, false
	}
	return limit, true
}
