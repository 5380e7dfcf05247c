package presenter

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/catgraph/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func BadRequest(c echo.Context, err error) error {
	slog.DebugContext(c.Request().Context(), "Bad request", slog.String("error", err.Error()), slog.String("module", "rest"))
	return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func BadRequestMessage(c echo.Context, msg string) error {
	slog.DebugContext(c.Request().Context(), "Bad request", slog.String("error", msg), slog.String("module", "rest"))
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func TooManyRequests(c echo.Context, retryAfter int) error {
	c.Response().Header().Set(domain.RetryAfterHeader, strconv.Itoa(retryAfter))
	return c.JSON(http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
}

// MethodNotAllowed answers 405 and advertises allow in the Allow header.
func MethodNotAllowed(c echo.Context, allow string, msg string) error {
	c.Response().Header().Set(echo.HeaderAllow, allow)
	return c.JSON(http.StatusMethodNotAllowed, errorResponse{Error: msg})
}

func ServiceUnavailable(c echo.Context, msg string) error {
	return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: msg})
}

func InternalError(c echo.Context, err error) error {
	slog.ErrorContext(c.Request().Context(), "Internal error", slog.String("error", err.Error()), slog.String("module", "rest"))
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
}
