package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/travel-booking/internal/service"
)

// statusOf maps a service error kind onto an HTTP status.
func statusOf(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": CODE, "message": text}.  Internal
// errors get a fixed message; the cause is logged by the service layer.
func writeError(c echo.Context, err error) error {
	se, ok := service.AsError(err)
	if !ok || se.Kind == service.KindInternal {
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   service.CodeInternal,
			"message": "internal server error",
		})
	}
	return c.JSON(statusOf(se.Kind), echo.Map{"error": se.Code, "message": se.Message})
}

func badRequest(c echo.Context, code, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": code, "message": msg})
}
