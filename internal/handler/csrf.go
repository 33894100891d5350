package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// CSRFToken hands out the token generated by the CSRF middleware.  The
// same value is set as a cookie; clients echo it in X-CSRF-TOKEN on
// every mutating request.
func CSRFToken(c echo.Context) error {
	token, _ := c.Get(echomw.DefaultCSRFConfig.ContextKey).(string)
	if token == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "CSRF_DISABLED", "message": "csrf protection is not enabled"})
	}
	return c.JSON(http.StatusOK, echo.Map{"csrf_token": token})
}
