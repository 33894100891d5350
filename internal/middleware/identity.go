package middleware

import "github.com/labstack/echo/v4"

// Context keys set by JWTAuth.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
)

// UserID returns the authenticated user id, or "" when the request
// carries no verified token.
func UserID(c echo.Context) string {
	s, _ := c.Get(CtxUserID).(string)
	return s
}

// Role returns the authenticated user's role, or "".
func Role(c echo.Context) string {
	s, _ := c.Get(CtxRole).(string)
	return s
}

// currentUserID is the rate-limit key form of UserID.
func currentUserID(c echo.Context) string {
	if s := UserID(c); s != "" {
		return s
	}
	return "anon"
}
