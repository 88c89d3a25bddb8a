// Package middleware contains reusable HTTP middleware functions.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/moviecircle/backend/internal/session"
)

// Header names carrying the caller's identity on every gated request.
const (
	HeaderToken    = "X-Session-Token"
	HeaderUsername = "X-Username"
)

// SessionGate returns an Echo middleware that validates the caller's
// session token for the named action before any mutation runs. A failed
// check is a hard stop with a fixed generic message; the reason is never
// surfaced. On success the username is injected into the request context
// under "username".
func SessionGate(v *session.Validator, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := c.Request().Header.Get(HeaderToken)
			username := c.Request().Header.Get(HeaderUsername)
			if !v.Validate(c.Request().Context(), token, username, action) {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"result":  "failure",
					"error":   "unauthorized",
					"message": "Invalid Session",
				})
			}
			c.Set("username", username)
			return next(c)
		}
	}
}

// Username extracts the authenticated username injected by SessionGate.
func Username(c echo.Context) string {
	if u, ok := c.Get("username").(string); ok {
		return u
	}
	return ""
}
