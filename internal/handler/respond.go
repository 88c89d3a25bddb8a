// Package handler implements the HTTP endpoints. Every response carries a
// "result" discriminator; failures add an "error" kind label and a
// human-readable "message" so clients can branch without parsing text.
package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/moviecircle/backend/internal/apperr"
)

// dbTimeout bounds every database round-trip issued by a handler.
const dbTimeoutSec = 5

// errBadBody is the validation error for an unparsable request body.
func errBadBody() error {
	return apperr.New(apperr.KindValidation, "Bad input format")
}

// fail renders err as a failure response using its kind for the status.
func fail(c echo.Context, err error) error {
	k := apperr.KindOf(err)
	return c.JSON(k.HTTPStatus(), echo.Map{
		"result":  "failure",
		"error":   k.String(),
		"message": apperr.Message(err),
	})
}

// ok renders a success response with the given payload fields merged in.
func ok(c echo.Context, fields echo.Map) error {
	body := echo.Map{"result": "success"}
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(http.StatusOK, body)
}

// formBool reads a checkbox-style form value: "on", "true" and "1" are
// true, anything else false.
func formBool(c echo.Context, name string) bool {
	v := strings.ToLower(strings.TrimSpace(c.FormValue(name)))
	return v == "on" || v == "true" || v == "1"
}

// formInt reads an integer form value, def when absent, 0 when malformed
// so validation surfaces the error.
func formInt(c echo.Context, name string, def int) int {
	v := strings.TrimSpace(c.FormValue(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// formFloat reads a float form value, def when absent. Malformed input
// maps to -1 so the score range check rejects it.
func formFloat(c echo.Context, name string, def float64) float64 {
	v := strings.TrimSpace(c.FormValue(name))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return -1
	}
	return f
}
