// Package handler contains the HTTP handlers for sessions,
// participants, validation keys and authentication.
package handler

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// shortCode matches the normalized three-letter codes used for
// validation codes and requested keys.
var shortCode = regexp.MustCompile(`^[A-Z]{3}$`)

// normalizeCode upper-cases and trims a client-supplied code. Codes are
// case-insensitive on the wire and stored upper.
func normalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// getUserID extracts the user_id placed in context by the JWT
// middleware and converts it to uint64. JWT numeric claims arrive as
// float64.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric :id style path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
