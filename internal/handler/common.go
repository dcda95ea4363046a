package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// contextUserID extracts the authenticated user's id placed in the
// echo context by the JWTAuth middleware. JWT numeric claims decode as
// float64; string subjects are parsed for robustness.
func contextUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// riderID renders a user id the way it appears in signed tickets: a
// zero-padded six digit string (e.g. "001132").
func riderID(uid uint64) string {
	s := strconv.FormatUint(uid, 10)
	for len(s) < 6 {
		s = "0" + s
	}
	return s
}
