package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/martinmanurung/cinecatalog/pkg/constant"
	"github.com/martinmanurung/cinecatalog/pkg/response"
)

// APIKey requires the X-API-Key header to equal expected. An empty expected
// key rejects every request.
func APIKey(expected string) Stage {
	want := []byte(expected)
	return func(c echo.Context) error {
		got := c.Request().Header.Get(constant.HeaderAPIKey)
		if len(want) == 0 || got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
			return response.Unauthorized("Invalid or missing API key")
		}
		return nil
	}
}
