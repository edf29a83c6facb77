package middleware

import (
	"errors"

	gojwt "github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/martinmanurung/cinecatalog/pkg/jwt"
	"github.com/martinmanurung/cinecatalog/pkg/response"
)

// Bearer validates the Authorization header and stores the token's subject
// and roles on the context.
func Bearer(svc *jwt.JWTService) Stage {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return response.Unauthorized("Missing Authorization Header")
		}

		claims, err := svc.ValidateToken(header)
		if err != nil {
			var verr *gojwt.ValidationError
			if errors.As(err, &verr) && verr.Errors&gojwt.ValidationErrorExpired != 0 {
				return response.Unauthorized("Token has expired")
			}
			return response.Unauthorized("Invalid token")
		}

		jwt.SetClaims(c, claims)
		return nil
	}
}

// RequireRole lets the request through only when the validated token carries
// role. It must run after Bearer.
func RequireRole(role string) Stage {
	return func(c echo.Context) error {
		if _, err := jwt.GetSubjectFromContext(c); err != nil {
			return response.Unauthorized("Missing Authorization Header")
		}

		for _, r := range jwt.GetRolesFromContext(c) {
			if r == role {
				return nil
			}
		}
		return response.Forbidden("Missing required role: " + role)
	}
}
