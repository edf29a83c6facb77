package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/martinmanurung/cinecatalog/pkg/constant"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(constant.HeaderRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
				c.Request().Header.Set(constant.HeaderRequestID, requestID)
			}
			c.Response().Header().Set(constant.HeaderRequestID, requestID)

			logger := log.With().
				Str("request_id", requestID).
				Logger()
			c.Set(string(constant.CtxKeyLogger), &logger)

			logger.Debug().
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Str("remote_ip", c.RealIP()).
				Msg("Incoming request")

			return next(c)
		}
	}
}

// GetLogger retrieves the request logger from echo context
// If not found, returns the default logger
func GetLogger(c echo.Context) *zerolog.Logger {
	if logger, ok := c.Get(string(constant.CtxKeyLogger)).(*zerolog.Logger); ok {
		return logger
	}
	return &log.Logger
}
