package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/martinmanurung/cinecatalog/internal/platform/ratelimit"
	"github.com/martinmanurung/cinecatalog/pkg/constant"
	"github.com/martinmanurung/cinecatalog/pkg/response"
)

// RateLimit counts the request against q for the caller's address on the
// matched route. When the store is unreachable the request is let through.
func RateLimit(l *ratelimit.Limiter, scope string, q ratelimit.Quota) Stage {
	return func(c echo.Context) error {
		key := scope + ":" + c.Path() + ":" + c.RealIP()
		res, err := l.Allow(c.Request().Context(), key, q)
		if err != nil {
			GetLogger(c).Error().Err(err).Str("key", key).Msg("Rate limit check failed")
			return nil
		}

		h := c.Response().Header()
		h.Set(constant.HeaderRateLimitLimit, strconv.Itoa(res.Limit))
		h.Set(constant.HeaderRateLimitRemaining, strconv.Itoa(res.Remaining))
		h.Set(constant.HeaderRateLimitReset, strconv.Itoa(response.RetryAfterSeconds(res.ResetIn)))

		if !res.Allowed {
			return response.TooManyRequests("Rate limit exceeded: "+q.String(), res.RetryAfter)
		}
		return nil
	}
}
