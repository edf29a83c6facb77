package middleware

import (
	"github.com/labstack/echo/v4"
)

// Stage inspects a request and either lets it continue by returning nil or
// short-circuits it with an error, usually a *response.APIError.
type Stage func(c echo.Context) error

// Chain is an ordered list of stages run before a handler. The first failing
// stage stops the chain; later stages and the handler never run.
type Chain []Stage

func NewChain(stages ...Stage) Chain {
	return append(Chain{}, stages...)
}

// Then returns a new chain with stages appended.
func (ch Chain) Then(stages ...Stage) Chain {
	out := make(Chain, 0, len(ch)+len(stages))
	out = append(out, ch...)
	return append(out, stages...)
}

// Run executes the stages in order.
func (ch Chain) Run(c echo.Context) error {
	for _, stage := range ch {
		if err := stage(c); err != nil {
			return err
		}
	}
	return nil
}

// Middleware adapts the chain for echo groups and routes.
func (ch Chain) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := ch.Run(c); err != nil {
				GetLogger(c).Warn().Err(err).Str("path", c.Path()).Msg("Request rejected")
				return err
			}
			return next(c)
		}
	}
}
