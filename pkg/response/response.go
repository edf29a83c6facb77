package response

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/martinmanurung/cinecatalog/pkg/constant"
)

type ErrorResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

func Error(c echo.Context, code int, message string, errDetails interface{}) error {
	return c.JSON(code, ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		Errors:  errDetails,
	})
}

// APIError is the error carried from use cases and middleware to the HTTP
// error handler.
type APIError struct {
	Code       int
	Message    string
	Details    interface{}
	RetryAfter time.Duration

	cause error
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.cause
}

func NewError(code int, message string, details interface{}) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

func Validation(message string, details interface{}) *APIError {
	return NewError(http.StatusBadRequest, message, details)
}

func Unauthorized(message string) *APIError {
	return NewError(http.StatusUnauthorized, message, nil)
}

func Forbidden(message string) *APIError {
	return NewError(http.StatusForbidden, message, nil)
}

func NotFound(message string) *APIError {
	return NewError(http.StatusNotFound, message, nil)
}

func TooManyRequests(message string, retryAfter time.Duration) *APIError {
	e := NewError(http.StatusTooManyRequests, message, nil)
	e.RetryAfter = retryAfter
	return e
}

// InternalServerError hides err from the client; it is logged by the handler.
func InternalServerError(err error) *APIError {
	return &APIError{
		Code:    http.StatusInternalServerError,
		Message: "Internal Server Error",
		cause:   err,
	}
}

// IsStatus reports whether err is an APIError with the given code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// RetryAfterSeconds rounds d up to whole seconds, minimum one.
func RetryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

func CustomErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Code >= http.StatusInternalServerError {
			log.Error().Err(apiErr.cause).Str("path", c.Path()).Msg(apiErr.Message)
		}
		if apiErr.Code == http.StatusTooManyRequests {
			c.Response().Header().Set(constant.HeaderRetryAfter, strconv.Itoa(RetryAfterSeconds(apiErr.RetryAfter)))
		}
		Error(c, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	var echoErr *echo.HTTPError
	if errors.As(err, &echoErr) {
		var msg string
		if s, ok := echoErr.Message.(string); ok {
			msg = s
		} else {
			msg = "An error occurred" // Fallback
		}
		Error(c, echoErr.Code, msg, nil)
		return
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
	Error(c, http.StatusInternalServerError, "Internal Server Error", nil)
}
