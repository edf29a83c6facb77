package delivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/martinmanurung/cinecatalog/internal/domain/users"
	"github.com/martinmanurung/cinecatalog/pkg/jwt"
	"github.com/martinmanurung/cinecatalog/pkg/middleware"
	"github.com/martinmanurung/cinecatalog/pkg/response"
)

type UserUsecase interface {
	Login(ctx context.Context, payload users.LoginRequest) (*users.LoginResponse, error)
	GetProfile(ctx context.Context, username string) (*users.Profile, error)
}

type Handler struct {
	ctx     context.Context
	usecase UserUsecase
}

func NewHandler(ctx context.Context, usecase UserUsecase) *Handler {
	return &Handler{
		ctx:     ctx,
		usecase: usecase,
	}
}

// Login issues an access token
// POST /auth/login
func (h *Handler) Login(c echo.Context) error {
	logger := middleware.GetLogger(c)
	ctx := h.ctx

	var req users.LoginRequest

	// malformed and incomplete bodies are reported like wrong credentials
	if err := c.Bind(&req); err != nil {
		logger.Warn().Err(err).Msg("Failed to bind login request")
		return response.Error(c, http.StatusUnauthorized, "Bad credentials", nil)
	}

	if err := c.Validate(&req); err != nil {
		logger.Warn().Err(err).Msg("Login validation failed")
		return response.Error(c, http.StatusUnauthorized, "Bad credentials", nil)
	}

	result, err := h.usecase.Login(ctx, req)
	if err != nil {
		var apiErr *response.APIError
		if errors.As(err, &apiErr) {
			logger.Warn().
				Str("username", req.Username).
				Msg("Login failed")
			return response.Error(c, apiErr.Code, apiErr.Message, apiErr.Details)
		}
		logger.Error().Err(err).Msg("Internal server error during login")
		return response.Error(c, http.StatusInternalServerError, "Internal Server Error", nil)
	}

	logger.Info().
		Str("username", req.Username).
		Msg("User logged in successfully")

	return c.JSON(http.StatusOK, result)
}

// GetMe returns the principal of the bearer token
// GET /auth/me
func (h *Handler) GetMe(c echo.Context) error {
	ctx := h.ctx

	username, err := jwt.GetSubjectFromContext(c)
	if err != nil {
		return response.Error(c, http.StatusUnauthorized, "Missing Authorization Header", nil)
	}

	result, err := h.usecase.GetProfile(ctx, username)
	if err != nil {
		var apiErr *response.APIError
		if errors.As(err, &apiErr) {
			return response.Error(c, apiErr.Code, apiErr.Message, apiErr.Details)
		}
		return response.Error(c, http.StatusInternalServerError, "Internal Server Error", nil)
	}

	return c.JSON(http.StatusOK, result)
}
