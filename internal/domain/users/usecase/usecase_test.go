package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martinmanurung/cinecatalog/internal/domain/users"
	"github.com/martinmanurung/cinecatalog/internal/domain/users/repository"
	"github.com/martinmanurung/cinecatalog/internal/domain/users/usecase"
	"github.com/martinmanurung/cinecatalog/pkg/jwt"
	"github.com/martinmanurung/cinecatalog/pkg/response"
)

func newUsecase(t *testing.T) (*usecase.Usecase, *jwt.JWTService) {
	t.Helper()
	admin, err := users.NewAccount("admin", "password123", "", []string{"admin"})
	require.NoError(t, err)
	viewer, err := users.NewAccount("viewer", "secret", "", []string{"viewer"})
	require.NoError(t, err)

	svc := jwt.NewJWTService("test-secret", 0)
	return usecase.NewUsecase(repository.NewAccounts(admin, viewer), svc), svc
}

func TestLoginIssuesTokenWithRoles(t *testing.T) {
	uc, svc := newUsecase(t)

	res, err := uc.Login(context.Background(), users.LoginRequest{Username: "admin", Password: "password123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, []string{"admin"}, claims.Roles)
}

func TestLoginBadCredentials(t *testing.T) {
	uc, _ := newUsecase(t)

	for _, req := range []users.LoginRequest{
		{Username: "admin", Password: "wrong"},
		{Username: "nobody", Password: "password123"},
	} {
		_, err := uc.Login(context.Background(), req)
		var apiErr *response.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.Code)
		assert.Equal(t, "Bad credentials", apiErr.Message)
	}
}

func TestGetProfile(t *testing.T) {
	uc, _ := newUsecase(t)

	p, err := uc.GetProfile(context.Background(), "viewer")
	require.NoError(t, err)
	assert.Equal(t, []string{"viewer"}, p.Roles)

	_, err = uc.GetProfile(context.Background(), "ghost")
	assert.True(t, response.IsStatus(err, http.StatusNotFound))
}

func TestNewAccountAcceptsExistingHash(t *testing.T) {
	hashed, err := users.NewAccount("a", "pw", "", nil)
	require.NoError(t, err)

	again, err := users.NewAccount("a", "", hashed.PasswordHash, nil)
	require.NoError(t, err)
	assert.Equal(t, hashed.PasswordHash, again.PasswordHash)

	_, err = users.NewAccount("a", "", "plainly-not-bcrypt", nil)
	assert.Error(t, err)
	_, err = users.NewAccount(" ", "pw", "", nil)
	assert.Error(t, err)
	_, err = users.NewAccount("a", "", "", nil)
	assert.Error(t, err)
}
