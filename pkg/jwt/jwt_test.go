package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret", 0)

	token, err := svc.GenerateToken("admin", []string{"admin"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.True(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole("viewer"))
	assert.NotEmpty(t, claims.ID)
	assert.Nil(t, claims.ExpiresAt, "tokens do not expire by default")

	_, err = svc.ValidateToken(token)
	assert.NoError(t, err, "raw token without scheme")
}

func TestTokenIDsAreUnique(t *testing.T) {
	svc := NewJWTService("secret", 0)
	a, err := svc.GenerateToken("u", nil)
	require.NoError(t, err)
	b, err := svc.GenerateToken("u", nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestExpiredTokenRejected(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }

	token, err := svc.GenerateToken("u", []string{"admin"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	var verr *gojwt.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotZero(t, verr.Errors&gojwt.ValidationErrorExpired)
}

func TestValidateRejectsBadTokens(t *testing.T) {
	svc := NewJWTService("secret", 0)
	other := NewJWTService("other", 0)
	foreign, err := other.GenerateToken("u", []string{"admin"})
	require.NoError(t, err)

	for name, header := range map[string]string{
		"empty":     "",
		"bare":      "Bearer ",
		"scheme":    "Basic " + foreign,
		"garbage":   "Bearer not.a.token",
		"wrong-key": "Bearer " + foreign,
		"none-alg":  "Bearer eyJhbGciOiJub25lIn0.eyJzdWIiOiJ1In0.",
	} {
		_, err := svc.ValidateToken(header)
		assert.Error(t, err, name)
	}
}

func TestGenerateRequiresSubjectAndKey(t *testing.T) {
	_, err := NewJWTService("secret", 0).GenerateToken("", nil)
	assert.Error(t, err)
	_, err = NewJWTService("", 0).GenerateToken("u", nil)
	assert.Error(t, err)
}
