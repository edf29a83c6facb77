package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/martinmanurung/cinecatalog/pkg/constant"
	"github.com/segmentio/ksuid"
)

var (
	ErrMissingToken = errors.New("missing authorization header")
	ErrInvalidToken = errors.New("invalid token")
)

type MyClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasRole reports whether the claims carry role.
func (c *MyClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

type JWTService struct {
	SignatureKey []byte
	// Expiry of issued tokens; zero issues tokens without an exp claim.
	Expiry time.Duration

	now func() time.Time
}

func NewJWTService(secretKey string, expiry time.Duration) *JWTService {
	return &JWTService{
		SignatureKey: []byte(secretKey),
		Expiry:       expiry,
		now:          time.Now,
	}
}

func (j *JWTService) GenerateToken(subject string, roles []string) (string, error) {
	if subject == "" {
		return "", errors.New("subject cannot be empty")
	}

	if len(j.SignatureKey) == 0 {
		return "", errors.New("signature_key cannot be empty")
	}

	now := j.now()
	claims := MyClaims{
		Roles: append([]string{}, roles...),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			ID:       ksuid.New().String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if j.Expiry > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(j.Expiry))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.SignatureKey)
}

// ValidateToken accepts a raw token or an Authorization header value.
func (j *JWTService) ValidateToken(tokenStr string) (*MyClaims, error) {
	tokenStr = strings.TrimSpace(tokenStr)
	if scheme, rest, ok := strings.Cut(tokenStr, " "); ok {
		if !strings.EqualFold(scheme, "Bearer") {
			return nil, ErrInvalidToken
		}
		tokenStr = strings.TrimSpace(rest)
	}
	if tokenStr == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(tokenStr, &MyClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("invalid signing method")
		}
		return j.SignatureKey, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*MyClaims); ok && token.Valid && claims.Subject != "" {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// SetClaims stores the validated principal on the echo context.
func SetClaims(c echo.Context, claims *MyClaims) {
	c.Set(string(constant.CtxKeySubject), claims.Subject)
	c.Set(string(constant.CtxKeyRoles), claims.Roles)
}

// GetSubjectFromContext extracts the principal name from echo context
func GetSubjectFromContext(c echo.Context) (string, error) {
	subject, ok := c.Get(string(constant.CtxKeySubject)).(string)
	if !ok || subject == "" {
		return "", errors.New("subject not found in context")
	}
	return subject, nil
}

// GetRolesFromContext extracts role claims from echo context
func GetRolesFromContext(c echo.Context) []string {
	roles, _ := c.Get(string(constant.CtxKeyRoles)).([]string)
	return roles
}

