package usecase

import (
	"context"

	"github.com/martinmanurung/cinecatalog/internal/domain/users"
	"github.com/martinmanurung/cinecatalog/pkg/jwt"
	"github.com/martinmanurung/cinecatalog/pkg/response"
	"golang.org/x/crypto/bcrypt"
)

const badCredentials = "Bad credentials"

// dummyHash is compared against when the user is unknown so that both
// failure cases cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type AccountRepository interface {
	FindByUsername(ctx context.Context, username string) (*users.Account, error)
}

type Usecase struct {
	repo       AccountRepository
	jwtService *jwt.JWTService
}

func NewUsecase(repo AccountRepository, jwtService *jwt.JWTService) *Usecase {
	return &Usecase{
		repo:       repo,
		jwtService: jwtService,
	}
}

func (u Usecase) Login(ctx context.Context, payload users.LoginRequest) (*users.LoginResponse, error) {
	account, err := u.repo.FindByUsername(ctx, payload.Username)
	if err != nil {
		return nil, response.InternalServerError(err)
	}

	if account == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(payload.Password))
		return nil, response.Unauthorized(badCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(payload.Password)); err != nil {
		return nil, response.Unauthorized(badCredentials)
	}

	token, err := u.jwtService.GenerateToken(account.Username, account.Roles)
	if err != nil {
		return nil, response.InternalServerError(err)
	}

	return &users.LoginResponse{AccessToken: token}, nil
}

func (u Usecase) GetProfile(ctx context.Context, username string) (*users.Profile, error) {
	account, err := u.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, response.InternalServerError(err)
	}

	if account == nil {
		return nil, response.NotFound("User not found")
	}

	return &users.Profile{
		Username: account.Username,
		Roles:    append([]string{}, account.Roles...),
	}, nil
}
