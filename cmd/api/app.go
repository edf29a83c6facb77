package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	movieDelivery "github.com/martinmanurung/cinecatalog/internal/domain/movies/delivery"
	"github.com/martinmanurung/cinecatalog/internal/domain/movies/enrichment"
	movieRepository "github.com/martinmanurung/cinecatalog/internal/domain/movies/repository"
	movieUsecase "github.com/martinmanurung/cinecatalog/internal/domain/movies/usecase"
	"github.com/martinmanurung/cinecatalog/internal/domain/users"
	userDelivery "github.com/martinmanurung/cinecatalog/internal/domain/users/delivery"
	userRepository "github.com/martinmanurung/cinecatalog/internal/domain/users/repository"
	userUsecase "github.com/martinmanurung/cinecatalog/internal/domain/users/usecase"
	"github.com/martinmanurung/cinecatalog/internal/platform/config"
	"github.com/martinmanurung/cinecatalog/internal/platform/omdb"
	"github.com/martinmanurung/cinecatalog/internal/platform/ratelimit"
	"github.com/martinmanurung/cinecatalog/pkg/constant"
	"github.com/martinmanurung/cinecatalog/pkg/jwt"
	customValidator "github.com/martinmanurung/cinecatalog/pkg/validator"
	zlog "github.com/rs/zerolog/log"
)

const (
	defaultUsername = "admin"
	defaultPassword = "password123"
)

// app holds the wired server and everything that must be released on exit.
type app struct {
	echo *echo.Echo
	repo *movieRepository.CatalogRepository

	closeStore func() error
}

// newApp wires repositories, use cases and handlers from cfg. The catalog is
// loaded from disk before the server accepts requests. On error everything
// opened so far is released.
func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	catalogPath, err := cfg.Catalog.CatalogPath()
	if err != nil {
		return nil, err
	}
	repo, err := movieRepository.Open(catalogPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, repo.Close())
		}
	}()

	store, closeStore, err := ratelimit.NewStore(ctx, cfg.RateLimit.StorageURI)
	if err != nil {
		return nil, fmt.Errorf("init rate limit store: %w", err)
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, closeStore())
		}
	}()

	defaultQuota, err := cfg.RateLimit.DefaultQuota()
	if err != nil {
		return nil, err
	}
	loginQuota, err := cfg.RateLimit.LoginQuota()
	if err != nil {
		return nil, err
	}

	expiry, err := cfg.Auth.JWT.Expiry()
	if err != nil {
		return nil, err
	}
	jwtService := jwt.NewJWTService(cfg.Auth.JWT.SecretKey, expiry)

	accounts, err := loadAccounts(cfg.Auth.Users)
	if err != nil {
		return nil, err
	}

	var enricher movieUsecase.Enricher
	if cfg.Enrichment.APIKey != "" {
		timeout, err := cfg.Enrichment.Timeout()
		if err != nil {
			return nil, err
		}
		client, err := omdb.New(cfg.Enrichment.APIKey, cfg.Enrichment.BaseURL,
			omdb.WithTimeout(timeout),
			omdb.WithRateLimit(cfg.Enrichment.RequestsPerSecond),
		)
		if err != nil {
			return nil, fmt.Errorf("init omdb client: %w", err)
		}
		enricher = enrichment.New(client, cfg.Enrichment.MaxConcurrency, cfg.Enrichment.MaxConcurrencyLimit)
	} else {
		zlog.Warn().Msg("enrichment.api_key not set, enrichment endpoints are disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = customValidator.New()
	if cfg.Server.ReadTimeout > 0 {
		e.Server.ReadTimeout = time.Duration(cfg.Server.ReadTimeout) * time.Second
	}
	if cfg.Server.WriteTimeout > 0 {
		e.Server.WriteTimeout = time.Duration(cfg.Server.WriteTimeout) * time.Second
	}

	userHandler := userDelivery.NewHandler(ctx, userUsecase.NewUsecase(accounts, jwtService))
	movieHandler := movieDelivery.NewMovieHandler(ctx, movieUsecase.NewMovieUsecase(repo, enricher))

	setupRoutes(e, routeDeps{
		userHandler:  userHandler,
		movieHandler: movieHandler,
		jwtService:   jwtService,
		limiter:      ratelimit.New(store),
		apiKey:       cfg.Auth.APIKey,
		defaultQuota: defaultQuota,
		loginQuota:   loginQuota,
	})

	return &app{echo: e, repo: repo, closeStore: closeStore}, nil
}

// Close flushes the catalog and releases the rate limit store.
func (a *app) Close() error {
	return errors.Join(a.repo.Close(), a.closeStore())
}

func loadAccounts(list []config.UserConfig) (*userRepository.Accounts, error) {
	if len(list) == 0 {
		zlog.Warn().Str("username", defaultUsername).Msg("No users configured, seeding the default admin account")
		list = []config.UserConfig{{
			Username: defaultUsername,
			Password: defaultPassword,
			Roles:    []string{constant.RoleAdmin},
		}}
	}

	accounts := make([]users.Account, 0, len(list))
	for _, u := range list {
		acc, err := users.NewAccount(u.Username, u.Password, u.PasswordHash, u.Roles)
		if err != nil {
			return nil, fmt.Errorf("auth.users: %w", err)
		}
		accounts = append(accounts, acc)
	}
	return userRepository.NewAccounts(accounts...), nil
}
