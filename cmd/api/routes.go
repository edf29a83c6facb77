package main

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	movieDelivery "github.com/martinmanurung/cinecatalog/internal/domain/movies/delivery"
	userDelivery "github.com/martinmanurung/cinecatalog/internal/domain/users/delivery"
	"github.com/martinmanurung/cinecatalog/internal/platform/ratelimit"
	"github.com/martinmanurung/cinecatalog/pkg/constant"
	"github.com/martinmanurung/cinecatalog/pkg/jwt"
	appMiddleware "github.com/martinmanurung/cinecatalog/pkg/middleware"
	"github.com/martinmanurung/cinecatalog/pkg/response"
)

type routeDeps struct {
	userHandler  *userDelivery.Handler
	movieHandler *movieDelivery.MovieHandler
	jwtService   *jwt.JWTService
	limiter      *ratelimit.Limiter
	apiKey       string
	defaultQuota ratelimit.Quota
	loginQuota   ratelimit.Quota
}

func setupRoutes(e *echo.Echo, d routeDeps) {
	// Middleware
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Gzip())
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(appMiddleware.RequestID())

	// Custom error handler
	e.HTTPErrorHandler = response.CustomErrorHandler

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{
			"status": "ok",
		})
	})

	// API key and quota are checked before identity so that bad tokens
	// still count against the caller's budget.
	authenticated := appMiddleware.NewChain(
		appMiddleware.APIKey(d.apiKey),
		appMiddleware.RateLimit(d.limiter, "default", d.defaultQuota),
		appMiddleware.Bearer(d.jwtService),
	)
	admin := authenticated.Then(appMiddleware.RequireRole(constant.RoleAdmin))

	// Auth routes
	auth := e.Group("/auth")
	{
		auth.POST("/login", d.userHandler.Login, appMiddleware.NewChain(
			appMiddleware.RateLimit(d.limiter, "login", d.loginQuota),
		).Middleware())
		auth.GET("/me", d.userHandler.GetMe, authenticated.Middleware())
	}

	// Movie routes (API key + JWT with admin role)
	movies := e.Group("/movies", admin.Middleware())
	{
		movies.GET("", d.movieHandler.ListMovies)
		movies.POST("", d.movieHandler.AddMovie)
		movies.GET("/stats", d.movieHandler.Stats)
		movies.GET("/:id", d.movieHandler.GetMovie)
		movies.PUT("/:id", d.movieHandler.UpdateMovie)
		movies.DELETE("/:id", d.movieHandler.DeleteMovie)

		// Bulk transfer, CSV import takes a multipart "file" field
		movies.POST("/import/json", d.movieHandler.ImportJSON)
		movies.GET("/export/json", d.movieHandler.ExportJSON)
		movies.POST("/import/csv", d.movieHandler.ImportCSV)
		movies.GET("/export/csv", d.movieHandler.ExportCSV)

		// OMDb enrichment
		movies.POST("/enrich", d.movieHandler.Enrich)
		movies.POST("/enrich/ids", d.movieHandler.EnrichIDs)
		movies.POST("/enrich/metadata", d.movieHandler.EnrichMetadata)
	}
}
