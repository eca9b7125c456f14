package api

import (
	"context"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/palavraviva/study-platform/internal/api/handler"
	"github.com/palavraviva/study-platform/internal/api/middleware"
	"github.com/palavraviva/study-platform/internal/core/ports"
	"github.com/palavraviva/study-platform/internal/core/service"
	"github.com/palavraviva/study-platform/internal/infrastructure/config"
	mongorepo "github.com/palavraviva/study-platform/internal/infrastructure/db/mongo"
	redisstore "github.com/palavraviva/study-platform/internal/infrastructure/db/redis"
)

// Deps are the process-wide resources the router wires into handlers.
type Deps struct {
	DB       *mongo.Database
	Redis    *redis.Client
	Config   *config.Config
	Activity ports.ActivityLogger
	Log      zerolog.Logger
}

// Handlers groups the route targets registered by Register.
type Handlers struct {
	Auth    *handler.AuthHandler
	Profile *handler.ProfileHandler
	Library *handler.LibraryHandler
	Admin   *handler.AdminHandler
	Health  *handler.HealthHandler
	Ready   *handler.HealthDependenciesHandler
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := newEcho(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("studies"))

	// --- Dependencies ---
	users := mongorepo.NewAuthRepository(d.DB)
	allowList := mongorepo.NewAuthorizedEmailRepository(d.DB)
	admins := mongorepo.NewAdminRepository(d.DB)
	profiles := mongorepo.NewProfileRepository(d.DB)
	studies := mongorepo.NewStudyRepository(d.DB)
	chapters := mongorepo.NewChapterRepository(d.DB)
	progress := mongorepo.NewProgressRepository(d.DB)
	tokens := redisstore.NewTokenStore(d.Redis)

	authService := service.NewAuthService(users, allowList, tokens, d.Config.JWTSecret,
		d.Config.AccessTokenTTL, d.Config.RefreshTokenTTL)
	profileService := service.NewProfileService(profiles, admins, users, d.Activity, d.Log)
	libraryService := service.NewLibraryService(studies, chapters, progress, profiles, users, d.Activity, d.Log)
	contentService := service.NewContentService(studies, chapters, allowList, d.Activity, d.Log)

	h := Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Profile: handler.NewProfileHandler(profileService, users),
		Library: handler.NewLibraryHandler(libraryService),
		Admin:   handler.NewAdminHandler(contentService),
		Health:  handler.NewHealthHandler(),
		Ready: handler.NewHealthDependenciesHandler(map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return d.DB.Client().Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return d.Redis.Ping(ctx).Err() },
		}),
	}

	e.GET("/metrics", echoprometheus.NewHandler())
	if d.Config.IsDevelopment() {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}
	Register(e, h, d.Config.JWTSecret, admins, d.Log)
	return e
}

// newEcho returns an Echo instance with the validator and error handler.
func newEcho(log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)
	return e
}

// Register mounts the API routes on e.
func Register(e *echo.Echo, h Handlers, jwtSecret string, admins ports.AdminRepository, log zerolog.Logger) {
	authMiddleware := middleware.Auth(jwtSecret)

	// --- Health checks (no auth required) ---
	e.GET("/health", h.Health.Liveness)      // liveness  – is the process alive?
	e.GET("/health/ready", h.Ready.Readiness) // readiness – are dependencies up?

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/signup", h.Auth.SignUp)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)
	auth.PUT("/user", h.Auth.UpdateUser, authMiddleware)

	v1 := e.Group("/v1")
	v1.GET("/studies", h.Library.Discover, middleware.OptionalAuth(jwtSecret))

	// --- Signed-in reader routes ---
	reader := v1.Group("", authMiddleware)
	reader.GET("/profile", h.Profile.Get)
	reader.PUT("/profile", h.Profile.UpdateName)
	reader.POST("/onboarding", h.Profile.CompleteOnboarding)
	reader.GET("/personal-data", h.Profile.PersonalData)
	reader.GET("/admin-membership", h.Profile.Membership)
	reader.GET("/library", h.Library.Library)
	reader.POST("/studies/:id/acquire", h.Library.Acquire)
	reader.POST("/chapters/:id/complete", h.Library.CompleteChapter)

	// --- Admin console ---
	admin := v1.Group("/admin", authMiddleware, middleware.RequireAdmin(admins, log))
	admin.GET("/studies", h.Admin.ListStudies)
	admin.POST("/studies", h.Admin.CreateStudy)
	admin.GET("/studies/:id", h.Admin.GetStudy)
	admin.PUT("/studies/:id", h.Admin.UpdateStudy)
	admin.GET("/studies/:id/chapters", h.Admin.ListChapters)
	admin.POST("/studies/:id/chapters", h.Admin.CreateChapter)
	admin.GET("/studies/:id/chapters/next-number", h.Admin.NextChapterNumber)
	admin.PUT("/chapters/:id", h.Admin.UpdateChapter)
	admin.POST("/authorized-users", h.Admin.AuthorizeUser)
}
