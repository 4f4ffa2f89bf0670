package routes

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ViBaTo/panel-control-tm/cache"
	"github.com/ViBaTo/panel-control-tm/config"
	"github.com/ViBaTo/panel-control-tm/controllers"
	"github.com/ViBaTo/panel-control-tm/database"
	"github.com/ViBaTo/panel-control-tm/handlers"
	"github.com/ViBaTo/panel-control-tm/liveview"
	"github.com/ViBaTo/panel-control-tm/logger"
	"github.com/ViBaTo/panel-control-tm/middlewares"
	"github.com/ViBaTo/panel-control-tm/monitoring"
	"github.com/ViBaTo/panel-control-tm/pages"
	"github.com/ViBaTo/panel-control-tm/realtime"
	"github.com/ViBaTo/panel-control-tm/repositories"
	"github.com/ViBaTo/panel-control-tm/services"
	"github.com/ViBaTo/panel-control-tm/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Deps are the long-lived clients the router is built from.
type Deps struct {
	Config   *config.AppConfig
	DB       *gorm.DB
	Redis    *redis.Client
	Hub      *realtime.Hub
	Log      *logger.Logger
	Metrics  *monitoring.DashboardMetrics
	Gatherer prometheus.Gatherer
}

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(deps Deps) (http.Handler, error) {
	cfg := deps.Config
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middlewares.RequestLogger(deps.Log, deps.Metrics))
	router.Use(middlewares.CorsMiddleware(middlewares.DefaultCorsConfig(cfg.AllowedOrigins)))
	router.Use(middlewares.NewRateLimiterMiddleware(middlewares.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	appCache, err := cache.NewCache(deps.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	tokens, err := utils.NewTokenMaker(cfg.SymmetricKey)
	if err != nil {
		return nil, err
	}

	// Repositories and services
	patientRepo := repositories.NewPatientRepository(deps.DB)
	callRepo := repositories.NewCallRepository(deps.DB)
	tableRepo := repositories.NewTableRepository(deps.DB)

	events := changePublisher(cfg, deps.Hub)
	patientService := services.NewPatientService(patientRepo, events, deps.Log, deps.Metrics)
	callService := services.NewCallService(callRepo, events, deps.Log, deps.Metrics)

	authDeps := services.AuthDeps{
		Users:    repositories.NewUserRepository(deps.DB),
		Profiles: repositories.NewProfileRepository(deps.DB),
		Cache:    appCache,
		Locker:   database.NewLocker(deps.Redis),
		Tokens:   tokens,
		Codes:    utils.NewResetCodes(appCache),
		Mailer: utils.NewSMTPMailer(utils.SMTPConfig{
			Host: cfg.SMTPHost,
			Port: cfg.SMTPPort,
			User: cfg.SMTPUser,
			Pass: cfg.SMTPPass,
		}, cfg.PublicBaseURL),
		Events: deps.Hub,
		Log:    deps.Log,
	}
	if cfg.OAuthEnabled() {
		authDeps.OAuth = utils.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.PublicBaseURL+"/auth/callback")
	}
	userService := services.NewUserService(authDeps)

	loc := cfg.Location()
	loader := pages.NewLoader(callService, patientService, loc, deps.Log, deps.Metrics)
	viewDeps := liveview.Deps{Source: tableRepo, Notifier: deps.Hub, Log: deps.Log, Metrics: deps.Metrics}

	// Middleware shared by route groups
	apiKey := middlewares.ValidateAPIKey(cfg.GetAPIKey())
	requireSession := middlewares.RequireSession(userService)

	authController := controllers.NewAuthController(handlers.NewAuthHandler(userService, deps.Log))
	authController.RegisterRoutes(router, apiKey, requireSession)

	controllers.SetupPatientRoutes(router, controllers.DataHandlers{
		Patients: handlers.NewPatientHandler(patientService),
		Calls:    handlers.NewCallHandler(callService),
		Pages:    handlers.NewPageHandler(loader),
		Tables:   handlers.NewTableHandler(viewDeps, tableRepo),
		Exports:  handlers.NewExportHandler(patientService, callService, loc, deps.Log),
		Realtime: handlers.NewRealtimeHandler(viewDeps, userService, deps.Hub, cfg.AllowedOrigins, deps.Log),
	}, apiKey, requireSession)

	health := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"database": handlers.PingFunc(func(ctx context.Context) error {
			sqlDB, err := deps.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}),
		"redis": handlers.PingFunc(func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		}),
	})
	controllers.SetupRootRoute(router, health, deps.Gatherer)

	return router, nil
}

// changePublisher returns where services announce their writes. With the
// database triggers installed every write already reaches the hub through
// the NOTIFY relay, so services stay silent.
func changePublisher(cfg *config.AppConfig, hub *realtime.Hub) services.ChangePublisher {
	if cfg.RealtimeTriggers || hub == nil {
		return nil
	}
	return hub
}
