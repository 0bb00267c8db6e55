package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workforce_backend/internal/calendar"
	"workforce_backend/internal/config"
	"workforce_backend/internal/database"
	"workforce_backend/internal/repositories"
	"workforce_backend/internal/router"
	"workforce_backend/internal/services"
	"workforce_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.InitLogger("info", false)
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize Logger
	utils.InitLogger(cfg.LogLevel, cfg.LogPretty)
	utils.ConfigureJWT(cfg.JWTSecret, cfg.JWTTTL)
	gin.SetMode(cfg.GinMode)

	offset, err := calendar.ParseOffset(cfg.CivilTZOffset)
	if err != nil {
		log.Fatal().Err(err).Str("offset", cfg.CivilTZOffset).Msg("Invalid CIVIL_TZ_OFFSET")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	deps, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to initialize storage")
	}
	defer closeStore()

	deps.Calendar = calendar.NewNormalizer("IST", offset)
	deps.Clock = calendar.SystemClock{}
	deps.SecureCookie = cfg.GinMode == gin.ReleaseMode

	if cfg.Redis.Enabled() {
		rdb, err := database.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// The cache is optional; reports fall back to the store.
			utils.LogWarn("Redis unavailable, report cache disabled", map[string]interface{}{"addr": cfg.Redis.Addr, "error": err.Error()})
		} else {
			defer rdb.Close()
			deps.ReportCache = services.NewRedisReportCache(rdb)
			deps.ReportCacheTTL = cfg.Redis.TTL
		}
	}

	engine := gin.New()
	engine.Use(utils.RequestID(), utils.GinLogger(), gin.Recovery())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", utils.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", utils.RequestIDHeader}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Setup all application routes
	router.Setup(engine, deps)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "driver": cfg.StoreDriver, "tz_offset": cfg.CivilTZOffset})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.LogError(err, "Failed to start server")
			cancel()
		}
	}()

	<-ctx.Done()
	utils.LogInfo("Shutdown signal received, draining connections")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		utils.LogError(err, "Server shutdown error")
		os.Exit(1)
	}
	utils.LogInfo("Server stopped gracefully")
}

// openStore connects the configured backend and builds its repositories.
func openStore(ctx context.Context, cfg *config.Config) (router.Deps, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		db, err := database.InitPostgres(ctx, cfg.Postgres.DSN(), cfg.Postgres.ApplySchema)
		if err != nil {
			return router.Deps{}, nil, err
		}
		utils.LogInfo("PostgreSQL connected", map[string]interface{}{"host": cfg.Postgres.Host, "db": cfg.Postgres.Name})
		return router.Deps{
			Attendance: repositories.NewPgAttendanceRepository(db),
			Employees:  repositories.NewPgEmployeeRepository(db),
			Admins:     repositories.NewPgAdminRepository(db),
		}, func() { _ = db.Close() }, nil

	default:
		client, db, err := database.InitMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return router.Deps{}, nil, err
		}
		if err := database.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return router.Deps{}, nil, err
		}
		utils.LogInfo("MongoDB connected", map[string]interface{}{"db": cfg.Mongo.Database})
		closeStore := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				utils.LogError(err, "MongoDB disconnect failed")
			}
		}
		return router.Deps{
			Attendance: repositories.NewMongoAttendanceRepository(db),
			Employees:  repositories.NewMongoEmployeeRepository(db),
			Admins:     repositories.NewMongoAdminRepository(db),
		}, closeStore, nil
	}
}
