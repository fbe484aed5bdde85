package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/cart"
	"server/internal/http/handlers"
	"server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/media"
	"server/internal/notify"
	"server/internal/vetchat"
	"server/migrations"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()

	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	if err := infra.Migrate(ctx, dbpool, migrations.FS); err != nil {
		logger.Fatal().Err(err).Msg("failed to apply migrations")
	}

	rdb, err := infra.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer rdb.Close()

	var mediaStore media.Store
	switch cfg.MediaDriver {
	case "s3":
		mediaStore, err = media.NewS3Store(ctx, media.S3Configuration{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			AccessID:  cfg.S3AccessID,
			AccessKey: cfg.S3AccessKey,
			KeyPrefix: cfg.S3KeyPrefix,
		})
	default:
		mediaStore, err = media.NewFileStore(cfg.MediaBasePath, cfg.MediaBaseURL)
	}
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.MediaDriver).Msg("failed to init media store")
	}

	geoResolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}

	var vet vetchat.Responder = vetchat.StaticResponder{}
	if cfg.GeminiAPIKey != "" {
		vet, err = vetchat.NewGeminiResponder(vetchat.GeminiOptions{
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.GeminiModel,
			BaseURL:  cfg.GeminiBaseURL,
			Fallback: vetchat.StaticResponder{},
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init vet chat provider")
		}
	}

	users := repo.NewUserRepository(dbpool)
	notifications := repo.NewNotificationRepository(dbpool)

	app := &handlers.App{
		Logger:    logger,
		JWTSecret: cfg.JWTSecret,

		Users:         users,
		Caregivers:    repo.NewCaregiverRepository(dbpool),
		Donations:     repo.NewDonationRepository(dbpool),
		Missing:       repo.NewMissingRepository(dbpool),
		Comments:      repo.NewCommentRepository(dbpool),
		Jobs:          repo.NewJobRepository(dbpool),
		Products:      repo.NewProductRepository(dbpool),
		Orders:        repo.NewOrderRepository(dbpool),
		Notifications: notifications,

		Media:    mediaStore,
		Cart:     cart.NewStore(rdb),
		Notifier: notify.New(users, notifications),
		Vet:      vet,
		Geo:      geoResolver,
	}

	router := httpapi.NewRouter(app, httpapi.Options{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitPerMin:    cfg.RateLimitPerMin,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
