// The worker runs the periodic maintenance jobs: closing expired OPEN job
// posts and purging old read notifications.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"server/internal/adapter/repo"
	"server/internal/domain"
	"server/internal/infra"
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

	jobs := repo.NewJobRepository(dbpool)
	notifications := repo.NewNotificationRepository(dbpool)
	retention := time.Duration(cfg.NotificationRetentionDays) * 24 * time.Hour

	c := cron.New()

	if _, err := c.AddFunc("@hourly", func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		closeExpiredJobs(jobCtx, logger, jobs)
	}); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule job expiry")
	}

	if _, err := c.AddFunc("@daily", func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		purgeNotifications(jobCtx, logger, notifications, retention)
	}); err != nil {
		logger.Fatal().Err(err).Msg("failed to schedule notification purge")
	}

	c.Start()
	logger.Info().Msg("worker started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	<-c.Stop().Done()
	logger.Info().Msg("worker stopped")
}

func closeExpiredJobs(ctx context.Context, logger infra.Logger, jobs domain.JobRepository) {
	n, err := jobs.CloseExpiredOpen(ctx, time.Now())
	if err != nil {
		logger.Error().Err(err).Msg("close expired jobs failed")
		return
	}
	if n > 0 {
		logger.Info().Int64("closed", n).Msg("closed expired job posts")
	}
}

func purgeNotifications(ctx context.Context, logger infra.Logger, notifications domain.NotificationRepository, retention time.Duration) {
	n, err := notifications.PurgeReadBefore(ctx, time.Now().Add(-retention))
	if err != nil {
		logger.Error().Err(err).Msg("notification purge failed")
		return
	}
	if n > 0 {
		logger.Info().Int64("purged", n).Msg("purged read notifications")
	}
}
