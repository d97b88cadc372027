package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"cmticaret/config"
	"cmticaret/database"
	"cmticaret/mailer"
	"cmticaret/pkg/logger"
	"cmticaret/repository"
	"cmticaret/services"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// The sweeper runs one inventory sweep and exits; scheduling belongs to
// cron or the container orchestrator.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration error:", err)
		os.Exit(1)
	}

	logger.Initialize(cfg.Env)
	defer zap.L().Sync()

	db, err := database.Connect(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		zap.L().Fatal("mongo connection failed", zap.Error(err))
	}
	defer database.Close(db)

	rdb, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		zap.L().Fatal("redis connection failed", zap.Error(err))
	}
	defer rdb.Close()

	sender, err := mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SenderName)
	if err != nil {
		zap.L().Fatal("mail transport required for inventory alerts", zap.Error(err))
	}
	notifier, err := mailer.NewNotifier(sender, cfg.AdminAlertEmail, cfg.SiteURL, zap.L())
	if err != nil {
		zap.L().Fatal("mail templates failed to load", zap.Error(err))
	}

	sweep := services.NewInventoryService(
		repository.NewMongoProductRepository(db),
		repository.NewRedisAlertStore(rdb),
		notifier,
		zap.L(),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result, err := sweep.Sweep(ctx)
	if err != nil {
		zap.L().Fatal("sweep failed", zap.Error(err))
	}
	zap.L().Info("sweep done",
		zap.Int("low_stock", result.LowStock),
		zap.Int("out_of_stock", result.OutOfStock),
	)
}
