// Command favorites-consumer drains the favorite.marked queue into
// <FAVORITES_LOG_DIR>/favorites.log.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/iliyamo/starwars-catalog/internal/config"
	"github.com/iliyamo/starwars-catalog/internal/logger"
	"github.com/iliyamo/starwars-catalog/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile, Console: cfg.Env == "dev"})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{
		URL:    cfg.AMQPURL,
		Queue:  cfg.FavoritesQueue,
		LogDir: cfg.FavoritesLogDir,
		Logger: lg,
	}
	lg.Info("consuming", zap.String("queue", cfg.FavoritesQueue), zap.String("log_dir", cfg.FavoritesLogDir))
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		lg.Fatal("consumer", zap.Error(err))
	}
}
