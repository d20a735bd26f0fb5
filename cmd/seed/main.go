// Command seed inserts the sample planets and movies into the configured
// store.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/starwars-catalog/internal/app"
	"github.com/iliyamo/starwars-catalog/internal/config"
	"github.com/iliyamo/starwars-catalog/internal/logger"
	"github.com/iliyamo/starwars-catalog/internal/seed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	lg, err := logger.New(logger.Options{Level: cfg.LogLevel, Console: true})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	if cfg.StoreDriver != config.StoreMySQL {
		lg.Fatal("seeding needs STORE_DRIVER=mysql; the memory store does not outlive this process")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := app.OpenDB(ctx, cfg)
	if err != nil {
		lg.Fatal("database", zap.Error(err))
	}
	defer db.Close()

	svcs := app.NewServices(db, nil, lg)
	res, err := seed.Populate(ctx, svcs.Planets, svcs.Movies)
	if err != nil {
		lg.Fatal("seed", zap.Error(err), zap.Int("planets", res.Planets), zap.Int("movies", res.Movies))
	}
	lg.Info("seed complete", zap.Int("planets", res.Planets), zap.Int("movies", res.Movies))
}
