package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"telegram-shop-bot/internal/config"
	pg "telegram-shop-bot/internal/infra/db/postgres"
	"telegram-shop-bot/internal/domain/ports/repository"
	"telegram-shop-bot/internal/infra/logging"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// Migrate creates the schema and seeds the default catalog when the
	// service_options table is empty.
	if err := pg.Migrate(ctx, pool, logger); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	catalog := pg.NewPostgresCatalogRepo(pool)
	count, err := catalog.CountOptions(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("count options: %v", err)
	}
	bundles, err := catalog.ListBundles(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list bundles: %v", err)
	}

	fmt.Printf("catalog ready: %d service options, %d bundles\n", count, len(bundles))
	for _, b := range bundles {
		fmt.Printf("  - %s: $%.2f (was $%.2f), %d items\n",
			b.Name, float64(b.BundlePrice)/100, float64(b.OriginalPrice)/100, len(b.Items))
	}
}
