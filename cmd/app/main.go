// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/oklog/ulid/v2"

	"telegram-shop-bot/internal/application"
	"telegram-shop-bot/internal/config"
	tele "telegram-shop-bot/internal/infra/adapters/telegram"
	pg "telegram-shop-bot/internal/infra/db/postgres"
	httpapi "telegram-shop-bot/internal/infra/http"
	"telegram-shop-bot/internal/infra/i18n"
	"telegram-shop-bot/internal/infra/logging"
	"telegram-shop-bot/internal/infra/metrics"
	red "telegram-shop-bot/internal/infra/redis"
	"telegram-shop-bot/internal/infra/sched"
	"telegram-shop-bot/internal/infra/worker"
	"telegram-shop-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = godotenv.Load()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, debug level)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal().Err(err).Msg("migrate failed")
	}

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	defer redisClient.Close()

	sessionRepo := red.NewSessionRepo(redisClient, cfg.Redis.SessionTTL)
	rateLimiter := red.NewRateLimiter(redisClient)
	locker := red.NewLocker(redisClient)

	// ---- Repositories ----
	tm := pg.NewTxManager(pool)
	userRepo := pg.NewPostgresUserRepo(pool)
	orderRepo := pg.NewPostgresOrderRepo(pool)
	txnRepo := pg.NewPostgresTransactionRepo(pool)
	pendingRepo := pg.NewPostgresPendingPaymentRepo(pool)
	promoRepo := pg.NewPostgresPromoRepo(pool)
	catalogRepo := pg.NewPostgresCatalogRepo(pool)
	taskRepo := pg.NewPostgresTaskRepo(pool)
	feedbackRepo := pg.NewPostgresFeedbackRepo(pool)

	// ---- Locales ----
	locales, err := i18n.NewBundle(i18n.LocalesFS, "en", "hi")
	if err != nil {
		logger.Fatal().Err(err).Msg("locales failed to load")
	}

	metrics.MustRegister()

	// ---- Telegram adapter ----
	// The adapter starts without a facade; SetFacade below closes the loop
	// once the usecases that need the adapter exist.
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, &cfg.Payment, nil, rateLimiter, locker, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram adapter failed")
	}

	// ---- Use cases ----
	operatorIDs := cfg.Bot.OperatorIDs
	orderID := func() string {
		return strings.ToLower(ulid.Make().String())
	}

	userUC := usecase.NewUserUseCase(userRepo, tm, logger)
	flowUC := usecase.NewOrderFlowUseCase(
		sessionRepo, orderRepo, txnRepo, pendingRepo, catalogRepo, promoRepo,
		tm, botAdapter, operatorIDs, orderID, logger,
	)
	approvalUC := usecase.NewApprovalUseCase(
		orderRepo, txnRepo, pendingRepo, userRepo, catalogRepo,
		tm, botAdapter, locales, operatorIDs, logger,
	)
	adminUC := usecase.NewAdminUseCase(catalogRepo, promoRepo, taskRepo, feedbackRepo, orderRepo, operatorIDs, logger)
	catalogUC := usecase.NewCatalogUseCase(catalogRepo, logger)

	broadcastPool := worker.NewPool(cfg.Bot.Workers, logger)
	broadcastPool.Start(ctx)
	defer broadcastPool.Stop()
	broadcastUC := usecase.NewBroadcastUseCase(userRepo, botAdapter, broadcastPool, logger)

	reminderUC := usecase.NewReminderUseCase(
		pendingRepo, orderRepo, userRepo, taskRepo, broadcastUC,
		botAdapter, locales, operatorIDs, logger,
	)

	// ---- Facade ----
	facade := application.NewBotFacade(userUC, flowUC, approvalUC, adminUC, catalogUC, broadcastUC, locales, operatorIDs)
	botAdapter.SetFacade(facade)

	// ---- Reminder sweeps ----
	reminderWorker := sched.NewReminderWorker(cfg.Scheduler.SweepInterval, cfg.Scheduler.RetryBackoff, reminderUC, logger)
	go func() {
		if err := reminderWorker.Run(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("reminder worker stopped")
		}
	}()

	// ---- Ops server (/healthz, /metrics) ----
	opsSrv := httpapi.NewServer(cfg.Ops.Port, pool, redisClient, logger)
	go func() {
		if err := opsSrv.Start(); err != nil {
			logger.Error().Err(err).Msg("ops server stopped")
		}
	}()

	// ---- Telegram polling ----
	if strings.ToLower(cfg.Bot.Mode) != "" && strings.ToLower(cfg.Bot.Mode) != "polling" {
		logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented, falling back to polling")
	}
	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()
	logger.Info().Int("operators", len(operatorIDs)).Msg("bot started")

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	botAdapter.StopPolling()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("ops server shutdown error")
	}
}
