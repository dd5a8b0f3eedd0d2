package sched

import (
	"context"
	"time"

	"telegram-shop-bot/internal/infra/metrics"
	"telegram-shop-bot/internal/usecase"

	"github.com/rs/zerolog"
)

// ReminderWorker drives the periodic reminder sweep: abandoned-payment
// nudges, subscription renewal notices, and due scheduled broadcasts.
type ReminderWorker struct {
	interval time.Duration
	backoff  time.Duration
	remindUC usecase.ReminderUseCase
	log      *zerolog.Logger
}

func NewReminderWorker(interval, backoff time.Duration, remindUC usecase.ReminderUseCase, logger *zerolog.Logger) *ReminderWorker {
	compLog := logger.With().Str("component", "ReminderWorker").Logger()
	return &ReminderWorker{
		interval: interval,
		backoff:  backoff,
		remindUC: remindUC,
		log:      &compLog,
	}
}

func (w *ReminderWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting reminder worker")
	// Run once on startup, then on every tick
	w.runSweep(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping reminder worker")
			return ctx.Err()
		case <-ticker.C:
			w.runSweep(ctx)
		}
	}
}

func (w *ReminderWorker) runSweep(ctx context.Context) {
	start := time.Now()
	err := w.remindUC.Sweep(ctx)
	metrics.ObserveSweepDuration(time.Since(start).Seconds())
	if err == nil {
		return
	}
	w.log.Error().Err(err).Msg("sweep failed, retrying after backoff")

	select {
	case <-ctx.Done():
		return
	case <-time.After(w.backoff):
	}
	if err := w.remindUC.Sweep(ctx); err != nil {
		w.log.Error().Err(err).Msg("sweep retry failed")
	}
}
