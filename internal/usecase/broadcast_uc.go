package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-shop-bot/internal/domain/ports/adapter"
	"telegram-shop-bot/internal/domain/ports/repository"
	"telegram-shop-bot/internal/infra/metrics"
	"telegram-shop-bot/internal/infra/worker"
)

type BroadcastUseCase interface {
	// Broadcast delivers a message to all known users and returns the
	// success/failure tally. Individual delivery failures are logged and
	// counted, never fatal.
	Broadcast(ctx context.Context, message string) (sent, failed int, err error)
}

type broadcastUC struct {
	users repository.UserRepository
	bot   adapter.TelegramBotAdapter
	pool  *worker.Pool
	log   *zerolog.Logger
}

func NewBroadcastUseCase(users repository.UserRepository, bot adapter.TelegramBotAdapter, pool *worker.Pool, logger *zerolog.Logger) BroadcastUseCase {
	l := logger.With().Str("component", "BroadcastUC").Logger()
	return &broadcastUC{users: users, bot: bot, pool: pool, log: &l}
}

func (uc *broadcastUC) Broadcast(ctx context.Context, message string) (int, int, error) {
	allUsers, err := uc.users.ListAll(ctx, repository.NoTX)
	if err != nil {
		uc.log.Error().Err(err).Msg("failed to fetch users for broadcast")
		return 0, 0, err
	}

	// Throttle to respect Telegram's API limits (approx. 30 messages/sec).
	throttle := time.NewTicker(time.Second / 25)
	defer throttle.Stop()

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		sent   int
		failed int
	)
	for _, user := range allUsers {
		<-throttle.C
		tgID := user.TelegramID
		wg.Add(1)
		task := func(ctx context.Context) error {
			defer wg.Done()
			err := uc.bot.SendMessage(ctx, tgID, message)
			mu.Lock()
			if err != nil {
				failed++
			} else {
				sent++
			}
			mu.Unlock()
			if err != nil {
				metrics.IncDeliveryFailure("broadcast")
				uc.log.Warn().Err(err).Int64("tg_id", tgID).Msg("broadcast delivery failed")
			}
			return nil
		}
		if err := uc.pool.Submit(task); err != nil {
			// Queue saturated: deliver inline rather than dropping.
			task(ctx)
		}
	}
	wg.Wait()

	uc.log.Info().Int("sent", sent).Int("failed", failed).Msg("broadcast finished")
	return sent, failed, nil
}
