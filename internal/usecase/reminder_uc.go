// File: internal/usecase/reminder_uc.go
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"telegram-shop-bot/internal/domain/model"
	"telegram-shop-bot/internal/domain/ports/adapter"
	"telegram-shop-bot/internal/domain/ports/repository"
	"telegram-shop-bot/internal/infra/i18n"
	"telegram-shop-bot/internal/infra/metrics"
)

// Compile-time check
var _ ReminderUseCase = (*reminderUC)(nil)

// ReminderUseCase is the periodic sweep over the pending-payment ledger,
// active subscriptions, and due scheduled broadcasts. All mutations are
// idempotent (gated by sent-flags), so at-least-once execution with
// de-duplication is enough; no lock is shared with the live chat path.
type ReminderUseCase interface {
	Sweep(ctx context.Context) error
}

type reminderUC struct {
	pending     repository.PendingPaymentRepository
	orders      repository.OrderRepository
	users       repository.UserRepository
	tasks       repository.TaskRepository
	broadcast   BroadcastUseCase
	bot         adapter.TelegramBotAdapter
	i18n        *i18n.Bundle
	operatorIDs []int64
	now         func() time.Time
	log         *zerolog.Logger
}

func NewReminderUseCase(
	pending repository.PendingPaymentRepository,
	orders repository.OrderRepository,
	users repository.UserRepository,
	tasks repository.TaskRepository,
	broadcast BroadcastUseCase,
	bot adapter.TelegramBotAdapter,
	bundle *i18n.Bundle,
	operatorIDs []int64,
	logger *zerolog.Logger,
) *reminderUC {
	l := logger.With().Str("component", "ReminderUC").Logger()
	return &reminderUC{
		pending:     pending,
		orders:      orders,
		users:       users,
		tasks:       tasks,
		broadcast:   broadcast,
		bot:         bot,
		i18n:        bundle,
		operatorIDs: operatorIDs,
		now:         time.Now,
		log:         &l,
	}
}

// Sweep runs the three passes independently: a failure in one pass is
// reported but does not stop the others.
func (u *reminderUC) Sweep(ctx context.Context) error {
	var firstErr error
	if err := u.sweepAbandoned(ctx); err != nil {
		firstErr = err
		u.log.Error().Err(err).Msg("abandonment pass failed")
	}
	if err := u.sweepRenewals(ctx); err != nil {
		if firstErr == nil {
			firstErr = err
		}
		u.log.Error().Err(err).Msg("renewal pass failed")
	}
	if err := u.sweepBroadcasts(ctx); err != nil {
		if firstErr == nil {
			firstErr = err
		}
		u.log.Error().Err(err).Msg("broadcast pass failed")
	}
	return firstErr
}

func (u *reminderUC) sweepAbandoned(ctx context.Context) error {
	entries, err := u.pending.ListUnconfirmed(ctx, repository.NoTX)
	if err != nil {
		return err
	}
	now := u.now()
	for _, e := range entries {
		if e.Stale(now) {
			// Not a source of truth, just a scheduling aid: drop it.
			if err := u.pending.Delete(ctx, repository.NoTX, e.TransactionID); err != nil {
				u.log.Error().Err(err).Str("txn_id", e.TransactionID).Msg("stale ledger delete failed")
			}
			continue
		}
		n := e.NextReminder(now)
		if n == 0 {
			continue
		}
		tr := u.translatorFor(ctx, e.UserID)
		text := fmt.Sprintf(tr.T(fmt.Sprintf("payment_reminder_%d", n)), e.ServiceType, float64(e.Price)/100)
		if err := u.bot.SendMessage(ctx, e.UserID, text); err != nil {
			metrics.IncDeliveryFailure("payment_reminder")
			u.log.Warn().Err(err).Int64("tg_id", e.UserID).Msg("payment reminder delivery failed")
			continue
		}
		e.MarkReminded(n)
		if err := u.pending.UpdateFlags(ctx, repository.NoTX, e); err != nil {
			u.log.Error().Err(err).Str("txn_id", e.TransactionID).Msg("reminder flag update failed")
			continue
		}
		metrics.IncReminderSent("abandonment")
	}
	return nil
}

func (u *reminderUC) sweepRenewals(ctx context.Context) error {
	subs, err := u.orders.ListActiveSubscriptions(ctx, repository.NoTX)
	if err != nil {
		return err
	}
	now := u.now()
	for _, o := range subs {
		if o.ExpiryDate == nil {
			continue
		}
		daysLeft := int(o.ExpiryDate.Sub(now).Hours() / 24)
		switch {
		case daysLeft == 0 && o.AutoRenew:
			// Renewal hook only; the actual re-charge is out of scope.
			u.log.Info().Str("order_id", o.ID).Int64("tg_id", o.UserID).
				Msg("auto-renew due; renewal hook triggered")
		case daysLeft <= 1 && daysLeft >= 0 && !o.FinalReminderSent:
			u.sendRenewalReminder(ctx, o, "final_reminder", "final")
		case daysLeft <= 7 && daysLeft > 1 && !o.RenewalReminderSent:
			u.sendRenewalReminder(ctx, o, "renewal_reminder", "renewal")
		}
	}
	return nil
}

func (u *reminderUC) sendRenewalReminder(ctx context.Context, o *model.Order, msgKey, kind string) {
	tr := u.translatorFor(ctx, o.UserID)
	text := fmt.Sprintf(tr.T(msgKey), o.ItemName, o.ExpiryDate.Format("2006-01-02"))
	rows := [][]adapter.InlineButton{{
		{Text: tr.T("button_renew_now"), Data: "svc:renewal"},
	}}
	if err := u.bot.SendButtons(ctx, o.UserID, text, rows); err != nil {
		metrics.IncDeliveryFailure("renewal_reminder")
		u.log.Warn().Err(err).Int64("tg_id", o.UserID).Msg("renewal reminder delivery failed")
		return
	}
	if err := u.orders.MarkReminderSent(ctx, repository.NoTX, o.ID, kind); err != nil {
		u.log.Error().Err(err).Str("order_id", o.ID).Msg("reminder flag update failed")
		return
	}
	metrics.IncReminderSent(kind)
}

func (u *reminderUC) sweepBroadcasts(ctx context.Context) error {
	due, err := u.tasks.ListDue(ctx, repository.NoTX, u.now())
	if err != nil {
		return err
	}
	for _, task := range due {
		sent, failed, err := u.broadcast.Broadcast(ctx, task.Message)
		if err != nil {
			u.log.Error().Err(err).Str("task_id", task.ID).Msg("scheduled broadcast failed")
			continue
		}
		tally := fmt.Sprintf("Broadcast %s delivered: %d ok, %d failed", task.ID, sent, failed)
		for _, op := range u.operatorIDs {
			if err := u.bot.SendMessage(ctx, op, tally); err != nil {
				u.log.Warn().Err(err).Int64("operator", op).Msg("tally delivery failed")
			}
		}
		if err := u.tasks.Delete(ctx, repository.NoTX, task.ID); err != nil {
			u.log.Error().Err(err).Str("task_id", task.ID).Msg("task removal failed")
		}
	}
	return nil
}

func (u *reminderUC) translatorFor(ctx context.Context, tgID int64) *i18n.Translator {
	lang := "en"
	if usr, err := u.users.FindByTelegramID(ctx, repository.NoTX, tgID); err == nil && usr != nil {
		lang = usr.Language
	}
	return u.i18n.ForLang(lang)
}
