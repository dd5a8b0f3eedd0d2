// File: internal/usecase/approval_uc.go
package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-shop-bot/internal/domain"
	"telegram-shop-bot/internal/domain/model"
	"telegram-shop-bot/internal/domain/ports/adapter"
	"telegram-shop-bot/internal/domain/ports/repository"
	"telegram-shop-bot/internal/infra/i18n"
	"telegram-shop-bot/internal/infra/metrics"
)

// Compile-time check
var _ ApprovalUseCase = (*approvalUC)(nil)

// ApprovalUseCase covers the operator-facing half of the purchase lifecycle:
// approving or rejecting a submitted payment proof, with the cascading order
// and transaction updates and user notification.
type ApprovalUseCase interface {
	// Approve returns false when the transaction was already resolved
	// (replayed operator tap); only the first call notifies the user.
	Approve(ctx context.Context, operatorID, userID int64, transactionID string) (bool, error)
	Reject(ctx context.Context, operatorID, userID int64, transactionID string) (bool, error)
}

type approvalUC struct {
	orders       repository.OrderRepository
	transactions repository.TransactionRepository
	pending      repository.PendingPaymentRepository
	users        repository.UserRepository
	catalog      repository.CatalogRepository
	tm           repository.TransactionManager
	bot          adapter.TelegramBotAdapter
	i18n         *i18n.Bundle
	operatorIDs  map[int64]struct{}
	now          func() time.Time
	log          *zerolog.Logger
}

func NewApprovalUseCase(
	orders repository.OrderRepository,
	transactions repository.TransactionRepository,
	pending repository.PendingPaymentRepository,
	users repository.UserRepository,
	catalog repository.CatalogRepository,
	tm repository.TransactionManager,
	bot adapter.TelegramBotAdapter,
	bundle *i18n.Bundle,
	operatorIDs []int64,
	logger *zerolog.Logger,
) *approvalUC {
	ops := make(map[int64]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		ops[id] = struct{}{}
	}
	l := logger.With().Str("component", "ApprovalUC").Logger()
	return &approvalUC{
		orders:       orders,
		transactions: transactions,
		pending:      pending,
		users:        users,
		catalog:      catalog,
		tm:           tm,
		bot:          bot,
		i18n:         bundle,
		operatorIDs:  ops,
		now:          time.Now,
		log:          &l,
	}
}

var durationPattern = regexp.MustCompile(`^\s*(\d+)\s*[Mm]onth`)

// subscriptionTerm converts an option name such as "6 Months" into a
// subscription term. Unparseable names fall back to 60 days.
func subscriptionTerm(duration string) time.Duration {
	m := durationPattern.FindStringSubmatch(duration)
	if m == nil {
		return 60 * 24 * time.Hour
	}
	months, err := strconv.Atoi(m[1])
	if err != nil || months <= 0 {
		return 60 * 24 * time.Hour
	}
	return time.Duration(months) * 30 * 24 * time.Hour
}

func (u *approvalUC) authorize(operatorID int64) error {
	if _, ok := u.operatorIDs[operatorID]; !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

func (u *approvalUC) Approve(ctx context.Context, operatorID, userID int64, transactionID string) (bool, error) {
	if err := u.authorize(operatorID); err != nil {
		return false, err
	}

	var order *model.Order
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ok, err := u.transactions.UpdateStatusForward(ctx, tx, transactionID, model.OrderStatusProcessing, model.OrderStatusCompleted)
		if err != nil {
			return err
		}
		if !ok {
			// Already terminal: duplicate tap, nothing to do.
			return nil
		}

		o, err := u.orders.FindLatestByUserAndStatus(ctx, tx, userID, model.OrderStatusProcessing)
		if err != nil {
			return err
		}
		if _, err := u.orders.UpdateStatusForward(ctx, tx, o.ID, model.OrderStatusProcessing, model.OrderStatusCompleted); err != nil {
			return err
		}

		switch {
		case o.ServiceType == model.ServiceRenewal:
			if err := u.extendSubscription(ctx, tx, o); err != nil {
				return err
			}
		case o.IsSubscription():
			expiry := u.now().Add(subscriptionTerm(o.Duration))
			if err := u.orders.SetExpiry(ctx, tx, o.ID, expiry); err != nil {
				return err
			}
			e := expiry
			o.ExpiryDate = &e
		}

		if err := u.pending.Delete(ctx, tx, transactionID); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return false, err
	}
	if order == nil {
		u.log.Info().Str("txn_id", transactionID).Msg("approve replayed on resolved transaction; no-op")
		return false, nil
	}

	metrics.IncTransactionStatus(string(model.OrderStatusCompleted))
	metrics.AddRevenue(order.Price)
	u.log.Info().Str("txn_id", transactionID).Int64("tg_id", userID).
		Int64("operator", operatorID).Msg("payment approved")
	u.notifyUser(ctx, userID, u.approvalText(ctx, userID, order))
	return true, nil
}

// extendSubscription handles the renewal service type: the term is added to
// the original completed order's current expiry, not to now.
func (u *approvalUC) extendSubscription(ctx context.Context, tx repository.Tx, renewal *model.Order) error {
	original, err := u.orders.FindCompletedSubscription(ctx, tx, renewal.UserID, renewal.ItemName)
	if err != nil {
		return err
	}
	base := u.now()
	if original.ExpiryDate != nil {
		base = *original.ExpiryDate
	}
	expiry := base.Add(subscriptionTerm(renewal.Duration))
	return u.orders.SetExpiry(ctx, tx, original.ID, expiry)
}

func (u *approvalUC) Reject(ctx context.Context, operatorID, userID int64, transactionID string) (bool, error) {
	if err := u.authorize(operatorID); err != nil {
		return false, err
	}

	resolved := false
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		ok, err := u.transactions.UpdateStatusForward(ctx, tx, transactionID, model.OrderStatusProcessing, model.OrderStatusRejected)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		o, err := u.orders.FindLatestByUserAndStatus(ctx, tx, userID, model.OrderStatusProcessing)
		if err != nil {
			return err
		}
		if _, err := u.orders.UpdateStatusForward(ctx, tx, o.ID, model.OrderStatusProcessing, model.OrderStatusRejected); err != nil {
			return err
		}
		if err := u.pending.Delete(ctx, tx, transactionID); err != nil {
			return err
		}
		resolved = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !resolved {
		u.log.Info().Str("txn_id", transactionID).Msg("reject replayed on resolved transaction; no-op")
		return false, nil
	}

	metrics.IncTransactionStatus(string(model.OrderStatusRejected))
	u.log.Info().Str("txn_id", transactionID).Int64("tg_id", userID).
		Int64("operator", operatorID).Msg("payment rejected")
	u.notifyUser(ctx, userID, u.translator(ctx, userID).T("payment_rejected"))
	return true, nil
}

func (u *approvalUC) translator(ctx context.Context, userID int64) *i18n.Translator {
	lang := "en"
	if usr, err := u.users.FindByTelegramID(ctx, repository.NoTX, userID); err == nil && usr != nil {
		lang = usr.Language
	}
	return u.i18n.ForLang(lang)
}

func (u *approvalUC) approvalText(ctx context.Context, userID int64, order *model.Order) string {
	tr := u.translator(ctx, userID)
	var b strings.Builder
	b.WriteString(tr.T("payment_approved") + "\n")

	switch {
	case order.ServiceType == model.ServiceBundle && order.BundleID != "":
		if bundle, err := u.catalog.FindBundle(ctx, repository.NoTX, order.BundleID); err == nil {
			b.WriteString(fmt.Sprintf(tr.T("bundle_confirmed"), bundle.Name) + "\n")
			for _, item := range bundle.Items {
				line := fmt.Sprintf("• %s", item.ItemName)
				if item.Duration != "" {
					line += fmt.Sprintf(" (%s)", item.Duration)
				}
				b.WriteString(line + "\n")
			}
		}
	case order.IsSubscription() && order.ExpiryDate != nil:
		b.WriteString(fmt.Sprintf(tr.T("subscription_until"), order.ItemName, order.ExpiryDate.Format("2006-01-02")) + "\n")
	default:
		b.WriteString(fmt.Sprintf(tr.T("service_confirmed"), order.ServiceType) + "\n")
	}
	return b.String()
}

// notifyUser is best-effort; a delivery failure never rolls back the
// approval or rejection.
func (u *approvalUC) notifyUser(ctx context.Context, userID int64, text string) {
	if err := u.bot.SendMessage(ctx, userID, text); err != nil {
		metrics.IncDeliveryFailure("approval_result")
		u.log.Error().Err(err).Int64("tg_id", userID).Msg("user notification failed")
	}
}
