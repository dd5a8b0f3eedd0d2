// File: internal/usecase/order_flow_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-shop-bot/internal/domain"
	"telegram-shop-bot/internal/domain/model"
	"telegram-shop-bot/internal/domain/ports/adapter"
	"telegram-shop-bot/internal/domain/ports/repository"
	"telegram-shop-bot/internal/infra/logging"
	"telegram-shop-bot/internal/infra/metrics"
)

// Compile-time check
var _ OrderFlowUseCase = (*orderFlowUC)(nil)

// ProofRef points at the user's payment-proof message so it can be forwarded
// to operators verbatim.
type ProofRef struct {
	ChatID    int64
	MessageID int
}

// OrderFlowUseCase drives the purchase conversation: service selection,
// pricing with promo resolution, payment-method selection, proof submission.
type OrderFlowUseCase interface {
	StartFlow(ctx context.Context, tgID int64) (*model.Session, error)
	Session(ctx context.Context, tgID int64) (*model.Session, error)
	SelectService(ctx context.Context, tgID int64, svc model.ServiceType, bundleID string) (*model.Session, error)
	SelectOption(ctx context.Context, tgID int64, optType model.OptionType, name string) (*model.Session, error)
	ApplyPromoCode(ctx context.Context, tgID int64, code string) (*model.PromoCode, error)
	RefreshPrice(ctx context.Context, tgID int64) (*model.Session, error)
	SelectPaymentCategory(ctx context.Context, tgID int64, username string, cat model.PaymentCategory) (*model.Session, error)
	SelectPaymentMethod(ctx context.Context, tgID int64, username, method string) (*model.Session, error)
	SubmitProof(ctx context.Context, tgID int64, proof ProofRef) (*model.Session, error)
	Cancel(ctx context.Context, tgID int64) error
}

type orderFlowUC struct {
	sessions     repository.SessionRepository
	orders       repository.OrderRepository
	transactions repository.TransactionRepository
	pending      repository.PendingPaymentRepository
	catalog      repository.CatalogRepository
	promos       repository.PromoRepository
	tm           repository.TransactionManager
	bot          adapter.TelegramBotAdapter
	operatorIDs  []int64
	orderID      func() string
	now          func() time.Time
	log          *zerolog.Logger
}

func NewOrderFlowUseCase(
	sessions repository.SessionRepository,
	orders repository.OrderRepository,
	transactions repository.TransactionRepository,
	pending repository.PendingPaymentRepository,
	catalog repository.CatalogRepository,
	promos repository.PromoRepository,
	tm repository.TransactionManager,
	bot adapter.TelegramBotAdapter,
	operatorIDs []int64,
	orderID func() string,
	logger *zerolog.Logger,
) *orderFlowUC {
	l := logger.With().Str("component", "OrderFlowUC").Logger()
	return &orderFlowUC{
		sessions:     sessions,
		orders:       orders,
		transactions: transactions,
		pending:      pending,
		catalog:      catalog,
		promos:       promos,
		tm:           tm,
		bot:          bot,
		operatorIDs:  operatorIDs,
		orderID:      orderID,
		now:          time.Now,
		log:          &l,
	}
}

// ResolvePrice applies a promo to a base price (cents) and returns the final
// price. Percentage promos take discount% off, amount promos subtract a fixed
// number of cents clamped at zero. Never negative. Pure: catalog state is not
// touched; the caller applies the consumption side effect.
func ResolvePrice(base int64, promo *model.PromoCode) int64 {
	if promo == nil {
		return base
	}
	var final int64
	switch promo.Type {
	case model.PromoPercent:
		final = base - int64(math.Round(float64(base)*float64(promo.Discount)/100))
	case model.PromoAmount:
		final = base - promo.Discount
	default:
		final = base
	}
	if final < 0 {
		final = 0
	}
	return final
}

func (u *orderFlowUC) loadSession(ctx context.Context, tgID int64) (*model.Session, error) {
	s, err := u.sessions.Get(ctx, tgID)
	if errors.Is(err, domain.ErrNotFound) {
		return model.NewSession(tgID), nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (u *orderFlowUC) StartFlow(ctx context.Context, tgID int64) (*model.Session, error) {
	s, err := u.loadSession(ctx, tgID)
	if err != nil {
		return nil, err
	}
	s.StartSelection()
	if err := u.sessions.Set(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (u *orderFlowUC) Session(ctx context.Context, tgID int64) (*model.Session, error) {
	return u.loadSession(ctx, tgID)
}

func (u *orderFlowUC) SelectService(ctx context.Context, tgID int64, svc model.ServiceType, bundleID string) (*model.Session, error) {
	s, err := u.loadSession(ctx, tgID)
	if err != nil {
		return nil, err
	}
	if svc == model.ServiceBundle {
		b, err := u.catalog.FindBundle(ctx, repository.NoTX, bundleID)
		if err != nil {
			return nil, err
		}
		if err := s.ChooseService(svc, b.ID, b.BundlePrice, b.OriginalPrice); err != nil {
			return nil, err
		}
		// Bundles reach the confirmed price immediately; resolve any
		// outstanding promo right away.
		if err := u.applyLatestPromo(ctx, s); err != nil {
			return nil, err
		}
	} else {
		if err := s.ChooseService(svc, "", 0, 0); err != nil {
			return nil, err
		}
	}
	if err := u.sessions.Set(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (u *orderFlowUC) SelectOption(ctx context.Context, tgID int64, optType model.OptionType, name string) (*model.Session, error) {
	s, err := u.loadSession(ctx, tgID)
	if err != nil {
		return nil, err
	}
	opt, err := u.catalog.FindOption(ctx, repository.NoTX, s.Selection.ServiceType, optType, name)
	if err != nil {
		// Stale menu button or deleted option: keep the session where it is.
		return nil, err
	}
	if err := s.ChooseOption(*opt); err != nil {
		return nil, err
	}
	if s.State == model.StatePriceConfirmed {
		if err := u.applyLatestPromo(ctx, s); err != nil {
			return nil, err
		}
	}
	if err := u.sessions.Set(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// applyLatestPromo resolves the user's most-recently-applied unexpired promo
// against the confirmed base price and consumes it: removed from the user's
// active-promo set and the uses counter incremented once, capped at max_uses.
func (u *orderFlowUC) applyLatestPromo(ctx context.Context, s *model.Session) error {
	applied, err := u.promos.LatestForUser(ctx, repository.NoTX, s.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	return u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		promo, err := u.promos.Find(ctx, tx, applied.Code)
		if errors.Is(err, domain.ErrNotFound) {
			// Deleted since application; drop the stale reference.
			return u.promos.RemoveFromUser(ctx, tx, s.UserID, applied.Code)
		}
		if err != nil {
			return err
		}
		if promo.Expired(u.now()) {
			return u.promos.RemoveFromUser(ctx, tx, s.UserID, applied.Code)
		}
		ok, err := u.promos.Redeem(ctx, tx, promo.Code)
		if err != nil {
			return err
		}
		if !ok {
			// Usage cap reached between application and purchase.
			return u.promos.RemoveFromUser(ctx, tx, s.UserID, applied.Code)
		}
		if err := u.promos.RemoveFromUser(ctx, tx, s.UserID, applied.Code); err != nil {
			return err
		}
		final := ResolvePrice(s.Selection.OriginalPrice, promo)
		return s.ApplyDiscount(final, promo.Code)
	})
}

func (u *orderFlowUC) ApplyPromoCode(ctx context.Context, tgID int64, code string) (*model.PromoCode, error) {
	promo, err := u.promos.Find(ctx, repository.NoTX, code)
	if err != nil {
		return nil, err
	}
	if promo.Expired(u.now()) {
		return nil, domain.ErrPromoExpired
	}
	if promo.Exhausted() {
		return nil, domain.ErrPromoExhausted
	}
	if err := u.promos.ApplyToUser(ctx, repository.NoTX, tgID, code); err != nil {
		return nil, err
	}
	return promo, nil
}

// RefreshPrice re-resolves the user's staged promo against a session already
// sitting at price confirmation, for promo codes entered after the price was
// first shown. Elsewhere in the flow it is a read-only no-op.
func (u *orderFlowUC) RefreshPrice(ctx context.Context, tgID int64) (*model.Session, error) {
	s, err := u.loadSession(ctx, tgID)
	if err != nil {
		return nil, err
	}
	if s.State != model.StatePriceConfirmed {
		return s, nil
	}
	if err := u.applyLatestPromo(ctx, s); err != nil {
		return nil, err
	}
	if err := u.sessions.Set(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (u *orderFlowUC) SelectPaymentCategory(ctx context.Context, tgID int64, username string, cat model.PaymentCategory) (*model.Session, error) {
	s, err := u.loadSession(ctx, tgID)
	if err != nil {
		return nil, err
	}
	if err := s.ChoosePaymentCategory(cat); err != nil {
		return nil, err
	}
	// Crypto has no method sub-step: payment details are next, so the
	// transaction is opened here.
	if s.State == model.StateAwaitingProof {
		if _, err := u.beginTransaction(ctx, s, username); err != nil {
			return nil, err
		}
	}
	if err := u.sessions.Set(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (u *orderFlowUC) SelectPaymentMethod(ctx context.Context, tgID int64, username, method string) (*model.Session, error) {
	s, err := u.loadSession(ctx, tgID)
	if err != nil {
		return nil, err
	}
	if err := s.ChoosePaymentMethod(method); err != nil {
		return nil, err
	}
	if _, err := u.beginTransaction(ctx, s, username); err != nil {
		return nil, err
	}
	if err := u.sessions.Set(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// beginTransaction opens the persisted purchase: a pending Transaction, a
// pending Order, and a ledger entry for abandonment tracking. Idempotent per
// unresolved session: a second call reuses the existing transaction id.
func (u *orderFlowUC) beginTransaction(ctx context.Context, s *model.Session, username string) (string, error) {
	defer logging.TraceDuration(u.log, "OrderFlowUC.beginTransaction")()

	if s.TransactionID != "" {
		return s.TransactionID, nil
	}

	now := u.now()
	txnID := model.NewTransactionID(s.UserID, now)
	txn, err := model.NewTransaction(txnID, s.UserID, username, s.Selection, s.PaymentMethod, s.PaymentType)
	if err != nil {
		return "", err
	}
	order, err := model.NewOrder(u.orderID(), s.UserID, s.Selection)
	if err != nil {
		return "", err
	}
	entry := &model.PendingPayment{
		TransactionID: txnID,
		UserID:        s.UserID,
		ServiceType:   s.Selection.ServiceType,
		Price:         s.Selection.Price,
		CreatedAt:     now,
	}

	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.transactions.Save(ctx, tx, txn); err != nil {
			return err
		}
		if err := u.orders.Save(ctx, tx, order); err != nil {
			return err
		}
		return u.pending.Save(ctx, tx, entry)
	})
	if err != nil {
		return "", err
	}

	s.TransactionID = txnID
	metrics.IncOrderCreated(string(s.Selection.ServiceType))
	u.log.Info().Str("txn_id", txnID).Int64("tg_id", s.UserID).
		Int64("amount", s.Selection.Price).Msg("transaction opened")
	return txnID, nil
}

func (u *orderFlowUC) SubmitProof(ctx context.Context, tgID int64, proof ProofRef) (*model.Session, error) {
	s, err := u.loadSession(ctx, tgID)
	if err != nil {
		return nil, err
	}
	if s.State != model.StateAwaitingProof {
		u.log.Warn().Int64("tg_id", tgID).Str("state", string(s.State)).
			Msg("proof submitted outside awaiting_proof; ignored")
		return nil, domain.ErrInvalidTransition
	}

	txnID := s.TransactionID
	err = u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if _, err := u.transactions.UpdateStatusForward(ctx, tx, txnID, model.OrderStatusPending, model.OrderStatusProcessing); err != nil {
			return err
		}
		order, err := u.orders.FindLatestByUserAndStatus(ctx, tx, tgID, model.OrderStatusPending)
		if err != nil {
			return err
		}
		if _, err := u.orders.UpdateStatusForward(ctx, tx, order.ID, model.OrderStatusPending, model.OrderStatusProcessing); err != nil {
			return err
		}
		// The payment is no longer abandoned: confirm the ledger entry so
		// the reminder sweep stops nagging while the proof is under review.
		entry, err := u.pending.Find(ctx, tx, txnID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			return err
		}
		entry.Confirmed = true
		return u.pending.UpdateFlags(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	if err := s.SubmitProof(); err != nil {
		return nil, err
	}
	if err := u.sessions.Set(ctx, s); err != nil {
		return nil, err
	}
	metrics.IncTransactionStatus(string(model.OrderStatusProcessing))

	// Operator notification is best-effort: the status transition above is
	// the source of truth and is never rolled back on delivery failure.
	u.notifyOperators(ctx, s, proof)
	return s, nil
}

func (u *orderFlowUC) notifyOperators(ctx context.Context, s *model.Session, proof ProofRef) {
	caption := fmt.Sprintf(
		"Payment proof\nUser: %d\nService: %s\nAmount: $%.2f\nTxn: %s",
		s.UserID, s.Selection.ServiceType, float64(s.Selection.Price)/100, s.TransactionID,
	)
	rows := [][]adapter.InlineButton{{
		{Text: "✅ Approve", Data: fmt.Sprintf("approve:%d:%s", s.UserID, s.TransactionID)},
		{Text: "❌ Reject", Data: fmt.Sprintf("reject:%d:%s", s.UserID, s.TransactionID)},
	}}
	for _, op := range u.operatorIDs {
		if err := u.bot.ForwardPhoto(ctx, op, proof.ChatID, proof.MessageID, caption, rows); err != nil {
			metrics.IncDeliveryFailure("operator_proof")
			u.log.Error().Err(err).Int64("operator", op).Str("txn_id", s.TransactionID).
				Msg("operator notification failed")
		}
	}
}

// Cancel always succeeds from any state. A transaction in flight is left in
// the ledger: backing out is an abandonment signal, not a cancellation.
func (u *orderFlowUC) Cancel(ctx context.Context, tgID int64) error {
	s, err := u.loadSession(ctx, tgID)
	if err != nil {
		return err
	}
	if abandoned := s.Cancel(); abandoned != "" {
		u.log.Info().Int64("tg_id", tgID).Str("txn_id", abandoned).
			Msg("flow cancelled with transaction in flight; ledger entry kept")
	}
	return u.sessions.Set(ctx, s)
}
