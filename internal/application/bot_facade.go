package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"telegram-shop-bot/internal/domain"
	"telegram-shop-bot/internal/domain/model"
	"telegram-shop-bot/internal/infra/i18n"
	"telegram-shop-bot/internal/usecase"
)

// BotFacade composes the usecases behind the Telegram transport. The adapter
// parses updates into intents and calls one facade method per intent; the
// facade never touches tgbotapi types.
type BotFacade struct {
	UserUC      usecase.UserUseCase
	FlowUC      usecase.OrderFlowUseCase
	ApprovalUC  usecase.ApprovalUseCase
	AdminUC     usecase.AdminUseCase
	CatalogUC   usecase.CatalogUseCase
	BroadcastUC usecase.BroadcastUseCase

	Locales   *i18n.Bundle
	operators map[int64]struct{}
}

func NewBotFacade(
	userUC usecase.UserUseCase,
	flowUC usecase.OrderFlowUseCase,
	approvalUC usecase.ApprovalUseCase,
	adminUC usecase.AdminUseCase,
	catalogUC usecase.CatalogUseCase,
	broadcastUC usecase.BroadcastUseCase,
	locales *i18n.Bundle,
	operatorIDs []int64,
) *BotFacade {
	ops := make(map[int64]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		ops[id] = struct{}{}
	}
	return &BotFacade{
		UserUC:      userUC,
		FlowUC:      flowUC,
		ApprovalUC:  approvalUC,
		AdminUC:     adminUC,
		CatalogUC:   catalogUC,
		BroadcastUC: broadcastUC,
		Locales:     locales,
		operators:   ops,
	}
}

func (b *BotFacade) IsOperator(tgID int64) bool {
	_, ok := b.operators[tgID]
	return ok
}

// TranslatorFor picks the user's stored language, falling back to the
// default for unknown users.
func (b *BotFacade) TranslatorFor(ctx context.Context, tgID int64) *i18n.Translator {
	u, err := b.UserUC.GetByTelegramID(ctx, tgID)
	if err != nil {
		return b.Locales.ForLang("")
	}
	return b.Locales.ForLang(u.Language)
}

// HandleStart registers or refreshes the user and opens a fresh selection.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64, username, firstName string) (*model.Session, error) {
	if _, err := b.UserUC.RegisterOrFetch(ctx, tgID, username, firstName); err != nil {
		return nil, fmt.Errorf("register/fetch user: %w", err)
	}
	return b.FlowUC.StartFlow(ctx, tgID)
}

// HandleApproval resolves an operator approve/reject tap and returns the
// operator-facing acknowledgement. A replayed tap acknowledges without
// re-notifying the user.
func (b *BotFacade) HandleApproval(ctx context.Context, operatorID, userID int64, transactionID string, approve bool) (string, error) {
	var (
		applied bool
		err     error
	)
	if approve {
		applied, err = b.ApprovalUC.Approve(ctx, operatorID, userID, transactionID)
	} else {
		applied, err = b.ApprovalUC.Reject(ctx, operatorID, userID, transactionID)
	}
	if err != nil {
		return "", err
	}
	if !applied {
		return fmt.Sprintf("Transaction %s was already resolved.", transactionID), nil
	}
	if approve {
		return fmt.Sprintf("✅ Approved %s.", transactionID), nil
	}
	return fmt.Sprintf("❌ Rejected %s.", transactionID), nil
}

// HandleHistory renders the user's purchase history.
func (b *BotFacade) HandleHistory(ctx context.Context, tgID int64) (string, error) {
	tr := b.TranslatorFor(ctx, tgID)
	orders, err := b.AdminUC.PurchaseHistory(ctx, tgID)
	if err != nil {
		return "", err
	}
	if len(orders) == 0 {
		return tr.T("history_empty"), nil
	}
	var sb strings.Builder
	sb.WriteString(tr.T("history_header"))
	for _, o := range orders {
		sb.WriteString(fmt.Sprintf("\n• %s %s — $%.2f [%s] %s",
			o.ServiceType, o.ItemName, float64(o.Price)/100, o.Status,
			o.CreatedAt.Format("2006-01-02")))
		if o.ExpiryDate != nil {
			sb.WriteString(" (until " + o.ExpiryDate.Format("2006-01-02") + ")")
		}
	}
	return sb.String(), nil
}

// HandleOffers renders the active limited-time offers.
func (b *BotFacade) HandleOffers(ctx context.Context, tgID int64) (string, error) {
	tr := b.TranslatorFor(ctx, tgID)
	offers, err := b.AdminUC.ListActiveOffers(ctx)
	if err != nil {
		return "", err
	}
	if len(offers) == 0 {
		return tr.T("offers_empty"), nil
	}
	var sb strings.Builder
	sb.WriteString(tr.T("offers_header"))
	for _, o := range offers {
		switch o.Type {
		case model.PromoPercent:
			sb.WriteString(fmt.Sprintf("\n• %s — %d%% off, ends %s", o.Name, o.Discount, o.Expires.Format("Jan 2")))
		default:
			sb.WriteString(fmt.Sprintf("\n• %s — $%.2f off, ends %s", o.Name, float64(o.Discount)/100, o.Expires.Format("Jan 2")))
		}
	}
	return sb.String(), nil
}

func (b *BotFacade) HandleFeedback(ctx context.Context, tgID int64, text string) (string, error) {
	tr := b.TranslatorFor(ctx, tgID)
	if strings.TrimSpace(text) == "" {
		return tr.T("feedback_prompt"), nil
	}
	if err := b.AdminUC.SaveFeedback(ctx, tgID, text); err != nil {
		return "", err
	}
	return tr.T("feedback_thanks"), nil
}

func (b *BotFacade) HandleLanguage(ctx context.Context, tgID int64, lang string) (string, error) {
	if err := b.UserUC.SetLanguage(ctx, tgID, lang); err != nil {
		return "", err
	}
	return b.Locales.ForLang(lang).T("language_set"), nil
}

// HandlePromo validates and stages a promo code for the user's next purchase.
func (b *BotFacade) HandlePromo(ctx context.Context, tgID int64, code string) (string, error) {
	tr := b.TranslatorFor(ctx, tgID)
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return tr.T("promo_prompt"), nil
	}
	promo, err := b.FlowUC.ApplyPromoCode(ctx, tgID, code)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return tr.T("promo_invalid"), nil
	case errors.Is(err, domain.ErrPromoExpired):
		return tr.T("promo_expired"), nil
	case errors.Is(err, domain.ErrPromoExhausted):
		return tr.T("promo_exhausted"), nil
	case err != nil:
		return "", err
	}
	return tr.T("promo_applied", promo.Code), nil
}

// HandleStats returns the operator overview: user count and promo inventory.
func (b *BotFacade) HandleStats(ctx context.Context, operatorID int64) (string, error) {
	if !b.IsOperator(operatorID) {
		return "", domain.ErrUnauthorized
	}
	n, err := b.UserUC.Count(ctx)
	if err != nil {
		return "", err
	}
	promos, err := b.AdminUC.ListPromos(ctx, operatorID)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("👥 Users: %d\n🏷 Promo codes: %d", n, len(promos)))
	for _, p := range promos {
		sb.WriteString(fmt.Sprintf("\n• %s (%d/%d used)", p.Code, p.Uses, p.MaxUses))
	}
	return sb.String(), nil
}

// HandleBroadcast sends now when `at` is zero, otherwise schedules.
func (b *BotFacade) HandleBroadcast(ctx context.Context, operatorID int64, message string, at time.Time) (string, error) {
	if !b.IsOperator(operatorID) {
		return "", domain.ErrUnauthorized
	}
	if at.IsZero() {
		sent, failed, err := b.BroadcastUC.Broadcast(ctx, message)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("📣 Broadcast done: %d sent, %d failed.", sent, failed), nil
	}
	task, err := b.AdminUC.ScheduleBroadcast(ctx, operatorID, message, at)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🕑 Broadcast scheduled for %s (id %s).", task.ScheduledTime.Format(time.RFC822), task.ID), nil
}
