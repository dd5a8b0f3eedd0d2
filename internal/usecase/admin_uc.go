// File: internal/usecase/admin_uc.go
package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-shop-bot/internal/domain"
	"telegram-shop-bot/internal/domain/model"
	"telegram-shop-bot/internal/domain/ports/repository"
)

// Compile-time check
var _ AdminUseCase = (*adminUC)(nil)

// AdminUseCase is the operator-only content surface: catalog mutations, promo
// codes, bundles, offers, scheduled broadcasts, feedback and history reads.
// Data-entry forms are pipe-delimited structured text; malformed input is
// reported back with the expected format and is never fatal.
type AdminUseCase interface {
	CreatePromo(ctx context.Context, operatorID int64, form string) (*model.PromoCode, error)
	CreateServiceOption(ctx context.Context, operatorID int64, form string) (*model.ServiceOption, error)
	CreateBundle(ctx context.Context, operatorID int64, form string) (*model.Bundle, error)
	CreateOffer(ctx context.Context, operatorID int64, form string) (*model.LimitedTimeOffer, error)
	ScheduleBroadcast(ctx context.Context, operatorID int64, message string, at time.Time) (*model.ScheduledTask, error)
	ListPromos(ctx context.Context, operatorID int64) ([]*model.PromoCode, error)
	SaveFeedback(ctx context.Context, userID int64, text string) error
	PurchaseHistory(ctx context.Context, userID int64) ([]*model.Order, error)
	ListActiveOffers(ctx context.Context) ([]*model.LimitedTimeOffer, error)
}

type adminUC struct {
	catalog     repository.CatalogRepository
	promos      repository.PromoRepository
	tasks       repository.TaskRepository
	feedback    repository.FeedbackRepository
	orders      repository.OrderRepository
	operatorIDs map[int64]struct{}
	log         *zerolog.Logger
}

func NewAdminUseCase(
	catalog repository.CatalogRepository,
	promos repository.PromoRepository,
	tasks repository.TaskRepository,
	feedback repository.FeedbackRepository,
	orders repository.OrderRepository,
	operatorIDs []int64,
	logger *zerolog.Logger,
) *adminUC {
	ops := make(map[int64]struct{}, len(operatorIDs))
	for _, id := range operatorIDs {
		ops[id] = struct{}{}
	}
	l := logger.With().Str("component", "AdminUC").Logger()
	return &adminUC{
		catalog:     catalog,
		promos:      promos,
		tasks:       tasks,
		feedback:    feedback,
		orders:      orders,
		operatorIDs: ops,
		log:         &l,
	}
}

func (u *adminUC) authorize(operatorID int64) error {
	if _, ok := u.operatorIDs[operatorID]; !ok {
		return domain.ErrUnauthorized
	}
	return nil
}

const promoFormHint = "CODE|discount|type|expiry|max_uses (e.g. WELCOME10|10|percent|2026-12-31|100)"

func (u *adminUC) CreatePromo(ctx context.Context, operatorID int64, form string) (*model.PromoCode, error) {
	if err := u.authorize(operatorID); err != nil {
		return nil, err
	}
	parts := splitForm(form, 5)
	if parts == nil {
		return nil, formErr(promoFormHint)
	}
	discount, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, formErr(promoFormHint)
	}
	expiry, err := parseDay(parts[3])
	if err != nil {
		return nil, formErr(promoFormHint)
	}
	maxUses, err := strconv.Atoi(parts[4])
	if err != nil {
		return nil, formErr(promoFormHint)
	}
	typ := model.PromoType(strings.ToLower(parts[2]))
	if typ == model.PromoAmount {
		discount = dollarsToCents(float64(discount))
	}
	promo, err := model.NewPromoCode(strings.ToUpper(parts[0]), discount, typ, expiry, maxUses, operatorID)
	if err != nil {
		return nil, formErr(promoFormHint)
	}
	if err := u.promos.Save(ctx, repository.NoTX, promo); err != nil {
		return nil, err
	}
	u.log.Info().Str("code", promo.Code).Int64("operator", operatorID).Msg("promo code created")
	return promo, nil
}

const optionFormHint = "service_type|option_type|name|price (e.g. album|album|New Album|25)"

func (u *adminUC) CreateServiceOption(ctx context.Context, operatorID int64, form string) (*model.ServiceOption, error) {
	if err := u.authorize(operatorID); err != nil {
		return nil, err
	}
	parts := splitForm(form, 4)
	if parts == nil {
		return nil, formErr(optionFormHint)
	}
	price, err := strconv.ParseFloat(parts[3], 64)
	if err != nil || price < 0 {
		return nil, formErr(optionFormHint)
	}
	opt := &model.ServiceOption{
		ServiceType: model.ServiceType(parts[0]),
		OptionType:  model.OptionType(parts[1]),
		Name:        parts[2],
		Price:       dollarsToCents(price),
	}
	if err := u.catalog.AddOption(ctx, repository.NoTX, opt); err != nil {
		return nil, err
	}
	return opt, nil
}

const bundleFormHint = "name|description|original_price|bundle_price|service:item:duration;service:item:duration"

func (u *adminUC) CreateBundle(ctx context.Context, operatorID int64, form string) (*model.Bundle, error) {
	if err := u.authorize(operatorID); err != nil {
		return nil, err
	}
	parts := splitForm(form, 5)
	if parts == nil {
		return nil, formErr(bundleFormHint)
	}
	original, err1 := strconv.ParseFloat(parts[2], 64)
	price, err2 := strconv.ParseFloat(parts[3], 64)
	if err1 != nil || err2 != nil || price <= 0 || original < price {
		return nil, formErr(bundleFormHint)
	}

	var items []model.BundleItem
	for _, raw := range strings.Split(parts[4], ";") {
		fields := strings.SplitN(strings.TrimSpace(raw), ":", 3)
		if len(fields) < 2 || fields[0] == "" || fields[1] == "" {
			return nil, formErr(bundleFormHint)
		}
		item := model.BundleItem{Service: model.ServiceType(fields[0]), ItemName: fields[1]}
		if len(fields) == 3 {
			item.Duration = fields[2]
		}
		items = append(items, item)
	}

	b := &model.Bundle{
		ID:                 uuid.NewString(),
		Name:               parts[0],
		Description:        parts[1],
		OriginalPrice:      dollarsToCents(original),
		BundlePrice:        dollarsToCents(price),
		DiscountPercentage: int(math.Round((original - price) / original * 100)),
		CreatedBy:          operatorID,
		CreatedAt:          time.Now(),
		Active:             true,
		Items:              items,
	}
	if err := u.catalog.SaveBundle(ctx, repository.NoTX, b); err != nil {
		return nil, err
	}
	u.log.Info().Str("bundle_id", b.ID).Int64("operator", operatorID).Msg("bundle created")
	return b, nil
}

const offerFormHint = "name|discount|type|expiry (e.g. Summer Sale|20|percent|2026-08-01)"

func (u *adminUC) CreateOffer(ctx context.Context, operatorID int64, form string) (*model.LimitedTimeOffer, error) {
	if err := u.authorize(operatorID); err != nil {
		return nil, err
	}
	parts := splitForm(form, 4)
	if parts == nil {
		return nil, formErr(offerFormHint)
	}
	discount, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || discount <= 0 {
		return nil, formErr(offerFormHint)
	}
	expiry, err := parseDay(parts[3])
	if err != nil {
		return nil, formErr(offerFormHint)
	}
	offer := &model.LimitedTimeOffer{
		ID:        uuid.NewString(),
		Name:      parts[0],
		Discount:  discount,
		Type:      model.PromoType(strings.ToLower(parts[2])),
		Expires:   expiry,
		CreatedBy: operatorID,
		CreatedAt: time.Now(),
	}
	if err := u.catalog.SaveOffer(ctx, repository.NoTX, offer); err != nil {
		return nil, err
	}
	return offer, nil
}

func (u *adminUC) ScheduleBroadcast(ctx context.Context, operatorID int64, message string, at time.Time) (*model.ScheduledTask, error) {
	if err := u.authorize(operatorID); err != nil {
		return nil, err
	}
	task, err := model.NewScheduledTask(uuid.NewString(), "broadcast", message, at, operatorID)
	if err != nil {
		return nil, err
	}
	if err := u.tasks.Save(ctx, repository.NoTX, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (u *adminUC) ListPromos(ctx context.Context, operatorID int64) ([]*model.PromoCode, error) {
	if err := u.authorize(operatorID); err != nil {
		return nil, err
	}
	return u.promos.ListAll(ctx, repository.NoTX)
}

func (u *adminUC) SaveFeedback(ctx context.Context, userID int64, text string) error {
	return u.feedback.Save(ctx, repository.NoTX, userID, text)
}

func (u *adminUC) PurchaseHistory(ctx context.Context, userID int64) ([]*model.Order, error) {
	return u.orders.ListByUser(ctx, repository.NoTX, userID)
}

func (u *adminUC) ListActiveOffers(ctx context.Context) ([]*model.LimitedTimeOffer, error) {
	return u.catalog.ListActiveOffers(ctx, repository.NoTX)
}

// --- form helpers ---

func splitForm(form string, want int) []string {
	parts := strings.Split(form, "|")
	if len(parts) != want {
		return nil
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return nil
		}
	}
	return parts
}

func formErr(hint string) error {
	return fmt.Errorf("%w: expected %s", domain.ErrValidation, hint)
}

func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func dollarsToCents(d float64) int64 {
	return int64(math.Round(d * 100))
}
