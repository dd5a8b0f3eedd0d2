package repository

import (
	"context"

	"telegram-shop-bot/internal/domain/model"
)

// -----------------------------
// Promo codes
// -----------------------------

type PromoRepository interface {
	Save(ctx context.Context, tx Tx, p *model.PromoCode) error
	Find(ctx context.Context, tx Tx, code string) (*model.PromoCode, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.PromoCode, error)
	// Redeem increments the uses counter atomically, guarded by the
	// configured cap. Returns false once uses == max_uses.
	Redeem(ctx context.Context, tx Tx, code string) (bool, error)

	// Per-user active-promo set. The latest applied unexpired code is
	// consumed on the next purchase (single use per purchase).
	ApplyToUser(ctx context.Context, tx Tx, userID int64, code string) error
	LatestForUser(ctx context.Context, tx Tx, userID int64) (*model.AppliedPromo, error)
	RemoveFromUser(ctx context.Context, tx Tx, userID int64, code string) error
}
