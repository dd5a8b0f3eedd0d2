package repository

import (
	"context"
	"time"

	"telegram-shop-bot/internal/domain/model"
)

// -----------------------------
// Orders
// -----------------------------

type OrderRepository interface {
	Save(ctx context.Context, tx Tx, o *model.Order) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Order, error)
	// FindLatestByUserAndStatus returns the most recent order in the given
	// status for a user; ErrNotFound when there is none.
	FindLatestByUserAndStatus(ctx context.Context, tx Tx, userID int64, status model.OrderStatus) (*model.Order, error)
	// FindCompletedSubscription locates the completed group order matching
	// the subscription name, most recent first. Used by renewal approvals.
	FindCompletedSubscription(ctx context.Context, tx Tx, userID int64, itemName string) (*model.Order, error)
	// UpdateStatusForward advances status only when the stored status is a
	// legal predecessor; returns false when the row was already past it.
	UpdateStatusForward(ctx context.Context, tx Tx, id string, from, to model.OrderStatus) (bool, error)
	// SetExpiry stores the expiry date and resets both reminder flags.
	SetExpiry(ctx context.Context, tx Tx, id string, expiry time.Time) error
	// MarkReminderSent flips one of the two renewal reminder flags:
	// kind is "renewal" or "final".
	MarkReminderSent(ctx context.Context, tx Tx, id string, kind string) error
	ListByUser(ctx context.Context, tx Tx, userID int64) ([]*model.Order, error)
	// ListActiveSubscriptions returns completed orders with a future expiry.
	ListActiveSubscriptions(ctx context.Context, tx Tx) ([]*model.Order, error)
}
