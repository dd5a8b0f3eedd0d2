package repository

import (
	"context"

	"telegram-shop-bot/internal/domain/model"
)

// -----------------------------
// Transactions
// -----------------------------

type TransactionRepository interface {
	Save(ctx context.Context, tx Tx, t *model.Transaction) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Transaction, error)
	// UpdateStatusForward advances status only when the stored status still
	// precedes `to` in the lifecycle ordering. Returns false on a no-op
	// (replayed operator tap, already-terminal row).
	UpdateStatusForward(ctx context.Context, tx Tx, id string, from, to model.OrderStatus) (bool, error)
	ListByUser(ctx context.Context, tx Tx, userID int64) ([]*model.Transaction, error)
}
