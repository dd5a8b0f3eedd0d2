package repository

import (
	"context"

	"telegram-shop-bot/internal/domain/model"
)

// -----------------------------
// Pending payment ledger
// -----------------------------

// PendingPaymentRepository holds the abandonment-tracking ledger. It is a
// derived index over in-flight transactions: mutations are idempotent and
// losing an entry must never corrupt the order or transaction record.
type PendingPaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.PendingPayment) error
	Find(ctx context.Context, tx Tx, transactionID string) (*model.PendingPayment, error)
	// UpdateFlags persists reminder-sent and confirmed flags.
	UpdateFlags(ctx context.Context, tx Tx, p *model.PendingPayment) error
	Delete(ctx context.Context, tx Tx, transactionID string) error
	ListUnconfirmed(ctx context.Context, tx Tx) ([]*model.PendingPayment, error)
}
