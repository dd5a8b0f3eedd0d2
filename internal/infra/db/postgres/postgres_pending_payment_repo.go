package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-shop-bot/internal/domain"
	"telegram-shop-bot/internal/domain/model"
	"telegram-shop-bot/internal/domain/ports/repository"
)

var _ repository.PendingPaymentRepository = (*PostgresPendingPaymentRepo)(nil)

type PostgresPendingPaymentRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPendingPaymentRepo(pool *pgxpool.Pool) *PostgresPendingPaymentRepo {
	return &PostgresPendingPaymentRepo{pool: pool}
}

const pendingColumns = `
transaction_id, user_id, service_type, price, created_at,
reminder_1_sent, reminder_2_sent, reminder_3_sent, payment_confirmed`

func scanPending(row pgx.Row) (*model.PendingPayment, error) {
	var p model.PendingPayment
	err := row.Scan(
		&p.TransactionID, &p.UserID, &p.ServiceType, &p.Price, &p.CreatedAt,
		&p.Reminder1Sent, &p.Reminder2Sent, &p.Reminder3Sent, &p.Confirmed,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresPendingPaymentRepo) Save(ctx context.Context, tx repository.Tx, p *model.PendingPayment) error {
	const q = `
INSERT INTO pending_payments (` + pendingColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (transaction_id) DO NOTHING;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		p.TransactionID, p.UserID, p.ServiceType, p.Price, p.CreatedAt,
		p.Reminder1Sent, p.Reminder2Sent, p.Reminder3Sent, p.Confirmed,
	)
	return err
}

func (r *PostgresPendingPaymentRepo) Find(ctx context.Context, tx repository.Tx, transactionID string) (*model.PendingPayment, error) {
	return scanPending(pickRow(ctx, r.pool, tx, `SELECT `+pendingColumns+` FROM pending_payments WHERE transaction_id=$1`, transactionID))
}

func (r *PostgresPendingPaymentRepo) UpdateFlags(ctx context.Context, tx repository.Tx, p *model.PendingPayment) error {
	_, err := execSQL(ctx, r.pool, tx, `
UPDATE pending_payments
   SET reminder_1_sent=$2, reminder_2_sent=$3, reminder_3_sent=$4, payment_confirmed=$5
 WHERE transaction_id=$1
`, p.TransactionID, p.Reminder1Sent, p.Reminder2Sent, p.Reminder3Sent, p.Confirmed)
	return err
}

// Delete is idempotent: removing an entry that is already gone is not an error.
func (r *PostgresPendingPaymentRepo) Delete(ctx context.Context, tx repository.Tx, transactionID string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM pending_payments WHERE transaction_id=$1`, transactionID)
	return err
}

func (r *PostgresPendingPaymentRepo) ListUnconfirmed(ctx context.Context, tx repository.Tx) ([]*model.PendingPayment, error) {
	rows, err := queryRows(ctx, r.pool, tx, `
SELECT `+pendingColumns+` FROM pending_payments WHERE payment_confirmed=FALSE ORDER BY created_at
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.PendingPayment
	for rows.Next() {
		p, err := scanPending(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
