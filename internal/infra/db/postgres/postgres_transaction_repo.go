package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-shop-bot/internal/domain"
	"telegram-shop-bot/internal/domain/model"
	"telegram-shop-bot/internal/domain/ports/repository"
)

var _ repository.TransactionRepository = (*PostgresTransactionRepo)(nil)

type PostgresTransactionRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresTransactionRepo(pool *pgxpool.Pool) *PostgresTransactionRepo {
	return &PostgresTransactionRepo{pool: pool}
}

const txnColumns = `
id, user_id, username, service_type, amount, original_amount,
payment_method, payment_type, status, promo_code, created_at, updated_at`

func scanTxn(row pgx.Row) (*model.Transaction, error) {
	var t model.Transaction
	err := row.Scan(
		&t.ID, &t.UserID, &t.Username, &t.ServiceType, &t.Amount, &t.OriginalAmount,
		&t.PaymentMethod, &t.PaymentType, &t.Status, &t.PromoCode, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *PostgresTransactionRepo) Save(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (` + txnColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (id) DO UPDATE SET status=$9, updated_at=$12;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		t.ID, t.UserID, t.Username, t.ServiceType, t.Amount, t.OriginalAmount,
		t.PaymentMethod, t.PaymentType, t.Status, t.PromoCode, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (r *PostgresTransactionRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Transaction, error) {
	return scanTxn(pickRow(ctx, r.pool, tx, `SELECT `+txnColumns+` FROM transactions WHERE id=$1`, id))
}

func (r *PostgresTransactionRepo) UpdateStatusForward(ctx context.Context, tx repository.Tx, id string, from, to model.OrderStatus) (bool, error) {
	if !from.CanAdvanceTo(to) {
		return false, domain.ErrInvalidStatusChange
	}
	tag, err := execSQL(ctx, r.pool, tx, `
UPDATE transactions SET status=$3, updated_at=$4 WHERE id=$1 AND status=$2
`, id, from, to, time.Now())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresTransactionRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Transaction, error) {
	rows, err := queryRows(ctx, r.pool, tx, `
SELECT `+txnColumns+` FROM transactions WHERE user_id=$1 ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Transaction
	for rows.Next() {
		t, err := scanTxn(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
