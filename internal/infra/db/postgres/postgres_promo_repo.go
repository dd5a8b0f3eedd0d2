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

var _ repository.PromoRepository = (*PostgresPromoRepo)(nil)

type PostgresPromoRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresPromoRepo(pool *pgxpool.Pool) *PostgresPromoRepo {
	return &PostgresPromoRepo{pool: pool}
}

const promoColumns = `code, discount, type, expires, uses, max_uses, created_by, created_at`

func scanPromo(row pgx.Row) (*model.PromoCode, error) {
	var p model.PromoCode
	err := row.Scan(&p.Code, &p.Discount, &p.Type, &p.Expires, &p.Uses, &p.MaxUses, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PostgresPromoRepo) Save(ctx context.Context, tx repository.Tx, p *model.PromoCode) error {
	const q = `
INSERT INTO promo_codes (` + promoColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (code) DO UPDATE SET discount=$2, type=$3, expires=$4, max_uses=$6;
`
	_, err := execSQL(ctx, r.pool, tx, q, p.Code, p.Discount, p.Type, p.Expires, p.Uses, p.MaxUses, p.CreatedBy, p.CreatedAt)
	return err
}

func (r *PostgresPromoRepo) Find(ctx context.Context, tx repository.Tx, code string) (*model.PromoCode, error) {
	return scanPromo(pickRow(ctx, r.pool, tx, `SELECT `+promoColumns+` FROM promo_codes WHERE code=$1`, code))
}

func (r *PostgresPromoRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.PromoCode, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+promoColumns+` FROM promo_codes ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.PromoCode
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Redeem bumps the uses counter under the cap in a single guarded update, so
// two concurrent purchases can never push uses past max_uses.
func (r *PostgresPromoRepo) Redeem(ctx context.Context, tx repository.Tx, code string) (bool, error) {
	tag, err := execSQL(ctx, r.pool, tx, `
UPDATE promo_codes SET uses = uses + 1 WHERE code=$1 AND uses < max_uses
`, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresPromoRepo) ApplyToUser(ctx context.Context, tx repository.Tx, userID int64, code string) error {
	_, err := execSQL(ctx, r.pool, tx, `
INSERT INTO applied_promos (user_id, code, applied_at) VALUES ($1,$2,$3)
ON CONFLICT (user_id, code) DO UPDATE SET applied_at=$3
`, userID, code, time.Now())
	return err
}

func (r *PostgresPromoRepo) LatestForUser(ctx context.Context, tx repository.Tx, userID int64) (*model.AppliedPromo, error) {
	row := pickRow(ctx, r.pool, tx, `
SELECT user_id, code, applied_at FROM applied_promos WHERE user_id=$1 ORDER BY applied_at DESC LIMIT 1
`, userID)
	var a model.AppliedPromo
	if err := row.Scan(&a.UserID, &a.Code, &a.AppliedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *PostgresPromoRepo) RemoveFromUser(ctx context.Context, tx repository.Tx, userID int64, code string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM applied_promos WHERE user_id=$1 AND code=$2`, userID, code)
	return err
}
