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

var _ repository.OrderRepository = (*PostgresOrderRepo)(nil)

type PostgresOrderRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresOrderRepo(pool *pgxpool.Pool) *PostgresOrderRepo {
	return &PostgresOrderRepo{pool: pool}
}

const orderColumns = `
id, user_id, service_type, item_name, duration, price, original_price,
promo_code, discount_amount, bundle_id, status, created_at,
expiry_date, renewal_reminder_sent, final_reminder_sent, auto_renew`

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.ServiceType, &o.ItemName, &o.Duration, &o.Price, &o.OriginalPrice,
		&o.PromoCode, &o.DiscountAmount, &o.BundleID, &o.Status, &o.CreatedAt,
		&o.ExpiryDate, &o.RenewalReminderSent, &o.FinalReminderSent, &o.AutoRenew,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *PostgresOrderRepo) Save(ctx context.Context, tx repository.Tx, o *model.Order) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	const q = `
INSERT INTO orders (` + orderColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
ON CONFLICT (id) DO UPDATE SET
  status=$11, expiry_date=$13, renewal_reminder_sent=$14, final_reminder_sent=$15, auto_renew=$16;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		o.ID, o.UserID, o.ServiceType, o.ItemName, o.Duration, o.Price, o.OriginalPrice,
		o.PromoCode, o.DiscountAmount, o.BundleID, o.Status, o.CreatedAt,
		o.ExpiryDate, o.RenewalReminderSent, o.FinalReminderSent, o.AutoRenew,
	)
	return err
}

func (r *PostgresOrderRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Order, error) {
	return scanOrder(pickRow(ctx, r.pool, tx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
}

func (r *PostgresOrderRepo) FindLatestByUserAndStatus(ctx context.Context, tx repository.Tx, userID int64, status model.OrderStatus) (*model.Order, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 AND status=$2 ORDER BY created_at DESC LIMIT 1`
	return scanOrder(pickRow(ctx, r.pool, tx, q, userID, status))
}

func (r *PostgresOrderRepo) FindCompletedSubscription(ctx context.Context, tx repository.Tx, userID int64, itemName string) (*model.Order, error) {
	const q = `
SELECT ` + orderColumns + ` FROM orders
 WHERE user_id=$1 AND item_name=$2 AND service_type='group' AND status='completed'
 ORDER BY created_at DESC LIMIT 1`
	return scanOrder(pickRow(ctx, r.pool, tx, q, userID, itemName))
}

func (r *PostgresOrderRepo) UpdateStatusForward(ctx context.Context, tx repository.Tx, id string, from, to model.OrderStatus) (bool, error) {
	if !from.CanAdvanceTo(to) {
		return false, domain.ErrInvalidStatusChange
	}
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE orders SET status=$3 WHERE id=$1 AND status=$2`, id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresOrderRepo) SetExpiry(ctx context.Context, tx repository.Tx, id string, expiry time.Time) error {
	tag, err := execSQL(ctx, r.pool, tx, `
UPDATE orders SET expiry_date=$2, renewal_reminder_sent=FALSE, final_reminder_sent=FALSE WHERE id=$1
`, id, expiry)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresOrderRepo) MarkReminderSent(ctx context.Context, tx repository.Tx, id string, kind string) error {
	var q string
	switch kind {
	case "renewal":
		q = `UPDATE orders SET renewal_reminder_sent=TRUE WHERE id=$1`
	case "final":
		q = `UPDATE orders SET final_reminder_sent=TRUE WHERE id=$1`
	default:
		return fmt.Errorf("%w: reminder kind %q", domain.ErrInvalidArgument, kind)
	}
	_, err := execSQL(ctx, r.pool, tx, q, id)
	return err
}

func (r *PostgresOrderRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Order, error) {
	return r.list(ctx, tx, `SELECT `+orderColumns+` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`, userID)
}

func (r *PostgresOrderRepo) ListActiveSubscriptions(ctx context.Context, tx repository.Tx) ([]*model.Order, error) {
	const q = `
SELECT ` + orderColumns + ` FROM orders
 WHERE status='completed' AND expiry_date IS NOT NULL AND expiry_date > NOW()
 ORDER BY expiry_date`
	return r.list(ctx, tx, q)
}

func (r *PostgresOrderRepo) list(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.Order, error) {
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
