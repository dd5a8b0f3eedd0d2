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

var _ repository.CatalogRepository = (*PostgresCatalogRepo)(nil)

type PostgresCatalogRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCatalogRepo(pool *pgxpool.Pool) *PostgresCatalogRepo {
	return &PostgresCatalogRepo{pool: pool}
}

func (r *PostgresCatalogRepo) ListOptions(ctx context.Context, tx repository.Tx, service model.ServiceType, optType model.OptionType) ([]*model.ServiceOption, error) {
	rows, err := queryRows(ctx, r.pool, tx, `
SELECT id, service_type, option_type, name, price
  FROM service_options WHERE service_type=$1 AND option_type=$2 ORDER BY id
`, service, optType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.ServiceOption
	for rows.Next() {
		var o model.ServiceOption
		if err := rows.Scan(&o.ID, &o.ServiceType, &o.OptionType, &o.Name, &o.Price); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func (r *PostgresCatalogRepo) FindOption(ctx context.Context, tx repository.Tx, service model.ServiceType, optType model.OptionType, name string) (*model.ServiceOption, error) {
	row := pickRow(ctx, r.pool, tx, `
SELECT id, service_type, option_type, name, price
  FROM service_options WHERE service_type=$1 AND option_type=$2 AND name=$3
`, service, optType, name)
	var o model.ServiceOption
	if err := row.Scan(&o.ID, &o.ServiceType, &o.OptionType, &o.Name, &o.Price); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *PostgresCatalogRepo) AddOption(ctx context.Context, tx repository.Tx, o *model.ServiceOption) error {
	const q = `
INSERT INTO service_options (service_type, option_type, name, price)
VALUES ($1,$2,$3,$4)
ON CONFLICT (service_type, option_type, name) DO UPDATE SET price=$4
RETURNING id;
`
	return pickRow(ctx, r.pool, tx, q, o.ServiceType, o.OptionType, o.Name, o.Price).Scan(&o.ID)
}

func (r *PostgresCatalogRepo) CountOptions(ctx context.Context, tx repository.Tx) (int, error) {
	var n int
	if err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM service_options`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresCatalogRepo) ListBundles(ctx context.Context, tx repository.Tx) ([]*model.Bundle, error) {
	rows, err := queryRows(ctx, r.pool, tx, `
SELECT id, name, description, original_price, bundle_price, discount_percentage, created_by, created_at, active
  FROM bundles WHERE active=TRUE ORDER BY created_at
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Bundle
	for rows.Next() {
		var b model.Bundle
		if err := rows.Scan(&b.ID, &b.Name, &b.Description, &b.OriginalPrice, &b.BundlePrice, &b.DiscountPercentage, &b.CreatedBy, &b.CreatedAt, &b.Active); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, b := range out {
		items, err := r.bundleItems(ctx, tx, b.ID)
		if err != nil {
			return nil, err
		}
		b.Items = items
	}
	return out, nil
}

func (r *PostgresCatalogRepo) FindBundle(ctx context.Context, tx repository.Tx, id string) (*model.Bundle, error) {
	row := pickRow(ctx, r.pool, tx, `
SELECT id, name, description, original_price, bundle_price, discount_percentage, created_by, created_at, active
  FROM bundles WHERE id=$1
`, id)
	var b model.Bundle
	if err := row.Scan(&b.ID, &b.Name, &b.Description, &b.OriginalPrice, &b.BundlePrice, &b.DiscountPercentage, &b.CreatedBy, &b.CreatedAt, &b.Active); err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	items, err := r.bundleItems(ctx, tx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Items = items
	return &b, nil
}

func (r *PostgresCatalogRepo) bundleItems(ctx context.Context, tx repository.Tx, bundleID string) ([]model.BundleItem, error) {
	rows, err := queryRows(ctx, r.pool, tx, `
SELECT id, bundle_id, service, item_name, duration FROM bundle_items WHERE bundle_id=$1 ORDER BY id
`, bundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.BundleItem
	for rows.Next() {
		var it model.BundleItem
		if err := rows.Scan(&it.ID, &it.BundleID, &it.Service, &it.ItemName, &it.Duration); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresCatalogRepo) SaveBundle(ctx context.Context, tx repository.Tx, b *model.Bundle) error {
	const q = `
INSERT INTO bundles (id, name, description, original_price, bundle_price, discount_percentage, created_by, created_at, active)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
  name=$2, description=$3, original_price=$4, bundle_price=$5, discount_percentage=$6, active=$9;
`
	if _, err := execSQL(ctx, r.pool, tx, q, b.ID, b.Name, b.Description, b.OriginalPrice, b.BundlePrice, b.DiscountPercentage, b.CreatedBy, b.CreatedAt, b.Active); err != nil {
		return err
	}
	if _, err := execSQL(ctx, r.pool, tx, `DELETE FROM bundle_items WHERE bundle_id=$1`, b.ID); err != nil {
		return err
	}
	for _, it := range b.Items {
		if _, err := execSQL(ctx, r.pool, tx, `
INSERT INTO bundle_items (bundle_id, service, item_name, duration) VALUES ($1,$2,$3,$4)
`, b.ID, it.Service, it.ItemName, it.Duration); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresCatalogRepo) SaveOffer(ctx context.Context, tx repository.Tx, o *model.LimitedTimeOffer) error {
	const q = `
INSERT INTO limited_time_offers (id, name, discount, type, expires, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET name=$2, discount=$3, type=$4, expires=$5;
`
	_, err := execSQL(ctx, r.pool, tx, q, o.ID, o.Name, o.Discount, o.Type, o.Expires, o.CreatedBy, o.CreatedAt)
	return err
}

func (r *PostgresCatalogRepo) ListActiveOffers(ctx context.Context, tx repository.Tx) ([]*model.LimitedTimeOffer, error) {
	rows, err := queryRows(ctx, r.pool, tx, `
SELECT id, name, discount, type, expires, created_by, created_at
  FROM limited_time_offers WHERE expires > NOW() ORDER BY expires
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.LimitedTimeOffer
	for rows.Next() {
		var o model.LimitedTimeOffer
		if err := rows.Scan(&o.ID, &o.Name, &o.Discount, &o.Type, &o.Expires, &o.CreatedBy, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}
