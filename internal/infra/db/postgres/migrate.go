package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		telegram_id    BIGINT PRIMARY KEY,
		username       TEXT NOT NULL DEFAULT '',
		first_name     TEXT NOT NULL DEFAULT '',
		language       TEXT NOT NULL DEFAULT 'en',
		joined_at      TIMESTAMPTZ NOT NULL,
		last_active_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id                    TEXT PRIMARY KEY,
		user_id               BIGINT NOT NULL,
		service_type          TEXT NOT NULL,
		item_name             TEXT NOT NULL DEFAULT '',
		duration              TEXT NOT NULL DEFAULT '',
		price                 BIGINT NOT NULL,
		original_price        BIGINT NOT NULL,
		promo_code            TEXT NOT NULL DEFAULT '',
		discount_amount       BIGINT NOT NULL DEFAULT 0,
		bundle_id             TEXT NOT NULL DEFAULT '',
		status                TEXT NOT NULL,
		created_at            TIMESTAMPTZ NOT NULL,
		expiry_date           TIMESTAMPTZ,
		renewal_reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
		final_reminder_sent   BOOLEAN NOT NULL DEFAULT FALSE,
		auto_renew            BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders (user_id, status, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id              TEXT PRIMARY KEY,
		user_id         BIGINT NOT NULL,
		username        TEXT NOT NULL DEFAULT '',
		service_type    TEXT NOT NULL,
		amount          BIGINT NOT NULL,
		original_amount BIGINT NOT NULL,
		payment_method  TEXT NOT NULL DEFAULT '',
		payment_type    TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL,
		promo_code      TEXT NOT NULL DEFAULT '',
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user ON transactions (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS pending_payments (
		transaction_id    TEXT PRIMARY KEY,
		user_id           BIGINT NOT NULL,
		service_type      TEXT NOT NULL,
		price             BIGINT NOT NULL,
		created_at        TIMESTAMPTZ NOT NULL,
		reminder_1_sent   BOOLEAN NOT NULL DEFAULT FALSE,
		reminder_2_sent   BOOLEAN NOT NULL DEFAULT FALSE,
		reminder_3_sent   BOOLEAN NOT NULL DEFAULT FALSE,
		payment_confirmed BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS promo_codes (
		code       TEXT PRIMARY KEY,
		discount   BIGINT NOT NULL,
		type       TEXT NOT NULL,
		expires    TIMESTAMPTZ NOT NULL,
		uses       INT NOT NULL DEFAULT 0,
		max_uses   INT NOT NULL,
		created_by BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS applied_promos (
		user_id    BIGINT NOT NULL,
		code       TEXT NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (user_id, code)
	)`,
	`CREATE TABLE IF NOT EXISTS service_options (
		id           BIGSERIAL PRIMARY KEY,
		service_type TEXT NOT NULL,
		option_type  TEXT NOT NULL,
		name         TEXT NOT NULL,
		price        BIGINT NOT NULL DEFAULT 0,
		UNIQUE (service_type, option_type, name)
	)`,
	`CREATE TABLE IF NOT EXISTS bundles (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		original_price      BIGINT NOT NULL,
		bundle_price        BIGINT NOT NULL,
		discount_percentage INT NOT NULL DEFAULT 0,
		created_by          BIGINT NOT NULL DEFAULT 0,
		created_at          TIMESTAMPTZ NOT NULL,
		active              BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS bundle_items (
		id        BIGSERIAL PRIMARY KEY,
		bundle_id TEXT NOT NULL REFERENCES bundles(id) ON DELETE CASCADE,
		service   TEXT NOT NULL,
		item_name TEXT NOT NULL,
		duration  TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS limited_time_offers (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		discount   BIGINT NOT NULL,
		type       TEXT NOT NULL,
		expires    TIMESTAMPTZ NOT NULL,
		created_by BIGINT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scheduled_tasks (
		id             TEXT PRIMARY KEY,
		type           TEXT NOT NULL,
		message        TEXT NOT NULL,
		scheduled_time TIMESTAMPTZ NOT NULL,
		created_by     BIGINT NOT NULL DEFAULT 0,
		created_at     TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL,
		text       TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

type seedOption struct {
	service string
	optType string
	name    string
	price   int64 // cents
}

var defaultOptions = []seedOption{
	{"video_call", "duration", "15 min", 1000},
	{"video_call", "duration", "30 min", 1500},
	{"video_call", "duration", "60 min", 2500},
	{"group", "name", "Exclusive", 0},
	{"group", "name", "Inner Circle", 0},
	{"group", "duration", "2 Months", 2000},
	{"group", "duration", "6 Months", 5000},
	{"group", "duration", "12 Months", 9000},
	{"private_chat", "duration", "2 Hr", 2000},
	{"private_chat", "duration", "4 Hr", 3500},
	{"private_chat", "type", "Premium Chat", 6000},
	{"private_chat", "type", "Standard Chat", 3500},
	{"renewal", "name", "Exclusive", 2000},
	{"renewal", "name", "Inner Circle", 2000},
	{"album", "album", "Photo Collection (300+)", 3000},
	{"album", "album", "Photo + Video Collection (800+)", 6000},
	{"album", "album", "Exclusive Video Set (50)", 5000},
	{"album", "album", "Master Album (All-in-One)", 9000},
}

// Migrate creates all tables and seeds the default catalog when the
// service_options table is empty. Called once at startup; failure is fatal
// for the caller.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log *zerolog.Logger) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return seedDefaults(ctx, pool, log)
}

func seedDefaults(ctx context.Context, pool *pgxpool.Pool, log *zerolog.Logger) error {
	var n int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM service_options`).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		for _, o := range defaultOptions {
			if _, err := pool.Exec(ctx, `
				INSERT INTO service_options (service_type, option_type, name, price)
				VALUES ($1,$2,$3,$4) ON CONFLICT DO NOTHING
			`, o.service, o.optType, o.name, o.price); err != nil {
				return err
			}
		}
		log.Info().Int("options", len(defaultOptions)).Msg("seeded default service options")
	}

	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM bundles`).Scan(&n); err != nil {
		return err
	}
	if n != 0 {
		return nil
	}
	now := time.Now()
	type seedItem struct{ service, item, duration string }
	bundles := []struct {
		id, name, desc string
		original       int64
		price          int64
		discount       int
		items          []seedItem
	}{
		{"bundle1", "Starter Bundle", "2 Months Group + 1 Album", 5000, 4000, 20, []seedItem{
			{"group", "Exclusive", "2 Months"},
			{"album", "Photo Collection (300+)", ""},
		}},
		{"bundle2", "Premium Bundle", "6 Months Group + Master Album", 14000, 11000, 21, []seedItem{
			{"group", "Inner Circle", "6 Months"},
			{"album", "Master Album (All-in-One)", ""},
		}},
	}
	for _, b := range bundles {
		if _, err := pool.Exec(ctx, `
			INSERT INTO bundles (id, name, description, original_price, bundle_price, discount_percentage, created_by, created_at, active)
			VALUES ($1,$2,$3,$4,$5,$6,0,$7,TRUE) ON CONFLICT (id) DO NOTHING
		`, b.id, b.name, b.desc, b.original, b.price, b.discount, now); err != nil {
			return err
		}
		for _, it := range b.items {
			if _, err := pool.Exec(ctx, `
				INSERT INTO bundle_items (bundle_id, service, item_name, duration) VALUES ($1,$2,$3,$4)
			`, b.id, it.service, it.item, it.duration); err != nil {
				return err
			}
		}
	}
	log.Info().Int("bundles", len(bundles)).Msg("seeded default bundles")
	return nil
}
