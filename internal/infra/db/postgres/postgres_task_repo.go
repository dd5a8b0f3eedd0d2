package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-shop-bot/internal/domain"
	"telegram-shop-bot/internal/domain/model"
	"telegram-shop-bot/internal/domain/ports/repository"
)

var _ repository.TaskRepository = (*PostgresTaskRepo)(nil)

type PostgresTaskRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresTaskRepo(pool *pgxpool.Pool) *PostgresTaskRepo {
	return &PostgresTaskRepo{pool: pool}
}

func (r *PostgresTaskRepo) Save(ctx context.Context, tx repository.Tx, t *model.ScheduledTask) error {
	const q = `
INSERT INTO scheduled_tasks (id, type, message, scheduled_time, created_by, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET message=$3, scheduled_time=$4;
`
	_, err := execSQL(ctx, r.pool, tx, q, t.ID, t.Type, t.Message, t.ScheduledTime, t.CreatedBy, t.CreatedAt)
	return err
}

func (r *PostgresTaskRepo) ListDue(ctx context.Context, tx repository.Tx, now time.Time) ([]*model.ScheduledTask, error) {
	rows, err := queryRows(ctx, r.pool, tx, `
SELECT id, type, message, scheduled_time, created_by, created_at
  FROM scheduled_tasks WHERE scheduled_time <= $1 ORDER BY scheduled_time
`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.ScheduledTask
	for rows.Next() {
		var t model.ScheduledTask
		if err := rows.Scan(&t.ID, &t.Type, &t.Message, &t.ScheduledTime, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *PostgresTaskRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM scheduled_tasks WHERE id=$1`, id)
	return err
}
