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

var _ repository.FeedbackRepository = (*PostgresFeedbackRepo)(nil)

type PostgresFeedbackRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresFeedbackRepo(pool *pgxpool.Pool) *PostgresFeedbackRepo {
	return &PostgresFeedbackRepo{pool: pool}
}

func (r *PostgresFeedbackRepo) Save(ctx context.Context, tx repository.Tx, userID int64, text string) error {
	_, err := execSQL(ctx, r.pool, tx, `
INSERT INTO feedback (user_id, text, created_at) VALUES ($1,$2,$3)
`, userID, text, time.Now())
	return err
}

func (r *PostgresFeedbackRepo) ListByUser(ctx context.Context, tx repository.Tx, userID int64) ([]*model.Feedback, error) {
	rows, err := queryRows(ctx, r.pool, tx, `
SELECT id, user_id, text, created_at FROM feedback WHERE user_id=$1 ORDER BY created_at DESC
`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Feedback
	for rows.Next() {
		var f model.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.Text, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrReadDatabaseRow, err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}
