package repository

import (
	"context"
	"time"

	"telegram-shop-bot/internal/domain/model"
)

// -----------------------------
// Scheduled broadcasts and feedback
// -----------------------------

type TaskRepository interface {
	Save(ctx context.Context, tx Tx, t *model.ScheduledTask) error
	ListDue(ctx context.Context, tx Tx, now time.Time) ([]*model.ScheduledTask, error)
	Delete(ctx context.Context, tx Tx, id string) error
}

type FeedbackRepository interface {
	Save(ctx context.Context, tx Tx, userID int64, text string) error
	ListByUser(ctx context.Context, tx Tx, userID int64) ([]*model.Feedback, error)
}
