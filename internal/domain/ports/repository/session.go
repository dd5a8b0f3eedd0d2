package repository

import (
	"context"

	"telegram-shop-bot/internal/domain/model"
)

// SessionRepository is the port for the per-user conversational state
// machine. At most one session per user; storage is external so request
// handlers can scale horizontally.
type SessionRepository interface {
	Get(ctx context.Context, tgID int64) (*model.Session, error)
	Set(ctx context.Context, session *model.Session) error
	Clear(ctx context.Context, tgID int64) error
}
