package model

import (
	"time"

	"telegram-shop-bot/internal/domain"
)

// ScheduledTask is an admin-scheduled broadcast; delivered to all known
// users once its due time has passed, then removed.
type ScheduledTask struct {
	ID            string
	Type          string
	Message       string
	ScheduledTime time.Time
	CreatedBy     int64
	CreatedAt     time.Time
}

func NewScheduledTask(id, taskType, message string, at time.Time, createdBy int64) (*ScheduledTask, error) {
	if id == "" || message == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &ScheduledTask{
		ID:            id,
		Type:          taskType,
		Message:       message,
		ScheduledTime: at,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now(),
	}, nil
}

func (t *ScheduledTask) Due(now time.Time) bool { return !now.Before(t.ScheduledTime) }

// Feedback is free text a user sent through the feedback command.
type Feedback struct {
	ID        int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}
