package model

import (
	"time"

	"telegram-shop-bot/internal/domain"
)

// User is a domain entity representing a Telegram user in our system.
// Users are created on first contact and never hard-deleted.
type User struct {
	TelegramID   int64
	Username     string
	FirstName    string
	Language     string
	JoinedAt     time.Time
	LastActiveAt time.Time
}

func NewUser(tgID int64, username, firstName string) (*User, error) {
	if tgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &User{
		TelegramID:   tgID,
		Username:     username,
		FirstName:    firstName,
		Language:     "en",
		JoinedAt:     now,
		LastActiveAt: now,
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.TelegramID == 0 }
func (u *User) Touch()       { u.LastActiveAt = time.Now() }
