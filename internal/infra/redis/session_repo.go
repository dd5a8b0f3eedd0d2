package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-shop-bot/internal/domain/model"
	"telegram-shop-bot/internal/domain/ports/repository"
)

var _ repository.SessionRepository = (*SessionRepo)(nil)

// SessionRepo keeps per-user purchase-flow sessions in Redis. A missing
// key is not an error: callers get a fresh idle session, which makes
// expired sessions indistinguishable from never-started ones.
type SessionRepo struct {
	client *Client
	ttl    time.Duration
}

func NewSessionRepo(client *Client, ttl time.Duration) *SessionRepo {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionRepo{client: client, ttl: ttl}
}

func sessionKey(tgID int64) string {
	return fmt.Sprintf("session:%d", tgID)
}

func (s *SessionRepo) Get(ctx context.Context, tgID int64) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(tgID))
	if err != nil {
		if IsNil(err) {
			return model.NewSession(tgID), nil
		}
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionRepo) Set(ctx context.Context, sess *model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(sess.UserID), data, s.ttl)
}

func (s *SessionRepo) Clear(ctx context.Context, tgID int64) error {
	return s.client.Del(ctx, sessionKey(tgID))
}
