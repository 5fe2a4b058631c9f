package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrNoSession is returned when a session token is unknown or expired.
var ErrNoSession = fmt.Errorf("session not found")

// SessionManager keeps server-side sessions in Redis, keyed by an opaque
// token the client carries in a cookie.
type SessionManager struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSessionManager creates a SessionManager with the given TTL.
func NewSessionManager(rdb *redis.Client, ttl time.Duration) *SessionManager {
	return &SessionManager{rdb: rdb, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Create opens a session for the user and returns its token.
func (m *SessionManager) Create(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	err := m.rdb.Set(ctx, sessionKey(token), strconv.FormatInt(userID, 10), m.ttl).Err()
	if err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// Resolve returns the user id behind a session token and refreshes its TTL.
func (m *SessionManager) Resolve(ctx context.Context, token string) (int64, error) {
	val, err := m.rdb.Get(ctx, sessionKey(token)).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, ErrNoSession
		}
		return 0, fmt.Errorf("failed to look up session: %w", err)
	}

	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session value %q: %w", val, err)
	}

	// Sliding expiration: activity keeps the session alive.
	m.rdb.Expire(ctx, sessionKey(token), m.ttl)

	return userID, nil
}

// Destroy removes a session. Unknown tokens are not an error.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if err := m.rdb.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
