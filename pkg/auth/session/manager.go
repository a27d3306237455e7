package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
)

var ErrSessionNotFound = errors.New("session not found")

// Record is the server-side state of an admin session.
type Record struct {
	ID        string    `json:"id"`
	IsAdmin   bool      `json:"is_admin"`
	LoginTime time.Time `json:"login_time"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether now is past ExpiresAt. The boundary itself is
// still valid.
func (r Record) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// Store is the slice of the Redis client the manager needs.
type Store interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AdminSessionKey(sessionID string) string
}

// Manager keeps admin session records as JSON under per-session keys.
type Manager struct {
	store Store
}

func NewManager(store Store) (*Manager, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	return &Manager{store: store}, nil
}

// Create writes rec with a key TTL that should match the remaining lifetime.
func (m *Manager) Create(ctx context.Context, rec Record, ttl time.Duration) error {
	switch {
	case strings.TrimSpace(rec.ID) == "":
		return errors.New("session id is required")
	case ttl <= 0:
		return errors.New("session ttl must be positive")
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return m.store.Set(ctx, m.store.AdminSessionKey(rec.ID), payload, ttl)
}

// Load returns ErrSessionNotFound for a missing key. A payload that does not
// decode to the requested session is purged and also reported as not found,
// so a corrupt entry logs the admin out instead of failing every request.
func (m *Manager) Load(ctx context.Context, sessionID string) (*Record, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrSessionNotFound
	}
	key := m.store.AdminSessionKey(sessionID)
	raw, err := m.store.Get(ctx, key)
	if errors.Is(err, redislib.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.ID != sessionID {
		if delErr := m.store.Del(ctx, key); delErr != nil {
			return nil, fmt.Errorf("purge unreadable session: %w", delErr)
		}
		return nil, ErrSessionNotFound
	}
	return &rec, nil
}

// Revoke is idempotent.
func (m *Manager) Revoke(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return errors.New("session id is required")
	}
	return m.store.Del(ctx, m.store.AdminSessionKey(sessionID))
}

// NewSessionID is used as both the JWT jti and the Redis key suffix.
func NewSessionID() string {
	return uuid.NewString()
}
