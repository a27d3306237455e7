package cron

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Lock grants at most one worker a Lease at a time.
type Lock interface {
	TryLock(ctx context.Context) (Lease, bool, error)
}

// Lease is a held lock.
type Lease interface {
	Unlock(ctx context.Context) error
}

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	DelIfValue(ctx context.Context, key, value string) (bool, error)
}

// RedisLock stores a random owner token under key with a TTL so a crashed
// worker frees the lock on its own.
type RedisLock struct {
	store lockStore
	key   string
	ttl   time.Duration
}

func NewRedisLock(store lockStore, key string, ttl time.Duration) (*RedisLock, error) {
	if store == nil {
		return nil, errors.New("lock store required")
	}
	if key == "" {
		return nil, errors.New("lock key required")
	}
	if ttl <= 0 {
		return nil, errors.New("lock ttl must be positive")
	}
	return &RedisLock{store: store, key: key, ttl: ttl}, nil
}

func (l *RedisLock) TryLock(ctx context.Context) (Lease, bool, error) {
	token := uuid.NewString()
	ok, err := l.store.SetNX(ctx, l.key, token, l.ttl)
	if err != nil {
		return nil, false, fmt.Errorf("set lock %s: %w", l.key, err)
	}
	if !ok {
		return nil, false, nil
	}
	return &redisLease{store: l.store, key: l.key, token: token}, true, nil
}

type redisLease struct {
	store lockStore
	key   string
	token string
}

// Unlock deletes the key only while it still carries this lease's token.
// An expired lease that another worker has since taken is left alone.
func (l *redisLease) Unlock(ctx context.Context) error {
	if _, err := l.store.DelIfValue(ctx, l.key, l.token); err != nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}
