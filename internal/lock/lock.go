// Package lock provides best-effort mutual exclusion for scheduled jobs so
// that only one replica runs a job per tick.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrHeld is returned by TryLock when another holder owns the key.
var ErrHeld = errors.New("lock held")

// Locker acquires and releases named locks with an expiry.
type Locker interface {
	// TryLock returns a token identifying this holder, or ErrHeld.
	TryLock(ctx context.Context, key string, ttl time.Duration) (string, error)
	// Unlock releases key if token still owns it.
	Unlock(ctx context.Context, key, token string) error
}

// ─── Redis ───────────────────────────────────────────────────────────────────

// Redis is a Locker backed by SET NX.
type Redis struct {
	rdb *redis.Client
}

// NewRedis returns a Locker using rdb.
func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (l *Redis) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrHeld
	}
	return token, nil
}

var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end`)

func (l *Redis) Unlock(ctx context.Context, key, token string) error {
	return unlockScript.Run(ctx, l.rdb, []string{key}, token).Err()
}

// ─── Local ───────────────────────────────────────────────────────────────────

// Local is an in-process Locker for single-replica deployments.
type Local struct {
	mu    sync.Mutex
	held  map[string]localEntry
	clock func() time.Time
}

type localEntry struct {
	token   string
	expires time.Time
}

// NewLocal returns an empty Local locker.
func NewLocal() *Local {
	return &Local{held: make(map[string]localEntry), clock: time.Now}
}

func (l *Local) TryLock(_ context.Context, key string, ttl time.Duration) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	if e, ok := l.held[key]; ok && now.Before(e.expires) {
		return "", ErrHeld
	}
	token := uuid.NewString()
	l.held[key] = localEntry{token: token, expires: now.Add(ttl)}
	return token, nil
}

func (l *Local) Unlock(_ context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.held[key]; ok && e.token == token {
		delete(l.held, key)
	}
	return nil
}
