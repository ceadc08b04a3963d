package conversation

import (
	"context"
	"sync"
	"time"

	"github.com/victorhinojosa/voice-ivr-payment/pkg/utils"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// TurnLocker serializes turns for a single call id. Turns for different
// call ids must not block each other; there is no global lock.
type TurnLocker interface {
	// Lock blocks until the call's lock is held or ctx is done.
	// The returned func releases the lock.
	Lock(ctx context.Context, callID string) (func(), error)
}

// MemoryLocker is an in-process keyed mutex, created on demand per call id.
// Sufficient for single-process deployments and tests.
type MemoryLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{held: map[string]chan struct{}{}}
}

func (l *MemoryLocker) Lock(ctx context.Context, callID string) (func(), error) {
	for {
		l.mu.Lock()
		ch, taken := l.held[callID]
		if !taken {
			done := make(chan struct{})
			l.held[callID] = done
			l.mu.Unlock()
			return func() {
				l.mu.Lock()
				delete(l.held, callID)
				l.mu.Unlock()
				close(done)
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ch:
			// holder released; race for it again
		}
	}
}

const (
	redisLockPrefix     = "call:turn:"
	redisLockTTL        = 30 * time.Second
	redisLockRetryEvery = 50 * time.Millisecond
)

// RedisLocker serializes turns across processes using a token-guarded
// SET NX lock with TTL. The TTL bounds how long a crashed holder can block
// a call's turns.
type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLocker(rdb *redis.Client) *RedisLocker {
	return &RedisLocker{rdb: rdb, ttl: redisLockTTL}
}

func (l *RedisLocker) Lock(ctx context.Context, callID string) (func(), error) {
	key := redisLockPrefix + callID
	token := uuid.NewString()

	for {
		ok, err := utils.AcquireKeyLock(ctx, l.rdb, key, token, l.ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = utils.ReleaseKeyLock(releaseCtx, l.rdb, key, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(redisLockRetryEvery):
		}
	}
}
