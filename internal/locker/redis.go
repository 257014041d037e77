package locker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultLeaseTTL  = 10 * time.Second
	defaultRetryWait = 25 * time.Millisecond
	maxRetryWait     = 250 * time.Millisecond
)

// releaseScript deletes the key only when it still carries our token, so a
// lease that expired and was taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lease only while it still carries our token.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Redis is a lease lock shared by every instance talking to the same Redis.
// The TTL bounds how long a crashed holder can block a container; a live
// holder renews its lease every TTL/3 until it unlocks.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultLeaseTTL
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(name string) string {
	return fmt.Sprintf("%slock:%s", r.prefix, name)
}

func (r *Redis) Lock(ctx context.Context, name string) (Unlock, error) {
	key := r.key(name)
	token := uuid.NewString()
	wait := defaultRetryWait

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w: %w", name, ErrNotAcquired, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("acquire %s: %w: %w", name, ErrNotAcquired, ctx.Err())
		case <-timer.C:
		}
		if wait *= 2; wait > maxRetryWait {
			wait = maxRetryWait
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go r.renew(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			// The request context may already be cancelled; release regardless.
			releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, r.client, []string{key}, token).Err(); err != nil {
				zap.L().Warn("failed to release container lock", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}

// renew keeps the lease alive until stop is closed. It gives up once the
// key no longer carries token.
func (r *Redis) renew(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	interval := r.ttl / 3
	if interval <= 0 {
		interval = r.ttl
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), interval)
		n, err := renewScript.Run(ctx, r.client, []string{key}, token, r.ttl.Milliseconds()).Int()
		cancel()

		switch {
		case err != nil:
			zap.L().Warn("failed to renew container lock", zap.String("key", key), zap.Error(err))
		case n == 0:
			zap.L().Warn("container lock lease lost", zap.String("key", key))
			return
		}
	}
}
