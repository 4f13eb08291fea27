package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pollInterval = 20 * time.Millisecond

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another holder is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func tick() <-chan time.Time {
	return time.After(pollInterval)
}

type redisLocker struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedis returns a lock shared by every replica talking to the same redis.
// ttl bounds how long a crashed holder can keep a key.
func NewRedis(client redis.UniversalClient, ttl time.Duration) Locker {
	return &redisLocker{client: client, ttl: ttl}
}

func (r *redisLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	token := uuid.NewString()
	held := make([]string, 0, len(keys))

	release := func() {
		// the request context may already be done
		c, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()

		for _, key := range held {
			if err := releaseScript.Run(c, r.client, []string{key}, token).Err(); err != nil {
				log.Error().Err(err).Str("key", key).Msg("failed to release lock")
			}
		}
	}

	for _, key := range normalize(keys) {
		if err := r.acquire(ctx, key, token); err != nil {
			release()

			return nil, err
		}

		held = append(held, key)
	}

	var once sync.Once

	return func() { once.Do(release) }, nil
}

func (r *redisLocker) acquire(ctx context.Context, key, token string) error {
	for {
		err := r.client.SetArgs(ctx, key, token, redis.SetArgs{Mode: "NX", TTL: r.ttl}).Err()

		switch {
		case err == nil:
			return nil
		case errors.Is(err, redis.Nil):
		default:
			return fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}

		select {
		case <-ctx.Done():
			return errors.Join(ErrNotAcquired, ctx.Err())
		case <-tick():
		}
	}
}
