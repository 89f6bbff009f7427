package daylock

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for attendance day locks.
	dayLockKeyPrefix = "att:daylock:"

	// lockTTL bounds how long a crashed holder can wedge a key.
	lockTTL = 10 * time.Second

	// retryInterval paces acquisition attempts while another holder owns
	// the key.
	retryInterval = 25 * time.Millisecond
)

// Redis is a DayLock shared across instances, built on SET NX marker keys
// with a TTL. Release deletes the key only when the caller still owns it,
// checked via a per-acquisition token.
type Redis struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed day lock.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// releaseScript deletes the lock key only if it still holds our token, so
// a holder whose TTL already expired cannot release a successor's lock.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func (r *Redis) Acquire(ctx context.Context, userID string, day time.Time) (func(), error) {
	key := dayLockKeyPrefix + Key(userID, day)
	token := uuid.NewString()

	for {
		ok, err := r.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}

	release := func() {
		_, _ = releaseScript.Run(context.Background(), r.client, []string{key}, token).Result()
	}
	return release, nil
}
