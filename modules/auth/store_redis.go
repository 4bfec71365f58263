package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const refreshKeyPrefix = "auth:refresh:"

// rotateScript is a compare-and-swap over the subject's chain head. Running
// it as a single script keeps rotation atomic across processes: concurrent
// refreshes with the same token serialize inside Redis, so exactly one
// rotates and the rest observe a reuse.
//
// Returns 0 when no chain exists, 1 on reuse (chain deleted), 2 on success.
const rotateScript = `
local current = redis.call("GET", KEYS[1])
if not current then
  return 0
end
if current ~= ARGV[1] then
  redis.call("DEL", KEYS[1])
  return 1
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
return 2
`

var rotateLua = redis.NewScript(rotateScript)

// RedisRefreshStore is the production RefreshStore. One key per subject,
// expiring with the refresh token itself.
type RedisRefreshStore struct {
	client redis.UniversalClient
}

// NewRedisRefreshStore creates a refresh store backed by the given client.
func NewRedisRefreshStore(client redis.UniversalClient) *RedisRefreshStore {
	return &RedisRefreshStore{client: client}
}

func (s *RedisRefreshStore) key(subjectID string) string {
	return refreshKeyPrefix + subjectID
}

func (s *RedisRefreshStore) Save(ctx context.Context, subjectID, tokenHash string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(subjectID), tokenHash, ttl).Err()
}

func (s *RedisRefreshStore) Rotate(ctx context.Context, subjectID, providedHash, nextHash string, ttl time.Duration) error {
	result, err := rotateLua.Run(ctx, s.client,
		[]string{s.key(subjectID)},
		providedHash, nextHash, ttl.Milliseconds(),
	).Int64()
	if err != nil {
		return errors.Join(ErrRefreshInvalid, err)
	}

	switch result {
	case 0:
		return ErrRefreshInvalid
	case 1:
		return ErrRefreshReuse
	default:
		return nil
	}
}

func (s *RedisRefreshStore) Revoke(ctx context.Context, subjectID string) error {
	return s.client.Del(ctx, s.key(subjectID)).Err()
}
