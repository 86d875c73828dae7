package session

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/maviontech/project-management/internal"
)

const keyPrefix = "pm:session:"

// RedisStore keeps sessions in redis under an opaque random token, so any
// instance behind a load balancer can resolve them and logout is immediate.
type RedisStore struct {
	client *redis.Client
	opts   Options
}

func NewRedisStore(client *redis.Client, opts Options) *RedisStore {
	return &RedisStore{client: client, opts: opts}
}

func (s *RedisStore) Create(ctx context.Context, p *internal.Principal) (string, error) {
	token := uuid.NewString()

	payload, err := json.Marshal(p)
	if err != nil {
		return "", err
	}

	if err := s.client.Set(ctx, keyPrefix+token, payload, s.opts.ttl()).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisStore) Get(ctx context.Context, token string) (*internal.Principal, error) {
	if token == "" {
		return nil, internal.ErrSessionExpired
	}

	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, internal.ErrSessionExpired
		}
		return nil, internal.ErrServiceUnavailable.WithCause(err)
	}

	var p internal.Principal
	if err := json.Unmarshal(payload, &p); err != nil {
		// corrupt session data: treat as logged out rather than failing
		return nil, internal.ErrSessionExpired
	}
	return &p, nil
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}
