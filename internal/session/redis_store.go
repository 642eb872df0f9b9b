package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tarabaho-web/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "tarabaho:session:"

// RedisStore keeps web sessions in Redis so that several server instances
// share them. Entries expire after ttl.
type RedisStore struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewRedisStore(client *goredis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, key string, sess *domain.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("session: redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: redis get: %w", err)
	}

	var sess domain.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("session: decode: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("session: redis del: %w", err)
	}
	return nil
}
