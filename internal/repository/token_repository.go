package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"premium_gallery/internal/domain/models"
	"premium_gallery/internal/storage"

	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"

// RedisSessionRepo keeps sessions in Redis as JSON under session:<token>.
type RedisSessionRepo struct {
	client redis.Cmdable
}

func NewRedisSessionRepo(client redis.Cmdable) *RedisSessionRepo {
	return &RedisSessionRepo{client: client}
}

func (r *RedisSessionRepo) SaveSession(ctx context.Context, token string, session models.Session, ttl time.Duration) error {
	const op = "repository.RedisSessionRepo.SaveSession"

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.client.Set(ctx, sessionKey(token), string(data), ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisSessionRepo) GetSession(ctx context.Context, token string) (models.Session, error) {
	const op = "repository.RedisSessionRepo.GetSession"

	val, err := r.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
		}
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	var session models.Session
	if err := json.Unmarshal(val, &session); err != nil {
		return models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return session, nil
}

// TouchSession extends the session TTL. A missing session is reported as
// ErrSessionNotFound.
func (r *RedisSessionRepo) TouchSession(ctx context.Context, token string, ttl time.Duration) error {
	const op = "repository.RedisSessionRepo.TouchSession"

	ok, err := r.client.Expire(ctx, sessionKey(token), ttl).Result()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return fmt.Errorf("%s: %w", op, storage.ErrSessionNotFound)
	}

	return nil
}

func (r *RedisSessionRepo) DeleteSession(ctx context.Context, token string) error {
	const op = "repository.RedisSessionRepo.DeleteSession"

	if err := r.client.Del(ctx, sessionKey(token)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func sessionKey(token string) string {
	return sessionPrefix + token
}
