package otps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/dmitrijs2005/docvault/internal/server/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "otp"

type redisRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisRepository keeps each code under <prefix>:<email>:<code> with an
// optional TTL, plus a per-email set of keys for DeleteByEmail that expires
// together with the newest code.
// Issuing the same code twice for one email replaces the earlier record.
type RedisRepository struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisRepository returns a Redis-backed store. A zero ttl keeps codes
// until they are consumed.
func NewRedisRepository(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisRepository {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisRepository{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (r *RedisRepository) key(email, code string) string {
	return r.prefix + ":" + email + ":" + code
}

func (r *RedisRepository) indexKey(email string) string {
	return r.prefix + ":index:" + email
}

func (r *RedisRepository) Create(ctx context.Context, email string, code string) (*models.OneTimeCode, error) {
	rec := redisRecord{ID: uuid.NewString(), CreatedAt: r.now().UTC()}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode otp: %w", err)
	}

	key := r.key(email, code)
	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key, data, r.ttl)
		pipe.SAdd(ctx, r.indexKey(email), key)
		if r.ttl > 0 {
			// the newest code is the last to expire
			pipe.Expire(ctx, r.indexKey(email), r.ttl)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis error: %w", err)
	}

	return &models.OneTimeCode{ID: rec.ID, Email: email, Code: code, CreatedAt: rec.CreatedAt}, nil
}

func (r *RedisRepository) Find(ctx context.Context, email string, code string) (*models.OneTimeCode, error) {
	data, err := r.redis.Get(ctx, r.key(email, code)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode otp: %w", err)
	}

	return &models.OneTimeCode{ID: rec.ID, Email: email, Code: code, CreatedAt: rec.CreatedAt}, nil
}

func (r *RedisRepository) Delete(ctx context.Context, otp *models.OneTimeCode) error {
	key := r.key(otp.Email, otp.Code)
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SRem(ctx, r.indexKey(otp.Email), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}

func (r *RedisRepository) DeleteByEmail(ctx context.Context, email string) error {
	index := r.indexKey(email)
	keys, err := r.redis.SMembers(ctx, index).Result()
	if err != nil {
		return fmt.Errorf("redis error: %w", err)
	}

	keys = append(keys, index)
	if err := r.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis error: %w", err)
	}
	return nil
}
