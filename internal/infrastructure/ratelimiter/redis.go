package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisOpTimeout  = 250 * time.Millisecond
	fieldTokens     = "tokens"
	fieldLastFillMs = "last_fill"
)

// redisStore shares buckets between replicas. Each bucket is a hash holding
// the token count and the last refill time.
type redisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

func NewRedisStore(client redis.UniversalClient, keyPrefix string) BucketStore {
	return &redisStore{client: client, keyPrefix: keyPrefix}
}

// NewRedisClient dials addr and pings it once.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  redisOpTimeout,
		WriteTimeout: redisOpTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func (s *redisStore) Load(key string) (bucketState, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	fields, err := s.client.HGetAll(ctx, s.keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return bucketState{}, ErrBucketMiss
		}
		return bucketState{}, err
	}
	if len(fields) == 0 {
		return bucketState{}, ErrBucketMiss
	}

	tokens, err := strconv.Atoi(fields[fieldTokens])
	if err != nil {
		return bucketState{}, fmt.Errorf("corrupt bucket %q: %w", key, err)
	}
	lastFill, err := strconv.ParseInt(fields[fieldLastFillMs], 10, 64)
	if err != nil {
		return bucketState{}, fmt.Errorf("corrupt bucket %q: %w", key, err)
	}

	return bucketState{tokens: tokens, lastFill: lastFill}, nil
}

func (s *redisStore) Save(key string, state bucketState, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	redisKey := s.keyPrefix + key
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, redisKey, fieldTokens, state.tokens, fieldLastFillMs, state.lastFill)
		if ttl > 0 {
			pipe.PExpire(ctx, redisKey, ttl)
		}
		return nil
	})
	return err
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
