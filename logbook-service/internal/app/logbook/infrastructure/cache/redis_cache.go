package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"stoutlog/logbook-service/internal/app/logbook/entity"
	"stoutlog/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

const reviewsCacheKey = "reviews:all"

// RedisReviewCache хранит весь список отзывов под одним ключом
type RedisReviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReviewCache(addr, password string, db int, ttl time.Duration) (*RedisReviewCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisReviewCacheWithClient(client, ttl), nil
}

func NewRedisReviewCacheWithClient(client *redis.Client, ttl time.Duration) *RedisReviewCache {
	return &RedisReviewCache{client: client, ttl: ttl}
}

func (c *RedisReviewCache) GetReviews(ctx context.Context) ([]entity.Review, error) {
	data, err := c.client.Get(ctx, reviewsCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss()
			return nil, nil
		}
		metrics.RecordCacheError("get")
		return nil, fmt.Errorf("failed to get reviews from cache: %w", err)
	}

	reviews := []entity.Review{}
	if err := json.Unmarshal(data, &reviews); err != nil {
		metrics.RecordCacheError("decode")
		return nil, fmt.Errorf("failed to unmarshal reviews: %w", err)
	}

	metrics.RecordCacheHit()
	return reviews, nil
}

func (c *RedisReviewCache) SetReviews(ctx context.Context, reviews []entity.Review) error {
	if reviews == nil {
		reviews = []entity.Review{}
	}

	data, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("failed to marshal reviews: %w", err)
	}

	if err := c.client.Set(ctx, reviewsCacheKey, data, c.ttl).Err(); err != nil {
		metrics.RecordCacheError("set")
		return fmt.Errorf("failed to set reviews in cache: %w", err)
	}

	return nil
}

func (c *RedisReviewCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, reviewsCacheKey).Err(); err != nil {
		metrics.RecordCacheError("invalidate")
		return fmt.Errorf("failed to delete reviews from cache: %w", err)
	}
	return nil
}

func (c *RedisReviewCache) Close() error {
	return c.client.Close()
}
