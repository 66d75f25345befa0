package infrastructure

import (
	"context"

	"stoutlog/logbook-service/internal/app/logbook/entity"
)

// NoopPublisher используется, когда KAFKA_BROKERS не задан
type NoopPublisher struct{}

func (NoopPublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }

// NoopCache используется, когда REDIS_ADDR не задан: всегда промах
type NoopCache struct{}

func (NoopCache) GetReviews(ctx context.Context) ([]entity.Review, error) { return nil, nil }

func (NoopCache) SetReviews(ctx context.Context, reviews []entity.Review) error { return nil }

func (NoopCache) Invalidate(ctx context.Context) error { return nil }

func (NoopCache) Close() error { return nil }
