package infrastructure

import (
	"context"
	"errors"
	"io"
	"time"

	"stoutlog/logbook-service/internal/app/logbook/entity"
)

var ErrImageNotFound = errors.New("image not found")

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
// Используется для dependency injection и упрощения тестирования
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// ReviewCache хранит полный список отзывов; сбрасывается целиком после любой мутации
type ReviewCache interface {
	// GetReviews возвращает nil, nil при промахе
	GetReviews(ctx context.Context) ([]entity.Review, error)
	SetReviews(ctx context.Context, reviews []entity.Review) error
	Invalidate(ctx context.Context) error
	Close() error
}

type StoredImage struct {
	Name    string
	ModTime time.Time
}

// ImageStore хранит загруженные изображения по сгенерированному имени
type ImageStore interface {
	Backend() string
	// Save возвращает количество записанных байт
	Save(ctx context.Context, name string, content io.Reader) (int64, error)
	// Open возвращает ErrImageNotFound, если файла нет
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]StoredImage, error)
}
