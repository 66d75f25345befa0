package repository

import (
	"context"
	"errors"

	"stoutlog/logbook-service/internal/app/logbook/entity"
)

var (
	// Стандартные ошибки репозитория для обработки в service layer
	ErrReviewNotFound = errors.New("review not found")
)

const (
	BackendFile     = "file"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
)

// ReviewRepository - хранилище отзывов; реализации взаимозаменяемы
type ReviewRepository interface {
	List(ctx context.Context) ([]entity.Review, error)
	GetByID(ctx context.Context, id string) (*entity.Review, error)
	// Create присваивает review.ID
	Create(ctx context.Context, review *entity.Review) error
	Update(ctx context.Context, review *entity.Review) error
	Delete(ctx context.Context, id string) error
}
