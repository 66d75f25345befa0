package repository

import (
	"context"
	"errors"
	"fmt"

	"stoutlog/logbook-service/internal/app/logbook/entity"
	"stoutlog/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// postgresReviewRepository реализует ReviewRepository для PostgreSQL через GORM
type postgresReviewRepository struct {
	db *gorm.DB
}

func NewPostgresReviewRepository(db *gorm.DB) ReviewRepository {
	return &postgresReviewRepository{db: db}
}

// AutoMigrate создает таблицу reviews и индекс по date
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&entity.Review{}); err != nil {
		return fmt.Errorf("failed to migrate reviews table: %w", err)
	}
	return nil
}

func (r *postgresReviewRepository) List(ctx context.Context) ([]entity.Review, error) {
	timer := metrics.NewStoreTimer(BackendPostgres, metrics.StoreOpList)

	reviews := []entity.Review{}
	result := r.db.WithContext(ctx).Order("date DESC").Order("id DESC").Find(&reviews)
	if result.Error != nil {
		return nil, timer.Done(fmt.Errorf("failed to list reviews: %w", result.Error))
	}

	return reviews, timer.Done(nil)
}

func (r *postgresReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	timer := metrics.NewStoreTimer(BackendPostgres, metrics.StoreOpGet)

	var review entity.Review
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&review)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, timer.Done(ErrReviewNotFound)
		}
		return nil, timer.Done(fmt.Errorf("failed to get review: %w", result.Error))
	}

	return &review, timer.Done(nil)
}

func (r *postgresReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewStoreTimer(BackendPostgres, metrics.StoreOpCreate)

	review.ID = uuid.NewString()

	if result := r.db.WithContext(ctx).Create(review); result.Error != nil {
		return timer.Done(fmt.Errorf("failed to create review: %w", result.Error))
	}

	return timer.Done(nil)
}

// Update обновляет все поля кроме id и date; map нужен, чтобы записались нулевые значения
func (r *postgresReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewStoreTimer(BackendPostgres, metrics.StoreOpUpdate)

	result := r.db.WithContext(ctx).
		Model(&entity.Review{}).
		Where("id = ?", review.ID).
		Updates(map[string]interface{}{
			"name":            review.Name,
			"rating_guinness": review.RatingGuinness,
			"rating_pour":     review.RatingPour,
			"rating_service":  review.RatingService,
			"smoking":         review.Smoking,
			"price":           review.Price,
			"comment":         review.Comment,
			"image_path":      review.ImagePath,
		})

	if result.Error != nil {
		return timer.Done(fmt.Errorf("failed to update review: %w", result.Error))
	}

	if result.RowsAffected == 0 {
		return timer.Done(ErrReviewNotFound)
	}

	return timer.Done(nil)
}

func (r *postgresReviewRepository) Delete(ctx context.Context, id string) error {
	timer := metrics.NewStoreTimer(BackendPostgres, metrics.StoreOpDelete)

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Review{})
	if result.Error != nil {
		return timer.Done(fmt.Errorf("failed to delete review: %w", result.Error))
	}

	if result.RowsAffected == 0 {
		return timer.Done(ErrReviewNotFound)
	}

	return timer.Done(nil)
}
