package service

import (
	"context"
	"io"

	"stoutlog/logbook-service/internal/app/logbook/entity"
)

type ReviewServiceInterface interface {
	ListReviews(ctx context.Context) ([]entity.ReviewView, error)
	CreateReview(ctx context.Context, draft *entity.ReviewDraft, image *entity.ImageUpload) (*entity.Review, error)
	UpdateReview(ctx context.Context, reviewID string, draft *entity.ReviewDraft, image *entity.ImageUpload) (*entity.Review, error)
	DeleteReview(ctx context.Context, reviewID string) error
	ListPlaces(ctx context.Context, query string) ([]entity.Place, error)
	GetSummary(ctx context.Context) (*entity.Summary, error)
	OpenImage(ctx context.Context, name string) (io.ReadCloser, error)
}

type UploadSweeperInterface interface {
	Sweep(ctx context.Context) (int, error)
}
