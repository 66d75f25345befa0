package service

import (
	"context"
	"fmt"
	"time"

	"stoutlog/logbook-service/internal/app/logbook/infrastructure"
	"stoutlog/logbook-service/internal/app/logbook/repository"
	"stoutlog/pkg/logger"
	"stoutlog/pkg/metrics"
)

// UploadSweeper удаляет изображения, на которые не ссылается ни один отзыв.
// Файлы моложе grace не трогаются: отзыв с ними может еще сохраняться.
type UploadSweeper struct {
	reviewRepo repository.ReviewRepository
	images     infrastructure.ImageStore
	grace      time.Duration
	now        func() time.Time
}

func NewUploadSweeper(reviewRepo repository.ReviewRepository, images infrastructure.ImageStore, grace time.Duration) *UploadSweeper {
	return &UploadSweeper{
		reviewRepo: reviewRepo,
		images:     images,
		grace:      grace,
		now:        time.Now,
	}
}

// Sweep возвращает количество удаленных файлов
func (s *UploadSweeper) Sweep(ctx context.Context) (int, error) {
	reviews, err := s.reviewRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list reviews: %w", err)
	}

	referenced := make(map[string]struct{}, len(reviews))
	for _, r := range reviews {
		if name := imageName(r.ImagePath); name != "" {
			referenced[name] = struct{}{}
		}
	}

	stored, err := s.images.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list images: %w", err)
	}

	cutoff := s.now().Add(-s.grace)
	removed := 0
	for _, img := range stored {
		if _, ok := referenced[img.Name]; ok {
			continue
		}
		if img.ModTime.After(cutoff) {
			continue
		}

		if err := s.images.Delete(ctx, img.Name); err != nil {
			logger.Warn().Err(err).Str("image", img.Name).Msg("Failed to delete orphaned image")
			continue
		}

		metrics.UploadsSwept.Inc()
		removed++
	}

	logger.Info().
		Int("checked", len(stored)).
		Int("removed", removed).
		Str("backend", s.images.Backend()).
		Msg("Upload sweep completed")

	return removed, nil
}
