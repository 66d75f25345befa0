package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"stoutlog/logbook-service/internal/app/logbook/entity"
	"stoutlog/logbook-service/internal/app/logbook/infrastructure"
	"stoutlog/logbook-service/internal/app/logbook/repository"
	"stoutlog/pkg/logger"
	"stoutlog/pkg/metrics"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrReviewNotFound = errors.New("review not found")
	ErrImageNotFound  = errors.New("image not found")
)

// ReviewService обрабатывает бизнес-логику журнала
// Координирует хранилище, кеш списка, загрузку изображений и Kafka
type ReviewService struct {
	reviewRepo    repository.ReviewRepository
	cache         infrastructure.ReviewCache
	kafkaProducer infrastructure.MessagePublisher
	uploader      *Uploader
	images        infrastructure.ImageStore
	now           func() time.Time
}

// NewReviewService создает новый сервис отзывов с внедрением зависимостей
// cache и kafkaProducer могут быть nil - тогда используются no-op реализации
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	cache infrastructure.ReviewCache,
	kafkaProducer infrastructure.MessagePublisher,
	images infrastructure.ImageStore,
) *ReviewService {
	if cache == nil {
		cache = infrastructure.NoopCache{}
	}
	if kafkaProducer == nil {
		kafkaProducer = infrastructure.NoopPublisher{}
	}

	return &ReviewService{
		reviewRepo:    reviewRepo,
		cache:         cache,
		kafkaProducer: kafkaProducer,
		uploader:      NewUploader(images),
		images:        images,
		now:           time.Now,
	}
}

// ListReviews возвращает все отзывы с производными метриками
func (s *ReviewService) ListReviews(ctx context.Context) ([]entity.ReviewView, error) {
	reviews, err := s.loadReviews(ctx)
	if err != nil {
		return nil, err
	}
	return ComposeViews(reviews), nil
}

// ListPlaces группирует отзывы по заведению и фильтрует по подстроке q
func (s *ReviewService) ListPlaces(ctx context.Context, query string) ([]entity.Place, error) {
	reviews, err := s.loadReviews(ctx)
	if err != nil {
		return nil, err
	}
	return FilterPlaces(GroupPlaces(reviews), query), nil
}

func (s *ReviewService) GetSummary(ctx context.Context) (*entity.Summary, error) {
	reviews, err := s.loadReviews(ctx)
	if err != nil {
		return nil, err
	}
	summary := Summarize(reviews)
	return &summary, nil
}

// CreateReview создает новый отзыв
// 1. Сохраняет изображение, если оно передано
// 2. Сохраняет отзыв с сегодняшней датой
// 3. Сбрасывает кеш и отправляет REVIEW_CREATED в Kafka
func (s *ReviewService) CreateReview(ctx context.Context, draft *entity.ReviewDraft, image *entity.ImageUpload) (*entity.Review, error) {
	review := &entity.Review{
		Date: s.now().Format(entity.DateLayout),
	}
	review.ApplyDraft(draft)

	if image != nil {
		path, err := s.uploader.Upload(ctx, image)
		if err != nil {
			return nil, err
		}
		review.ImagePath = path
	}

	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	metrics.ReviewsCreated.Inc()
	metrics.RecordRatings(review.RatingGuinness, review.RatingPour, review.RatingService)

	s.invalidateCache(ctx)
	s.publishReviewEvent(ctx, entity.EventReviewCreated, review)

	return review, nil
}

// UpdateReview заменяет поля отзыва; id и date сохраняются,
// imagePath меняется только при новой загрузке
func (s *ReviewService) UpdateReview(ctx context.Context, reviewID string, draft *entity.ReviewDraft, image *entity.ImageUpload) (*entity.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	review.ApplyDraft(draft)

	if image != nil {
		path, err := s.uploader.Upload(ctx, image)
		if err != nil {
			return nil, err
		}
		review.ImagePath = path
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.invalidateCache(ctx)
	s.publishReviewEvent(ctx, entity.EventReviewUpdated, review)

	return review, nil
}

// DeleteReview удаляет отзыв; изображение остается до очистки планировщиком
func (s *ReviewService) DeleteReview(ctx context.Context, reviewID string) error {
	if err := s.reviewRepo.Delete(ctx, reviewID); err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to delete review: %w", err)
	}

	metrics.ReviewsDeleted.Inc()

	s.invalidateCache(ctx)
	s.publishReviewEvent(ctx, entity.EventReviewDeleted, &entity.Review{ID: reviewID})

	return nil
}

func (s *ReviewService) OpenImage(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := s.images.Open(ctx, name)
	if err != nil {
		if errors.Is(err, infrastructure.ErrImageNotFound) {
			return nil, ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	return rc, nil
}

// InvalidateCache сбрасывает кеш списка; вызывается и при внешнем изменении файла данных
func (s *ReviewService) InvalidateCache(ctx context.Context) {
	s.invalidateCache(ctx)
}

// loadReviews читает список из кеша, при промахе - из хранилища.
// Ошибки кеша не критичны: хранилище остается источником истины.
func (s *ReviewService) loadReviews(ctx context.Context) ([]entity.Review, error) {
	cached, err := s.cache.GetReviews(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read reviews from cache")
	}
	if cached != nil {
		return cached, nil
	}

	reviews, err := s.reviewRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	if err := s.cache.SetReviews(ctx, reviews); err != nil {
		logger.Warn().Err(err).Msg("Failed to store reviews in cache")
	}

	return reviews, nil
}

func (s *ReviewService) invalidateCache(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate reviews cache")
	}
}

// publishReviewEvent отправляет событие об отзыве в Kafka
// Отзыв уже сохранен, поэтому ошибка только логируется
func (s *ReviewService) publishReviewEvent(ctx context.Context, eventType string, review *entity.Review) {
	event := entity.ReviewEvent{
		EventType: eventType,
		ReviewID:  review.ID,
		Name:      review.Name,
		Timestamp: s.now(),
	}
	if eventType != entity.EventReviewDeleted {
		event.Score = round1(Score(review))
	}

	eventData, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Str("review_id", review.ID).Msg("Failed to marshal review event")
		return
	}

	// ключ = ReviewID для партиционирования
	if err := s.kafkaProducer.PublishMessage(ctx, event.ReviewID, eventData); err != nil {
		logger.Warn().Err(err).
			Str("event_type", eventType).
			Str("review_id", review.ID).
			Msg("Failed to publish review event")
	}
}
