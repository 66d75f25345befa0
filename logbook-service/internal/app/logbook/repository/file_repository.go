package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"stoutlog/logbook-service/internal/app/logbook/entity"
	"stoutlog/pkg/metrics"
)

// fileReviewRepository хранит все отзывы одним JSON массивом.
// Каждая операция читает файл целиком и целиком его перезаписывает.
// mu сериализует циклы чтение-изменение-запись внутри процесса;
// другие процессы, пишущие в тот же файл, могут затереть изменения.
type fileReviewRepository struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// NewFileReviewRepository создает репозиторий поверх JSON файла по пути path
func NewFileReviewRepository(path string) ReviewRepository {
	return &fileReviewRepository{
		path: path,
		now:  time.Now,
	}
}

// List возвращает отзывы в порядке файла; пустой файл "[]" создается, если его нет
func (r *fileReviewRepository) List(ctx context.Context) ([]entity.Review, error) {
	timer := metrics.NewStoreTimer(BackendFile, metrics.StoreOpList)

	r.mu.Lock()
	defer r.mu.Unlock()

	reviews, err := r.read()
	if errors.Is(err, fs.ErrNotExist) {
		reviews = []entity.Review{}
		err = r.write(reviews)
	}
	if err != nil {
		return nil, timer.Done(err)
	}

	return reviews, timer.Done(nil)
}

func (r *fileReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	timer := metrics.NewStoreTimer(BackendFile, metrics.StoreOpGet)

	r.mu.Lock()
	defer r.mu.Unlock()

	reviews, err := r.readOrEmpty()
	if err != nil {
		return nil, timer.Done(err)
	}

	idx := indexOf(reviews, id)
	if idx < 0 {
		return nil, timer.Done(ErrReviewNotFound)
	}

	review := reviews[idx]
	return &review, timer.Done(nil)
}

// Create присваивает ID по времени в миллисекундах; при совпадении берется следующее значение
func (r *fileReviewRepository) Create(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewStoreTimer(BackendFile, metrics.StoreOpCreate)

	r.mu.Lock()
	defer r.mu.Unlock()

	reviews, err := r.readOrEmpty()
	if err != nil {
		return timer.Done(err)
	}

	review.ID = nextID(reviews, r.now())
	reviews = append(reviews, *review)

	if err := r.write(reviews); err != nil {
		return timer.Done(fmt.Errorf("failed to create review: %w", err))
	}

	return timer.Done(nil)
}

func (r *fileReviewRepository) Update(ctx context.Context, review *entity.Review) error {
	timer := metrics.NewStoreTimer(BackendFile, metrics.StoreOpUpdate)

	r.mu.Lock()
	defer r.mu.Unlock()

	reviews, err := r.readOrEmpty()
	if err != nil {
		return timer.Done(err)
	}

	idx := indexOf(reviews, review.ID)
	if idx < 0 {
		return timer.Done(ErrReviewNotFound)
	}
	reviews[idx] = *review

	if err := r.write(reviews); err != nil {
		return timer.Done(fmt.Errorf("failed to update review: %w", err))
	}

	return timer.Done(nil)
}

// Delete удаляет отзыв; отсутствующий id дает ErrReviewNotFound, файл не трогается
func (r *fileReviewRepository) Delete(ctx context.Context, id string) error {
	timer := metrics.NewStoreTimer(BackendFile, metrics.StoreOpDelete)

	r.mu.Lock()
	defer r.mu.Unlock()

	reviews, err := r.readOrEmpty()
	if err != nil {
		return timer.Done(err)
	}

	idx := indexOf(reviews, id)
	if idx < 0 {
		return timer.Done(ErrReviewNotFound)
	}
	reviews = append(reviews[:idx], reviews[idx+1:]...)

	if err := r.write(reviews); err != nil {
		return timer.Done(fmt.Errorf("failed to delete review: %w", err))
	}

	return timer.Done(nil)
}

func (r *fileReviewRepository) read() ([]entity.Review, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.path, err)
	}

	reviews := []entity.Review{}
	if len(bytes.TrimSpace(data)) == 0 {
		return reviews, nil
	}
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.path, err)
	}

	return reviews, nil
}

func (r *fileReviewRepository) readOrEmpty() ([]entity.Review, error) {
	reviews, err := r.read()
	if errors.Is(err, fs.ErrNotExist) {
		return []entity.Review{}, nil
	}
	return reviews, err
}

// write пишет во временный файл рядом и переименовывает его поверх основного
func (r *fileReviewRepository) write(reviews []entity.Review) error {
	if reviews == nil {
		reviews = []entity.Review{}
	}

	data, err := json.MarshalIndent(reviews, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode reviews: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(r.fileMode()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set temp file mode: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", r.path, err)
	}

	return nil
}

// fileMode сохраняет права существующего файла; новый файл получает 0644
func (r *fileReviewRepository) fileMode() os.FileMode {
	if info, err := os.Stat(r.path); err == nil {
		return info.Mode().Perm()
	}
	return 0o644
}

func indexOf(reviews []entity.Review, id string) int {
	for i := range reviews {
		if reviews[i].ID == id {
			return i
		}
	}
	return -1
}

func nextID(reviews []entity.Review, now time.Time) string {
	ms := now.UnixMilli()
	for {
		id := strconv.FormatInt(ms, 10)
		if indexOf(reviews, id) < 0 {
			return id
		}
		ms++
	}
}
