package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"stoutlog/logbook-service/internal/app/logbook/entity"
	"stoutlog/logbook-service/internal/app/logbook/infrastructure"
	"stoutlog/pkg/metrics"

	"github.com/google/uuid"
)

// UploadURLPrefix - публичный путь, под которым отдаются загруженные изображения
const UploadURLPrefix = "/uploads/"

// Uploader сохраняет изображение из формы под уникальным именем
type Uploader struct {
	store  infrastructure.ImageStore
	now    func() time.Time
	suffix func() string
}

func NewUploader(store infrastructure.ImageStore) *Uploader {
	return &Uploader{
		store:  store,
		now:    time.Now,
		suffix: randomSuffix,
	}
}

// Upload возвращает путь вида /uploads/<ms>-<suffix><ext>
func (u *Uploader) Upload(ctx context.Context, image *entity.ImageUpload) (string, error) {
	name := u.fileName(image.Filename)

	size, err := u.store.Save(ctx, name, image.Content)
	if err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	metrics.RecordUpload(u.store.Backend(), size)
	return UploadURLPrefix + name, nil
}

func (u *Uploader) fileName(original string) string {
	return fmt.Sprintf("%d-%s%s", u.now().UnixMilli(), u.suffix(), extension(original))
}

// extension берет расширение из имени клиента; с разделителями пути оно отбрасывается
func extension(original string) string {
	ext := filepath.Ext(filepath.Base(original))
	if strings.ContainsAny(ext, `/\`) {
		return ""
	}
	return ext
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// imageName возвращает имя файла из пути /uploads/<name>; для чужих путей - ""
func imageName(imagePath string) string {
	name, ok := strings.CutPrefix(imagePath, UploadURLPrefix)
	if !ok {
		return ""
	}
	return name
}
