package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"stoutlog/logbook-service/internal/app/logbook/infrastructure"
)

// DiskImageStore хранит изображения в каталоге на локальном диске
type DiskImageStore struct {
	dir string
}

func NewDiskImageStore(dir string) *DiskImageStore {
	return &DiskImageStore{dir: dir}
}

func (s *DiskImageStore) Backend() string {
	return BackendDisk
}

// Save создает каталог при первой загрузке
func (s *DiskImageStore) Save(ctx context.Context, name string, content io.Reader) (int64, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, fmt.Errorf("failed to create upload dir: %w", err)
	}

	path := filepath.Join(s.dir, name)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", name, err)
	}

	written, err := io.Copy(file, content)
	if err != nil {
		file.Close()
		os.Remove(path)
		return 0, fmt.Errorf("failed to write %s: %w", name, err)
	}

	if err := file.Close(); err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to close %s: %w", name, err)
	}

	return written, nil
}

func (s *DiskImageStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := validateName(name); err != nil {
		return nil, infrastructure.ErrImageNotFound
	}

	file, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, infrastructure.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}

	return file, nil
}

func (s *DiskImageStore) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return infrastructure.ErrImageNotFound
		}
		return fmt.Errorf("failed to delete %s: %w", name, err)
	}

	return nil
}

// List возвращает файлы каталога; отсутствующий каталог - пустой список
func (s *DiskImageStore) List(ctx context.Context) ([]infrastructure.StoredImage, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []infrastructure.StoredImage{}, nil
		}
		return nil, fmt.Errorf("failed to list upload dir: %w", err)
	}

	images := make([]infrastructure.StoredImage, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		images = append(images, infrastructure.StoredImage{
			Name:    entry.Name(),
			ModTime: info.ModTime(),
		})
	}

	return images, nil
}
