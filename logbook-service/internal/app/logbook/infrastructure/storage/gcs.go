package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"stoutlog/logbook-service/internal/app/logbook/infrastructure"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const gcsPrefix = "uploads/"

// GCSImageStore хранит изображения объектами uploads/<name> в бакете
type GCSImageStore struct {
	client *storage.Client
	bucket string
}

// NewGCSImageStore без credentialsFile использует Application Default Credentials
func NewGCSImageStore(ctx context.Context, bucket, credentialsFile string) (*GCSImageStore, error) {
	if bucket == "" {
		return nil, errors.New("gcs bucket is not set")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}

	return &GCSImageStore{client: client, bucket: bucket}, nil
}

func (s *GCSImageStore) Backend() string {
	return BackendGCS
}

func (s *GCSImageStore) object(name string) *storage.ObjectHandle {
	return s.client.Bucket(s.bucket).Object(gcsPrefix + name)
}

func (s *GCSImageStore) Save(ctx context.Context, name string, content io.Reader) (int64, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}

	writer := s.object(name).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType(name)

	written, err := io.Copy(writer, content)
	if err != nil {
		writer.Close()
		return 0, fmt.Errorf("failed to upload %s to gs://%s: %w", name, s.bucket, err)
	}

	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("failed to close GCS writer for %s: %w", name, err)
	}

	return written, nil
}

func (s *GCSImageStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := validateName(name); err != nil {
		return nil, infrastructure.ErrImageNotFound
	}

	reader, err := s.object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, infrastructure.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to read %s from gs://%s: %w", name, s.bucket, err)
	}

	return reader, nil
}

func (s *GCSImageStore) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	if err := s.object(name).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return infrastructure.ErrImageNotFound
		}
		return fmt.Errorf("failed to delete %s from gs://%s: %w", name, s.bucket, err)
	}

	return nil
}

func (s *GCSImageStore) List(ctx context.Context) ([]infrastructure.StoredImage, error) {
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: gcsPrefix})

	images := []infrastructure.StoredImage{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list gs://%s/%s: %w", s.bucket, gcsPrefix, err)
		}

		name := strings.TrimPrefix(attrs.Name, gcsPrefix)
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		images = append(images, infrastructure.StoredImage{
			Name:    name,
			ModTime: attrs.Updated,
		})
	}

	return images, nil
}

func (s *GCSImageStore) Close() error {
	return s.client.Close()
}

func contentType(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(filepath.Base(name)))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
