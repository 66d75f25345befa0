package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stoutlog/logbook-service/internal/app/logbook/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileRepo(t *testing.T, now time.Time) (*fileReviewRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "reviews.json")
	return &fileReviewRepository{
		path: path,
		now:  func() time.Time { return now },
	}, path
}

func sampleReview(name string) *entity.Review {
	return &entity.Review{
		Date:           "2024-03-01",
		Name:           name,
		RatingGuinness: 8,
		RatingPour:     6,
		RatingService:  9,
		Price:          65,
	}
}

func TestFileRepository_ListCreatesMissingFile(t *testing.T) {
	repo, path := newTestFileRepo(t, time.Now())

	reviews, err := repo.List(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, reviews)
	assert.Empty(t, reviews)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestFileRepository_ListEmptyFile(t *testing.T) {
	repo, path := newTestFileRepo(t, time.Now())
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	reviews, err := repo.List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestFileRepository_ListCorruptFile(t *testing.T) {
	repo, path := newTestFileRepo(t, time.Now())
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := repo.List(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode")
}

func TestFileRepository_CreateAppendsInOrder(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	repo, _ := newTestFileRepo(t, now)
	ctx := context.Background()

	first := sampleReview("O'Learys")
	second := sampleReview("Kehlstein")

	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	// одинаковое время - второй id сдвигается на миллисекунду
	assert.Equal(t, "1700000000000", first.ID)
	assert.Equal(t, "1700000000001", second.ID)

	reviews, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "O'Learys", reviews[0].Name)
	assert.Equal(t, "Kehlstein", reviews[1].Name)
}

func TestFileRepository_WritesIndentedJSON(t *testing.T) {
	repo, path := newTestFileRepo(t, time.UnixMilli(1700000000000))
	require.NoError(t, repo.Create(context.Background(), sampleReview("O'Learys")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  {\n    \"id\": \"1700000000000\"")
	assert.NotContains(t, string(data), "imagePath")
}

func TestFileRepository_GetByID(t *testing.T) {
	repo, _ := newTestFileRepo(t, time.UnixMilli(1700000000000))
	ctx := context.Background()
	review := sampleReview("O'Learys")
	require.NoError(t, repo.Create(ctx, review))

	found, err := repo.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, "O'Learys", found.Name)

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestFileRepository_UpdateReplacesRecord(t *testing.T) {
	repo, _ := newTestFileRepo(t, time.UnixMilli(1700000000000))
	ctx := context.Background()
	review := sampleReview("O'Learys")
	require.NoError(t, repo.Create(ctx, review))

	updated := *review
	updated.RatingGuinness = 10
	updated.ImagePath = "/uploads/1700000000000-abcd1234.jpg"
	require.NoError(t, repo.Update(ctx, &updated))

	found, err := repo.GetByID(ctx, review.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, found.RatingGuinness)
	assert.Equal(t, "2024-03-01", found.Date)
	assert.Equal(t, "/uploads/1700000000000-abcd1234.jpg", found.ImagePath)
}

func TestFileRepository_UpdateUnknownID(t *testing.T) {
	repo, _ := newTestFileRepo(t, time.Now())

	err := repo.Update(context.Background(), &entity.Review{ID: "nope", Name: "x"})

	assert.ErrorIs(t, err, ErrReviewNotFound)
}

func TestFileRepository_Delete(t *testing.T) {
	repo, _ := newTestFileRepo(t, time.UnixMilli(1700000000000))
	ctx := context.Background()
	first := sampleReview("O'Learys")
	second := sampleReview("Kehlstein")
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	require.NoError(t, repo.Delete(ctx, first.ID))

	reviews, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, second.ID, reviews[0].ID)
}

func TestFileRepository_DeleteUnknownIDKeepsFile(t *testing.T) {
	repo, path := newTestFileRepo(t, time.UnixMilli(1700000000000))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleReview("O'Learys")))

	before, err := os.ReadFile(path)
	require.NoError(t, err)

	err = repo.Delete(ctx, "nope")
	assert.ErrorIs(t, err, ErrReviewNotFound)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFileRepository_WritePermissions(t *testing.T) {
	repo, path := newTestFileRepo(t, time.UnixMilli(1700000000000))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleReview("O'Learys")))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	require.NoError(t, os.Chmod(path, 0o640))
	require.NoError(t, repo.Create(ctx, sampleReview("Kehlstein")))

	info, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

func TestNextID(t *testing.T) {
	now := time.UnixMilli(5)
	reviews := []entity.Review{{ID: "5"}, {ID: "6"}}

	assert.Equal(t, "7", nextID(reviews, now))
	assert.Equal(t, "5", nextID(nil, now))
}
