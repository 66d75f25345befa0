package service

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"stoutlog/logbook-service/internal/app/logbook/entity"
	"stoutlog/logbook-service/internal/app/logbook/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUploader_GeneratedName(t *testing.T) {
	images := new(mocks.MockImageStore)
	images.On("Save", mock.Anything, mock.Anything).Return(nil)

	path, err := NewUploader(images).Upload(context.Background(), &entity.ImageUpload{
		Filename: "IMG_0042.JPG",
		Content:  strings.NewReader("data"),
	})

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^/uploads/\d{13}-[0-9a-f]{8}\.JPG$`), path)
}

func TestUploader_NoExtension(t *testing.T) {
	images := new(mocks.MockImageStore)
	images.On("Save", mock.Anything, mock.Anything).Return(nil)

	path, err := NewUploader(images).Upload(context.Background(), &entity.ImageUpload{
		Filename: "../../etc/passwd",
		Content:  strings.NewReader("data"),
	})

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^/uploads/\d{13}-[0-9a-f]{8}$`), path)
}

func TestUploader_BackslashInExtensionIsDropped(t *testing.T) {
	images := new(mocks.MockImageStore)
	images.On("Save", mock.Anything, mock.MatchedBy(func(name string) bool {
		return !strings.Contains(name, `\`)
	})).Return(nil)

	path, err := NewUploader(images).Upload(context.Background(), &entity.ImageUpload{
		Filename: `pint.j\pg`,
		Content:  strings.NewReader("data"),
	})

	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^/uploads/\d{13}-[0-9a-f]{8}$`), path)
	images.AssertExpectations(t)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, ".jpg", extension("pint.jpg"))
	assert.Equal(t, ".PNG", extension(`C:\photos\pint.PNG`))
	assert.Equal(t, "", extension(`pint.j\pg`))
	assert.Equal(t, "", extension("pint"))
}

func TestImageName(t *testing.T) {
	assert.Equal(t, "a.jpg", imageName("/uploads/a.jpg"))
	assert.Equal(t, "", imageName(""))
	assert.Equal(t, "", imageName("/static/a.jpg"))
}
