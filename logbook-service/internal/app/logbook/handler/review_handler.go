package handler

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"stoutlog/logbook-service/internal/app/logbook/entity"
	"stoutlog/logbook-service/internal/app/logbook/service"
	"stoutlog/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type ReviewHandler struct {
	reviewService service.ReviewServiceInterface
}

func NewReviewHandler(reviewService service.ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
	}
}

// ListReviews GET /api/reviews
func (h *ReviewHandler) ListReviews(c *gin.Context) {
	reviews, err := h.reviewService.ListReviews(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "Failed to get reviews")
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// CreateReview POST /api/reviews (multipart или urlencoded форма)
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	draft, image, ok := h.parseForm(c)
	if !ok {
		return
	}
	defer closeUpload(image)

	review, err := h.reviewService.CreateReview(c.Request.Context(), draft, image)
	if err != nil {
		h.handleError(c, err, "Failed to create review")
		return
	}

	c.JSON(http.StatusCreated, entity.MessageResponse{Message: "Review created", Review: review})
}

// UpdateReview PUT /api/reviews/:id
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	reviewID := c.Param("id")

	draft, image, ok := h.parseForm(c)
	if !ok {
		return
	}
	defer closeUpload(image)

	review, err := h.reviewService.UpdateReview(c.Request.Context(), reviewID, draft, image)
	if err != nil {
		h.handleError(c, err, "Failed to update review")
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{Message: "Review updated", Review: review})
}

// DeleteReview DELETE /api/reviews/:id
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	if err := h.reviewService.DeleteReview(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err, "Failed to delete review")
		return
	}

	c.JSON(http.StatusOK, entity.MessageResponse{Message: "Review deleted"})
}

// ListPlaces GET /api/places?q=
func (h *ReviewHandler) ListPlaces(c *gin.Context) {
	places, err := h.reviewService.ListPlaces(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.handleError(c, err, "Failed to get places")
		return
	}

	c.JSON(http.StatusOK, places)
}

// GetSummary GET /api/summary
func (h *ReviewHandler) GetSummary(c *gin.Context) {
	summary, err := h.reviewService.GetSummary(c.Request.Context())
	if err != nil {
		h.handleError(c, err, "Failed to build summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ServeUpload GET /uploads/:name
func (h *ReviewHandler) ServeUpload(c *gin.Context) {
	name := c.Param("name")

	rc, err := h.reviewService.OpenImage(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Image not found"})
			return
		}
		h.handleError(c, err, "Failed to read image")
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}

// parseForm разбирает поля формы и необязательный файл "image".
// При ошибке ответ уже записан и ok = false.
func (h *ReviewHandler) parseForm(c *gin.Context) (*entity.ReviewDraft, *entity.ImageUpload, bool) {
	var form entity.ReviewForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		h.handleBadBody(c, err)
		return nil, nil, false
	}

	draft, err := entity.ParseReviewForm(&form)
	if err != nil {
		h.handleError(c, err, "Invalid form body")
		return nil, nil, false
	}

	fileHeader, err := c.FormFile(entity.FieldImage)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return draft, nil, true
		}
		h.handleBadBody(c, err)
		return nil, nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.handleError(c, err, "Failed to read image upload")
		return nil, nil, false
	}

	return draft, &entity.ImageUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		Content:  file,
	}, true
}

func closeUpload(image *entity.ImageUpload) {
	if image == nil {
		return
	}
	if closer, ok := image.Content.(io.Closer); ok {
		closer.Close()
	}
}

// handleBadBody: тело не разобрано - 413 при превышении лимита, иначе 400
func (h *ReviewHandler) handleBadBody(c *gin.Context, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		c.JSON(http.StatusRequestEntityTooLarge, entity.ErrorResponse{Error: "Upload too large"})
		return
	}
	logger.FromGin(c).Debug().Err(err).Msg("Malformed form body")
	c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "Invalid form body"})
}

// handleError переводит ошибки в HTTP ответы
func (h *ReviewHandler) handleError(c *gin.Context, err error, msg string) {
	var validationErr *entity.ValidationError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{
			Error:  "validation failed",
			Fields: validationErr.Fields,
		})
	case errors.As(err, &maxBytesErr):
		c.JSON(http.StatusRequestEntityTooLarge, entity.ErrorResponse{Error: "Upload too large"})
	case errors.Is(err, service.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Review not found"})
	default:
		_ = c.Error(err)
		logger.FromGin(c).Error().Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: msg})
	}
}
