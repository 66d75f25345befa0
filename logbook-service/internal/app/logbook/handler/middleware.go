package handler

import (
	"net/http"

	"stoutlog/logbook-service/internal/app/logbook/entity"

	"github.com/gin-gonic/gin"
)

// BodyLimit ограничивает размер тела запроса; превышение дает 413
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, entity.ErrorResponse{Error: "Upload too large"})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
