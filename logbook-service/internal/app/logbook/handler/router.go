package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"stoutlog/logbook-service/internal/app/logbook/entity"
	"stoutlog/pkg/logger"
	"stoutlog/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "logbook-service"

type RouterConfig struct {
	PublicDir      string
	CORSOrigins    []string // пусто - любые origin
	MaxUploadBytes int64
}

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(reviewHandler *ReviewHandler, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware(serviceName))

	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/reviews", reviewHandler.ListReviews)
		api.POST("/reviews", BodyLimit(cfg.MaxUploadBytes), reviewHandler.CreateReview)
		api.PUT("/reviews/:id", BodyLimit(cfg.MaxUploadBytes), reviewHandler.UpdateReview)
		api.DELETE("/reviews/:id", reviewHandler.DeleteReview)

		api.GET("/places", reviewHandler.ListPlaces)
		api.GET("/summary", reviewHandler.GetSummary)
	}

	router.GET("/uploads/:name", reviewHandler.ServeUpload)

	// всё остальное - статика фронтенда из PublicDir
	router.NoRoute(staticFiles(cfg.PublicDir))

	return router
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders: []string{logger.RequestIDHeader},
		MaxAge:        300,
	}

	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}

	return config
}

// staticFiles отдает файлы из dir для GET/HEAD; каталог отдается только через его index.html
func staticFiles(dir string) gin.HandlerFunc {
	fileServer := http.FileServer(http.Dir(dir))

	return func(c *gin.Context) {
		method := c.Request.Method
		urlPath := path.Clean("/" + c.Request.URL.Path)

		if dir == "" || (method != http.MethodGet && method != http.MethodHead) || strings.HasPrefix(urlPath, "/api/") {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Not found"})
			return
		}

		fullPath := filepath.Join(dir, filepath.FromSlash(urlPath))
		info, err := os.Stat(fullPath)
		if err == nil && info.IsDir() {
			// каталоги не листаем, только их index.html
			info, err = os.Stat(filepath.Join(fullPath, "index.html"))
		}
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.FromGin(c).Warn().Err(err).Str("path", urlPath).Msg("Failed to stat static file")
			}
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Not found"})
			return
		}
		if info.IsDir() {
			c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "Not found"})
			return
		}

		// NoRoute уже выставил 404
		c.Status(http.StatusOK)
		fileServer.ServeHTTP(c.Writer, c.Request)
	}
}
