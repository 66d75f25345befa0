package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Пример запроса PromQL: rate(http_requests_total{service="logbook-service"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Хранилище отзывов (file / mongo / postgres)
// =============================================================================

var StoreOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "store_operation_duration_seconds",
		Help:    "Duration of review store operations in seconds",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"backend", "operation"},
)

var StoreErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "store_errors_total",
		Help: "Total number of review store errors",
	},
	[]string{"backend", "operation"},
)

// =============================================================================
// Redis кеш списка отзывов
// =============================================================================

var CacheHits = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "review_cache_hits_total",
		Help: "Total number of review list cache hits",
	},
)

var CacheMisses = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "review_cache_misses_total",
		Help: "Total number of review list cache misses",
	},
)

var CacheErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "review_cache_errors_total",
		Help: "Total number of review list cache errors",
	},
	[]string{"operation"}, // get, set, invalidate
)

// =============================================================================
// Kafka
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"topic"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"topic"},
)

// =============================================================================
// Загрузки изображений
// =============================================================================

var UploadsStored = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "uploads_stored_total",
		Help: "Total number of uploaded images stored",
	},
	[]string{"backend"},
)

var UploadBytes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "upload_bytes_total",
		Help: "Total number of uploaded image bytes stored",
	},
	[]string{"backend"},
)

var UploadsSwept = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "uploads_swept_total",
		Help: "Total number of unreferenced images removed by the sweeper",
	},
)

// =============================================================================
// Бизнес метрики
// =============================================================================

var ReviewsCreated = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "reviews_created_total",
		Help: "Total number of reviews created",
	},
)

var ReviewsDeleted = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "reviews_deleted_total",
		Help: "Total number of reviews deleted",
	},
)

// ReviewsRating - распределение оценок по шкале 1..10
var ReviewsRating = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "reviews_rating",
		Help:    "Distribution of review sub-ratings",
		Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
	},
	[]string{"aspect"}, // guinness, pour, service
)
