package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreFile     = "file"
	StoreMongo    = "mongo"
	StorePostgres = "postgres"

	ImageDisk = "disk"
	ImageGCS  = "gcs"
)

// Config содержит все настройки журнала
type Config struct {
	AppEnv   string
	Log      LogConfig
	Server   ServerConfig
	Store    StoreConfig
	MongoDB  MongoDBConfig
	Postgres PostgresConfig
	Images   ImageConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Sweeper  SweeperConfig
}

type LogConfig struct {
	Level        string
	LogstashAddr string // пусто - только stdout
}

type ServerConfig struct {
	Host        string   // Адрес хоста (по умолчанию 0.0.0.0)
	Port        string   // Порт сервера (по умолчанию 3000)
	PublicDir   string   // Каталог статики фронтенда
	CORSOrigins []string // Разрешенные origin; пусто - любые
}

type StoreConfig struct {
	Backend  string // file | mongo | postgres
	DataFile string // путь к JSON файлу для file
}

type MongoDBConfig struct {
	URI      string
	Database string
}

type PostgresConfig struct {
	DSN string
}

type ImageConfig struct {
	Backend        string // disk | gcs
	UploadDir      string
	GCSBucket      string
	GCSCredentials string // путь к ключу сервисного аккаунта; пусто - ADC
	MaxUploadBytes int64
}

type RedisConfig struct {
	Addr     string // пусто - кеш выключен
	Password string
	DB       int
	TTL      time.Duration
}

type KafkaConfig struct {
	Brokers []string // пусто - события не публикуются
	Topic   string
}

type SweeperConfig struct {
	Schedule string        // cron выражение; "off" - очистка выключена
	Grace    time.Duration // файлы моложе не удаляются
}

func Load() (*Config, error) {
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	sweepGrace, err := time.ParseDuration(getEnv("SWEEP_GRACE", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_GRACE: %w", err)
	}

	maxUploadMB := getEnvAsInt("MAX_UPLOAD_MB", 10)
	if maxUploadMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %d", maxUploadMB)
	}

	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "production"),
		Log: LogConfig{
			Level:        getEnv("LOG_LEVEL", "info"),
			LogstashAddr: os.Getenv("LOGSTASH_ADDR"),
		},
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			Port:        getEnv("SERVER_PORT", getEnv("PORT", "3000")),
			PublicDir:   getEnv("PUBLIC_DIR", "public"),
			CORSOrigins: splitList(os.Getenv("CORS_ORIGINS")),
		},
		Store: StoreConfig{
			Backend:  strings.ToLower(getEnv("STORE_BACKEND", StoreFile)),
			DataFile: getEnv("DATA_FILE", "data/reviews.json"),
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "stoutlog"),
		},
		Postgres: PostgresConfig{
			DSN: getEnv("POSTGRES_DSN", "host=localhost port=5432 user=postgres password=postgres dbname=stoutlog sslmode=disable"),
		},
		Images: ImageConfig{
			Backend:        strings.ToLower(getEnv("IMAGE_BACKEND", ImageDisk)),
			UploadDir:      getEnv("UPLOAD_DIR", "public/uploads"),
			GCSBucket:      os.Getenv("GCS_BUCKET"),
			GCSCredentials: os.Getenv("GCS_CREDENTIALS_FILE"),
			MaxUploadBytes: int64(maxUploadMB) << 20,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      cacheTTL,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "review_events"),
		},
		Sweeper: SweeperConfig{
			Schedule: getEnv("SWEEP_SCHEDULE", "0 4 * * *"),
			Grace:    sweepGrace,
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Backend {
	case StoreFile, StoreMongo, StorePostgres:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	switch c.Images.Backend {
	case ImageDisk:
	case ImageGCS:
		if c.Images.GCSBucket == "" {
			return fmt.Errorf("GCS_BUCKET is required for IMAGE_BACKEND=gcs")
		}
	default:
		return fmt.Errorf("unknown IMAGE_BACKEND %q", c.Images.Backend)
	}

	return nil
}

func (c *Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development"
}

func (c *SweeperConfig) Enabled() bool {
	return c.Schedule != "off"
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
