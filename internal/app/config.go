package app

import (
	"time"

	"github.com/vladislavdragonenkov/marketplace/internal/messaging/kafka"
)

// StorageDriver выбирает реализацию хранилища.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Config описывает настройки запуска order-service.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	StorageDriver       StorageDriver
	PostgresDSN         string
	PostgresAutoMigrate bool

	// KafkaBrokers — список брокеров через запятую; пустое значение включает log publisher.
	KafkaBrokers string
	OrderTopic   string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxAttempts  int
	OutboxRetryDelay   time.Duration
	OutboxMaxPending   int
	OutboxMaxAge       time.Duration

	OTLPEndpoint    string
	TraceSampleRate float64
	Environment     string

	ShutdownTimeout time.Duration
}

// DefaultConfig возвращает настройки для локального запуска на in-memory хранилище.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		OrderTopic:          kafka.TopicOrderEvents,
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    100 * time.Millisecond,
		OutboxMaxPending:    1000,
		OutboxMaxAge:        5 * time.Minute,
		TraceSampleRate:     1,
		Environment:         "local",
		ShutdownTimeout:     5 * time.Second,
	}
}

func (c Config) dlqTopic() string {
	return kafka.DLQTopic(c.OrderTopic)
}

func (c Config) shutdownTimeout() time.Duration {
	if c.ShutdownTimeout <= 0 {
		return 5 * time.Second
	}
	return c.ShutdownTimeout
}
