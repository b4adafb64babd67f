package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/app"
	"github.com/vladislavdragonenkov/marketplace/internal/version"
)

const (
	envHTTPAddr            = "MARKETPLACE_HTTP_ADDR"
	envMetricsAddr         = "MARKETPLACE_METRICS_ADDR"
	envStorageDriver       = "MARKETPLACE_STORAGE_DRIVER"
	envPostgresDSN         = "MARKETPLACE_POSTGRES_DSN"
	envPostgresAutoMigrate = "MARKETPLACE_POSTGRES_AUTO_MIGRATE"
	envKafkaBrokers        = "KAFKA_BROKERS"
	envOrderTopic          = "MARKETPLACE_ORDER_TOPIC"
	envOutboxPollInterval  = "MARKETPLACE_OUTBOX_POLL_INTERVAL"
	envOutboxBatchSize     = "MARKETPLACE_OUTBOX_BATCH_SIZE"
	envOutboxMaxAttempts   = "MARKETPLACE_OUTBOX_MAX_ATTEMPTS"
	envOutboxRetryDelay    = "MARKETPLACE_OUTBOX_RETRY_DELAY"
	envOutboxMaxPending    = "MARKETPLACE_OUTBOX_MAX_PENDING"
	envOutboxMaxAge        = "MARKETPLACE_OUTBOX_MAX_AGE"
	envOTLPEndpoint        = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envTraceSampleRate     = "MARKETPLACE_TRACE_SAMPLE_RATE"
	envEnvironment         = "MARKETPLACE_ENV"
	envLogLevel            = "MARKETPLACE_LOG_LEVEL"
	envLogFormat           = "MARKETPLACE_LOG_FORMAT"
)

type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(lookup envLookup) []string {
	var warnings []string

	if format, ok := lookupTrimmed(lookup, envLogFormat); ok && strings.EqualFold(format, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	log.SetLevel(log.InfoLevel)
	if raw, ok := lookupTrimmed(lookup, envLogLevel); ok {
		level, err := log.ParseLevel(raw)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", envLogLevel, err))
		} else {
			log.SetLevel(level)
		}
	}

	return warnings
}

// readConfigFromEnv накладывает переменные окружения на DefaultConfig.
// Некорректные значения не прерывают запуск: остаётся значение по умолчанию, а ошибка
// попадает в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	warn := func(key string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s: %v", key, err))
	}

	if v, ok := lookupTrimmed(lookup, envHTTPAddr); ok {
		cfg.HTTPAddr = v
	}
	if v, ok := lookupTrimmed(lookup, envMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := lookupTrimmed(lookup, envStorageDriver); ok {
		cfg.StorageDriver = app.StorageDriver(strings.ToLower(v))
	}
	if v, ok := lookupTrimmed(lookup, envPostgresDSN); ok {
		cfg.PostgresDSN = v
	}
	if v, ok := lookupTrimmed(lookup, envPostgresAutoMigrate); ok {
		if parsed, err := parseBool(v); err != nil {
			warn(envPostgresAutoMigrate, err)
		} else {
			cfg.PostgresAutoMigrate = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envKafkaBrokers); ok {
		cfg.KafkaBrokers = v
	}
	if v, ok := lookupTrimmed(lookup, envOrderTopic); ok {
		cfg.OrderTopic = v
	}

	positive := func(v int) bool { return v > 0 }
	nonNegative := func(v int) bool { return v >= 0 }
	positiveDuration := func(v time.Duration) bool { return v > 0 }
	nonNegativeDuration := func(v time.Duration) bool { return v >= 0 }

	if v, ok := lookupTrimmed(lookup, envOutboxPollInterval); ok {
		if parsed, err := parseDuration(v, positiveDuration, "must be > 0"); err != nil {
			warn(envOutboxPollInterval, err)
		} else {
			cfg.OutboxPollInterval = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envOutboxBatchSize); ok {
		if parsed, err := parseInt(v, positive, "must be > 0"); err != nil {
			warn(envOutboxBatchSize, err)
		} else {
			cfg.OutboxBatchSize = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envOutboxMaxAttempts); ok {
		if parsed, err := parseInt(v, positive, "must be > 0"); err != nil {
			warn(envOutboxMaxAttempts, err)
		} else {
			cfg.OutboxMaxAttempts = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envOutboxRetryDelay); ok {
		if parsed, err := parseDuration(v, nonNegativeDuration, "must be >= 0"); err != nil {
			warn(envOutboxRetryDelay, err)
		} else {
			cfg.OutboxRetryDelay = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envOutboxMaxPending); ok {
		if parsed, err := parseInt(v, nonNegative, "must be >= 0"); err != nil {
			warn(envOutboxMaxPending, err)
		} else {
			cfg.OutboxMaxPending = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envOutboxMaxAge); ok {
		if parsed, err := parseDuration(v, nonNegativeDuration, "must be >= 0"); err != nil {
			warn(envOutboxMaxAge, err)
		} else {
			cfg.OutboxMaxAge = parsed
		}
	}

	if v, ok := lookupTrimmed(lookup, envOTLPEndpoint); ok {
		cfg.OTLPEndpoint = v
	}
	if v, ok := lookupTrimmed(lookup, envTraceSampleRate); ok {
		parsed, err := strconv.ParseFloat(v, 64)
		switch {
		case err != nil:
			warn(envTraceSampleRate, err)
		case parsed < 0 || parsed > 1:
			warn(envTraceSampleRate, fmt.Errorf("value %s must be within [0, 1]", v))
		default:
			cfg.TraceSampleRate = parsed
		}
	}
	if v, ok := lookupTrimmed(lookup, envEnvironment); ok {
		cfg.Environment = v
	}

	return cfg, warnings
}

// lookupTrimmed возвращает значение без пробелов; пустое значение считается отсутствующим.
func lookupTrimmed(lookup envLookup, key string) (string, bool) {
	raw, ok := lookup(key)
	if !ok {
		return "", false
	}
	value := strings.TrimSpace(raw)
	return value, value != ""
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, constraint string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid integer value %q", raw)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %d %s", value, constraint)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, constraint string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration value %q", raw)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %s %s", value, constraint)
	}
	return value, nil
}

func main() {
	warnings := setupLogger(os.LookupEnv)
	cfg, cfgWarnings := readConfigFromEnv(os.LookupEnv)
	for _, warning := range append(warnings, cfgWarnings...) {
		log.WithField("warning", warning).Warn("некорректная переменная окружения, используем значение по умолчанию")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":      cfg.HTTPAddr,
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
		"kafka_enabled":  cfg.KafkaBrokers != "",
		"version":        version.String(),
	}).Info("запускаем order-service")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("order-service остановлен")
}
