package app

import (
	"testing"
	"time"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected MetricsAddr :9090, got %s", cfg.MetricsAddr)
	}
	if cfg.StorageDriver != StorageDriverMemory {
		t.Errorf("expected StorageDriver %s, got %s", StorageDriverMemory, cfg.StorageDriver)
	}
	if !cfg.PostgresAutoMigrate {
		t.Error("expected PostgresAutoMigrate to be true")
	}
	if cfg.OrderTopic != "marketplace.order.events" {
		t.Errorf("unexpected OrderTopic %q", cfg.OrderTopic)
	}
	if cfg.KafkaBrokers != "" {
		t.Error("expected kafka to be disabled by default")
	}
	if cfg.OutboxPollInterval <= 0 {
		t.Error("expected OutboxPollInterval to be > 0")
	}
	if cfg.OutboxBatchSize <= 0 {
		t.Error("expected OutboxBatchSize to be > 0")
	}
	if cfg.OutboxMaxAttempts <= 0 {
		t.Error("expected OutboxMaxAttempts to be > 0")
	}
	if cfg.OutboxRetryDelay < 0 {
		t.Error("expected OutboxRetryDelay to be >= 0")
	}
	if cfg.OutboxMaxPending <= 0 {
		t.Error("expected OutboxMaxPending to be > 0")
	}
	if cfg.OutboxMaxAge <= 0 {
		t.Error("expected OutboxMaxAge to be > 0")
	}
	if cfg.OTLPEndpoint != "" {
		t.Error("expected tracing export to be disabled by default")
	}
}

func TestConfig_DLQTopic(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OrderTopic = "orders"

	if got := cfg.dlqTopic(); got != "orders.dlq" {
		t.Fatalf("expected orders.dlq, got %s", got)
	}
}

func TestConfig_ShutdownTimeoutFallback(t *testing.T) {
	if got := (Config{}).shutdownTimeout(); got != 5*time.Second {
		t.Fatalf("expected 5s fallback, got %s", got)
	}
	if got := (Config{ShutdownTimeout: time.Second}).shutdownTimeout(); got != time.Second {
		t.Fatalf("expected configured timeout, got %s", got)
	}
}

func TestConfig_Comparison(t *testing.T) {
	cfg1 := DefaultConfig()
	cfg2 := DefaultConfig()

	if cfg1 != cfg2 {
		t.Error("two DefaultConfig instances should be equal")
	}

	cfg2.HTTPAddr = ":8081"
	if cfg1 == cfg2 {
		t.Error("modified config should not be equal to original")
	}
}
