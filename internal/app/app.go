package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/marketplace/internal/health"
	"github.com/vladislavdragonenkov/marketplace/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/marketplace/internal/metrics"
	"github.com/vladislavdragonenkov/marketplace/internal/service/customer"
	"github.com/vladislavdragonenkov/marketplace/internal/service/order"
	"github.com/vladislavdragonenkov/marketplace/internal/service/outbox"
	"github.com/vladislavdragonenkov/marketplace/internal/service/product"
	"github.com/vladislavdragonenkov/marketplace/internal/telemetry"
	"github.com/vladislavdragonenkov/marketplace/internal/transport/httpapi"
	"github.com/vladislavdragonenkov/marketplace/internal/version"
)

const serviceName = "order-service"

// Run поднимает хранилище, outbox worker, HTTP API и сервер метрик и
// блокируется до отмены ctx или ошибки API-сервера.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := initRuntimeDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close(logger)

	shutdownTracing, err := telemetry.SetupTracer(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersion(),
		Environment:    cfg.Environment,
		Endpoint:       cfg.OTLPEndpoint,
		SampleRatio:    cfg.TraceSampleRate,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout())
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.WithError(err).Warn("failed to flush traces")
		}
	}()

	orderMetrics := metrics.NewOrderMetrics(prometheus.DefaultRegisterer)
	outboxMetrics := metrics.NewOutboxMetrics(prometheus.DefaultRegisterer)
	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	// Без брокера сервис продолжает работу: события outbox уходят в лог.
	kafkaProducer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		logger.Info("outbox events will be written to the log")
	}
	defer closeKafka(kafkaProducer, logger)

	publisher, dlqPublisher := outboxPublishers(cfg, kafkaProducer, logger)
	worker := outbox.NewWorker(deps.outbox, publisher,
		outbox.WithLogger(logger.WithField("layer", "outbox")),
		outbox.WithMetrics(outboxMetrics),
		outbox.WithDLQPublisher(dlqPublisher),
		outbox.WithPollInterval(cfg.OutboxPollInterval),
		outbox.WithBatchSize(cfg.OutboxBatchSize),
		outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
		outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
	)

	apiLogger := logger.WithField("layer", "http")
	handler := httpapi.NewHandler(httpapi.Services{
		CreateCustomer: customer.NewCreateCustomerService(deps.customers, logger.WithField("layer", "customer")),
		CreateProduct:  product.NewCreateProductService(deps.products, logger.WithField("layer", "product")),
		CreateOrder: order.NewCreateOrderService(deps.customers, deps.products, deps.orders,
			order.WithTransactor(deps.tx),
			order.WithOutbox(deps.outbox),
			order.WithMetrics(orderMetrics),
			order.WithLogger(logger.WithField("layer", "order")),
		),
		FindOrder: order.NewFindOrderService(deps.orders),
	}, apiLogger)
	router := httpapi.NewRouter(handler,
		httpapi.WithLogger(apiLogger),
		httpapi.WithRequestObserver(httpMetrics),
		httpapi.WithTracer(otel.Tracer("github.com/vladislavdragonenkov/marketplace/internal/transport/httpapi")),
	)

	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", deps.storageChecker)
	healthHandler.RegisterChecker("outbox", healthcheck.NewOutboxChecker(deps.outbox, cfg.OutboxMaxPending, cfg.OutboxMaxAge))

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	defer shutdownHTTP(metricsSrv, logger)

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return err
	}
	apiSrv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	workerCancel, workerDone := startOutboxWorker(ctx, worker)

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("version", version.String()).Infof("HTTP API слушает %s", lis.Addr())
		errCh <- apiSrv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP API")
		shutdownHTTP(apiSrv, logger)
		shutdownOutboxWorker(workerCancel, workerDone, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownOutboxWorker(workerCancel, workerDone, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// outboxPublishers выбирает Kafka при наличии producer, иначе log publisher без DLQ.
func outboxPublishers(cfg Config, producer *kafka.Producer, logger *log.Entry) (publisher, dlq domain.OutboxPublisher) {
	if producer == nil {
		return outbox.NewLogPublisher(logger.WithField("layer", "outbox-log")), nil
	}
	return kafka.NewOutboxPublisher(producer, cfg.OrderTopic), kafka.NewOutboxPublisher(producer, cfg.dlqTopic())
}

func startOutboxWorker(ctx context.Context, worker *outbox.Worker) (context.CancelFunc, <-chan struct{}) {
	workerCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		worker.Run(workerCtx)
	}()
	return cancel, done
}

// shutdownOutboxWorker останавливает worker и ждёт завершения текущего цикла.
func shutdownOutboxWorker(cancel context.CancelFunc, done <-chan struct{}, logger *log.Entry) {
	if cancel != nil {
		cancel()
	}
	if done == nil {
		return
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn("outbox worker did not stop in time")
	}
}

// startMetricsServer запускает HTTP-обработчики /metrics и health probes.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}
