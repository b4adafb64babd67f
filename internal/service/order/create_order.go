package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

const tracerName = "github.com/vladislavdragonenkov/marketplace/internal/service/order"

// CreateOrderRequest — входные данные оформления заказа.
type CreateOrderRequest struct {
	CustomerID string
	Products   []domain.OrderLineRequest
}

// CreateOrderService оформляет заказ: проверяет клиента, наличие и остатки товаров,
// фиксирует цены из снимка каталога, сохраняет заказ и списывает остатки.
type CreateOrderService struct {
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository

	tx      domain.Transactor
	outbox  domain.OutboxRepository
	metrics Recorder
	tracer  trace.Tracer
	logger  *log.Entry
}

// Option настраивает CreateOrderService.
type Option func(*CreateOrderService)

// WithTransactor выполняет чтение каталога, сохранение заказа и списание остатков
// в одной транзакции. Без него шаги выполняются независимо.
func WithTransactor(tx domain.Transactor) Option {
	return func(s *CreateOrderService) {
		s.tx = tx
	}
}

// WithOutbox включает запись события order.created в transactional outbox.
func WithOutbox(outbox domain.OutboxRepository) Option {
	return func(s *CreateOrderService) {
		s.outbox = outbox
	}
}

// WithMetrics задаёт получателя метрик.
func WithMetrics(metrics Recorder) Option {
	return func(s *CreateOrderService) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithTracer задаёт tracer; по умолчанию используется глобальный provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *CreateOrderService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithLogger задаёт logger сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *CreateOrderService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewCreateOrderService конструирует сервис с обязательными репозиториями.
func NewCreateOrderService(
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	orders domain.OrderRepository,
	opts ...Option,
) *CreateOrderService {
	s := &CreateOrderService{
		customers: customers,
		products:  products,
		orders:    orders,
		metrics:   nopRecorder{},
		tracer:    otel.Tracer(tracerName),
		logger:    log.WithField("component", "create-order"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute оформляет заказ. Повторный вызов с теми же данными создаёт ещё один заказ.
func (s *CreateOrderService) Execute(ctx context.Context, req CreateOrderRequest) (domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "CreateOrderService.Execute", trace.WithAttributes(
		attribute.String("order.customer_id", req.CustomerID),
		attribute.Int("order.lines", len(req.Products)),
	))
	defer span.End()

	logger := s.logger.WithFields(log.Fields{
		"customer_id": req.CustomerID,
		"lines":       len(req.Products),
	})
	start := time.Now()

	order, err := s.execute(ctx, req, logger)
	s.metrics.ObserveCreateDuration(time.Since(start))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.RecordOrderRejected(rejectReason(err))

		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			logger.WithField("reason", appErr.Kind).Info("order rejected")
		} else {
			logger.WithError(err).Error("failed to create order")
		}
		return domain.Order{}, err
	}

	units := 0
	for _, item := range order.OrderProducts {
		units += item.Quantity
	}
	s.metrics.RecordOrderCreated(len(order.OrderProducts), units)
	span.SetAttributes(attribute.String("order.id", order.ID))
	span.SetStatus(codes.Ok, "")
	logger.WithField("order_id", order.ID).Info("order created")

	return order, nil
}

func (s *CreateOrderService) execute(ctx context.Context, req CreateOrderRequest, logger *log.Entry) (domain.Order, error) {
	customer, err := s.customers.FindByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Order{}, domain.ErrCustomerNotFound
		}
		return domain.Order{}, fmt.Errorf("find customer: %w", err)
	}

	if len(req.Products) == 0 {
		return domain.Order{}, domain.ErrProductsNotFound
	}
	if err := validateLines(req.Products); err != nil {
		return domain.Order{}, err
	}

	if s.tx == nil {
		return s.place(ctx, customer, req.Products, logger)
	}

	var order domain.Order
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var placeErr error
		order, placeErr = s.place(ctx, customer, req.Products, logger)
		return placeErr
	})
	if err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// place проверяет каталог, сохраняет заказ и списывает остатки.
func (s *CreateOrderService) place(
	ctx context.Context,
	customer domain.Customer,
	lines []domain.OrderLineRequest,
	logger *log.Entry,
) (domain.Order, error) {
	ids := make([]string, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ID)
	}

	found, err := s.products.FindAllByID(ctx, ids)
	if err != nil {
		return domain.Order{}, fmt.Errorf("find products: %w", err)
	}
	if len(found) == 0 {
		return domain.Order{}, domain.ErrProductsNotFound
	}

	// Снимок каталога: цены и остатки читаются один раз и дальше не перечитываются.
	catalog := make(map[string]domain.Product, len(found))
	for _, product := range found {
		catalog[product.ID] = product
	}

	var missing []string
	for _, line := range lines {
		if _, ok := catalog[line.ID]; !ok {
			missing = append(missing, line.ID)
		}
	}
	if len(missing) > 0 {
		logger.WithField("missing_product_ids", missing).Debug("requested products are not in catalog")
		return domain.Order{}, domain.ErrProductsMissing
	}

	var unavailable []string
	for _, line := range lines {
		if line.Quantity > catalog[line.ID].Quantity {
			unavailable = append(unavailable, line.ID)
		}
	}
	if len(unavailable) > 0 {
		logger.WithField("unavailable_product_ids", unavailable).Debug("requested quantity exceeds stock")
		return domain.Order{}, domain.ErrInsufficientStock
	}

	inputs := make([]domain.OrderProductInput, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, domain.OrderProductInput{
			ProductID: line.ID,
			Quantity:  line.Quantity,
			Price:     catalog[line.ID].Price,
		})
	}

	order, err := s.orders.Create(ctx, domain.CreateOrderData{Customer: customer, Products: inputs})
	if err != nil {
		return domain.Order{}, fmt.Errorf("create order: %w", err)
	}

	quantities := make([]domain.ProductQuantity, 0, len(order.OrderProducts))
	for _, item := range order.OrderProducts {
		product, ok := catalog[item.ProductID]
		if !ok {
			return domain.Order{}, fmt.Errorf("order %s references product %s outside the catalog snapshot", order.ID, item.ProductID)
		}
		quantities = append(quantities, domain.ProductQuantity{
			ID:       item.ProductID,
			Quantity: product.Quantity - item.Quantity,
		})
	}

	if err := s.products.UpdateQuantity(ctx, quantities); err != nil {
		if s.tx == nil {
			// Заказ уже сохранён, остатки не списаны: без транзакции это не откатить.
			logger.WithError(err).WithField("order_id", order.ID).Error("order persisted but stock was not updated")
		}
		return domain.Order{}, fmt.Errorf("update product quantities: %w", err)
	}

	if s.outbox != nil {
		msg, err := newOrderCreatedMessage(order)
		if err != nil {
			return domain.Order{}, err
		}
		if _, err := s.outbox.Enqueue(ctx, msg); err != nil {
			return domain.Order{}, fmt.Errorf("enqueue order.created: %w", err)
		}
	}

	return order, nil
}

// validateLines отклоняет повторяющиеся товары и неположительные количества.
func validateLines(lines []domain.OrderLineRequest) error {
	seen := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
		if _, dup := seen[line.ID]; dup {
			return domain.ErrDuplicateProducts
		}
		seen[line.ID] = struct{}{}
	}
	return nil
}

func rejectReason(err error) string {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return string(appErr.Kind)
	}
	return "internal"
}
