package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// OrderRepository — простая in-memory реализация domain.OrderRepository.
type OrderRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{items: make(map[string]domain.Order)}
}

// Create присваивает заказу и позициям идентификаторы и сохраняет копию.
func (r *OrderRepository) Create(ctx context.Context, data domain.CreateOrderData) (domain.Order, error) {
	now := time.Now().UTC()
	order := domain.Order{
		ID:            uuid.NewString(),
		CustomerID:    data.Customer.ID,
		Customer:      data.Customer,
		OrderProducts: make([]domain.OrderProduct, 0, len(data.Products)),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, p := range data.Products {
		order.OrderProducts = append(order.OrderProducts, domain.OrderProduct{
			ID:        uuid.NewString(),
			OrderID:   order.ID,
			ProductID: p.ProductID,
			Quantity:  p.Quantity,
			Price:     p.Price,
			CreatedAt: now,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Сохраняем копию, чтобы вызывающий код не мог изменить позиции в хранилище.
	r.items[order.ID] = cloneOrder(order)
	recordUndo(ctx, func() {
		r.mu.Lock()
		delete(r.items, order.ID)
		r.mu.Unlock()
	})
	return order, nil
}

// FindByID возвращает заказ или domain.ErrNotFound.
func (r *OrderRepository) FindByID(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrNotFound
	}
	return cloneOrder(order), nil
}

// Count возвращает количество сохранённых заказов (используется в тестах).
func (r *OrderRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func cloneOrder(order domain.Order) domain.Order {
	order.OrderProducts = slices.Clone(order.OrderProducts)
	return order
}

var _ domain.OrderRepository = (*OrderRepository)(nil)
