package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// ProductRepository — in-memory каталог товаров.
type ProductRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository создаёт пустой in-memory каталог.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{items: make(map[string]domain.Product)}
}

// Create добавляет товар, если имя ещё не занято.
func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.Name, product.Name) {
			return domain.Product{}, domain.ErrConflict
		}
	}

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.items[product.ID] = product
	recordUndo(ctx, r.undoPut(product.ID, domain.Product{}, false))
	return product, nil
}

// FindByName ищет товар по имени без учёта регистра.
func (r *ProductRepository) FindByName(_ context.Context, name string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, product := range r.items {
		if strings.EqualFold(product.Name, name) {
			return product, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

// FindAllByID возвращает найденные товары в порядке запроса, без повторов.
func (r *ProductRepository) FindAllByID(_ context.Context, ids []string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if product, ok := r.items[id]; ok {
			result = append(result, product)
		}
	}
	return result, nil
}

// UpdateQuantity перезаписывает остатки. Если хотя бы одного товара нет, ничего не меняется.
func (r *ProductRepository) UpdateQuantity(ctx context.Context, quantities []domain.ProductQuantity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, q := range quantities {
		if _, ok := r.items[q.ID]; !ok {
			return fmt.Errorf("update quantity of product %s: %w", q.ID, domain.ErrNotFound)
		}
	}

	now := time.Now().UTC()
	for _, q := range quantities {
		product := r.items[q.ID]
		recordUndo(ctx, r.undoPut(q.ID, product, true))
		product.Quantity = q.Quantity
		product.UpdatedAt = now
		r.items[q.ID] = product
	}
	return nil
}

// undoPut возвращает откат ключа id к прежнему значению или к его отсутствию.
func (r *ProductRepository) undoPut(id string, prev domain.Product, existed bool) func() {
	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if existed {
			r.items[id] = prev
			return
		}
		delete(r.items, id)
	}
}

var _ domain.ProductRepository = (*ProductRepository)(nil)
