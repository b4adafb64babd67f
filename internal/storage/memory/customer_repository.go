package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// CustomerRepository — in-memory реализация domain.CustomerRepository.
type CustomerRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Customer
}

// NewCustomerRepository возвращает in-memory репозиторий клиентов для локальной разработки и тестов.
func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{items: make(map[string]domain.Customer)}
}

// Create сохраняет клиента, если email ещё не занят.
func (r *CustomerRepository) Create(_ context.Context, customer domain.Customer) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.Email, customer.Email) {
			return domain.Customer{}, domain.ErrConflict
		}
	}

	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now
	r.items[customer.ID] = customer
	return customer, nil
}

// FindByID возвращает клиента или domain.ErrNotFound.
func (r *CustomerRepository) FindByID(_ context.Context, id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrNotFound
	}
	return customer, nil
}

// FindByEmail ищет клиента без учёта регистра email.
func (r *CustomerRepository) FindByEmail(_ context.Context, email string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, customer := range r.items {
		if strings.EqualFold(customer.Email, email) {
			return customer, nil
		}
	}
	return domain.Customer{}, domain.ErrNotFound
}

var _ domain.CustomerRepository = (*CustomerRepository)(nil)
