package domain

import (
	"context"
	"time"
)

// CustomerRepository описывает хранилище клиентов.
type CustomerRepository interface {
	// Create сохраняет клиента и возвращает его с присвоенным ID. ErrConflict — если email занят.
	Create(ctx context.Context, customer Customer) (Customer, error)
	// FindByID возвращает клиента или ErrNotFound.
	FindByID(ctx context.Context, id string) (Customer, error)
	// FindByEmail возвращает клиента или ErrNotFound.
	FindByEmail(ctx context.Context, email string) (Customer, error)
}

// ProductRepository описывает каталог товаров.
type ProductRepository interface {
	// Create сохраняет товар и возвращает его с присвоенным ID. ErrConflict — если имя занято.
	Create(ctx context.Context, product Product) (Product, error)
	// FindByName возвращает товар или ErrNotFound.
	FindByName(ctx context.Context, name string) (Product, error)
	// FindAllByID возвращает найденные товары; отсутствующие ID просто пропускаются.
	FindAllByID(ctx context.Context, ids []string) ([]Product, error)
	// UpdateQuantity перезаписывает остатки указанных товаров абсолютными значениями.
	UpdateQuantity(ctx context.Context, quantities []ProductQuantity) error
}

// OrderRepository описывает хранилище заказов.
type OrderRepository interface {
	// Create сохраняет заказ с позициями и возвращает сохранённый заказ.
	Create(ctx context.Context, data CreateOrderData) (Order, error)
	// FindByID возвращает заказ с позициями или ErrNotFound.
	FindByID(ctx context.Context, id string) (Order, error)
}

// Transactor задаёт транзакционную границу: все вызовы репозиториев с ctx,
// переданным в fn, выполняются атомарно.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(ctx context.Context, event OutboxMessage) error
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(ctx context.Context, msg OutboxMessage) (OutboxMessage, error)
	PullPending(ctx context.Context, limit int) ([]OutboxMessage, error)
	Stats(ctx context.Context) (OutboxStats, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string) error
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}
