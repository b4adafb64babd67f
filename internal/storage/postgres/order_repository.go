package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

type orderRepository struct {
	store *Store
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{store: store}
}

func (r *orderRepository) Create(ctx context.Context, data domain.CreateOrderData) (domain.Order, error) {
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

	err := r.store.WithinTx(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, opTimeout)
		defer cancel()

		conn := r.store.conn(ctx)
		if _, err := conn.ExecContext(ctx, `
			INSERT INTO orders (id, customer_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4)
		`, order.ID, order.CustomerID, order.CreatedAt, order.UpdatedAt); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrConflict
			}
			return fmt.Errorf("insert order: %w", err)
		}

		for _, item := range order.OrderProducts {
			if _, err := conn.ExecContext(ctx, `
				INSERT INTO orders_products (id, order_id, product_id, quantity, price, created_at)
				VALUES ($1,$2,$3,$4,$5,$6)
			`, item.ID, item.OrderID, item.ProductID, item.Quantity, item.Price, item.CreatedAt); err != nil {
				return fmt.Errorf("insert order product %s: %w", item.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var order domain.Order
	err := r.store.conn(ctx).QueryRowContext(ctx, `
		SELECT o.id, o.customer_id, o.created_at, o.updated_at,
		       c.id, c.name, c.email, c.created_at, c.updated_at
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`, id).Scan(
		&order.ID, &order.CustomerID, &order.CreatedAt, &order.UpdatedAt,
		&order.Customer.ID, &order.Customer.Name, &order.Customer.Email,
		&order.Customer.CreatedAt, &order.Customer.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	items, err := r.loadProducts(ctx, order.ID)
	if err != nil {
		return domain.Order{}, err
	}
	order.OrderProducts = items

	return order, nil
}

func (r *orderRepository) loadProducts(ctx context.Context, orderID string) ([]domain.OrderProduct, error) {
	rows, err := r.store.conn(ctx).QueryContext(ctx, `
		SELECT id, order_id, product_id, quantity, price, created_at
		FROM orders_products
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order products: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderProduct, 0)
	for rows.Next() {
		var item domain.OrderProduct
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order product: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order products: %w", err)
	}

	return items, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
