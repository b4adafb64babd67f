package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// FindOrderService возвращает оформленный заказ по идентификатору.
type FindOrderService struct {
	orders domain.OrderRepository
}

func NewFindOrderService(orders domain.OrderRepository) *FindOrderService {
	return &FindOrderService{orders: orders}
}

func (s *FindOrderService) Execute(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("find order %s: %w", id, err)
	}
	return order, nil
}
