package order

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// OrderCreatedEvent — полезная нагрузка события order.created.
type OrderCreatedEvent struct {
	OrderID    string             `json:"order_id"`
	CustomerID string             `json:"customer_id"`
	Products   []OrderCreatedLine `json:"products"`
	Total      decimal.Decimal    `json:"total"`
	CreatedAt  time.Time          `json:"created_at"`
}

// OrderCreatedLine — позиция в событии order.created.
type OrderCreatedLine struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func newOrderCreatedMessage(order domain.Order) (domain.OutboxMessage, error) {
	event := OrderCreatedEvent{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Products:   make([]OrderCreatedLine, 0, len(order.OrderProducts)),
		Total:      order.Total(),
		CreatedAt:  order.CreatedAt,
	}
	for _, item := range order.OrderProducts {
		event.Products = append(event.Products, OrderCreatedLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("marshal order.created event: %w", err)
	}

	return domain.OutboxMessage{
		AggregateType: domain.AggregateTypeOrder,
		AggregateID:   order.ID,
		EventType:     domain.EventTypeOrderCreated,
		Payload:       payload,
	}, nil
}
