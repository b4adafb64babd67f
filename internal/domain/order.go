package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLineRequest — запрошенная клиентом позиция: товар и количество.
type OrderLineRequest struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// OrderProductInput — позиция заказа после валидации, с ценой из снимка каталога.
type OrderProductInput struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// CreateOrderData передаётся в OrderRepository.Create.
type CreateOrderData struct {
	Customer Customer
	Products []OrderProductInput
}

// OrderProduct представляет сохранённую позицию заказа.
type OrderProduct struct {
	ID        string
	OrderID   string
	ProductID string
	Quantity  int
	// Price — цена за единицу на момент оформления заказа.
	Price     decimal.Decimal
	CreatedAt time.Time
}

// Order агрегирует заказ клиента и его позиции.
type Order struct {
	ID            string
	CustomerID    string
	Customer      Customer
	OrderProducts []OrderProduct
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Total возвращает сумму заказа: Σ quantity * price.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.OrderProducts {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
