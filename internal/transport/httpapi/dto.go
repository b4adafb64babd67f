package httpapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

type createCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// createProductRequest принимает цену и строкой ("10.50"), и числом (10.5).
type createProductRequest struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type createOrderRequest struct {
	CustomerID string                    `json:"customer_id"`
	Products   []domain.OrderLineRequest `json:"products"`
}

// CustomerResponse — представление клиента в ответах API.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProductResponse — представление товара каталога.
type ProductResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OrderResponse — заказ вместе с клиентом и позициями.
type OrderResponse struct {
	ID            string                 `json:"id"`
	Customer      CustomerResponse       `json:"customer"`
	OrderProducts []OrderProductResponse `json:"order_products"`
	Total         decimal.Decimal        `json:"total"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

type OrderProductResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// ErrorResponse — тело ответа при ошибке.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func toCustomerResponse(c domain.Customer) CustomerResponse {
	return CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  p.Quantity,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func toOrderResponse(o domain.Order) OrderResponse {
	items := make([]OrderProductResponse, len(o.OrderProducts))
	for i, item := range o.OrderProducts {
		items[i] = OrderProductResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
	}
	return OrderResponse{
		ID:            o.ID,
		Customer:      toCustomerResponse(o.Customer),
		OrderProducts: items,
		Total:         o.Total(),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}
