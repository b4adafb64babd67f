package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
	"github.com/vladislavdragonenkov/marketplace/internal/service/customer"
	"github.com/vladislavdragonenkov/marketplace/internal/service/order"
	"github.com/vladislavdragonenkov/marketplace/internal/service/product"
)

const maxBodyBytes = 1 << 20

// CustomerCreator регистрирует клиента.
type CustomerCreator interface {
	Execute(ctx context.Context, req customer.CreateCustomerRequest) (domain.Customer, error)
}

// ProductCreator добавляет товар в каталог.
type ProductCreator interface {
	Execute(ctx context.Context, req product.CreateProductRequest) (domain.Product, error)
}

// OrderCreator оформляет заказ.
type OrderCreator interface {
	Execute(ctx context.Context, req order.CreateOrderRequest) (domain.Order, error)
}

// OrderFinder ищет заказ по идентификатору.
type OrderFinder interface {
	Execute(ctx context.Context, id string) (domain.Order, error)
}

// Services — прикладные сценарии, которые обслуживает API.
type Services struct {
	CreateCustomer CustomerCreator
	CreateProduct  ProductCreator
	CreateOrder    OrderCreator
	FindOrder      OrderFinder
}

// Handler переводит HTTP-запросы в вызовы сервисов.
type Handler struct {
	services Services
	logger   *log.Entry
}

func NewHandler(services Services, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	return &Handler{services: services, logger: logger}
}

func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.services.CreateCustomer.Execute(r.Context(), customer.CreateCustomerRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCustomerResponse(created))
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.services.CreateProduct.Execute(r.Context(), product.CreateProductRequest{
		Name:     req.Name,
		Price:    req.Price,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProductResponse(created))
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !h.decode(w, r, &req) {
		return
	}

	created, err := h.services.CreateOrder.Execute(r.Context(), order.CreateOrderRequest{
		CustomerID: req.CustomerID,
		Products:   req.Products,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(created))
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	found, err := h.services.FindOrder.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(found))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Status: "error", Message: "Invalid JSON body"})
		return false
	}
	return true
}

// writeError отдаёт клиенту текст прикладной ошибки; детали внутренних ошибок остаются в логе.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := domain.StatusCode(err)

	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		writeJSON(w, status, ErrorResponse{Status: "error", Message: appErr.Message})
		return
	}

	h.logger.WithFields(log.Fields{
		"request_id": middleware.GetReqID(r.Context()),
		"method":     r.Method,
		"path":       r.URL.Path,
	}).WithError(err).Error("request failed")
	writeJSON(w, status, ErrorResponse{Status: "error", Message: "Internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
