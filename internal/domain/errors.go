package domain

import (
	"errors"
	"net/http"
	"strings"
)

// ErrorKind классифицирует прикладные ошибки для вызывающей стороны.
type ErrorKind string

const (
	KindCustomerNotFound  ErrorKind = "customer_not_found"
	KindProductsNotFound  ErrorKind = "products_not_found"
	KindProductsMissing   ErrorKind = "products_missing"
	KindInsufficientStock ErrorKind = "insufficient_stock"
	KindDuplicateProducts ErrorKind = "duplicate_products"
	KindInvalidQuantity   ErrorKind = "invalid_quantity"
	KindOrderNotFound     ErrorKind = "order_not_found"
	KindEmailInUse        ErrorKind = "email_in_use"
	KindProductNameInUse  ErrorKind = "product_name_in_use"
	KindValidation        ErrorKind = "validation"
)

// AppError — прикладная ошибка с сообщением для клиента и HTTP-статусом.
type AppError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return e.Message
}

// Is сравнивает ошибки по Kind, поэтому errors.Is работает и для копий с другим текстом.
func (e *AppError) Is(target error) bool {
	var other *AppError
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// NewValidationError создаёт ошибку валидации входных данных (400).
func NewValidationError(message string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, StatusCode: http.StatusBadRequest}
}

// JoinValidationErrors сводит ошибки Validate в одну ошибку валидации; nil, если ошибок нет.
func JoinValidationErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return NewValidationError(strings.Join(messages, "; "))
}

var (
	// ErrCustomerNotFound — клиент с указанным идентификатором не существует.
	ErrCustomerNotFound = &AppError{Kind: KindCustomerNotFound, Message: "Customer not found", StatusCode: http.StatusBadRequest}
	// ErrProductsNotFound — каталог не вернул ни одного из запрошенных товаров.
	ErrProductsNotFound = &AppError{Kind: KindProductsNotFound, Message: "Products not found", StatusCode: http.StatusBadRequest}
	// ErrProductsMissing — часть запрошенных товаров отсутствует в каталоге.
	ErrProductsMissing = &AppError{Kind: KindProductsMissing, Message: "Some products were not found", StatusCode: http.StatusNotFound}
	// ErrInsufficientStock — запрошенное количество превышает остаток.
	ErrInsufficientStock = &AppError{Kind: KindInsufficientStock, Message: "Some products are not available at the moment", StatusCode: http.StatusBadRequest}
	// ErrDuplicateProducts — один и тот же товар указан в заказе несколько раз.
	ErrDuplicateProducts = &AppError{Kind: KindDuplicateProducts, Message: "Products must not be repeated in one order", StatusCode: http.StatusBadRequest}
	// ErrInvalidQuantity — количество позиции должно быть больше нуля.
	ErrInvalidQuantity = &AppError{Kind: KindInvalidQuantity, Message: "Product quantity must be greater than zero", StatusCode: http.StatusBadRequest}
	// ErrOrderNotFound — заказ с указанным идентификатором не найден.
	ErrOrderNotFound = &AppError{Kind: KindOrderNotFound, Message: "Order not found", StatusCode: http.StatusNotFound}
	// ErrEmailInUse — клиент с таким email уже зарегистрирован.
	ErrEmailInUse = &AppError{Kind: KindEmailInUse, Message: "Email already in use", StatusCode: http.StatusBadRequest}
	// ErrProductNameInUse — товар с таким названием уже есть в каталоге.
	ErrProductNameInUse = &AppError{Kind: KindProductNameInUse, Message: "Product with this name already exists", StatusCode: http.StatusBadRequest}
)

var (
	// ErrNotFound возвращается репозиториями, когда запись отсутствует.
	ErrNotFound = errors.New("record not found")
	// ErrConflict сигнализирует о нарушении уникальности при сохранении.
	ErrConflict = errors.New("record already exists")
	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// StatusCode возвращает HTTP-статус для ошибки; не-прикладные ошибки считаются внутренними.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
