package domain

const (
	// AggregateTypeOrder — тип агрегата для событий заказа в outbox.
	AggregateTypeOrder = "order"
	// EventTypeOrderCreated публикуется после успешного оформления заказа.
	EventTypeOrderCreated = "order.created"
)
