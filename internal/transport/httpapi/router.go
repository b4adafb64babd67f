package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

type routerOptions struct {
	logger   *log.Entry
	observer RequestObserver
	tracer   trace.Tracer
}

// RouterOption настраивает middleware роутера.
type RouterOption func(*routerOptions)

// WithLogger задаёт logger для журнала запросов.
func WithLogger(logger *log.Entry) RouterOption {
	return func(o *routerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRequestObserver включает учёт запросов в метриках.
func WithRequestObserver(observer RequestObserver) RouterOption {
	return func(o *routerOptions) {
		o.observer = observer
	}
}

// WithTracer включает span на каждый запрос.
func WithTracer(tracer trace.Tracer) RouterOption {
	return func(o *routerOptions) {
		o.tracer = tracer
	}
}

// NewRouter собирает маршруты API.
func NewRouter(handler *Handler, opts ...RouterOption) http.Handler {
	options := routerOptions{logger: log.WithField("component", "http-api")}
	for _, opt := range opts {
		opt(&options)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if options.tracer != nil {
		r.Use(Tracing(options.tracer))
	}
	r.Use(RequestLogger(options.logger))
	if options.observer != nil {
		r.Use(Metrics(options.observer))
	}
	r.Use(middleware.Recoverer)

	r.Post("/customers", handler.CreateCustomer)
	r.Post("/products", handler.CreateProduct)
	r.Post("/orders", handler.CreateOrder)
	r.Get("/orders/{id}", handler.GetOrder)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Status: "error", Message: "Route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Status: "error", Message: "Method not allowed"})
	})

	return r
}
