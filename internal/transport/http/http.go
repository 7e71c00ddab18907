package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	"github.com/tokyogo/backend/internal/service/models/category"
	"github.com/tokyogo/backend/internal/service/models/order"
	"github.com/tokyogo/backend/internal/service/models/product"
	"github.com/tokyogo/backend/internal/service/models/status"
	catalogtransport "github.com/tokyogo/backend/internal/transport/http/catalog"
	createorder "github.com/tokyogo/backend/internal/transport/http/create_order"
	getorder "github.com/tokyogo/backend/internal/transport/http/get_order"
	"github.com/tokyogo/backend/internal/transport/http/httperr"
	listorders "github.com/tokyogo/backend/internal/transport/http/list_orders"
	updatestatus "github.com/tokyogo/backend/internal/transport/http/update_status"
	"github.com/tokyogo/backend/pkg/http/middleware/trace"
	"github.com/tokyogo/backend/pkg/logger"
)

type orderService interface {
	Submit(ctx context.Context, o order.Order) (order.Order, error)
	GetOrder(ctx context.Context, id int64) (*order.Order, error)
	ListOrders(ctx context.Context, limit int) ([]order.Order, error)
	SetStatus(ctx context.Context, id int64, newStatus status.Status) (*order.Order, error)
}

type catalogService interface {
	ListCategories(ctx context.Context) ([]category.Category, error)
	ListProducts(ctx context.Context, categoryID int64) ([]product.Product, error)
	SearchProducts(ctx context.Context, query string) ([]product.Product, error)
	CreateProduct(ctx context.Context, p product.Product) (int64, error)
	DeactivateProduct(ctx context.Context, id int64) error
}

type notifier interface {
	Notify(ctx context.Context, o order.Order)
}

type HTTPTransport struct {
	server   *http.Server
	router   *chi.Mux
	orderSvc orderService
	catalog  catalogService
	notifier notifier
}

func NewHTTPTransport(orderSvc orderService, catalog catalogService, notifier notifier) *HTTPTransport {
	router := newRouter()
	server := newServer(router)
	return &HTTPTransport{
		server:   server,
		router:   router,
		orderSvc: orderSvc,
		catalog:  catalog,
		notifier: notifier,
	}
}

func (h *HTTPTransport) Run() error {
	return h.server.ListenAndServe()
}

func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/", h.root)
	h.router.Get("/health", h.root)

	h.router.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.listCategories)
		r.Get("/products", h.listProducts)
		r.Get("/search", h.searchProducts)

		r.Post("/orders", h.createOrder)
		r.Get("/orders/{id}", h.getOrder)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/orders", h.listOrders)
			r.Put("/orders/{id}/status", h.updateStatus)
			r.Post("/products", h.createProduct)
			r.Delete("/products/{id}", h.deleteProduct)
		})
	})
}

func (h *HTTPTransport) root(w http.ResponseWriter, _ *http.Request) {
	httperr.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "app": "TokyoGo"})
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.orderSvc, h.notifier)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.orderSvc)
}

func (h *HTTPTransport) listOrders(w http.ResponseWriter, r *http.Request) {
	listorders.ListOrders(w, r, h.orderSvc)
}

func (h *HTTPTransport) updateStatus(w http.ResponseWriter, r *http.Request) {
	updatestatus.UpdateStatus(w, r, h.orderSvc)
}

func (h *HTTPTransport) listCategories(w http.ResponseWriter, r *http.Request) {
	catalogtransport.ListCategories(w, r, h.catalog)
}

func (h *HTTPTransport) listProducts(w http.ResponseWriter, r *http.Request) {
	catalogtransport.ListProducts(w, r, h.catalog)
}

func (h *HTTPTransport) searchProducts(w http.ResponseWriter, r *http.Request) {
	catalogtransport.SearchProducts(w, r, h.catalog)
}

func (h *HTTPTransport) createProduct(w http.ResponseWriter, r *http.Request) {
	catalogtransport.CreateProduct(w, r, h.catalog)
}

func (h *HTTPTransport) deleteProduct(w http.ResponseWriter, r *http.Request) {
	catalogtransport.DeleteProduct(w, r, h.catalog)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware)

	allowedOrigins := viper.GetStringSlice("server.http.cors.allowed_origins")
	allowedMethods := viper.GetStringSlice("server.http.cors.allowed_methods")
	allowedHeaders := viper.GetStringSlice("server.http.cors.allowed_headers")
	exposedHeaders := viper.GetStringSlice("server.http.cors.exposed_headers")
	allowCredentials := viper.GetBool("server.http.cors.allow_credentials")
	maxAge := viper.GetInt("server.http.cors.max_age")

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   allowedMethods,
		AllowedHeaders:   allowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: allowCredentials,
		MaxAge:           maxAge,
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:    "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler: router,
	}
}
