package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/biggslaundromat/laundromat/docs"
	"github.com/biggslaundromat/laundromat/internal/service/models/catalog"
	"github.com/biggslaundromat/laundromat/internal/service/models/order"
	createorder "github.com/biggslaundromat/laundromat/internal/transport/http/v1/create_order"
	getorder "github.com/biggslaundromat/laundromat/internal/transport/http/v1/get_order"
	getservice "github.com/biggslaundromat/laundromat/internal/transport/http/v1/get_service"
	"github.com/biggslaundromat/laundromat/internal/transport/http/v1/health"
	listservices "github.com/biggslaundromat/laundromat/internal/transport/http/v1/list_services"
	trackorder "github.com/biggslaundromat/laundromat/internal/transport/http/v1/track_order"
	updateorderstatus "github.com/biggslaundromat/laundromat/internal/transport/http/v1/update_order_status"
	"github.com/biggslaundromat/laundromat/pkg/http/middleware/trace"
	"github.com/biggslaundromat/laundromat/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const readHeaderTimeout = 10 * time.Second

type orderService interface {
	CreateOrder(ctx context.Context, req order.CreateRequest) (order.Confirmation, error)
	GetOrder(ctx context.Context, id int64) (order.Order, error)
	TrackOrder(ctx context.Context, trackingNumber string) (order.Order, error)
	UpdateStatus(ctx context.Context, id int64, next order.Status, notes string) (order.Order, error)
}

type catalogService interface {
	ListServices(ctx context.Context, category string) ([]catalog.Group, error)
	GetService(ctx context.Context, id int64) (catalog.Service, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type HTTPTransport struct {
	server  *http.Server
	router  *chi.Mux
	orders  orderService
	catalog catalogService
	db      pinger
}

func NewHTTPTransport(orders orderService, catalog catalogService, db pinger) *HTTPTransport {
	router := newRouter()
	server := newServer(router)

	return &HTTPTransport{
		server:  server,
		router:  router,
		orders:  orders,
		catalog: catalog,
		db:      db,
	}
}

func (h *HTTPTransport) Run() error {
	slog.Info("HTTP server listening", "addr", h.server.Addr)

	return h.server.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (h *HTTPTransport) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

// Handler exposes the router, mostly for tests.
func (h *HTTPTransport) Handler() http.Handler {
	return h.router
}

// RegisterRoutes registers the routes for the HTTPTransport.
func (h *HTTPTransport) RegisterRoutes() {
	h.router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/api/openapi.json")))

	h.router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/openapi.json", h.openAPI)

		r.Get("/services", h.listServices)
		r.Get("/services/{id}", h.getService)

		r.Post("/orders", h.createOrder)
		r.Get("/orders/{id}", h.getOrder)
		r.Put("/orders/{id}/status", h.updateOrderStatus)

		r.Get("/track/{tracking_number}", h.trackOrder)
	})
}

func (h *HTTPTransport) health(w http.ResponseWriter, r *http.Request) {
	health.Health(w, r, h.db)
}

func (h *HTTPTransport) openAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(docs.OpenAPI); err != nil {
		slog.Error("Error writing openapi document", "error", err)
	}
}

func (h *HTTPTransport) listServices(w http.ResponseWriter, r *http.Request) {
	listservices.ListServices(w, r, h.catalog)
}

func (h *HTTPTransport) getService(w http.ResponseWriter, r *http.Request) {
	getservice.GetService(w, r, h.catalog)
}

func (h *HTTPTransport) createOrder(w http.ResponseWriter, r *http.Request) {
	createorder.CreateOrder(w, r, h.orders)
}

func (h *HTTPTransport) getOrder(w http.ResponseWriter, r *http.Request) {
	getorder.GetOrder(w, r, h.orders)
}

func (h *HTTPTransport) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	updateorderstatus.UpdateOrderStatus(w, r, h.orders)
}

func (h *HTTPTransport) trackOrder(w http.ResponseWriter, r *http.Request) {
	trackorder.TrackOrder(w, r, h.orders)
}

func newRouter() *chi.Mux {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.NewLoggerMiddleware(slog.Default()))
	router.Use(trace.NewTraceMiddleware("http"))
	router.Use(middleware.Recoverer)

	c := cors.New(cors.Options{
		AllowedOrigins:   viper.GetStringSlice("server.http.cors.allowed_origins"),
		AllowedMethods:   viper.GetStringSlice("server.http.cors.allowed_methods"),
		AllowedHeaders:   viper.GetStringSlice("server.http.cors.allowed_headers"),
		ExposedHeaders:   viper.GetStringSlice("server.http.cors.exposed_headers"),
		AllowCredentials: viper.GetBool("server.http.cors.allow_credentials"),
		MaxAge:           viper.GetInt("server.http.cors.max_age"),
	})

	router.Use(c.Handler)

	return router
}

func newServer(router http.Handler) *http.Server {
	return &http.Server{
		Addr:              "0.0.0.0:" + viper.GetString("server.http.port"),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
