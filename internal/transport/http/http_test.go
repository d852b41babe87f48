package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/biggslaundromat/laundromat/internal/service/apperr"
	"github.com/biggslaundromat/laundromat/internal/service/models/catalog"
	"github.com/biggslaundromat/laundromat/internal/service/models/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubOrders struct {
	trackedNumber string
	updatedID     int64
	updatedTo     order.Status
	updatedNotes  string
}

func (s *stubOrders) CreateOrder(context.Context, order.CreateRequest) (order.Confirmation, error) {
	return order.Confirmation{OrderID: 1, TrackingNumber: "BGAAAA2222"}, nil
}

func (s *stubOrders) GetOrder(_ context.Context, id int64) (order.Order, error) {
	if id != 7 {
		return order.Order{}, apperr.NotFound("order", id)
	}

	return order.Order{ID: 7, TrackingNumber: "BGAAAA2222", Status: order.StatusPending}, nil
}

func (s *stubOrders) TrackOrder(_ context.Context, trackingNumber string) (order.Order, error) {
	s.trackedNumber = trackingNumber

	return order.Order{ID: 7, TrackingNumber: trackingNumber, Status: order.StatusPending}, nil
}

func (s *stubOrders) UpdateStatus(_ context.Context, id int64, next order.Status, notes string) (order.Order, error) {
	s.updatedID, s.updatedTo, s.updatedNotes = id, next, notes

	return order.Order{ID: id, Status: next}, nil
}

type stubCatalog struct {
	category string
}

func (s *stubCatalog) ListServices(_ context.Context, category string) ([]catalog.Group, error) {
	s.category = category

	return nil, nil
}

func (s *stubCatalog) GetService(_ context.Context, id int64) (catalog.Service, error) {
	return catalog.Service{ID: id, Name: "Duvet Cleaning", IsActive: true}, nil
}

type stubDB struct {
	err error
}

func (s stubDB) Ping(context.Context) error {
	return s.err
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newTestTransport(orders *stubOrders, cat *stubCatalog, db stubDB) http.Handler {
	h := NewHTTPTransport(orders, cat, db)
	h.RegisterRoutes()

	return h.Handler()
}

func serve(t *testing.T, handler http.Handler, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") && target != "/api/openapi.json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}

	return rec, env
}

func TestHealth(t *testing.T) {
	t.Run("database reachable", func(t *testing.T) {
		handler := newTestTransport(&stubOrders{}, &stubCatalog{}, stubDB{})

		rec, env := serve(t, handler, http.MethodGet, "/api/health", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, env.Success)
		assert.Contains(t, string(env.Data), `"database":"connected"`)
	})

	t.Run("database unreachable", func(t *testing.T) {
		handler := newTestTransport(&stubOrders{}, &stubCatalog{}, stubDB{err: errors.New("connection refused")})

		rec, env := serve(t, handler, http.MethodGet, "/api/health", "")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.False(t, env.Success)
		assert.Contains(t, string(env.Data), `"status":"unhealthy"`)
	})
}

func TestRoutes(t *testing.T) {
	orders := &stubOrders{}
	cat := &stubCatalog{}
	handler := newTestTransport(orders, cat, stubDB{})

	t.Run("track upper-cases the tracking number", func(t *testing.T) {
		rec, env := serve(t, handler, http.MethodGet, "/api/track/bgaaaa2222", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Order found", env.Message)
		assert.Equal(t, "BGAAAA2222", orders.trackedNumber)
	})

	t.Run("get order", func(t *testing.T) {
		rec, _ := serve(t, handler, http.MethodGet, "/api/orders/7", "")
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, env := serve(t, handler, http.MethodGet, "/api/orders/8", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Order not found", env.Message)
	})

	t.Run("update status", func(t *testing.T) {
		rec, _ := serve(t, handler, http.MethodPut, "/api/orders/7/status", `{"status":"confirmed","notes":"Picked up"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(7), orders.updatedID)
		assert.Equal(t, order.StatusConfirmed, orders.updatedTo)
		assert.Equal(t, "Picked up", orders.updatedNotes)
	})

	t.Run("list services passes category", func(t *testing.T) {
		rec, _ := serve(t, handler, http.MethodGet, "/api/services?category=auto_detailing", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "auto_detailing", cat.category)
	})

	t.Run("get service", func(t *testing.T) {
		rec, env := serve(t, handler, http.MethodGet, "/api/services/3", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, string(env.Data), `"name":"Duvet Cleaning"`)
	})

	t.Run("create order", func(t *testing.T) {
		rec, env := serve(t, handler, http.MethodPost, "/api/orders",
			`{"customer_name":"Jane","customer_phone":"0712345678","items":[{"service_id":1}]}`)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "Order created successfully", env.Message)
	})

	t.Run("openapi document", func(t *testing.T) {
		rec, _ := serve(t, handler, http.MethodGet, "/api/openapi.json", "")

		require.Equal(t, http.StatusOK, rec.Code)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, "3.0.3", doc["openapi"])
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec, _ := serve(t, handler, http.MethodDelete, "/api/orders/7", "")

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}
