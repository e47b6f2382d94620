package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"orderdesk/internal/handler"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestRouter(ready ReadinessCheck) http.Handler {
	logger := zerolog.Nop()
	h := Handlers{
		Menu:     handler.NewMenuHandler(nil, logger),
		Checkout: handler.NewCheckoutHandler(nil, logger),
		Order:    handler.NewOrderHandler(nil, logger),
	}
	return New(h, ready, "secret", logger)
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRouter_Ready(t *testing.T) {
	tests := []struct {
		name           string
		ready          ReadinessCheck
		expectedStatus int
	}{
		{"No check", nil, http.StatusOK},
		{"Database reachable", func(ctx context.Context) error { return nil }, http.StatusOK},
		{"Database down", func(ctx context.Context) error { return errors.New("dial tcp: refused") }, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newTestRouter(tt.ready).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestRouter_RequiresAPIKey(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/not-a-uuid", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// An authorised request reaches the handler, which rejects the malformed ID
	// before touching the service.
	req := httptest.NewRequest(http.MethodGet, "/api/orders/not-a-uuid", nil)
	req.Header.Set("X-API-Key", "secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	r := newTestRouter(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/orders", nil)
	req.Header.Set("X-API-Key", "secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
