package router

import (
	"context"
	"net/http"
	"time"

	"orderdesk/internal/handler"
	"orderdesk/internal/middleware"

	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Menu     *handler.MenuHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
}

// ReadinessCheck reports whether dependencies are reachable.
type ReadinessCheck func(ctx context.Context) error

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, ready ReadinessCheck, apiKey string, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy"}`))
	})

	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ready(ctx); err != nil {
				logger.Warn().Err(err).Msg("readiness check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status": "unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ready"}`))
	})

	// Menu routes
	mux.HandleFunc("GET /api/menu-items", h.Menu.List)
	mux.HandleFunc("GET /api/menu-items/{id}", h.Menu.GetByID)

	// Checkout lookups per restaurant
	mux.HandleFunc("GET /api/restaurants/{id}", h.Checkout.Restaurant)
	mux.HandleFunc("GET /api/restaurants/{id}/zones", h.Checkout.Zones)
	mux.HandleFunc("POST /api/restaurants/{id}/zones/resolve", h.Checkout.ResolveZone)
	mux.HandleFunc("GET /api/restaurants/{id}/timing", h.Checkout.Timing)
	mux.HandleFunc("GET /api/restaurants/{id}/slots", h.Checkout.Slots)
	mux.HandleFunc("POST /api/restaurants/{id}/discounts/validate", h.Checkout.ValidateDiscount)
	mux.HandleFunc("POST /api/restaurants/{id}/quote", h.Checkout.Quote)

	// Order routes
	mux.HandleFunc("POST /api/orders", h.Order.Create)
	mux.HandleFunc("GET /api/orders/{id}", h.Order.GetByID)

	// Apply middleware in order: RequestID -> Recovery -> Logging -> CORS -> APIKeyAuth
	var handler http.Handler = mux
	handler = middleware.APIKeyAuth(apiKey, logger)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
