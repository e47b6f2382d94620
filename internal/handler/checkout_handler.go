package handler

import (
	"net/http"

	"orderdesk/internal/model"
	"orderdesk/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CheckoutHandler serves the lookups a checkout performs per restaurant.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Restaurant handles GET /api/restaurants/{id}.
func (h *CheckoutHandler) Restaurant(w http.ResponseWriter, r *http.Request) {
	id, ok := h.restaurantID(w, r)
	if !ok {
		return
	}
	rest, err := h.service.Restaurant(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve restaurant", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, rest)
}

// Zones handles GET /api/restaurants/{id}/zones.
func (h *CheckoutHandler) Zones(w http.ResponseWriter, r *http.Request) {
	id, ok := h.restaurantID(w, r)
	if !ok {
		return
	}
	zones, err := h.service.Zones(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve delivery zones", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, zones)
}

// Timing handles GET /api/restaurants/{id}/timing?orderType=&zoneId=.
func (h *CheckoutHandler) Timing(w http.ResponseWriter, r *http.Request) {
	id, ok := h.restaurantID(w, r)
	if !ok {
		return
	}
	orderType, zoneID, ok := h.timingParams(w, r)
	if !ok {
		return
	}
	timing, err := h.service.TimingProfile(r.Context(), id, orderType, zoneID)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve timing profile", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, timing)
}

// Slots handles GET /api/restaurants/{id}/slots?orderType=&zoneId=.
func (h *CheckoutHandler) Slots(w http.ResponseWriter, r *http.Request) {
	id, ok := h.restaurantID(w, r)
	if !ok {
		return
	}
	orderType, zoneID, ok := h.timingParams(w, r)
	if !ok {
		return
	}
	slots, err := h.service.Slots(r.Context(), id, orderType, zoneID)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve slots", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

// ResolveZone handles POST /api/restaurants/{id}/zones/resolve.
func (h *CheckoutHandler) ResolveZone(w http.ResponseWriter, r *http.Request) {
	id, ok := h.restaurantID(w, r)
	if !ok {
		return
	}
	var req model.ZoneResolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	if req.PostalCode == "" {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeMissingField, "postalCode is required", h.logger)
		return
	}
	res, err := h.service.ResolveZone(r.Context(), id, req.PostalCode, req.City)
	if err != nil {
		writeServiceError(w, r, err, "failed to resolve delivery zone", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ValidateDiscount handles POST /api/restaurants/{id}/discounts/validate.
// An unknown code is a 200 response with valid=false.
func (h *CheckoutHandler) ValidateDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := h.restaurantID(w, r)
	if !ok {
		return
	}
	var req model.DiscountValidationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	v, err := h.service.ValidateDiscount(r.Context(), id, req.Code)
	if err != nil {
		writeServiceError(w, r, err, "failed to validate discount code", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Quote handles POST /api/restaurants/{id}/quote.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	id, ok := h.restaurantID(w, r)
	if !ok {
		return
	}
	var req model.QuoteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return
	}
	q, err := h.service.Quote(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, r, err, "failed to compute quote", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *CheckoutHandler) restaurantID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, ok := pathUUID(r, "id")
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidParameter, "invalid restaurant ID format", h.logger)
	}
	return id, ok
}

// timingParams reads orderType (default pickup) and the optional zoneId.
func (h *CheckoutHandler) timingParams(w http.ResponseWriter, r *http.Request) (model.OrderType, *uuid.UUID, bool) {
	q := r.URL.Query()

	orderType := model.OrderType(q.Get("orderType"))
	if orderType == "" {
		orderType = model.OrderTypePickup
	}
	if !orderType.Valid() {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidParameter, "orderType must be pickup or delivery", h.logger)
		return "", nil, false
	}

	raw := q.Get("zoneId")
	if raw == "" {
		return orderType, nil, true
	}
	zoneID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidParameter, "invalid zoneId parameter", h.logger)
		return "", nil, false
	}
	return orderType, &zoneID, true
}
