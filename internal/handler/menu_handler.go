package handler

import (
	"net/http"

	"orderdesk/internal/model"
	"orderdesk/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MenuHandler handles menu-related HTTP requests.
type MenuHandler struct {
	service service.MenuService
	logger  zerolog.Logger
}

// NewMenuHandler creates a new menu handler.
func NewMenuHandler(service service.MenuService, logger zerolog.Logger) *MenuHandler {
	return &MenuHandler{
		service: service,
		logger:  logger.With().Str("handler", "menu").Logger(),
	}
}

// List handles GET /api/menu-items?restaurantId= requests with pagination.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	restaurantID, err := uuid.Parse(r.URL.Query().Get("restaurantId"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidParameter, "invalid restaurantId parameter", h.logger)
		return
	}

	limit, ok := queryInt(r, "limit", 0)
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidParameter, "invalid limit parameter", h.logger)
		return
	}
	offset, ok := queryInt(r, "offset", 0)
	if !ok {
		writeError(w, r, http.StatusBadRequest, model.ErrCodeInvalidParameter, "invalid offset parameter", h.logger)
		return
	}

	items, err := h.service.GetByRestaurant(r.Context(), restaurantID, limit, offset)
	if err != nil {
		writeServiceError(w, r, err, "failed to retrieve menu", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// GetByID handles GET /api/menu-items/{id} requests.
func (h *MenuHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if err == model.ErrMenuItemNotFound {
			writeError(w, r, http.StatusNotFound, model.ErrCodeMenuItemNotFound, "menu item not found", h.logger)
			return
		}
		writeServiceError(w, r, err, "failed to retrieve menu item", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, item)
}
