package service

import (
	"context"
	"fmt"

	"orderdesk/internal/model"
	"orderdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// menuService implements MenuService.
type menuService struct {
	menuRepo repository.MenuRepository
	logger   zerolog.Logger
}

// NewMenuService creates a new menu service.
func NewMenuService(menuRepo repository.MenuRepository, logger zerolog.Logger) MenuService {
	return &menuService{
		menuRepo: menuRepo,
		logger:   logger.With().Str("service", "menu").Logger(),
	}
}

// GetByRestaurant retrieves a restaurant's menu with pagination.
func (s *menuService) GetByRestaurant(ctx context.Context, restaurantID uuid.UUID, limit, offset int) ([]model.MenuItem, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.menuRepo.GetByRestaurant(ctx, restaurantID, limit, offset)
	if err != nil {
		s.logger.Error().Err(err).
			Str("restaurant_id", restaurantID.String()).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to get menu")
		return nil, fmt.Errorf("failed to get menu: %w", err)
	}

	s.logger.Debug().
		Int("count", len(items)).
		Int("limit", limit).
		Int("offset", offset).
		Msg("retrieved menu items")

	return items, nil
}

// GetByID retrieves a single menu item by ID.
func (s *menuService) GetByID(ctx context.Context, id string) (*model.MenuItem, error) {
	if id == "" {
		s.logger.Warn().Msg("menu item ID is empty")
		return nil, model.ErrMenuItemNotFound
	}

	item, err := s.menuRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("menu_item_id", id).Msg("failed to get menu item by ID")
		return nil, fmt.Errorf("failed to get menu item: %w", err)
	}

	if item == nil {
		s.logger.Debug().Str("menu_item_id", id).Msg("menu item not found")
		return nil, model.ErrMenuItemNotFound
	}

	return item, nil
}
