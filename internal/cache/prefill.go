package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orderdesk/internal/checkout"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	prefillKeyPrefix  = "prefill:"
	DefaultPrefillTTL = 90 * 24 * time.Hour
)

type prefillStore struct {
	client      redis.Cmdable
	customerKey string
	ttl         time.Duration
	logger      zerolog.Logger
}

// NewPrefillStore returns a checkout.PrefillStore that keeps the last used
// contact and address per restaurant for one customer.
func NewPrefillStore(client redis.Cmdable, customerKey string, ttl time.Duration, logger zerolog.Logger) checkout.PrefillStore {
	if ttl <= 0 {
		ttl = DefaultPrefillTTL
	}
	return &prefillStore{
		client:      client,
		customerKey: customerKey,
		ttl:         ttl,
		logger:      logger.With().Str("component", "prefill_store").Logger(),
	}
}

func (s *prefillStore) key(restaurantID uuid.UUID) string {
	return prefillKeyPrefix + restaurantID.String() + ":" + s.customerKey
}

// Load returns nil without error when nothing is stored.
func (s *prefillStore) Load(ctx context.Context, restaurantID uuid.UUID) (*checkout.Prefill, error) {
	raw, err := s.client.Get(ctx, s.key(restaurantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load prefill: %w", err)
	}

	var p checkout.Prefill
	if err := json.Unmarshal(raw, &p); err != nil {
		// A corrupt entry is dropped rather than blocking checkout.
		s.logger.Warn().Err(err).Str("key", s.key(restaurantID)).Msg("discarding unreadable prefill")
		_ = s.client.Del(ctx, s.key(restaurantID)).Err()
		return nil, nil
	}
	return &p, nil
}

// Save stores p and refreshes its expiry.
func (s *prefillStore) Save(ctx context.Context, restaurantID uuid.UUID, p checkout.Prefill) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode prefill: %w", err)
	}
	if err := s.client.Set(ctx, s.key(restaurantID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save prefill: %w", err)
	}
	return nil
}
