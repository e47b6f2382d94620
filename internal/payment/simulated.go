package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SimulatedConfig controls the simulated provider.
type SimulatedConfig struct {
	// Latency is how long a confirmation takes.
	Latency time.Duration
	// Limit declines amounts above it when positive.
	Limit decimal.Decimal
}

type simulated struct {
	cfg    SimulatedConfig
	logger zerolog.Logger
}

// NewSimulated returns a provider that approves every payment up to the
// configured limit. It is used when no real provider is configured.
func NewSimulated(cfg SimulatedConfig, logger zerolog.Logger) Confirmer {
	return &simulated{
		cfg:    cfg,
		logger: logger.With().Str("component", "payment_simulator").Logger(),
	}
}

func (s *simulated) Confirm(ctx context.Context, req Request) error {
	if s.cfg.Latency > 0 {
		timer := time.NewTimer(s.cfg.Latency)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	if !req.Amount.IsPositive() {
		return &DeclinedError{Message: "Payment amount must be greater than zero"}
	}
	if s.cfg.Limit.IsPositive() && req.Amount.GreaterThan(s.cfg.Limit) {
		s.logger.Info().
			Str("amount", req.Amount.StringFixed(2)).
			Str("currency", req.Currency).
			Msg("simulated payment declined")
		return &DeclinedError{Message: fmt.Sprintf("Card declined: amount exceeds the limit of %s %s", s.cfg.Limit.StringFixed(2), req.Currency)}
	}

	s.logger.Info().
		Str("amount", req.Amount.StringFixed(2)).
		Str("currency", req.Currency).
		Msg("simulated payment confirmed")
	return nil
}
