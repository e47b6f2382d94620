// Package payment defines the contract of the external payment provider
// used to confirm card payments before an order is created.
package payment

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultTimeout bounds a confirmation round trip.
const DefaultTimeout = 5 * time.Second

// Request is what the provider needs to confirm a payment.
type Request struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
}

// Confirmer confirms a payment with the external provider. A nil error means
// the payment succeeded.
type Confirmer interface {
	Confirm(ctx context.Context, req Request) error
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, req Request) error

// Confirm calls f.
func (f ConfirmerFunc) Confirm(ctx context.Context, req Request) error {
	return f(ctx, req)
}

// DeclinedError carries the provider's message, shown to the customer unchanged.
type DeclinedError struct {
	Message string
}

func (e *DeclinedError) Error() string {
	return e.Message
}

// ErrTimeout is reported when the provider does not answer in time.
var ErrTimeout = &DeclinedError{Message: "The payment provider did not respond in time, please try again"}

// Message returns the text to show for a failed confirmation: the provider's
// own message for declines, a generic notice otherwise.
func Message(err error) string {
	var declined *DeclinedError
	if errors.As(err, &declined) {
		return declined.Message
	}
	return "Payment could not be confirmed: " + err.Error()
}

type timeoutConfirmer struct {
	next    Confirmer
	timeout time.Duration
}

// WithTimeout wraps next so each confirmation is abandoned after timeout.
func WithTimeout(next Confirmer, timeout time.Duration) Confirmer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &timeoutConfirmer{next: next, timeout: timeout}
}

// Confirm delegates to the wrapped confirmer under a deadline.
func (c *timeoutConfirmer) Confirm(ctx context.Context, req Request) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- c.next.Confirm(ctx, req)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ctx.Err()
	}
}
