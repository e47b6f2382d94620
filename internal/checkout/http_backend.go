package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"orderdesk/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultHTTPTimeout bounds a single API call.
const DefaultHTTPTimeout = 10 * time.Second

// HTTPBackend talks to the order API.
type HTTPBackend struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  zerolog.Logger
}

// NewHTTPBackend creates a backend for the API at baseURL. A nil client
// uses one with DefaultHTTPTimeout.
func NewHTTPBackend(baseURL, apiKey string, client *http.Client, logger zerolog.Logger) *HTTPBackend {
	if client == nil {
		client = &http.Client{Timeout: DefaultHTTPTimeout}
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		logger:  logger.With().Str("component", "http_backend").Logger(),
	}
}

// FetchRestaurant loads the restaurant settings.
func (b *HTTPBackend) FetchRestaurant(ctx context.Context, restaurantID uuid.UUID) (*model.Restaurant, error) {
	var r model.Restaurant
	if err := b.do(ctx, http.MethodGet, "/api/restaurants/"+restaurantID.String(), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// FetchMenu loads the restaurant's menu.
func (b *HTTPBackend) FetchMenu(ctx context.Context, restaurantID uuid.UUID) ([]model.MenuItem, error) {
	var items []model.MenuItem
	q := url.Values{"restaurantId": {restaurantID.String()}}
	if err := b.do(ctx, http.MethodGet, "/api/menu-items?"+q.Encode(), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// FetchZones implements Backend.
func (b *HTTPBackend) FetchZones(ctx context.Context, restaurantID uuid.UUID) ([]model.DeliveryZone, error) {
	var zones []model.DeliveryZone
	if err := b.do(ctx, http.MethodGet, "/api/restaurants/"+restaurantID.String()+"/zones", nil, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// FetchTimingProfile implements Backend.
func (b *HTTPBackend) FetchTimingProfile(ctx context.Context, restaurantID uuid.UUID, orderType model.OrderType, zoneID *uuid.UUID) (*model.TimingProfile, error) {
	q := url.Values{"orderType": {string(orderType)}}
	if zoneID != nil {
		q.Set("zoneId", zoneID.String())
	}
	var p model.TimingProfile
	if err := b.do(ctx, http.MethodGet, "/api/restaurants/"+restaurantID.String()+"/timing?"+q.Encode(), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ValidateDiscountCode implements Backend.
func (b *HTTPBackend) ValidateDiscountCode(ctx context.Context, restaurantID uuid.UUID, code string) (*model.DiscountValidation, error) {
	var v model.DiscountValidation
	body := model.DiscountValidationRequest{Code: code}
	if err := b.do(ctx, http.MethodPost, "/api/restaurants/"+restaurantID.String()+"/discounts/validate", body, &v); err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == model.ErrCodeInvalidDiscountCode {
			return &model.DiscountValidation{Valid: false, Code: code, Error: domainErr.Message}, nil
		}
		return nil, err
	}
	return &v, nil
}

// CreateOrder implements Backend. Business-rule rejections are returned as
// an unsuccessful result; transport failures as errors.
func (b *HTTPBackend) CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResult, error) {
	var res model.OrderResult
	if err := b.do(ctx, http.MethodPost, "/api/orders", req, &res); err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			return &model.OrderResult{Success: false, Error: domainErr.Message, Code: domainErr.Code}, nil
		}
		return nil, err
	}
	return &res, nil
}

// do sends a JSON request and decodes a 2xx response into out. Error
// responses carrying a code become *model.DomainError.
func (b *HTTPBackend) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if b.apiKey != "" {
		req.Header.Set("X-API-Key", b.apiKey)
	}

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Error().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	b.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr model.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			if apiErr.Code != "" && resp.StatusCode < 500 {
				return model.NewDomainError(apiErr.Code, apiErr.Error)
			}
			return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
