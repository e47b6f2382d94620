package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON         = "INVALID_JSON"
	ErrCodeMissingField        = "MISSING_FIELD"
	ErrCodeInvalidParameter    = "INVALID_PARAMETER"
	ErrCodeInvalidDiscountCode = "INVALID_DISCOUNT_CODE"
	ErrCodeMenuItemNotFound    = "MENU_ITEM_NOT_FOUND"
	ErrCodeInvalidCartItem     = "INVALID_CART_ITEM"
	ErrCodeInvalidQuantity     = "INVALID_QUANTITY"
	ErrCodeRestaurantNotFound  = "RESTAURANT_NOT_FOUND"
	ErrCodeNoZoneForPostalCode = "NO_ZONE_FOR_POSTAL_CODE"
	ErrCodeZoneAmbiguous       = "ZONE_AMBIGUOUS"
	ErrCodeZoneMismatch        = "ZONE_MISMATCH"
	ErrCodeBelowMinimumOrder   = "BELOW_MINIMUM_ORDER"
	ErrCodeRestaurantClosed    = "RESTAURANT_CLOSED"
	ErrCodeManuallyClosed      = "RESTAURANT_MANUALLY_CLOSED"
	ErrCodeInvalidSlot         = "INVALID_FULFILLMENT_TIME"
	ErrCodePriceMismatch       = "PRICE_MISMATCH"
	ErrCodeDuplicateOrder      = "DUPLICATE_ORDER"
	ErrCodeEmptyCart           = "EMPTY_CART"
	ErrCodeNoSlotAvailable     = "NO_SLOT_AVAILABLE"
	ErrCodeZonePending         = "ZONE_PENDING"
	ErrCodeUnauthorised        = "UNAUTHORIZED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidDiscountCode = NewDomainError(ErrCodeInvalidDiscountCode, "Discount code is not valid for this restaurant")
	ErrMenuItemNotFound    = NewDomainError(ErrCodeMenuItemNotFound, "One or more menu items not found")
	ErrInvalidCartItem     = NewDomainError(ErrCodeInvalidCartItem, "A cart item references an unknown variant or topping")
	ErrInvalidQuantity     = NewDomainError(ErrCodeInvalidQuantity, "Quantity must be greater than zero")
	ErrRestaurantNotFound  = NewDomainError(ErrCodeRestaurantNotFound, "Restaurant not found")
	ErrZoneAmbiguous       = NewDomainError(ErrCodeZoneAmbiguous, "Several delivery zones match this postal code, please select your delivery zone")
	ErrZoneMismatch        = NewDomainError(ErrCodeZoneMismatch, "The selected delivery zone does not serve this postal code")
	ErrManuallyClosed      = NewDomainError(ErrCodeManuallyClosed, "The restaurant is currently not accepting orders")
	ErrRestaurantClosed    = NewDomainError(ErrCodeRestaurantClosed, "The restaurant is closed and does not accept pre-orders")
	ErrInvalidSlot         = NewDomainError(ErrCodeInvalidSlot, "The selected time is no longer available, please choose another time")
	ErrDuplicateOrder      = NewDomainError(ErrCodeDuplicateOrder, "This order is already being submitted")
	ErrMissingName         = NewDomainError(ErrCodeMissingField, "Please enter your name")
	ErrMissingPhone        = NewDomainError(ErrCodeMissingField, "Please enter your phone number")
	ErrMissingAddress      = NewDomainError(ErrCodeMissingField, "Please enter street, house number, postal code and city")
	ErrZonePending         = NewDomainError(ErrCodeZonePending, "Please enter your postal code to determine the delivery zone")
	ErrEmptyCart           = NewDomainError(ErrCodeEmptyCart, "Your cart is empty")
	ErrNoSlotAvailable     = NewDomainError(ErrCodeNoSlotAvailable, "No pickup or delivery time is currently available")
)

// FormatMoney renders an amount for display.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2) + " €"
}

// NewNoZoneForPostalCodeError reports that no delivery zone serves the postal code.
func NewNoZoneForPostalCodeError(postalCode string) *DomainError {
	return NewDomainError(ErrCodeNoZoneForPostalCode,
		fmt.Sprintf("We do not deliver to postal code %s", postalCode))
}

// NewBelowMinimumOrderError reports the amount missing to reach the zone minimum.
func NewBelowMinimumOrderError(minimum, shortfall decimal.Decimal) *DomainError {
	return NewDomainError(ErrCodeBelowMinimumOrder,
		fmt.Sprintf("Minimum order value for this zone is %s, add %s more", FormatMoney(minimum), FormatMoney(shortfall)))
}

// NewPriceMismatchError reports a client-computed amount that disagrees with the server.
func NewPriceMismatchError(field string, expected decimal.Decimal) *DomainError {
	return NewDomainError(ErrCodePriceMismatch,
		fmt.Sprintf("The %s has changed to %s, please review your order", field, FormatMoney(expected)))
}
