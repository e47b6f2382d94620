package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountType distinguishes percentage from fixed-amount discounts.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// DiscountCode is a validated discount.
type DiscountCode struct {
	Code              string          `json:"code"`
	Type              DiscountType    `json:"discountType"`
	Value             decimal.Decimal `json:"discountValue"`
	MinimumOrderValue decimal.Decimal `json:"minimumOrderValue"`
}

// NormalizeDiscountCode trims and upper-cases a code.
func NormalizeDiscountCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// DiscountValidationRequest is the payload for validating a discount code.
type DiscountValidationRequest struct {
	Code string `json:"code"`
}

// DiscountValidation is the result of validating a discount code.
type DiscountValidation struct {
	Valid             bool             `json:"valid"`
	Code              string           `json:"code,omitempty"`
	DiscountType      DiscountType     `json:"discountType,omitempty"`
	DiscountValue     *decimal.Decimal `json:"discountValue,omitempty"`
	MinimumOrderValue *decimal.Decimal `json:"minimumOrderValue,omitempty"`
	Error             string           `json:"error,omitempty"`
}

// Discount converts a successful validation into a DiscountCode.
func (v *DiscountValidation) Discount() *DiscountCode {
	if v == nil || !v.Valid || v.DiscountValue == nil {
		return nil
	}
	d := &DiscountCode{
		Code:  v.Code,
		Type:  v.DiscountType,
		Value: *v.DiscountValue,
	}
	if v.MinimumOrderValue != nil {
		d.MinimumOrderValue = *v.MinimumOrderValue
	}
	return d
}
