package discount

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Type is how a discount value is interpreted.
type Type string

const (
	TypePercentage  Type = "percentage"
	TypeFixedAmount Type = "fixed_amount"
)

var ErrInvalidType = errors.New("invalid discount type")

var hundred = decimal.NewFromInt(100)

func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypePercentage, TypeFixedAmount:
		return Type(s), nil
	default:
		return "", ErrInvalidType
	}
}

// Discount is a promotional code.
type Discount struct {
	ID             int64
	Code           string
	Name           string
	Type           Type
	Value          decimal.Decimal
	MinOrderAmount decimal.Decimal
	UsageLimit     *int
	UsedCount      int
	ValidFrom      *time.Time
	ValidUntil     *time.Time
	IsActive       bool
}

// ValidAt reports whether t falls inside the validity window. Open bounds are unlimited.
func (d Discount) ValidAt(t time.Time) bool {
	if d.ValidFrom != nil && t.Before(*d.ValidFrom) {
		return false
	}
	if d.ValidUntil != nil && t.After(*d.ValidUntil) {
		return false
	}

	return true
}

// MeetsMinimum reports whether subtotal reaches the minimum order amount.
func (d Discount) MeetsMinimum(subtotal decimal.Decimal) bool {
	return subtotal.GreaterThanOrEqual(d.MinOrderAmount)
}

// Exhausted reports whether the usage limit has been reached.
func (d Discount) Exhausted() bool {
	return d.UsageLimit != nil && d.UsedCount >= *d.UsageLimit
}

// Amount computes the discount for subtotal, rounded to currency precision.
func (d Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	switch d.Type {
	case TypePercentage:
		return subtotal.Mul(d.Value).Div(hundred).Round(2)
	case TypeFixedAmount:
		return d.Value
	default:
		return decimal.Zero
	}
}
