package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is the sentinel every validation failure wraps; the message
// carries the human-readable reason returned to the caller.
var ErrInvalidInput = errors.New("invalid input")

// Authoritative bounds, one per field. The looser duplicated ceilings the old
// route layer applied on top of these were dropped; the tighter bound is the
// contract.
const (
	NameMinLen        = 3
	NameMaxLen        = 100
	DescriptionMinLen = 5
	DescriptionMaxLen = 500
	MaxQuantity       = 100000
)

var (
	// MaxPrice is the highest accepted unit price.
	MaxPrice = decimal.NewFromInt(999999)
	// MaxFunds is the highest accepted single wallet top-up.
	MaxFunds = decimal.NewFromInt(999999999999)
)

var tagPattern = regexp.MustCompile(`<[^>]*>?`)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// StripTags removes markup from free text before it is validated or stored,
// to prevent stored markup injection.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// Name checks a product or user name: required, trimmed length in [3,100].
func Name(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return invalid("name is required")
	}
	if len(trimmed) < NameMinLen || len(trimmed) > NameMaxLen {
		return invalid("name must be between %d and %d characters", NameMinLen, NameMaxLen)
	}
	return nil
}

// Description checks a product description: required, trimmed length in [5,500].
func Description(desc string) error {
	trimmed := strings.TrimSpace(desc)
	if trimmed == "" {
		return invalid("description is required")
	}
	if len(trimmed) < DescriptionMinLen {
		return invalid("description is too short")
	}
	if len(trimmed) > DescriptionMaxLen {
		return invalid("description is too long")
	}
	return nil
}

// Price checks a unit price: > 0 and at most MaxPrice.
func Price(price decimal.Decimal) error {
	if price.LessThanOrEqual(decimal.Zero) {
		return invalid("price must be greater than 0")
	}
	if price.GreaterThan(MaxPrice) {
		return invalid("price is too high")
	}
	return nil
}

// Quantity checks a stock or cart quantity: >= 0 and at most MaxQuantity.
func Quantity(qty int) error {
	if qty < 0 {
		return invalid("quantity cannot be negative")
	}
	if qty > MaxQuantity {
		return invalid("quantity is too large")
	}
	return nil
}

// ID checks a numeric identifier. Zero is rejected as invalid.
func ID(id uint) error {
	if id == 0 {
		return invalid("invalid id")
	}
	return nil
}

// Funds checks a wallet top-up amount: >= 0 and at most MaxFunds.
func Funds(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return invalid("funds cannot be negative")
	}
	if amount.GreaterThan(MaxFunds) {
		return invalid("cannot add more than %s at once", MaxFunds.String())
	}
	return nil
}
