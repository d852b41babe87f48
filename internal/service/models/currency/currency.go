package currency

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is the ISO 4217 code prices are quoted in.
type Currency string

const (
	CurrencyKES Currency = "KES"
	CurrencyUSD Currency = "USD"
)

var ErrInvalidCurrency = errors.New("invalid currency")

func (c Currency) String() string {
	return string(c)
}

// Format renders amount for customer-facing text, e.g. "KES 1,620.00".
func (c Currency) Format(amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	b.WriteString(string(c))
	b.WriteByte(' ')
	if amount.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)

	return b.String()
}

func ParseCurrency(s string) (Currency, error) {
	switch c := Currency(strings.ToUpper(strings.TrimSpace(s))); c {
	case CurrencyKES, CurrencyUSD:
		return c, nil
	default:
		return "", ErrInvalidCurrency
	}
}
