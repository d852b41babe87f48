package phone

import (
	"errors"
	"regexp"
	"strings"
)

// DefaultCountryCode is prepended to national numbers.
const DefaultCountryCode = "254"

var (
	ErrInvalidPhone = errors.New("invalid phone number")

	canonical = regexp.MustCompile(`^\+\d{10,15}$`)
)

// Normalize maps a phone number to its canonical international form (+<country><number>).
// Normalize is idempotent on its own output.
func Normalize(raw string) (string, error) {
	return NormalizeWithCountry(raw, DefaultCountryCode)
}

// NormalizeWithCountry is Normalize with an explicit country calling code.
func NormalizeWithCountry(raw, countryCode string) (string, error) {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	digits := b.String()

	var out string
	switch {
	case strings.HasPrefix(digits, "+"):
		out = digits
	case strings.HasPrefix(digits, "00"):
		out = "+" + digits[2:]
	case strings.HasPrefix(digits, countryCode):
		out = "+" + digits
	case strings.HasPrefix(digits, "0"):
		out = "+" + countryCode + digits[1:]
	default:
		out = "+" + countryCode + digits
	}

	if !canonical.MatchString(out) {
		return "", ErrInvalidPhone
	}

	return out, nil
}
