// internal/datanorm/money.go
package datanorm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("datanorm: niepoprawna kwota")

var hundred = decimal.NewFromInt(100)

// ParseDecimal czyta liczbę z przecinkiem dziesiętnym ("1.234,56" też przejdzie).
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: pusta wartość", ErrInvalidAmount)
	}
	if strings.Contains(s, ",") {
		// kropki to separator tysięcy
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return d, nil
}

// ToCents = round(parseDecimal(amount) * 100). Nigdy przez float.
func ToCents(amount string) (int64, error) {
	d, err := ParseDecimal(amount)
	if err != nil {
		return 0, err
	}
	return d.Mul(hundred).Round(0).IntPart(), nil
}
