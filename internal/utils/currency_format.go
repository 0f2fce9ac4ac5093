package utils

import (
	"fmt"

	"github.com/SscSPs/collectibles_market/internal/core/domain"
	"github.com/shopspring/decimal"
)

// tonPrecision is the number of decimal places of one nanoTON.
const tonPrecision = 9

var nanoPerTON = decimal.NewFromInt(domain.NanoPerTON)

// FormatTON renders a nanoTON amount as a TON string.
// Example: 1500000000 returns "1.5", 1 returns "0.000000001".
func FormatTON(nano int64) string {
	return decimal.New(nano, -tonPrecision).String()
}

// ToNano converts a TON amount into nanoTON. Amounts finer than one nanoTON are rejected.
func ToNano(ton decimal.Decimal) (int64, error) {
	nano := ton.Mul(nanoPerTON)
	if !nano.Equal(nano.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than %d decimal places", ton.String(), tonPrecision)
	}
	if !nano.Abs().LessThan(decimal.NewFromInt(1 << 62)) {
		return 0, fmt.Errorf("amount %s is out of range", ton.String())
	}
	return nano.IntPart(), nil
}

// ParseNano parses a decimal string of nanoTON as reported by external ledgers.
func ParseNano(raw string) (int64, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid nano amount %q: %w", raw, err)
	}
	if !d.Equal(d.Truncate(0)) {
		return 0, fmt.Errorf("nano amount %q is not integral", raw)
	}
	return d.IntPart(), nil
}
