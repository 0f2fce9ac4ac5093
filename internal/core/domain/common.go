package domain

import "time"

// AuditFields holds standard audit timestamps for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// NanoPerTON is the number of minor units in one TON.
const NanoPerTON int64 = 1_000_000_000

// PercentOf returns floor(amount * percent / 100). Truncation favors the paying side.
func PercentOf(amount int64, percent int) int64 {
	if amount <= 0 || percent <= 0 {
		return 0
	}
	return amount * int64(percent) / 100
}
