package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OpKey correlates "the same logical operation" across the job ledger, the
// work-done ledger, and historical bills. Those collections do not share a
// reliable operation foreign key, so equality is defined on the trimmed
// operation name plus the per-book rate rounded to 2 decimal places.
//
// Rounding is half away from zero (shopspring Round): 1.005 keys as "1.01",
// 1.00499 as "1.00". Stored data was written under this rule; changing it
// would orphan existing entries. Everything goes through this one type so
// an authoritative operation-instance ID can replace it later.
type OpKey struct {
	Name string
	Rate string
}

func MakeOpKey(name string, rate float64) OpKey {
	return OpKey{
		Name: strings.TrimSpace(name),
		Rate: decimal.NewFromFloat(rate).Round(2).StringFixed(2),
	}
}

// RoundRate normalizes a catalog rate to 4 decimal places before storage.
func RoundRate(rate float64) float64 {
	f, _ := decimal.NewFromFloat(rate).Round(4).Float64()
	return f
}
