// Package scheduler dispatches charging and discharging energy across a
// day's slot grid and aggregates per-day curves into weekly results.
package scheduler

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pvece/pvece/pkg/types"
)

// PileRating holds the rated power per charging-pile class plus the fallback
// used when a station has no piles configured at all.
type PileRating struct {
	SlowKw     decimal.Decimal
	FastKw     decimal.Decimal
	UltraKw    decimal.Decimal
	FallbackKw decimal.Decimal
}

func (r PileRating) powers(p types.PileCounts) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, p.Total())
	for i := 0; i < p.UltraFast; i++ {
		out = append(out, r.UltraKw)
	}
	for i := 0; i < p.Fast; i++ {
		out = append(out, r.FastKw)
	}
	for i := 0; i < p.Slow; i++ {
		out = append(out, r.SlowKw)
	}
	return out
}

// TotalChargePower returns the maximum simultaneous charging power of the
// station. Only min(vehicleCount, total piles) piles can be energized at
// once; vehicles are assigned to the highest-power piles first since that is
// the peak the transformer has to serve. A station with no piles falls back
// to a single default pile.
func TotalChargePower(r PileRating, piles types.PileCounts, vehicleCount int) decimal.Decimal {
	powers := r.powers(piles)
	if len(powers) == 0 {
		return r.FallbackKw
	}
	sort.SliceStable(powers, func(a, b int) bool {
		return powers[a].GreaterThan(powers[b])
	})
	active := min(vehicleCount, len(powers))
	total := decimal.Zero
	for _, p := range powers[:active] {
		total = total.Add(p)
	}
	return total
}

// TotalDischargePower returns the rated V2G discharge power: the same pile
// selection as charging, scaled down by the discharge derate.
func TotalDischargePower(r PileRating, v2gPiles types.PileCounts, vehicleCount int, derate decimal.Decimal) decimal.Decimal {
	return TotalChargePower(r, v2gPiles, vehicleCount).Mul(derate).Round(2)
}

// SuggestPiles proposes a pile configuration for a fleet size, rounding each
// class count up from vehicleCount times its ratio.
func SuggestPiles(vehicleCount int, fastRatio, slowRatio, ultraRatio decimal.Decimal) types.PileCounts {
	v := decimal.NewFromInt(int64(vehicleCount))
	return types.PileCounts{
		Fast:      int(v.Mul(fastRatio).Ceil().IntPart()),
		Slow:      int(v.Mul(slowRatio).Ceil().IntPart()),
		UltraFast: int(v.Mul(ultraRatio).Ceil().IntPart()),
	}
}
