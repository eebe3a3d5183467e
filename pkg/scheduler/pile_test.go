package scheduler

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/pvece/pvece/pkg/types"
)

func testRating() PileRating {
	return PileRating{
		SlowKw:     decimal.NewFromInt(7),
		FastKw:     decimal.NewFromInt(120),
		UltraKw:    decimal.NewFromInt(350),
		FallbackKw: decimal.NewFromInt(7),
	}
}

func TestTotalChargePower(t *testing.T) {
	r := testRating()

	// 8 vehicles on 9 piles: the 8 highest-power piles are energized,
	// 350 + 120 + 120 + 5x7 = 625
	got := TotalChargePower(r, types.PileCounts{Fast: 2, Slow: 6, UltraFast: 1}, 8)
	assert.True(t, got.Equal(decimal.NewFromInt(625)), got.String())

	// more vehicles than piles: every pile counts
	got = TotalChargePower(r, types.PileCounts{Fast: 1, Slow: 2}, 10)
	assert.True(t, got.Equal(decimal.NewFromInt(134)), got.String())

	// no piles at all: fallback single default pile
	got = TotalChargePower(r, types.PileCounts{}, 5)
	assert.True(t, got.Equal(decimal.NewFromInt(7)), got.String())

	// zero vehicles with piles: nothing can be energized
	got = TotalChargePower(r, types.PileCounts{Fast: 3}, 0)
	assert.True(t, got.IsZero(), got.String())
}

func TestTotalDischargePower(t *testing.T) {
	r := testRating()
	derate := decimal.RequireFromString("0.85")

	got := TotalDischargePower(r, types.PileCounts{Fast: 1}, 1, derate)
	assert.True(t, got.Equal(decimal.NewFromInt(102)), got.String())

	got = TotalDischargePower(r, types.PileCounts{Fast: 2}, 2, derate)
	assert.True(t, got.Equal(decimal.NewFromInt(204)), got.String())
}

func TestSuggestPiles(t *testing.T) {
	fast := decimal.RequireFromString("0.2")
	slow := decimal.RequireFromString("0.8")
	ultra := decimal.RequireFromString("0.05")

	got := SuggestPiles(10, fast, slow, ultra)
	assert.Equal(t, types.PileCounts{Fast: 2, Slow: 8, UltraFast: 1}, got)

	got = SuggestPiles(3, fast, slow, ultra)
	assert.Equal(t, types.PileCounts{Fast: 1, Slow: 3, UltraFast: 1}, got)

	got = SuggestPiles(0, fast, slow, ultra)
	assert.Equal(t, types.PileCounts{}, got)
}
