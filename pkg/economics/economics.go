// Package economics projects the multi-year return of an ESS investment
// under battery decay and operating-cost inflation.
package economics

import (
	"github.com/shopspring/decimal"

	"github.com/pvece/pvece/pkg/types"
)

// ProjectionYears is the length of the economic projection.
const ProjectionYears = 20

var (
	one      = decimal.NewFromInt(1)
	hundred  = decimal.NewFromInt(100)
	daysYear = decimal.NewFromInt(365)
)

// Input carries the assumptions of one projection run. PriceSpread is the
// max minus min TOU price, the margin earned per kWh cycled.
type Input struct {
	CapacityKwh        decimal.Decimal
	PriceSpread        decimal.Decimal
	AnnualDecayPercent decimal.Decimal
	EnablePeakShaving  bool
	PeakShavingSubsidy decimal.Decimal
	// DailyCycles is 1 for one charge/discharge per day, 2 for two.
	DailyCycles int
	// UnitCostPerKwh prices the initial investment (capacity x unit cost).
	UnitCostPerKwh decimal.Decimal
	// OmRatio is the annual O&M cost as a fraction of the investment.
	OmRatio decimal.Decimal
	// OmInflationPerYear grows the O&M cost linearly per elapsed year.
	OmInflationPerYear decimal.Decimal
}

// Project returns the year-by-year economics for years 1..ProjectionYears.
// All monetary values are rounded to 2 decimals; the cumulative profit of a
// year is exactly the previous cumulative plus the year's net profit.
func Project(in Input) []types.YearlyEconomic {
	decayFactor := one.Sub(in.AnnualDecayPercent.DivRound(hundred, 4))
	cycles := decimal.NewFromInt(int64(in.DailyCycles))
	investment := in.CapacityKwh.Mul(in.UnitCostPerKwh)

	out := make([]types.YearlyEconomic, 0, ProjectionYears)
	cumulative := decimal.Zero
	effectiveCapacity := in.CapacityKwh
	for year := 1; year <= ProjectionYears; year++ {
		if year > 1 {
			effectiveCapacity = effectiveCapacity.Mul(decayFactor)
		}

		arbitrage := effectiveCapacity.Mul(in.PriceSpread).Mul(cycles).Mul(daysYear).Round(2)

		peakShaving := decimal.Zero
		if in.EnablePeakShaving {
			peakShaving = effectiveCapacity.Mul(in.PeakShavingSubsidy).Mul(daysYear).Round(2)
		}

		inflation := one.Add(in.OmInflationPerYear.Mul(decimal.NewFromInt(int64(year - 1))))
		cost := investment.Mul(in.OmRatio).Mul(inflation).Round(2)

		net := arbitrage.Add(peakShaving).Sub(cost).Round(2)
		cumulative = cumulative.Add(net).Round(2)

		out = append(out, types.YearlyEconomic{
			Year:               year,
			ArbitrageRevenue:   arbitrage,
			PeakShavingRevenue: peakShaving,
			OperatingCost:      cost,
			NetProfit:          net,
			CumulativeProfit:   cumulative,
		})
	}
	return out
}
