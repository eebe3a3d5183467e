package scheduler

import (
	"github.com/shopspring/decimal"

	"github.com/pvece/pvece/pkg/tariff"
	"github.com/pvece/pvece/pkg/types"
)

// SocRange is one chargeable range of a day with the state of charge the
// vehicles must hold when it ends.
type SocRange struct {
	StartSlot int
	EndSlot   int
	Start     string
	End       string
	MinSoc    int
}

func (r SocRange) slots(slotsPerDay int) []int {
	set := map[int]bool{}
	tariff.ExpandRange(set, r.StartSlot, r.EndSlot, slotsPerDay)
	out := make([]int, 0, len(set))
	for i := 0; i < slotsPerDay; i++ {
		if set[i] {
			out = append(out, i)
		}
	}
	return out
}

type v2gDayInput struct {
	// ranges must be ordered by start slot.
	ranges      []SocRange
	batteryKwh  decimal.Decimal
	v2gVehicles int
	// rated powers; per-slot energy caps derive from them.
	v1gRatedKw     decimal.Decimal
	v2gChargeKw    decimal.Decimal
	v2gDischargeKw decimal.Decimal
	v1gChargeable  []int
	v1gDemandKwh   decimal.Decimal
	dayLabel       string
	steps          *[]string
}

// v2gDay builds one day's curve with per-range SOC tracking and returns the
// curve plus the day's arbitrage (discharge revenue minus V2G charge cost,
// scale 2; negative values are reported as-is).
//
// V1G vehicles keep the global greedy fill. V2G vehicles arrive at the first
// range holding the SOC they departed the last range with the previous day
// (steady state), then per range either discharge the surplus at the most
// expensive slots or charge the deficit at the cheapest ones. A slot can
// carry both V1G and V2G charge; charge powers and energies add up.
func v2gDay(prices *tariff.Table, in v2gDayInput) ([]types.SlotPoint, decimal.Decimal) {
	points := NewDayPoints(prices)
	fillV1G(points, prices, in.v1gChargeable, in.v1gDemandKwh, in.v1gRatedKw)

	if in.v2gVehicles <= 0 || len(in.ranges) == 0 {
		return points, decimal.Zero
	}

	hours := slotHours(prices.Interval())
	vehicles := decimal.NewFromInt(int64(in.v2gVehicles))
	maxChargeKwh := in.v2gChargeKw.Mul(hours)
	maxDischargeKwh := in.v2gDischargeKw.Mul(hours)

	revenue := decimal.Zero
	cost := decimal.Zero
	soc := in.ranges[len(in.ranges)-1].MinSoc
	step(in.steps, "[%s] V2G per-range dispatch: %d ranges, initial SOC %d%% (steady state from last range)",
		in.dayLabel, len(in.ranges), soc)

	for _, r := range in.ranges {
		arrival, target := soc, r.MinSoc
		slots := r.slots(prices.Slots())
		switch {
		case arrival > target:
			surplus := in.batteryKwh.
				Mul(decimal.NewFromInt(int64(arrival - target))).
				DivRound(hundred, 4).
				Mul(vehicles)
			remaining := surplus
			rangeRevenue := decimal.Zero
			if maxDischargeKwh.Sign() > 0 {
				for _, i := range priceOrder(prices, slots, false) {
					if remaining.Sign() <= 0 {
						break
					}
					energy := decimal.Min(remaining, maxDischargeKwh)
					points[i].DischargePowerKw = points[i].DischargePowerKw.Sub(in.v2gDischargeKw)
					points[i].DischargeEnergyKwh = points[i].DischargeEnergyKwh.Sub(energy)
					rangeRevenue = rangeRevenue.Add(energy.Mul(prices.Price(i)))
					remaining = remaining.Sub(energy)
				}
			}
			revenue = revenue.Add(rangeRevenue)
			step(in.steps, "[%s] range %s~%s: discharged %s kWh, revenue %s (SOC %d%%->%d%%)",
				in.dayLabel, r.Start, r.End, surplus.Sub(remaining).StringFixed(2),
				rangeRevenue.StringFixed(4), arrival, target)

		case arrival < target:
			deficit := in.batteryKwh.
				Mul(decimal.NewFromInt(int64(target - arrival))).
				DivRound(hundred, 4).
				Mul(vehicles)
			remaining := deficit
			rangeCost := decimal.Zero
			if maxChargeKwh.Sign() > 0 {
				for _, i := range priceOrder(prices, slots, true) {
					if remaining.Sign() <= 0 {
						break
					}
					energy := decimal.Min(remaining, maxChargeKwh)
					points[i].ChargePowerKw = points[i].ChargePowerKw.Add(in.v2gChargeKw)
					points[i].ChargeEnergyKwh = points[i].ChargeEnergyKwh.Add(energy)
					rangeCost = rangeCost.Add(energy.Mul(prices.Price(i)))
					remaining = remaining.Sub(energy)
				}
			}
			cost = cost.Add(rangeCost)
			step(in.steps, "[%s] range %s~%s: charged %s kWh, cost %s (SOC %d%%->%d%%)",
				in.dayLabel, r.Start, r.End, deficit.StringFixed(2),
				rangeCost.StringFixed(4), arrival, target)

		default:
			step(in.steps, "[%s] range %s~%s: idle, SOC already at target %d%%",
				in.dayLabel, r.Start, r.End, target)
		}
		soc = target
	}

	arbitrage := revenue.Sub(cost).Round(2)
	step(in.steps, "[%s] V2G daily summary: revenue %s - charge cost %s = arbitrage %s",
		in.dayLabel, revenue.StringFixed(4), cost.StringFixed(4), arbitrage.StringFixed(2))
	return points, arbitrage
}
