package scheduler

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pvece/pvece/pkg/tariff"
	"github.com/pvece/pvece/pkg/types"
)

var (
	sixty   = decimal.NewFromInt(60)
	hundred = decimal.NewFromInt(100)
)

func slotHours(intervalMinutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(intervalMinutes)).DivRound(sixty, 4)
}

// NewDayPoints returns a zero curve with every slot's start time filled in.
func NewDayPoints(prices *tariff.Table) []types.SlotPoint {
	points := make([]types.SlotPoint, prices.Slots())
	for i := range points {
		points[i] = types.SlotPoint{
			TimeSlot:           tariff.Clock(i, prices.Interval()),
			ChargePowerKw:      decimal.Zero,
			DischargePowerKw:   decimal.Zero,
			ChargeEnergyKwh:    decimal.Zero,
			DischargeEnergyKwh: decimal.Zero,
		}
	}
	return points
}

// priceOrder returns the slots sorted by price, cheapest first when ascending
// is true and most expensive first otherwise. Equal prices keep ascending
// slot order so repeated runs are byte-identical.
func priceOrder(prices *tariff.Table, slots []int, ascending bool) []int {
	order := append([]int(nil), slots...)
	sort.Ints(order)
	sort.SliceStable(order, func(a, b int) bool {
		if ascending {
			return prices.Price(order[a]).LessThan(prices.Price(order[b]))
		}
		return prices.Price(order[a]).GreaterThan(prices.Price(order[b]))
	})
	return order
}

// V1GDay dispatches demandKwh across the chargeable slots cheapest first and
// returns the day's curve. Each filled slot reports the rated pile power; the
// last slot may carry less energy than ratedPowerKw allows, meaning the
// chargers run at rated power for only part of the slot.
func V1GDay(prices *tariff.Table, chargeable []int, demandKwh, ratedPowerKw decimal.Decimal) []types.SlotPoint {
	points := NewDayPoints(prices)
	fillV1G(points, prices, chargeable, demandKwh, ratedPowerKw)
	return points
}

func fillV1G(points []types.SlotPoint, prices *tariff.Table, chargeable []int, demandKwh, ratedPowerKw decimal.Decimal) {
	maxSlotKwh := ratedPowerKw.Mul(slotHours(prices.Interval()))
	if maxSlotKwh.Sign() <= 0 {
		return
	}
	remaining := demandKwh
	for _, i := range priceOrder(prices, chargeable, true) {
		if remaining.Sign() <= 0 {
			break
		}
		energy := decimal.Min(remaining, maxSlotKwh)
		points[i].ChargePowerKw = points[i].ChargePowerKw.Add(ratedPowerKw)
		points[i].ChargeEnergyKwh = points[i].ChargeEnergyKwh.Add(energy)
		remaining = remaining.Sub(energy)
	}
}
