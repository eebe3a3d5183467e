package tariff

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pvece/pvece/pkg/types"
)

// emptyTariffPrice is the sentinel price used when no tariff periods exist
// at all. Well-formed input never reaches it: orchestrators reject empty
// tariffs before resolving a table.
var emptyTariffPrice = decimal.RequireFromString("0.5")

type minuteRange struct {
	start, end int
}

// contains reports whether the minute-of-day falls inside the [start,end)
// range, treating start > end as wrapping past midnight.
func (r minuteRange) contains(minute int) bool {
	if r.start <= r.end {
		return minute >= r.start && minute < r.end
	}
	return minute >= r.start || minute < r.end
}

// Table is a fully resolved per-slot price table for one day.
type Table struct {
	interval      int
	prices        []decimal.Decimal
	fallbackSlots int
}

// Resolve builds the per-slot price table from tariff periods. For each slot
// the first period with a matching range wins. Slots no period covers fall
// back to the arithmetic mean of all period prices (scale 4, half-up); the
// caller can inspect FallbackSlots to warn about incomplete tariffs.
func Resolve(periods []types.TouPeriod, intervalMinutes int) (*Table, error) {
	type resolved struct {
		ranges []minuteRange
		price  decimal.Decimal
	}
	rs := make([]resolved, 0, len(periods))
	sum := decimal.Zero
	for _, p := range periods {
		r := resolved{price: p.Price}
		for _, cr := range p.TimeRanges {
			start, err := ParseClock(cr.Start)
			if err != nil {
				return nil, fmt.Errorf("tariff period %s: %w", p.PeriodType, err)
			}
			end, err := ParseClock(cr.End)
			if err != nil {
				return nil, fmt.Errorf("tariff period %s: %w", p.PeriodType, err)
			}
			r.ranges = append(r.ranges, minuteRange{start: start, end: end})
		}
		rs = append(rs, r)
		sum = sum.Add(p.Price)
	}

	fallback := emptyTariffPrice
	if len(periods) > 0 {
		fallback = sum.DivRound(decimal.NewFromInt(int64(len(periods))), 4)
	}

	slots := SlotsPerDay(intervalMinutes)
	t := &Table{interval: intervalMinutes, prices: make([]decimal.Decimal, slots)}
slot:
	for i := 0; i < slots; i++ {
		minute := i * intervalMinutes
		for _, r := range rs {
			for _, mr := range r.ranges {
				if mr.contains(minute) {
					t.prices[i] = r.price
					continue slot
				}
			}
		}
		t.prices[i] = fallback
		t.fallbackSlots++
	}
	return t, nil
}

// Price returns the resolved price of the slot.
func (t *Table) Price(slot int) decimal.Decimal {
	return t.prices[slot]
}

// Slots returns the number of slots in the table.
func (t *Table) Slots() int {
	return len(t.prices)
}

// Interval returns the slot width in minutes.
func (t *Table) Interval() int {
	return t.interval
}

// FallbackSlots returns how many slots no tariff period covered.
func (t *Table) FallbackSlots() int {
	return t.fallbackSlots
}

// PriceSpread returns max period price minus min period price, the daily
// arbitrage margin per kWh. Zero when no periods are given.
func PriceSpread(periods []types.TouPeriod) decimal.Decimal {
	if len(periods) == 0 {
		return decimal.Zero
	}
	maxP, minP := periods[0].Price, periods[0].Price
	for _, p := range periods[1:] {
		if p.Price.GreaterThan(maxP) {
			maxP = p.Price
		}
		if p.Price.LessThan(minP) {
			minP = p.Price
		}
	}
	return maxP.Sub(minP)
}
