package scheduler

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/pvece/pvece/pkg/tariff"
	"github.com/pvece/pvece/pkg/types"
)

// WeekdayNames fixes the iteration and output order of the weekly schedule.
var WeekdayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

const defaultMinSoc = 80

// WeekInput drives one weekly curve computation. The rated powers are
// precomputed by the caller from the pile configuration; TotalV2gPiles == 0
// selects the V1G-only path.
type WeekInput struct {
	Schedule          types.WeeklySchedule
	Prices            *tariff.Table
	VehicleCount      int
	BatteryKwh        decimal.Decimal
	EnableTimeControl bool

	V1GChargePowerKw decimal.Decimal

	TotalV2gPiles       int
	V2GChargePowerKw    decimal.Decimal
	V2GDischargePowerKw decimal.Decimal

	Steps *[]string
}

// WeekResult aggregates the per-day curves of one week.
type WeekResult struct {
	// DailyCurves holds one curve per operating day in Mon..Sun order.
	// Non-operating days are absent.
	DailyCurves []types.DayCurve
	// Envelope is the slot-wise maximum charge power and minimum (most
	// negative) discharge power across all days. Energy fields stay zero.
	Envelope                   []types.SlotPoint
	PeakChargePowerKw          decimal.Decimal
	DailyMaxChargeEnergyKwh    decimal.Decimal
	DailyMaxDischargeEnergyKwh decimal.Decimal
	MaxDailyArbitrage          decimal.Decimal
	WeeklyArbitrage            decimal.Decimal
}

func step(steps *[]string, format string, args ...any) {
	if steps != nil {
		*steps = append(*steps, fmt.Sprintf(format, args...))
	}
}

// effectiveMinSoc returns the V1G charge target: the maximum minSoc across
// every range of every operating day, defaulting to 80% when none is set.
func effectiveMinSoc(schedule types.WeeklySchedule) int {
	target := 0
	for _, day := range schedule {
		if !day.Operating {
			continue
		}
		for _, r := range day.ChargeableRanges {
			if r.MinSoc > target {
				target = r.MinSoc
			}
		}
	}
	if target <= 0 {
		return defaultMinSoc
	}
	return target
}

// expandDay converts a day's ranges into the flat chargeable slot set plus
// the per-range SOC info ordered by start slot. Ranges with an empty start
// or end are skipped; a malformed time fails the computation.
func expandDay(day types.DaySchedule, prices *tariff.Table) ([]int, []SocRange, error) {
	set := map[int]bool{}
	var ranges []SocRange
	for _, r := range day.ChargeableRanges {
		if r.Start == "" || r.End == "" {
			continue
		}
		startMin, err := tariff.ParseClock(r.Start)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", day.Day, err)
		}
		endMin, err := tariff.ParseClock(r.End)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", day.Day, err)
		}
		from := tariff.SlotOf(startMin, prices.Interval())
		to := tariff.SlotOf(endMin, prices.Interval())
		tariff.ExpandRange(set, from, to, prices.Slots())
		minSoc := r.MinSoc
		if minSoc <= 0 {
			minSoc = defaultMinSoc
		}
		ranges = append(ranges, SocRange{
			StartSlot: from, EndSlot: to,
			Start: r.Start, End: r.End,
			MinSoc: minSoc,
		})
	}
	slots := make([]int, 0, len(set))
	for i := 0; i < prices.Slots(); i++ {
		if set[i] {
			slots = append(slots, i)
		}
	}
	sort.SliceStable(ranges, func(a, b int) bool {
		return ranges[a].StartSlot < ranges[b].StartSlot
	})
	return slots, ranges, nil
}

// ComputeWeek runs the day scheduler for each day of the week and aggregates
// curves, peaks and arbitrage. With time control disabled one full-day curve
// is computed and reused for all seven days.
func ComputeWeek(in WeekInput) (*WeekResult, error) {
	slotsPerDay := in.Prices.Slots()
	v2g := in.TotalV2gPiles > 0
	v2gVehicles := 0
	v1gVehicles := in.VehicleCount
	if v2g {
		v2gVehicles = min(in.TotalV2gPiles, in.VehicleCount)
		v1gVehicles = in.VehicleCount - v2gVehicles
	}

	target := effectiveMinSoc(in.Schedule)
	v1gDemand := in.BatteryKwh.
		Mul(decimal.NewFromInt(int64(target)).DivRound(hundred, 4)).
		Mul(decimal.NewFromInt(int64(v1gVehicles)))

	if v2g {
		step(in.Steps, "V2G split: %d V1G vehicles, %d V2G vehicles, V1G target SOC %d%%",
			v1gVehicles, v2gVehicles, target)
		step(in.Steps, "V1G charge demand %s kWh at %s kW; V2G charge %s kW, discharge %s kW",
			v1gDemand.StringFixed(2), in.V1GChargePowerKw.StringFixed(0),
			in.V2GChargePowerKw.StringFixed(0), in.V2GDischargePowerKw.StringFixed(0))
	} else {
		step(in.Steps, "Effective target SOC %d%% (max across chargeable ranges)", target)
		step(in.Steps, "Daily charge demand: %d vehicles x %s kWh x %d%% = %s kWh at %s kW",
			v1gVehicles, in.BatteryKwh.StringFixed(1), target,
			v1gDemand.StringFixed(2), in.V1GChargePowerKw.StringFixed(0))
	}

	res := &WeekResult{
		PeakChargePowerKw:          decimal.Zero,
		DailyMaxChargeEnergyKwh:    decimal.Zero,
		DailyMaxDischargeEnergyKwh: decimal.Zero,
		MaxDailyArbitrage:          decimal.Zero,
		WeeklyArbitrage:            decimal.Zero,
	}

	if !in.EnableTimeControl {
		step(in.Steps, "Time control disabled: all %d slots chargeable, one curve for all days", slotsPerDay)
		allSlots := make([]int, slotsPerDay)
		for i := range allSlots {
			allSlots[i] = i
		}
		var points []types.SlotPoint
		arbitrage := decimal.Zero
		if v2g {
			// One full-day range with the default target; steady state makes
			// it a plain charge-to-target day.
			points, arbitrage = v2gDay(in.Prices, v2gDayInput{
				ranges: []SocRange{{
					StartSlot: 0, EndSlot: slotsPerDay - 1,
					Start: "00:00", End: tariff.Clock(slotsPerDay-1, in.Prices.Interval()),
					MinSoc: defaultMinSoc,
				}},
				batteryKwh:     in.BatteryKwh,
				v2gVehicles:    v2gVehicles,
				v1gRatedKw:     in.V1GChargePowerKw,
				v2gChargeKw:    in.V2GChargePowerKw,
				v2gDischargeKw: in.V2GDischargePowerKw,
				v1gChargeable:  allSlots,
				v1gDemandKwh:   v1gDemand,
				dayLabel:       "all-day",
				steps:          in.Steps,
			})
		} else {
			points = V1GDay(in.Prices, allSlots, v1gDemand, in.V1GChargePowerKw)
		}
		// All seven days share the same points slice; curves are read-only
		// after this, so per-day copies would only cost memory.
		for _, day := range WeekdayNames {
			res.DailyCurves = append(res.DailyCurves, types.DayCurve{Day: day, Points: points})
		}
		res.MaxDailyArbitrage = arbitrage
		res.WeeklyArbitrage = arbitrage.Mul(decimal.NewFromInt(7))
	} else {
		byDay := make(map[string]types.DaySchedule, len(in.Schedule))
		for _, d := range in.Schedule {
			byDay[d.Day] = d
		}
		for _, day := range WeekdayNames {
			sched, ok := byDay[day]
			if !ok || !sched.Operating {
				continue
			}
			chargeable, ranges, err := expandDay(sched, in.Prices)
			if err != nil {
				return nil, err
			}
			if len(chargeable) == 0 {
				step(in.Steps, "[%s] operating day with no chargeable slots: zero curve", day)
				res.DailyCurves = append(res.DailyCurves, types.DayCurve{Day: day, Points: NewDayPoints(in.Prices)})
				continue
			}
			step(in.Steps, "[%s] %d chargeable slots across %d ranges", day, len(chargeable), len(ranges))
			var points []types.SlotPoint
			arbitrage := decimal.Zero
			if v2g {
				points, arbitrage = v2gDay(in.Prices, v2gDayInput{
					ranges:         ranges,
					batteryKwh:     in.BatteryKwh,
					v2gVehicles:    v2gVehicles,
					v1gRatedKw:     in.V1GChargePowerKw,
					v2gChargeKw:    in.V2GChargePowerKw,
					v2gDischargeKw: in.V2GDischargePowerKw,
					v1gChargeable:  chargeable,
					v1gDemandKwh:   v1gDemand,
					dayLabel:       day,
					steps:          in.Steps,
				})
			} else {
				points = V1GDay(in.Prices, chargeable, v1gDemand, in.V1GChargePowerKw)
			}
			res.DailyCurves = append(res.DailyCurves, types.DayCurve{Day: day, Points: points})
			res.WeeklyArbitrage = res.WeeklyArbitrage.Add(arbitrage)
			if arbitrage.GreaterThan(res.MaxDailyArbitrage) {
				res.MaxDailyArbitrage = arbitrage
			}
		}
	}

	res.Envelope = NewDayPoints(in.Prices)
	for _, curve := range res.DailyCurves {
		chargeSum := decimal.Zero
		dischargeSum := decimal.Zero
		for i, p := range curve.Points {
			if p.ChargePowerKw.GreaterThan(res.Envelope[i].ChargePowerKw) {
				res.Envelope[i].ChargePowerKw = p.ChargePowerKw
			}
			if p.DischargePowerKw.LessThan(res.Envelope[i].DischargePowerKw) {
				res.Envelope[i].DischargePowerKw = p.DischargePowerKw
			}
			chargeSum = chargeSum.Add(p.ChargeEnergyKwh)
			dischargeSum = dischargeSum.Add(p.DischargeEnergyKwh.Abs())
		}
		if c := chargeSum.Round(2); c.GreaterThan(res.DailyMaxChargeEnergyKwh) {
			res.DailyMaxChargeEnergyKwh = c
		}
		if d := dischargeSum.Round(2); d.GreaterThan(res.DailyMaxDischargeEnergyKwh) {
			res.DailyMaxDischargeEnergyKwh = d
		}
	}
	for _, p := range res.Envelope {
		if p.ChargePowerKw.GreaterThan(res.PeakChargePowerKw) {
			res.PeakChargePowerKw = p.ChargePowerKw
		}
	}
	step(in.Steps, "Aggregated %d day curves: envelope peak %s kW, max daily energy %s kWh",
		len(res.DailyCurves), res.PeakChargePowerKw.StringFixed(2), res.DailyMaxChargeEnergyKwh.StringFixed(2))
	return res, nil
}
