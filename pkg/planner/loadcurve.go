package planner

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pvece/pvece/pkg/scheduler"
	"github.com/pvece/pvece/pkg/tariff"
	"github.com/pvece/pvece/pkg/types"
)

// resolveTable builds the per-slot price table and records tariff coverage
// problems in the trace. Incomplete tariffs are tolerated; the uncovered
// slots price at the mean of all periods.
func (p *Planner) resolveTable(tous []types.TouPeriod, steps *[]string) (*tariff.Table, error) {
	table, err := tariff.Resolve(tous, p.params.SlotIntervalMinutes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if len(tous) > 0 && table.FallbackSlots() > 0 {
		step(steps, "WARNING: %d of %d slots are not covered by any tariff period; they price at the mean of all periods",
			table.FallbackSlots(), table.Slots())
	}
	return table, nil
}

func step(steps *[]string, format string, args ...any) {
	*steps = append(*steps, fmt.Sprintf(format, args...))
}

// weekInput assembles the scheduler input shared by every orchestrator,
// splitting pile power between V1G and V2G when the fleet has bidirectional
// piles and v2g is requested.
func (p *Planner) weekInput(fleet types.FleetConfig, schedule types.WeeklySchedule, table *tariff.Table,
	derate decimal.Decimal, v2g bool, steps *[]string) (scheduler.WeekInput, decimal.Decimal) {

	in := scheduler.WeekInput{
		Schedule:          schedule,
		Prices:            table,
		VehicleCount:      fleet.VehicleCount,
		BatteryKwh:        fleet.BatteryKwh,
		EnableTimeControl: fleet.EnableTimeControl,
		Steps:             steps,
	}

	totalPower := scheduler.TotalChargePower(p.params.Rating, fleet.Piles, fleet.VehicleCount)
	step(steps, "Piles: fast %d, slow %d, ultra %d; active piles %d; total charge power %s kW",
		fleet.Piles.Fast, fleet.Piles.Slow, fleet.Piles.UltraFast,
		min(fleet.VehicleCount, fleet.Piles.Total()), totalPower.StringFixed(0))

	totalV2g := fleet.V2gPiles.Total()
	if !v2g || totalV2g == 0 {
		in.V1GChargePowerKw = totalPower
		return in, decimal.Zero
	}

	v2gCharge := scheduler.TotalChargePower(p.params.Rating, fleet.V2gPiles, fleet.VehicleCount)
	v2gDischarge := scheduler.TotalDischargePower(p.params.Rating, fleet.V2gPiles, fleet.VehicleCount, derate)
	v1gCharge := scheduler.TotalChargePower(p.params.Rating, fleet.Piles.Sub(fleet.V2gPiles),
		max(0, fleet.VehicleCount-totalV2g))

	step(steps, "V2G piles: fast %d, slow %d, ultra %d; V1G charge %s kW, V2G charge %s kW, V2G discharge %s kW (derate %s)",
		fleet.V2gPiles.Fast, fleet.V2gPiles.Slow, fleet.V2gPiles.UltraFast,
		v1gCharge.StringFixed(0), v2gCharge.StringFixed(0), v2gDischarge.StringFixed(0), derate.String())

	in.V1GChargePowerKw = v1gCharge
	in.TotalV2gPiles = totalV2g
	in.V2GChargePowerKw = v2gCharge
	in.V2GDischargePowerKw = v2gDischarge
	return in, v2gDischarge
}

// LoadCurve computes the weekly charging curves for a fleet. V2G dispatch is
// used whenever the fleet has bidirectional piles.
func (p *Planner) LoadCurve(fleet types.FleetConfig, schedule types.WeeklySchedule, tous []types.TouPeriod) (*types.LoadCurveResult, error) {
	if err := fleet.Validate(); err != nil {
		return nil, invalidf("%v", err)
	}
	if len(tous) == 0 {
		return nil, missingf("TOU electricity prices are required")
	}

	steps := []string{}
	step(&steps, "Fleet: %d vehicles, battery %s kWh, time control %t",
		fleet.VehicleCount, fleet.BatteryKwh.StringFixed(1), fleet.EnableTimeControl)

	table, err := p.resolveTable(tous, &steps)
	if err != nil {
		return nil, err
	}

	in, v2gDischarge := p.weekInput(fleet, schedule, table, p.params.DischargeDerate, true, &steps)
	week, err := scheduler.ComputeWeek(in)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	res := &types.LoadCurveResult{
		DailyCurves:                week.DailyCurves,
		Envelope:                   week.Envelope,
		PeakPowerKw:                week.PeakChargePowerKw,
		DailyMaxEnergyKwh:          week.DailyMaxChargeEnergyKwh,
		PeakDischargePowerKw:       decimal.Zero,
		DailyMaxDischargeEnergyKwh: decimal.Zero,
		DailyArbitrageRevenue:      decimal.Zero,
		Steps:                      steps,
	}
	if in.TotalV2gPiles > 0 {
		res.V2gEnabled = true
		// Peak discharge is the rated pile capability, not the envelope
		// minimum; the curve only shows energy-limited per-slot usage.
		res.PeakDischargePowerKw = v2gDischarge
		res.DailyMaxDischargeEnergyKwh = week.DailyMaxDischargeEnergyKwh
		res.DailyArbitrageRevenue = week.MaxDailyArbitrage
	}
	step(&res.Steps, "Load curve peak %s kW, max daily energy %s kWh",
		res.PeakPowerKw.StringFixed(2), res.DailyMaxEnergyKwh.StringFixed(2))
	return res, nil
}
