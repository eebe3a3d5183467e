package planner

import (
	"github.com/shopspring/decimal"

	"github.com/pvece/pvece/pkg/economics"
	"github.com/pvece/pvece/pkg/scheduler"
	"github.com/pvece/pvece/pkg/sizing"
	"github.com/pvece/pvece/pkg/tariff"
	"github.com/pvece/pvece/pkg/types"
)

var (
	twoHours  = decimal.NewFromInt(2)
	fourHours = decimal.NewFromInt(4)
)

// Sizing computes the recommended ESS for a station: V1G weekly load curve,
// transformer selection, module rounding and the 20-year projection.
func (p *Planner) Sizing(station types.StationConfig, fleet types.FleetConfig, schedule types.WeeklySchedule,
	tous []types.TouPeriod, req types.SizingRequest) (*types.SizingResult, error) {

	if err := station.Validate(); err != nil {
		return nil, invalidf("%v", err)
	}
	if err := fleet.Validate(); err != nil {
		return nil, invalidf("%v", err)
	}
	if len(tous) == 0 {
		return nil, missingf("TOU electricity prices are required")
	}

	steps := []string{}
	step(&steps, "Fleet: %d vehicles, battery %s kWh, time control %t",
		fleet.VehicleCount, fleet.BatteryKwh.StringFixed(1), fleet.EnableTimeControl)
	step(&steps, "PV installed capacity %s kW", station.PvPeakPowerKw.StringFixed(2))

	table, err := p.resolveTable(tous, &steps)
	if err != nil {
		return nil, err
	}

	// Storage sizing always works from the V1G charging curve; discharge
	// from V2G piles does not raise the load peak the ESS must cover.
	in, _ := p.weekInput(fleet, schedule, table, p.params.DischargeDerate, false, &steps)
	week, err := scheduler.ComputeWeek(in)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	peak := week.PeakChargePowerKw
	step(&steps, "Load curve peak power %s kW", peak.StringFixed(2))

	autoTransformer := false
	transformerKva := station.TransformerKva
	if transformerKva.Sign() > 0 {
		step(&steps, "Transformer capacity (user-specified) %s kVA", transformerKva.StringFixed(0))
	} else {
		transformerKva = p.tables.TransformerFor(station.Country, peak)
		autoTransformer = true
		step(&steps, "Transformer auto-selected %s kVA (%s standard) for peak load %s kW",
			transformerKva.StringFixed(0), station.Country, peak.StringFixed(2))
	}

	essMax := sizing.EssMaxPowerKw(peak, p.params.EmpiricalCoefficient)
	step(&steps, "ESS max power = peak %s kW x coefficient %s = %s kW",
		peak.StringFixed(2), p.params.EmpiricalCoefficient.String(), essMax.StringFixed(2))

	rated := sizing.EssRatedPowerKw(essMax, station.PvPeakPowerKw)
	step(&steps, "ESS rated power = %s kW - PV peak %s kW = %s kW",
		essMax.StringFixed(2), station.PvPeakPowerKw.StringFixed(2), rated.StringFixed(2))

	warning := sizing.ValidateTransformer(rated, transformerKva)
	if warning != "" {
		step(&steps, "WARNING: %s", warning)
	}

	duration := twoHours
	cycles := 1
	if req.ChargeMode == types.ChargeModeTwo {
		duration = fourHours
		cycles = 2
	}
	calculatedCapacity := rated.Mul(duration).Round(2)
	step(&steps, "Calculated ESS capacity = %s kW x %s h = %s kWh",
		rated.StringFixed(2), duration.String(), calculatedCapacity.StringFixed(2))

	model, units := p.tables.SelectEss(station.Country, rated, calculatedCapacity)
	actualPower := decimal.NewFromInt(int64(model.PowerKw * units))
	actualCapacity := decimal.NewFromInt(int64(model.CapacityKwh * units))
	step(&steps, "Standard ESS model (%s): %dkW/%dkWh x %d units = %s kW / %s kWh",
		station.Country, model.PowerKw, model.CapacityKwh, units,
		actualPower.StringFixed(0), actualCapacity.StringFixed(0))

	economicsYears := economics.Project(economics.Input{
		CapacityKwh:        actualCapacity,
		PriceSpread:        tariff.PriceSpread(tous),
		AnnualDecayPercent: req.AnnualDecayPercent,
		EnablePeakShaving:  req.EnablePeakShaving,
		PeakShavingSubsidy: req.PeakShavingSubsidy,
		DailyCycles:        cycles,
		UnitCostPerKwh:     p.params.EssUnitCostPerKwh,
		OmRatio:            p.params.OmRatio,
		OmInflationPerYear: p.params.OmInflationPerYear,
	})
	step(&steps, "Economic projection over %d years, initial investment %s",
		economics.ProjectionYears, actualCapacity.Mul(p.params.EssUnitCostPerKwh).StringFixed(0))

	return &types.SizingResult{
		Ess: types.EssSizing{
			RatedPowerKw:          actualPower,
			CapacityKwh:           actualCapacity,
			CalculatedPowerKw:     rated,
			CalculatedCapacityKwh: calculatedCapacity,
			ModelPowerKw:          model.PowerKw,
			ModelCapacityKwh:      model.CapacityKwh,
			Units:                 units,
		},
		LoadPeakPowerKw:         peak,
		PvPeakPowerKw:           station.PvPeakPowerKw,
		TransformerKva:          transformerKva,
		TransformerAutoSelected: autoTransformer,
		Warning:                 warning,
		Envelope:                week.Envelope,
		YearlyEconomics:         economicsYears,
		Steps:                   steps,
	}, nil
}
