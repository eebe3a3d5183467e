package planner

import (
	"github.com/shopspring/decimal"

	"github.com/pvece/pvece/pkg/scheduler"
	"github.com/pvece/pvece/pkg/types"
)

var weeksPerYear = decimal.NewFromInt(52)

// V2G computes the bidirectional weekly dispatch and its arbitrage revenue,
// plus a pile-configuration suggestion for the fleet size. Unlike the other
// orchestrators an empty tariff is tolerated: every slot then prices at the
// fallback and arbitrage nets to zero.
func (p *Planner) V2G(req types.V2GRequest) (*types.V2GResult, error) {
	if err := req.Fleet.Validate(); err != nil {
		return nil, invalidf("%v", err)
	}

	derate := p.params.DischargeDerate
	if req.DischargePowerRatio != nil {
		derate = *req.DischargePowerRatio
		if derate.Sign() <= 0 || derate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, invalidf("discharge power ratio must be in (0, 1]")
		}
	}

	steps := []string{}
	suggested := scheduler.SuggestPiles(req.Fleet.VehicleCount,
		p.params.SuggestFastRatio, p.params.SuggestSlowRatio, p.params.SuggestUltraRatio)
	step(&steps, "Pile suggestion for %d vehicles: fast %d, slow %d, ultra %d",
		req.Fleet.VehicleCount, suggested.Fast, suggested.Slow, suggested.UltraFast)

	table, err := p.resolveTable(req.TouPeriods, &steps)
	if err != nil {
		return nil, err
	}

	in, v2gDischarge := p.weekInput(req.Fleet, req.WeeklySchedule, table, derate, true, &steps)
	week, err := scheduler.ComputeWeek(in)
	if err != nil {
		return nil, invalidf("%v", err)
	}

	weekly := week.WeeklyArbitrage.Round(2)
	yearly := weekly.Mul(weeksPerYear).Round(2)
	step(&steps, "Weekly arbitrage %s, yearly %s", weekly.StringFixed(2), yearly.StringFixed(2))

	return &types.V2GResult{
		SuggestedPiles:             suggested,
		DailyCurves:                week.DailyCurves,
		Envelope:                   week.Envelope,
		PeakChargePowerKw:          week.PeakChargePowerKw,
		PeakDischargePowerKw:       v2gDischarge,
		DailyMaxChargeEnergyKwh:    week.DailyMaxChargeEnergyKwh,
		DailyMaxDischargeEnergyKwh: week.DailyMaxDischargeEnergyKwh,
		WeeklyArbitrageRevenue:     weekly,
		YearlyArbitrageRevenue:     yearly,
		DischargePowerRatio:        derate,
		Steps:                      steps,
	}, nil
}
