package planner

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pvece/pvece/pkg/sizing"
	"github.com/pvece/pvece/pkg/tariff"
	"github.com/pvece/pvece/pkg/types"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testPlanner() *Planner {
	tables := &sizing.Tables{
		Transformers: map[string][]int{
			"CN": {30, 50, 80, 100, 125, 160, 200, 250, 315, 400, 500, 630, 800, 1000, 1250, 1600, 2000, 2500, 3150},
		},
		EssModels: map[string][]sizing.EssModel{
			"CN": {{PowerKw: 100, CapacityKwh: 215}, {PowerKw: 125, CapacityKwh: 261}},
		},
	}
	return New(Defaults(), tables)
}

// full-coverage tariff with a 0.9 spread
func testTous() []types.TouPeriod {
	return []types.TouPeriod{
		{PeriodType: types.PeriodPeak, TimeRanges: []types.ClockRange{{Start: "07:00", End: "23:00"}}, Price: dec("1.2")},
		{PeriodType: types.PeriodValley, TimeRanges: []types.ClockRange{{Start: "23:00", End: "07:00"}}, Price: dec("0.3")},
	}
}

func testFleet() types.FleetConfig {
	return types.FleetConfig{
		VehicleCount: 8,
		BatteryKwh:   dec("100"),
		Piles:        types.PileCounts{Fast: 2, Slow: 6, UltraFast: 1},
	}
}

func TestSizing(t *testing.T) {
	p := testPlanner()
	station := types.StationConfig{PvPeakPowerKw: dec("100"), Country: "CN"}

	res, err := p.Sizing(station, testFleet(), nil, testTous(), types.SizingRequest{
		AnnualDecayPercent: dec("2"),
		ChargeMode:         types.ChargeModeOne,
	})
	require.NoError(t, err)

	// 8 vehicles on 9 piles: 350+120+120+5x7 = 625 kW peak
	assert.True(t, res.LoadPeakPowerKw.Equal(dec("625")), res.LoadPeakPowerKw.String())
	assert.True(t, res.TransformerAutoSelected)
	assert.True(t, res.TransformerKva.Equal(dec("630")), res.TransformerKva.String())
	assert.Empty(t, res.Warning)

	// 625 x 0.8 - 100 PV = 400 kW, x2h = 800 kWh
	assert.True(t, res.Ess.CalculatedPowerKw.Equal(dec("400")))
	assert.True(t, res.Ess.CalculatedCapacityKwh.Equal(dec("800")))
	// (100,215) x 4 beats (125,261) x 4 on total capacity
	assert.Equal(t, 100, res.Ess.ModelPowerKw)
	assert.Equal(t, 215, res.Ess.ModelCapacityKwh)
	assert.Equal(t, 4, res.Ess.Units)
	assert.True(t, res.Ess.RatedPowerKw.Equal(dec("400")))
	assert.True(t, res.Ess.CapacityKwh.Equal(dec("860")))

	require.Len(t, res.YearlyEconomics, 20)
	y1 := res.YearlyEconomics[0]
	// 860 x 0.9 x 365 and 860 x 1500 x 0.02
	assert.True(t, y1.ArbitrageRevenue.Equal(dec("282510")), y1.ArbitrageRevenue.String())
	assert.True(t, y1.OperatingCost.Equal(dec("25800")), y1.OperatingCost.String())

	require.Len(t, res.Envelope, 96)
	assert.NotEmpty(t, res.Steps)
}

func TestSizingTransformerWarning(t *testing.T) {
	p := testPlanner()
	station := types.StationConfig{Country: "CN", TransformerKva: dec("100")}

	res, err := p.Sizing(station, testFleet(), nil, testTous(), types.SizingRequest{})
	require.NoError(t, err)
	assert.False(t, res.TransformerAutoSelected)
	assert.True(t, res.TransformerKva.Equal(dec("100")))
	// 500 kW rated against a 100 kVA transformer
	assert.Contains(t, res.Warning, "exceeds transformer capacity")
}

func TestSizingMissingTariff(t *testing.T) {
	p := testPlanner()
	_, err := p.Sizing(types.StationConfig{Country: "CN"}, testFleet(), nil, nil, types.SizingRequest{})
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestSizingInvalidStation(t *testing.T) {
	p := testPlanner()
	_, err := p.Sizing(types.StationConfig{}, testFleet(), nil, testTous(), types.SizingRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSizingMalformedTariff(t *testing.T) {
	p := testPlanner()
	tous := []types.TouPeriod{
		{PeriodType: types.PeriodPeak, TimeRanges: []types.ClockRange{{Start: "7:00", End: "23:00"}}, Price: dec("1.2")},
	}
	_, err := p.Sizing(types.StationConfig{Country: "CN"}, testFleet(), nil, tous, types.SizingRequest{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, tariff.ErrMalformedClock)
}

func TestLoadCurveV1G(t *testing.T) {
	p := testPlanner()
	res, err := p.LoadCurve(testFleet(), nil, testTous())
	require.NoError(t, err)

	assert.False(t, res.V2gEnabled)
	assert.True(t, res.PeakPowerKw.Equal(dec("625")))
	// 8 x 100 kWh x 80%
	assert.True(t, res.DailyMaxEnergyKwh.Equal(dec("640")), res.DailyMaxEnergyKwh.String())
	assert.True(t, res.PeakDischargePowerKw.IsZero())
	require.Len(t, res.DailyCurves, 7)
}

func TestLoadCurveV2G(t *testing.T) {
	p := testPlanner()
	fleet := testFleet()
	fleet.V2gPiles = types.PileCounts{Fast: 2}

	res, err := p.LoadCurve(fleet, nil, testTous())
	require.NoError(t, err)
	assert.True(t, res.V2gEnabled)
	// 2 fast V2G piles x 120 kW x 0.85
	assert.True(t, res.PeakDischargePowerKw.Equal(dec("204")), res.PeakDischargePowerKw.String())
}

func TestLoadCurveInvalidFleet(t *testing.T) {
	p := testPlanner()
	fleet := testFleet()
	fleet.V2gPiles = types.PileCounts{UltraFast: 2} // more than configured

	_, err := p.LoadCurve(fleet, nil, testTous())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestV2GStandalone(t *testing.T) {
	p := testPlanner()
	fleet := types.FleetConfig{
		VehicleCount:      1,
		BatteryKwh:        dec("100"),
		EnableTimeControl: true,
		Piles:             types.PileCounts{Fast: 1},
		V2gPiles:          types.PileCounts{Fast: 1},
	}
	schedule := types.WeeklySchedule{
		{Day: "Mon", Operating: true, ChargeableRanges: []types.TimeRange{
			{Start: "08:00", End: "10:00", MinSoc: 50},
			{Start: "18:00", End: "20:00", MinSoc: 90},
		}},
	}
	tous := []types.TouPeriod{
		{PeriodType: types.PeriodPeak, TimeRanges: []types.ClockRange{{Start: "18:00", End: "20:15"}}, Price: dec("1.2")},
		{PeriodType: types.PeriodValley, TimeRanges: []types.ClockRange{{Start: "20:15", End: "18:00"}}, Price: dec("0.3")},
	}

	res, err := p.V2G(types.V2GRequest{Fleet: fleet, WeeklySchedule: schedule, TouPeriods: tous})
	require.NoError(t, err)

	// discharge 40 kWh at 0.3 (12), charge 40 kWh at 1.2 (48): a loss, and
	// it is reported as one
	assert.True(t, res.WeeklyArbitrageRevenue.Equal(dec("-36")), res.WeeklyArbitrageRevenue.String())
	assert.True(t, res.YearlyArbitrageRevenue.Equal(dec("-1872")), res.YearlyArbitrageRevenue.String())
	assert.True(t, res.PeakDischargePowerKw.Equal(dec("102")))
	assert.True(t, res.DischargePowerRatio.Equal(dec("0.85")))
	assert.Equal(t, types.PileCounts{Fast: 1, Slow: 1, UltraFast: 1}, res.SuggestedPiles)
	require.Len(t, res.DailyCurves, 1)
}

func TestV2GDerateOverride(t *testing.T) {
	p := testPlanner()
	ratio := dec("0.9")
	fleet := types.FleetConfig{
		VehicleCount: 2,
		BatteryKwh:   dec("60"),
		Piles:        types.PileCounts{Fast: 2},
		V2gPiles:     types.PileCounts{Fast: 2},
	}

	res, err := p.V2G(types.V2GRequest{Fleet: fleet, TouPeriods: testTous(), DischargePowerRatio: &ratio})
	require.NoError(t, err)
	assert.True(t, res.DischargePowerRatio.Equal(dec("0.9")))
	// 2 x 120 x 0.9
	assert.True(t, res.PeakDischargePowerKw.Equal(dec("216")), res.PeakDischargePowerKw.String())

	bad := dec("1.5")
	_, err = p.V2G(types.V2GRequest{Fleet: fleet, DischargePowerRatio: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestV2GEmptyTariffTolerated(t *testing.T) {
	p := testPlanner()
	fleet := types.FleetConfig{
		VehicleCount: 1,
		BatteryKwh:   dec("50"),
		Piles:        types.PileCounts{Slow: 1},
	}
	res, err := p.V2G(types.V2GRequest{Fleet: fleet})
	require.NoError(t, err)
	assert.True(t, res.WeeklyArbitrageRevenue.IsZero())
}
