package types

import "github.com/shopspring/decimal"

// Charge modes for the ESS dispatch assumption.
const (
	ChargeModeOne = "one" // one charge + one discharge per day (2h duration)
	ChargeModeTwo = "two" // two charges + two discharges per day (4h duration)
)

// EssSizing is the recommended energy-storage system, both the raw
// calculated requirement and the result of rounding up to whole standard
// modules.
type EssSizing struct {
	// RatedPowerKw and CapacityKwh are the actual installed values:
	// model rating multiplied by the unit count.
	RatedPowerKw decimal.Decimal `json:"essRatedPowerKw"`
	CapacityKwh  decimal.Decimal `json:"essCapacityKwh"`
	// CalculatedPowerKw and CalculatedCapacityKwh are the pre-rounding
	// requirements the modules were sized against.
	CalculatedPowerKw     decimal.Decimal `json:"essCalculatedPowerKw"`
	CalculatedCapacityKwh decimal.Decimal `json:"essCalculatedCapacityKwh"`
	ModelPowerKw          int             `json:"essModelPowerKw"`
	ModelCapacityKwh      int             `json:"essModelCapacityKwh"`
	Units                 int             `json:"essUnits"`
}

// SizingRequest carries the tunable assumptions of a sizing run.
type SizingRequest struct {
	// AnnualDecayPercent is the battery capacity decay per year (2 = 2%).
	AnnualDecayPercent decimal.Decimal `json:"annualDecayPercent"`
	EnablePeakShaving  bool            `json:"enablePeakShaving"`
	// PeakShavingSubsidy is the subsidy per kWh shaved (currency/kWh).
	PeakShavingSubsidy decimal.Decimal `json:"peakShavingSubsidy"`
	// ChargeMode is ChargeModeOne or ChargeModeTwo.
	ChargeMode string `json:"chargeMode"`
}

// SizingResult is the complete outcome of a storage sizing run.
type SizingResult struct {
	Ess                     EssSizing        `json:"ess"`
	LoadPeakPowerKw         decimal.Decimal  `json:"loadPeakPowerKw"`
	PvPeakPowerKw           decimal.Decimal  `json:"pvPeakPowerKw"`
	TransformerKva          decimal.Decimal  `json:"transformerCapacityKva"`
	TransformerAutoSelected bool             `json:"transformerAutoCalculated"`
	// Warning is set when the ESS rated power exceeds the transformer
	// capacity. The run still succeeds.
	Warning         string           `json:"warning,omitempty"`
	Envelope        []SlotPoint      `json:"loadCurve"`
	YearlyEconomics []YearlyEconomic `json:"yearlyEconomics"`
	Steps           []string         `json:"calculationSteps"`
}

// V2GRequest carries a standalone V2G calculation's inputs.
type V2GRequest struct {
	Fleet          FleetConfig    `json:"fleet"`
	WeeklySchedule WeeklySchedule `json:"weeklySchedule"`
	TouPeriods     []TouPeriod    `json:"touPrices"`
	// DischargePowerRatio overrides the configured V2G discharge derate
	// when non-nil.
	DischargePowerRatio *decimal.Decimal `json:"dischargePowerRatio,omitempty"`
}

// V2GResult is the outcome of a V2G arbitrage computation.
type V2GResult struct {
	SuggestedPiles             PileCounts      `json:"suggestedPiles"`
	DailyCurves                []DayCurve      `json:"dailyLoadCurves"`
	Envelope                   []SlotPoint     `json:"maxEnvelopeCurve"`
	PeakChargePowerKw          decimal.Decimal `json:"peakChargingPowerKw"`
	PeakDischargePowerKw       decimal.Decimal `json:"peakDischargePowerKw"`
	DailyMaxChargeEnergyKwh    decimal.Decimal `json:"dailyMaxChargingEnergyKwh"`
	DailyMaxDischargeEnergyKwh decimal.Decimal `json:"dailyMaxDischargeEnergyKwh"`
	WeeklyArbitrageRevenue     decimal.Decimal `json:"weeklyArbitrageRevenue"`
	YearlyArbitrageRevenue     decimal.Decimal `json:"yearlyArbitrageRevenue"`
	DischargePowerRatio        decimal.Decimal `json:"dischargePowerRatio"`
	Steps                      []string        `json:"calculationSteps"`
}

// YearlyEconomic is one year of the 20-year economic projection.
type YearlyEconomic struct {
	Year               int             `json:"year"`
	ArbitrageRevenue   decimal.Decimal `json:"arbitrageRevenue"`
	PeakShavingRevenue decimal.Decimal `json:"peakShavingRevenue"`
	OperatingCost      decimal.Decimal `json:"operatingCost"`
	NetProfit          decimal.Decimal `json:"netProfit"`
	CumulativeProfit   decimal.Decimal `json:"cumulativeProfit"`
}
