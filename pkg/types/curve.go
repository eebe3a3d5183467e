package types

import "github.com/shopspring/decimal"

// SlotPoint is one 15-minute slot of a daily load curve.
//
// The power fields are rated instantaneous power while the slot is active:
// a charger that only needs a fraction of the slot still reports its full
// rated power here, with the fraction reflected in the energy field. The
// energy fields are the integrated kWh for the slot. Discharge values are
// negative by convention.
type SlotPoint struct {
	TimeSlot           string          `json:"timeSlot"`
	ChargePowerKw      decimal.Decimal `json:"chargePowerKw"`
	DischargePowerKw   decimal.Decimal `json:"dischargePowerKw"`
	ChargeEnergyKwh    decimal.Decimal `json:"chargeEnergyKwh"`
	DischargeEnergyKwh decimal.Decimal `json:"dischargeEnergyKwh"`
}

// DayCurve is a labeled daily load curve of SlotsPerDay points.
type DayCurve struct {
	Day    string      `json:"day"`
	Points []SlotPoint `json:"points"`
}

// LoadCurveResult is the outcome of a weekly load-curve computation.
type LoadCurveResult struct {
	// DailyCurves holds one curve per operating day, ordered Mon..Sun.
	DailyCurves []DayCurve `json:"dailyLoadCurves"`
	// Envelope is the slot-wise worst case across all days: maximum charge
	// power and minimum (most negative) discharge power.
	Envelope          []SlotPoint     `json:"loadCurve"`
	PeakPowerKw       decimal.Decimal `json:"peakPowerKw"`
	DailyMaxEnergyKwh decimal.Decimal `json:"dailyEnergyKwh"`

	// V2G-only fields, zero when V2gEnabled is false.
	V2gEnabled                 bool            `json:"v2gEnabled"`
	PeakDischargePowerKw       decimal.Decimal `json:"peakDischargePowerKw"`
	DailyMaxDischargeEnergyKwh decimal.Decimal `json:"dailyDischargeEnergyKwh"`
	DailyArbitrageRevenue      decimal.Decimal `json:"dailyArbitrageRevenue"`

	Steps []string `json:"calculationSteps"`
}
