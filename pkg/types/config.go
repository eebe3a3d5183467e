package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StationConfig describes the fixed infrastructure of a charging station.
type StationConfig struct {
	// PvPeakPowerKw is the installed photovoltaic capacity (peak output).
	PvPeakPowerKw decimal.Decimal `json:"pvPeakPowerKw"`
	// TransformerKva is the user-specified transformer nameplate capacity.
	// Zero means "auto-select from the country's standard sizes".
	TransformerKva decimal.Decimal `json:"transformerKva"`
	// Country selects the standard transformer and ESS module tables (CN/JP/UK).
	Country string `json:"country"`
}

// Validate checks the invariants the calculation core relies on.
func (c StationConfig) Validate() error {
	if c.Country == "" {
		return fmt.Errorf("station config: country is required")
	}
	if c.PvPeakPowerKw.IsNegative() {
		return fmt.Errorf("station config: pv peak power must be >= 0")
	}
	if c.TransformerKva.IsNegative() {
		return fmt.Errorf("station config: transformer capacity must be >= 0")
	}
	return nil
}

// PileCounts holds the number of charging piles per power class.
type PileCounts struct {
	Fast      int `json:"fast"`
	Slow      int `json:"slow"`
	UltraFast int `json:"ultraFast"`
}

// Total returns the number of piles across all classes.
func (p PileCounts) Total() int {
	return p.Fast + p.Slow + p.UltraFast
}

// Sub returns the per-class difference p - o, floored at zero.
func (p PileCounts) Sub(o PileCounts) PileCounts {
	return PileCounts{
		Fast:      max(0, p.Fast-o.Fast),
		Slow:      max(0, p.Slow-o.Slow),
		UltraFast: max(0, p.UltraFast-o.UltraFast),
	}
}

// FleetConfig describes the EV fleet served by a station.
type FleetConfig struct {
	VehicleCount int `json:"vehicleCount"`
	// BatteryKwh is the battery capacity of a single vehicle.
	BatteryKwh decimal.Decimal `json:"batteryKwh"`
	// EnableTimeControl restricts charging to the configured weekly
	// schedule. When false every slot of every day is chargeable.
	EnableTimeControl bool       `json:"enableTimeControl"`
	Piles             PileCounts `json:"piles"`
	// V2gPiles is the subset of Piles that is bidirectional. Each class
	// count must not exceed the corresponding total in Piles.
	V2gPiles PileCounts `json:"v2gPiles"`
}

// Validate checks the invariants the calculation core relies on.
func (c FleetConfig) Validate() error {
	if c.VehicleCount < 0 {
		return fmt.Errorf("fleet config: vehicle count must be >= 0")
	}
	if c.BatteryKwh.IsNegative() {
		return fmt.Errorf("fleet config: battery capacity must be >= 0")
	}
	if c.Piles.Fast < 0 || c.Piles.Slow < 0 || c.Piles.UltraFast < 0 {
		return fmt.Errorf("fleet config: pile counts must be >= 0")
	}
	if c.V2gPiles.Fast < 0 || c.V2gPiles.Slow < 0 || c.V2gPiles.UltraFast < 0 {
		return fmt.Errorf("fleet config: v2g pile counts must be >= 0")
	}
	if c.V2gPiles.Fast > c.Piles.Fast || c.V2gPiles.Slow > c.Piles.Slow || c.V2gPiles.UltraFast > c.Piles.UltraFast {
		return fmt.Errorf("fleet config: v2g pile counts must not exceed total pile counts")
	}
	return nil
}
