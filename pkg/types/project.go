package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project is a persisted planning project.
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
	// TransformerKva is the user-specified transformer capacity; zero means
	// the sizing run auto-selects a standard size.
	TransformerKva decimal.Decimal `json:"transformerKva"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// PvConfig is the persisted photovoltaic configuration of a project.
type PvConfig struct {
	InstalledCapacityKw decimal.Decimal `json:"installedCapacityKw"`
}

// FleetRecord is the persisted fleet configuration of a project. The weekly
// schedule and special dates are stored as JSON string blobs and decoded at
// the boundary before entering the calculation core.
type FleetRecord struct {
	FleetConfig
	WeeklyScheduleJSON string `json:"weeklySchedule,omitempty"`
	SpecialDatesJSON   string `json:"specialDates,omitempty"`
}

// TariffPeriodRecord is one persisted TOU tariff period of a project. The
// clock ranges are stored as a JSON string blob.
type TariffPeriodRecord struct {
	PeriodType     string          `json:"periodType"`
	TimeRangesJSON string          `json:"timeRanges"`
	Price          decimal.Decimal `json:"price"`
	Country        string          `json:"country"`
}

// CalculationRecord is a persisted calculation result blob.
type CalculationRecord struct {
	Kind       string    `json:"kind"` // "sizing", "loadcurve" or "v2g"
	ResultJSON string    `json:"result"`
	CreatedAt  time.Time `json:"createdAt"`
}
