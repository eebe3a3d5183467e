package types

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// TOU period types. They label tariff periods for display; price resolution
// only cares about the time ranges and the price.
const (
	PeriodPeak   = "peak"
	PeriodHigh   = "high"
	PeriodNormal = "normal"
	PeriodValley = "valley"
)

// ClockRange is a [start,end) wall-clock window of a tariff period. A range
// whose start is after its end wraps past midnight.
type ClockRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// TouPeriod is one period of a time-of-use tariff: a price that applies
// during one or more clock ranges. Periods may overlap; the first matching
// period wins during price resolution.
type TouPeriod struct {
	PeriodType string          `json:"periodType"`
	TimeRanges []ClockRange    `json:"timeRanges"`
	Price      decimal.Decimal `json:"price"`
}

// ParseClockRanges decodes the persisted tariff time-range JSON blob.
func ParseClockRanges(blob string) ([]ClockRange, error) {
	if blob == "" {
		return nil, nil
	}
	var ranges []ClockRange
	if err := json.Unmarshal([]byte(blob), &ranges); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tariff time ranges: %w", err)
	}
	return ranges, nil
}
