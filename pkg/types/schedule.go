package types

import (
	"encoding/json"
	"fmt"
	"sort"
)

// TimeRange is a chargeable window within a day. Start and End are wall-clock
// "HH:MM" strings; a range whose start is after its end wraps past midnight.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	// MinSoc is the state of charge (%) vehicles must reach before they
	// depart at the end of this range.
	MinSoc int `json:"minSoc"`
}

// DaySchedule describes one day of the weekly operating schedule.
type DaySchedule struct {
	Day              string      `json:"day"`
	Operating        bool        `json:"isOperating"`
	ChargeableRanges []TimeRange `json:"chargeableRanges"`
	DepartureCount   int         `json:"departureCount"`
}

// WeeklySchedule is an ordered Mon..Sun sequence of day schedules. Entries
// beyond the seventh are ignored; missing days are treated as non-operating.
type WeeklySchedule []DaySchedule

// SpecialDate overrides the weekly schedule for a single calendar date.
type SpecialDate struct {
	Date             string      `json:"date"`
	ChargeableRanges []TimeRange `json:"chargeableRanges"`
	DepartureCount   int         `json:"departureCount"`
}

// ParseWeeklySchedule decodes the persisted weekly schedule JSON blob and
// sorts each day's ranges by start time so downstream range iteration is
// deterministic. A decode failure is returned to the caller, which degrades
// to an empty schedule rather than failing the whole request.
func ParseWeeklySchedule(blob string) (WeeklySchedule, error) {
	if blob == "" {
		return nil, nil
	}
	var ws WeeklySchedule
	if err := json.Unmarshal([]byte(blob), &ws); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weekly schedule: %w", err)
	}
	for i := range ws {
		sort.SliceStable(ws[i].ChargeableRanges, func(a, b int) bool {
			return ws[i].ChargeableRanges[a].Start < ws[i].ChargeableRanges[b].Start
		})
	}
	return ws, nil
}

// ParseSpecialDates decodes the persisted special-dates JSON blob.
func ParseSpecialDates(blob string) ([]SpecialDate, error) {
	if blob == "" {
		return nil, nil
	}
	var sd []SpecialDate
	if err := json.Unmarshal([]byte(blob), &sd); err != nil {
		return nil, fmt.Errorf("failed to unmarshal special dates: %w", err)
	}
	return sd, nil
}
