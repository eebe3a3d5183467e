// Package tariff maps wall-clock times onto the day's slot grid and resolves
// time-of-use electricity prices per slot.
package tariff

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultIntervalMinutes is the standard slot width (96 slots per day).
const DefaultIntervalMinutes = 15

// ErrMalformedClock reports a time string that is not "HH:MM".
var ErrMalformedClock = errors.New("malformed clock time")

// ParseClock converts a strict "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(s, ":")
	if !ok || len(h) != 2 || len(m) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, s)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedClock, s)
	}
	return hour*60 + minute, nil
}

// SlotsPerDay returns the number of slots for the given interval (96 for 15).
func SlotsPerDay(intervalMinutes int) int {
	return 24 * 60 / intervalMinutes
}

// SlotOf converts minutes since midnight to a slot index.
func SlotOf(minutes, intervalMinutes int) int {
	return minutes / intervalMinutes
}

// Clock converts a slot index back to its zero-padded "HH:MM" start time.
func Clock(slot, intervalMinutes int) string {
	total := slot * intervalMinutes
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ExpandRange adds every slot index of the inclusive [from,to] range to the
// set. A range whose from is after its to wraps past midnight. The same
// helper serves schedule ranges and V2G range iteration so wrap handling
// stays identical everywhere.
func ExpandRange(set map[int]bool, from, to, slots int) {
	if from <= to {
		for i := from; i <= to && i < slots; i++ {
			set[i] = true
		}
		return
	}
	for i := from; i < slots; i++ {
		set[i] = true
	}
	for i := 0; i <= to && i < slots; i++ {
		set[i] = true
	}
}
