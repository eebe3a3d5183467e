package tariff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		minutes int
		ok      bool
	}{
		{"00:00", 0, true},
		{"08:30", 510, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"8:30", 0, false},
		{"08-30", 0, false},
		{"", 0, false},
		{"ab:cd", 0, false},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if !c.ok {
			assert.ErrorIs(t, err, ErrMalformedClock, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		assert.Equal(t, c.minutes, got, c.in)
	}
}

func TestSlotClockRoundTrip(t *testing.T) {
	slots := SlotsPerDay(DefaultIntervalMinutes)
	require.Equal(t, 96, slots)
	for i := 0; i < slots; i++ {
		clock := Clock(i, DefaultIntervalMinutes)
		minutes, err := ParseClock(clock)
		require.NoError(t, err)
		assert.Equal(t, i, SlotOf(minutes, DefaultIntervalMinutes), clock)
	}
	assert.Equal(t, "00:00", Clock(0, DefaultIntervalMinutes))
	assert.Equal(t, "23:45", Clock(95, DefaultIntervalMinutes))
}

func TestExpandRange(t *testing.T) {
	set := map[int]bool{}
	ExpandRange(set, 4, 7, 96)
	assert.Len(t, set, 4)
	assert.True(t, set[4])
	assert.True(t, set[7])
	assert.False(t, set[8])

	// wraps past midnight
	set = map[int]bool{}
	ExpandRange(set, 94, 1, 96)
	assert.Len(t, set, 4)
	for _, i := range []int{94, 95, 0, 1} {
		assert.True(t, set[i], i)
	}

	// single slot
	set = map[int]bool{}
	ExpandRange(set, 10, 10, 96)
	assert.Equal(t, map[int]bool{10: true}, set)
}
