package filters

import (
	"time"

	"github.com/agentkit/hookflow/hooks"
)

// TimeWindowFilter allows execution only during a bitmask of
// day-of-week x hour-of-day slots, evaluated in a fixed TZ offset from
// UTC. Ranges that cross midnight are expressed as two disjoint AddRange
// calls by the caller (matching the spec's "handled by disjunction").
type TimeWindowFilter struct {
	// mask[weekday][hour] is true when that slot is allowed.
	mask      [7][24]bool
	tzOffset  time.Duration
}

// NewTimeWindowFilter builds an empty (deny-all) filter in the given UTC
// offset.
func NewTimeWindowFilter(tzOffset time.Duration) *TimeWindowFilter {
	return &TimeWindowFilter{tzOffset: tzOffset}
}

// AddRange allows every hour in [hourStart, hourEnd) (mod 24) on the given
// days. Callers wanting a window that crosses midnight (e.g. 22:00-02:00)
// issue two calls: AddRange(days, 22, 24) and AddRange(days, 0, 2).
func (f *TimeWindowFilter) AddRange(days []time.Weekday, hourStart, hourEnd int) {
	for _, d := range days {
		for h := hourStart; h < hourEnd; h++ {
			f.mask[int(d)%7][h%24] = true
		}
	}
}

func (f *TimeWindowFilter) Allow(h hooks.Hook, hctx *hooks.Context) bool {
	now := time.Now().UTC().Add(f.tzOffset)
	return f.mask[int(now.Weekday())][now.Hour()]
}
