package model

import "time"

// OverrideAction describes how a broadcast week deviates from the weekly
// cadence.  SKIP means no episode aired that week (recap weeks, delays) and
// every later episode slips one week.  DOUBLE means two episodes aired
// back-to-back and every later episode moves one week earlier.
type OverrideAction string

const (
	OverrideSkip   OverrideAction = "SKIP"
	OverrideDouble OverrideAction = "DOUBLE"
)

// Valid reports whether a is a known override action.
func (a OverrideAction) Valid() bool {
	return a == OverrideSkip || a == OverrideDouble
}

// ScheduleOverride records a single deviating broadcast week for a show.
// WeekOf is the date of the affected weekly slot, truncated to midnight UTC.
type ScheduleOverride struct {
	ID        uint64         // schedule_overrides.id
	ShowID    uint64         // schedule_overrides.show_id
	WeekOf    time.Time      // schedule_overrides.week_of
	Action    OverrideAction // schedule_overrides.action
	CreatedAt time.Time      // schedule_overrides.created_at
}

// weekKey normalizes a time to its UTC date so overrides match slots
// regardless of clock component.
func weekKey(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// overrideIndex builds a lookup from slot date to action.  Later entries for
// the same week win, matching repository ordering (latest row wins).
func overrideIndex(ovs []ScheduleOverride) map[time.Time]OverrideAction {
	if len(ovs) == 0 {
		return nil
	}
	idx := make(map[time.Time]OverrideAction, len(ovs))
	for _, o := range ovs {
		idx[weekKey(o.WeekOf)] = o.Action
	}
	return idx
}
