package model

import "strings"

// ShowStatus describes where a show sits in the user's watch list.  The
// values mirror the list buckets of the original tracker: a show is either
// planned, actively watched, paused, finished or abandoned.  Statuses are
// stored as upper-case strings in the `shows` table.
type ShowStatus string

const (
	StatusPlanToWatch ShowStatus = "PLAN_TO_WATCH" // queued, not started
	StatusWatching    ShowStatus = "WATCHING"      // currently being watched
	StatusOnHold      ShowStatus = "ON_HOLD"       // paused, intent to resume
	StatusCompleted   ShowStatus = "COMPLETED"     // every episode watched
	StatusDropped     ShowStatus = "DROPPED"       // abandoned
)

// showStatuses is the membership set used by Valid and ParseShowStatus.
var showStatuses = map[ShowStatus]bool{
	StatusPlanToWatch: true,
	StatusWatching:    true,
	StatusOnHold:      true,
	StatusCompleted:   true,
	StatusDropped:     true,
}

// Valid reports whether s is one of the five known statuses.
func (s ShowStatus) Valid() bool { return showStatuses[s] }

// ParseShowStatus normalizes raw input (case, surrounding space) into a
// ShowStatus.  The second return value is false when the input is not a
// member of the enum.
func ParseShowStatus(raw string) (ShowStatus, bool) {
	s := ShowStatus(strings.ToUpper(strings.TrimSpace(raw)))
	return s, showStatuses[s]
}

// transitions encodes the allowed status graph.  A show can only move along
// these edges; anything else is rejected by CanTransition.  COMPLETED back to
// WATCHING models a rewatch.
var transitions = map[ShowStatus][]ShowStatus{
	StatusPlanToWatch: {StatusWatching, StatusDropped},
	StatusWatching:    {StatusOnHold, StatusCompleted, StatusDropped},
	StatusOnHold:      {StatusWatching, StatusDropped},
	StatusDropped:     {StatusWatching},
	StatusCompleted:   {StatusWatching},
}

// CanTransition reports whether moving from s to next is an allowed edge in
// the status graph.  A no-op transition (s == next) is always permitted.
func (s ShowStatus) CanTransition(next ShowStatus) bool {
	if s == next {
		return true
	}
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// AiringStatus is derived from a show's premiere date, episode count and
// schedule overrides; it is never stored.
type AiringStatus string

const (
	AiringUpcoming AiringStatus = "UPCOMING" // premiere in the future or unannounced
	AiringNow      AiringStatus = "AIRING"   // episodes currently being broadcast
	AiringFinished AiringStatus = "FINISHED" // final episode has aired
)
