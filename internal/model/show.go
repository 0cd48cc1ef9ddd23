package model

import "time"

// week is the broadcast cadence.  Every show in the tracker airs one episode
// per week unless a ScheduleOverride says otherwise.
const week = 7 * 24 * time.Hour

// maxScheduleWeeks bounds schedule walks so a pathological override set can
// never loop forever.
const maxScheduleWeeks = 1024

// Show represents a tracked series.  It combines the catalog facts that come
// from an import (title, premiere, episode totals) with the user's own
// progress (watched count, list status).  Airing state is never stored; it is
// derived from PremiereAt, TotalEpisodes and the show's schedule overrides.
type Show struct {
	ID              uint64     // shows.id
	MALID           uint64     // shows.mal_id
	Title           string     // shows.title
	ImageURL        string     // shows.image_url
	TotalEpisodes   uint32     // shows.total_episodes
	WatchedEpisodes uint32     // shows.watched_episodes
	PremiereAt      time.Time  // shows.premiere_at
	Status          ShowStatus // shows.status
	CreatedAt       time.Time  // shows.created_at
	UpdatedAt       time.Time  // shows.updated_at
}

// ShowAlias is an alternate title attached to a show; aliases participate in
// search alongside the primary title.
type ShowAlias struct {
	ID     uint64 // show_aliases.id
	ShowID uint64 // show_aliases.show_id
	Title  string // show_aliases.title
}

// weekAt returns how many episodes air in the weekly slot at t, honoring any
// override for that week: 0 for SKIP, 2 for DOUBLE, otherwise 1.
func weekAt(idx map[time.Time]OverrideAction, slot time.Time) uint32 {
	switch idx[weekKey(slot)] {
	case OverrideSkip:
		return 0
	case OverrideDouble:
		return 2
	default:
		return 1
	}
}

// EpisodesAired returns how many episodes of the show have been broadcast as
// of now.  Before the premiere (or while the premiere is unannounced) it is
// zero.  The count walks the weekly slots from the premiere, applying
// overrides, and is clamped to TotalEpisodes when the total is known.
func (s *Show) EpisodesAired(now time.Time, ovs []ScheduleOverride) uint32 {
	if s.PremiereAt.IsZero() || now.Before(s.PremiereAt) {
		return 0
	}
	idx := overrideIndex(ovs)
	var aired uint32
	slot := s.PremiereAt
	for w := 0; w < maxScheduleWeeks && !slot.After(now); w++ {
		aired += weekAt(idx, slot)
		if s.TotalEpisodes > 0 && aired >= s.TotalEpisodes {
			return s.TotalEpisodes
		}
		slot = slot.Add(week)
	}
	return aired
}

// EpisodeAirDate returns the broadcast date of episode n (1-based), walking
// the weekly slots and honoring overrides.  The second return value is false
// when n is out of range or the premiere is unannounced.
func (s *Show) EpisodeAirDate(n uint32, ovs []ScheduleOverride) (time.Time, bool) {
	if n == 0 || s.PremiereAt.IsZero() {
		return time.Time{}, false
	}
	if s.TotalEpisodes > 0 && n > s.TotalEpisodes {
		return time.Time{}, false
	}
	idx := overrideIndex(ovs)
	var aired uint32
	slot := s.PremiereAt
	for w := 0; w < maxScheduleWeeks; w++ {
		aired += weekAt(idx, slot)
		if aired >= n {
			return slot, true
		}
		slot = slot.Add(week)
	}
	return time.Time{}, false
}

// SlotWeekOf snaps a calendar day to the show's broadcast slot date in the
// same week.  Overrides are keyed by slot date, so a week_of that does not
// land exactly on the weekly slot would be stored but never match the
// arithmetic.  The second return value is false when the premiere is
// unannounced or the day falls before it.
func (s *Show) SlotWeekOf(day time.Time) (time.Time, bool) {
	if s.PremiereAt.IsZero() {
		return time.Time{}, false
	}
	first := weekKey(s.PremiereAt)
	day = weekKey(day)
	if day.Before(first) {
		return time.Time{}, false
	}
	weeks := int(day.Sub(first) / week)
	return first.Add(time.Duration(weeks) * week), true
}

// NextEpisodeAt returns the broadcast date of the first episode that has not
// yet aired as of now.  The second return value is false when the show has
// finished airing or the premiere is unannounced.
func (s *Show) NextEpisodeAt(now time.Time, ovs []ScheduleOverride) (time.Time, bool) {
	aired := s.EpisodesAired(now, ovs)
	if s.TotalEpisodes > 0 && aired >= s.TotalEpisodes {
		return time.Time{}, false
	}
	return s.EpisodeAirDate(aired+1, ovs)
}

// FinalEpisodeAt returns the broadcast date of the last episode.  The second
// return value is false while the episode total or premiere is unknown.
func (s *Show) FinalEpisodeAt(ovs []ScheduleOverride) (time.Time, bool) {
	if s.TotalEpisodes == 0 {
		return time.Time{}, false
	}
	return s.EpisodeAirDate(s.TotalEpisodes, ovs)
}

// AiringStatusAt derives the broadcast state of the show at now.  A show with
// no announced premiere is UPCOMING; once every known episode has aired it is
// FINISHED; in between it is AIRING.  A show with an unknown episode total
// stays AIRING after its premiere.
func (s *Show) AiringStatusAt(now time.Time, ovs []ScheduleOverride) AiringStatus {
	if s.PremiereAt.IsZero() || now.Before(s.PremiereAt) {
		return AiringUpcoming
	}
	if s.TotalEpisodes > 0 && s.EpisodesAired(now, ovs) >= s.TotalEpisodes {
		return AiringFinished
	}
	return AiringNow
}

// CanComplete reports whether the show may move to COMPLETED: the episode
// total must be known and every episode watched.
func (s *Show) CanComplete() bool {
	return s.TotalEpisodes > 0 && s.WatchedEpisodes >= s.TotalEpisodes
}

// Behind returns how many aired episodes the user has not watched yet.
func (s *Show) Behind(now time.Time, ovs []ScheduleOverride) uint32 {
	aired := s.EpisodesAired(now, ovs)
	if s.WatchedEpisodes >= aired {
		return 0
	}
	return aired - s.WatchedEpisodes
}
