package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var premiere = time.Date(2026, time.April, 5, 0, 0, 0, 0, time.UTC)

func weeklyShow(total, watched uint32) *Show {
	return &Show{
		ID:              1,
		Title:           "Test Show",
		TotalEpisodes:   total,
		WatchedEpisodes: watched,
		PremiereAt:      premiere,
		Status:          StatusWatching,
	}
}

func TestEpisodesAiredWeekly(t *testing.T) {
	s := weeklyShow(12, 0)

	assert.Zero(t, s.EpisodesAired(premiere.Add(-time.Hour), nil), "before premiere")
	assert.Equal(t, uint32(1), s.EpisodesAired(premiere, nil), "premiere day")
	assert.Equal(t, uint32(1), s.EpisodesAired(premiere.AddDate(0, 0, 6), nil))
	assert.Equal(t, uint32(2), s.EpisodesAired(premiere.AddDate(0, 0, 7), nil))
	assert.Equal(t, uint32(5), s.EpisodesAired(premiere.AddDate(0, 0, 4*7), nil))
	// Clamped at the announced total even long after the finale.
	assert.Equal(t, uint32(12), s.EpisodesAired(premiere.AddDate(1, 0, 0), nil))
}

func TestEpisodesAiredUnknownPremiere(t *testing.T) {
	s := &Show{Title: "Unannounced", TotalEpisodes: 12}
	assert.Zero(t, s.EpisodesAired(time.Now(), nil))
}

func TestEpisodesAiredWithOverrides(t *testing.T) {
	s := weeklyShow(12, 0)
	ovs := []ScheduleOverride{
		{ShowID: 1, WeekOf: premiere.AddDate(0, 0, 7), Action: OverrideSkip},
		{ShowID: 1, WeekOf: premiere.AddDate(0, 0, 21), Action: OverrideDouble},
	}

	// Week 0: ep 1.  Week 1: skipped.  Week 2: ep 2.  Week 3: eps 3 and 4.
	assert.Equal(t, uint32(1), s.EpisodesAired(premiere.AddDate(0, 0, 7), ovs))
	assert.Equal(t, uint32(2), s.EpisodesAired(premiere.AddDate(0, 0, 14), ovs))
	assert.Equal(t, uint32(4), s.EpisodesAired(premiere.AddDate(0, 0, 21), ovs))
	assert.Equal(t, uint32(5), s.EpisodesAired(premiere.AddDate(0, 0, 28), ovs))
}

func TestEpisodeAirDate(t *testing.T) {
	s := weeklyShow(12, 0)

	got, ok := s.EpisodeAirDate(1, nil)
	assert.True(t, ok)
	assert.Equal(t, premiere, got)

	got, ok = s.EpisodeAirDate(3, nil)
	assert.True(t, ok)
	assert.Equal(t, premiere.AddDate(0, 0, 14), got)

	_, ok = s.EpisodeAirDate(0, nil)
	assert.False(t, ok, "episodes are 1-based")
	_, ok = s.EpisodeAirDate(13, nil)
	assert.False(t, ok, "beyond the announced total")
}

func TestEpisodeAirDateWithOverrides(t *testing.T) {
	s := weeklyShow(12, 0)
	ovs := []ScheduleOverride{
		{ShowID: 1, WeekOf: premiere.AddDate(0, 0, 7), Action: OverrideSkip},
		{ShowID: 1, WeekOf: premiere.AddDate(0, 0, 21), Action: OverrideDouble},
	}

	// A skipped week pushes episode 2 one week out.
	got, ok := s.EpisodeAirDate(2, ovs)
	assert.True(t, ok)
	assert.Equal(t, premiere.AddDate(0, 0, 14), got)

	// Both halves of the double week share the slot date.
	for _, n := range []uint32{3, 4} {
		got, ok = s.EpisodeAirDate(n, ovs)
		assert.True(t, ok)
		assert.Equal(t, premiere.AddDate(0, 0, 21), got)
	}

	// Episode 5 returns to the weekly cadence after the double.
	got, ok = s.EpisodeAirDate(5, ovs)
	assert.True(t, ok)
	assert.Equal(t, premiere.AddDate(0, 0, 28), got)
}

func TestNextEpisodeAt(t *testing.T) {
	s := weeklyShow(3, 0)

	got, ok := s.NextEpisodeAt(premiere.Add(-time.Hour), nil)
	assert.True(t, ok)
	assert.Equal(t, premiere, got)

	got, ok = s.NextEpisodeAt(premiere.AddDate(0, 0, 3), nil)
	assert.True(t, ok)
	assert.Equal(t, premiere.AddDate(0, 0, 7), got)

	_, ok = s.NextEpisodeAt(premiere.AddDate(0, 0, 30), nil)
	assert.False(t, ok, "all three episodes aired")
}

func TestFinalEpisodeAt(t *testing.T) {
	s := weeklyShow(12, 0)
	got, ok := s.FinalEpisodeAt(nil)
	assert.True(t, ok)
	assert.Equal(t, premiere.AddDate(0, 0, 11*7), got)

	unknown := weeklyShow(0, 0)
	_, ok = unknown.FinalEpisodeAt(nil)
	assert.False(t, ok)
}

func TestAiringStatusAt(t *testing.T) {
	s := weeklyShow(3, 0)

	assert.Equal(t, AiringUpcoming, s.AiringStatusAt(premiere.Add(-time.Minute), nil))
	assert.Equal(t, AiringNow, s.AiringStatusAt(premiere.AddDate(0, 0, 7), nil))
	assert.Equal(t, AiringFinished, s.AiringStatusAt(premiere.AddDate(0, 0, 14), nil))

	noPremiere := &Show{Title: "Unannounced"}
	assert.Equal(t, AiringUpcoming, noPremiere.AiringStatusAt(time.Now(), nil))

	// Unknown totals never finish.
	openEnded := weeklyShow(0, 0)
	assert.Equal(t, AiringNow, openEnded.AiringStatusAt(premiere.AddDate(2, 0, 0), nil))
}

func TestBehind(t *testing.T) {
	s := weeklyShow(12, 3)
	assert.Equal(t, uint32(2), s.Behind(premiere.AddDate(0, 0, 4*7), nil))
	s.WatchedEpisodes = 7
	assert.Zero(t, s.Behind(premiere.AddDate(0, 0, 4*7), nil))
}

func TestCanComplete(t *testing.T) {
	assert.False(t, weeklyShow(12, 11).CanComplete())
	assert.True(t, weeklyShow(12, 12).CanComplete())
	assert.False(t, weeklyShow(0, 50).CanComplete(), "unknown total")
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to ShowStatus
		ok       bool
	}{
		{StatusPlanToWatch, StatusWatching, true},
		{StatusWatching, StatusOnHold, true},
		{StatusWatching, StatusCompleted, true},
		{StatusOnHold, StatusWatching, true},
		{StatusDropped, StatusWatching, true},
		{StatusCompleted, StatusWatching, true},
		{StatusPlanToWatch, StatusCompleted, false},
		{StatusPlanToWatch, StatusOnHold, false},
		{StatusCompleted, StatusCompleted, true}, // no-op always allowed
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestParseShowStatus(t *testing.T) {
	got, ok := ParseShowStatus("WATCHING")
	assert.True(t, ok)
	assert.Equal(t, StatusWatching, got)

	_, ok = ParseShowStatus("BINGING")
	assert.False(t, ok)
}

func TestSlotWeekOf(t *testing.T) {
	s := weeklyShow(12, 0)

	// Already on a slot day.
	got, ok := s.SlotWeekOf(premiere.Add(2 * week))
	assert.True(t, ok)
	assert.Equal(t, premiere.Add(2*week), got)

	// Mid-week dates snap back to the slot of the same broadcast week.
	got, ok = s.SlotWeekOf(premiere.Add(2*week + 3*24*time.Hour))
	assert.True(t, ok)
	assert.Equal(t, premiere.Add(2*week), got)

	// Clock components are ignored; only the UTC date matters.
	got, ok = s.SlotWeekOf(premiere.Add(20 * time.Hour))
	assert.True(t, ok)
	assert.Equal(t, premiere, got)

	// Before the premiere there is no slot.
	_, ok = s.SlotWeekOf(premiere.AddDate(0, 0, -1))
	assert.False(t, ok)

	// No premiere, no schedule.
	_, ok = (&Show{Title: "Unannounced"}).SlotWeekOf(premiere)
	assert.False(t, ok)
}
