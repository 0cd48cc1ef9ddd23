// Package query defines the read side of the application layer.  Queries
// return JSON-ready view structs with the derived fields (airing status,
// episode arithmetic) already computed, so handlers only serialize.  Every
// query here is cacheable; keys are namespaced "shows:", "schedule:" or
// "music:" so commands can invalidate whole domains.
package query

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ayaseru/shiori/internal/apperr"
	"github.com/ayaseru/shiori/internal/model"
	"github.com/ayaseru/shiori/internal/repository"
)

// ShowReader is the slice of the show repository query handlers need.
type ShowReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Show, error)
	ListByStatus(ctx context.Context, status model.ShowStatus) ([]model.Show, error)
	ListAiringWindow(ctx context.Context, until string) ([]model.Show, error)
	ListAliases(ctx context.Context, showID uint64) ([]model.ShowAlias, error)
	Search(ctx context.Context, q repository.ShowSearchQuery) ([]repository.ShowSearchRow, int64, error)
}

// OverrideReader loads schedule overrides.
type OverrideReader interface {
	ListByShow(ctx context.Context, showID uint64) ([]model.ScheduleOverride, error)
	ListAll(ctx context.Context) (map[uint64][]model.ScheduleOverride, error)
}

// ShowView is the list representation of a show with derived airing fields.
type ShowView struct {
	ID              uint64     `json:"id"`
	MALID           uint64     `json:"mal_id,omitempty"`
	Title           string     `json:"title"`
	ImageURL        string     `json:"image_url,omitempty"`
	TotalEpisodes   uint32     `json:"total_episodes"`
	WatchedEpisodes uint32     `json:"watched_episodes"`
	PremiereAt      *time.Time `json:"premiere_at,omitempty"`
	Status          string     `json:"status"`
	AiringStatus    string     `json:"airing_status"`
	EpisodesAired   uint32     `json:"episodes_aired"`
	Behind          uint32     `json:"behind"`
	NextEpisodeAt   *time.Time `json:"next_episode_at,omitempty"`
}

// ShowDetail extends ShowView with aliases, overrides and the final episode
// date.
type ShowDetail struct {
	ShowView
	FinalEpisodeAt *time.Time     `json:"final_episode_at,omitempty"`
	Aliases        []string       `json:"aliases"`
	Overrides      []OverrideView `json:"overrides"`
}

// OverrideView is the JSON form of one schedule override.
type OverrideView struct {
	ID     uint64 `json:"id"`
	WeekOf string `json:"week_of"`
	Action string `json:"action"`
}

func timePtr(t time.Time, ok bool) *time.Time {
	if !ok || t.IsZero() {
		return nil
	}
	return &t
}

// buildView computes the derived fields for one show.
func buildView(s *model.Show, ovs []model.ScheduleOverride, now time.Time) ShowView {
	v := ShowView{
		ID:              s.ID,
		MALID:           s.MALID,
		Title:           s.Title,
		ImageURL:        s.ImageURL,
		TotalEpisodes:   s.TotalEpisodes,
		WatchedEpisodes: s.WatchedEpisodes,
		Status:          string(s.Status),
		AiringStatus:    string(s.AiringStatusAt(now, ovs)),
		EpisodesAired:   s.EpisodesAired(now, ovs),
		Behind:          s.Behind(now, ovs),
	}
	if !s.PremiereAt.IsZero() {
		p := s.PremiereAt
		v.PremiereAt = &p
	}
	if next, ok := s.NextEpisodeAt(now, ovs); ok {
		v.NextEpisodeAt = &next
	}
	return v
}

// GetShow loads one show with aliases, overrides and derived fields.
type GetShow struct {
	ShowID uint64
}

func (GetShow) QueryName() string  { return "show.get" }
func (q GetShow) CacheKey() string { return fmt.Sprintf("shows:get:%d", q.ShowID) }

func (q GetShow) Validate() error {
	if q.ShowID == 0 {
		return apperr.Validation("show_id", "required")
	}
	return nil
}

// ListShows lists shows by watch-list status; empty status lists all.
type ListShows struct {
	Status string
}

func (ListShows) QueryName() string  { return "show.list" }
func (q ListShows) CacheKey() string { return "shows:list:" + q.Status }

func (q ListShows) Validate() error {
	if q.Status != "" {
		if _, ok := model.ParseShowStatus(q.Status); !ok {
			return apperr.Validation("status", "unknown status "+q.Status)
		}
	}
	return nil
}

// SearchShows filters shows by title (including aliases) and status, with
// pagination.
type SearchShows struct {
	Title    string
	Status   string
	Page     int
	PageSize int
}

func (SearchShows) QueryName() string { return "show.search" }
func (q SearchShows) CacheKey() string {
	return fmt.Sprintf("shows:search:%s:%s:%d:%d", q.Title, q.Status, q.Page, q.PageSize)
}

func (q SearchShows) Validate() error {
	if q.Status != "" {
		if _, ok := model.ParseShowStatus(q.Status); !ok {
			return apperr.Validation("status", "unknown status "+q.Status)
		}
	}
	return nil
}

// SearchShowsResult pairs one page of rows with the total match count.
type SearchShowsResult struct {
	Items []repository.ShowSearchRow `json:"items"`
	Total int64                      `json:"total"`
	Page  int                        `json:"page"`
}

// WeekSchedule lists the episodes airing in the seven days from WeekStart.
type WeekSchedule struct {
	WeekStart time.Time
}

func (WeekSchedule) QueryName() string { return "schedule.week" }
func (q WeekSchedule) CacheKey() string {
	return "schedule:week:" + q.WeekStart.UTC().Format("2006-01-02")
}

func (q WeekSchedule) Validate() error {
	if q.WeekStart.IsZero() {
		return apperr.Validation("week_start", "required")
	}
	return nil
}

// ScheduleEntry is one episode slot in the weekly schedule.
type ScheduleEntry struct {
	ShowID  uint64    `json:"show_id"`
	Title   string    `json:"title"`
	Episode uint32    `json:"episode"`
	AirsAt  time.Time `json:"airs_at"`
	Watched bool      `json:"watched"`
}

// ShowQueries executes show and schedule queries.
type ShowQueries struct {
	Shows     ShowReader
	Overrides OverrideReader
	Now       func() time.Time // test seam; defaults to time.Now
}

func (h *ShowQueries) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// HandleGet builds the detail view for one show.
func (h *ShowQueries) HandleGet(ctx context.Context, msg any) (any, error) {
	q := msg.(GetShow)
	s, err := h.Shows.GetByID(ctx, q.ShowID)
	if err != nil {
		return nil, err
	}
	ovs, err := h.Overrides.ListByShow(ctx, q.ShowID)
	if err != nil {
		return nil, err
	}
	aliases, err := h.Shows.ListAliases(ctx, q.ShowID)
	if err != nil {
		return nil, err
	}
	now := h.now()
	d := ShowDetail{
		ShowView:       buildView(s, ovs, now),
		FinalEpisodeAt: timePtr(s.FinalEpisodeAt(ovs)),
		Aliases:        make([]string, 0, len(aliases)),
		Overrides:      make([]OverrideView, 0, len(ovs)),
	}
	for _, a := range aliases {
		d.Aliases = append(d.Aliases, a.Title)
	}
	for _, o := range ovs {
		d.Overrides = append(d.Overrides, OverrideView{
			ID:     o.ID,
			WeekOf: o.WeekOf.Format("2006-01-02"),
			Action: string(o.Action),
		})
	}
	return d, nil
}

// HandleList builds list views for one status bucket (or all shows).
func (h *ShowQueries) HandleList(ctx context.Context, msg any) (any, error) {
	q := msg.(ListShows)
	status := model.ShowStatus("")
	if q.Status != "" {
		status, _ = model.ParseShowStatus(q.Status)
	}
	shows, err := h.Shows.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}
	ovsByShow, err := h.Overrides.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	now := h.now()
	out := make([]ShowView, 0, len(shows))
	for i := range shows {
		out = append(out, buildView(&shows[i], ovsByShow[shows[i].ID], now))
	}
	return out, nil
}

// HandleSearch pages through matching shows.
func (h *ShowQueries) HandleSearch(ctx context.Context, msg any) (any, error) {
	q := msg.(SearchShows)
	page := q.Page
	if page < 1 {
		page = 1
	}
	rows, total, err := h.Shows.Search(ctx, repository.ShowSearchQuery{
		Title:    q.Title,
		Status:   model.ShowStatus(q.Status),
		Page:     page,
		PageSize: q.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return SearchShowsResult{Items: rows, Total: total, Page: page}, nil
}

// HandleWeek assembles the weekly schedule.  For each show with a premiere
// inside or before the window, the episodes whose air dates land in
// [WeekStart, WeekStart+7d) are listed, ordered by air time then title.
func (h *ShowQueries) HandleWeek(ctx context.Context, msg any) (any, error) {
	q := msg.(WeekSchedule)
	start := q.WeekStart.UTC()
	end := start.Add(7 * 24 * time.Hour)

	shows, err := h.Shows.ListAiringWindow(ctx, end.Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	ovsByShow, err := h.Overrides.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	entries := []ScheduleEntry{}
	for i := range shows {
		s := &shows[i]
		ovs := ovsByShow[s.ID]
		// Episodes airing inside the window are exactly those between the
		// aired counts at the window edges.
		before := s.EpisodesAired(start.Add(-time.Nanosecond), ovs)
		atEnd := s.EpisodesAired(end.Add(-time.Nanosecond), ovs)
		for ep := before + 1; ep <= atEnd; ep++ {
			airsAt, ok := s.EpisodeAirDate(ep, ovs)
			if !ok || airsAt.Before(start) || !airsAt.Before(end) {
				continue
			}
			entries = append(entries, ScheduleEntry{
				ShowID:  s.ID,
				Title:   s.Title,
				Episode: ep,
				AirsAt:  airsAt,
				Watched: ep <= s.WatchedEpisodes,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].AirsAt.Equal(entries[j].AirsAt) {
			return entries[i].AirsAt.Before(entries[j].AirsAt)
		}
		return entries[i].Title < entries[j].Title
	})
	return entries, nil
}
