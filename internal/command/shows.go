package command

import (
	"context"
	"fmt"
	"time"

	"github.com/ayaseru/shiori/internal/apperr"
	"github.com/ayaseru/shiori/internal/model"
	"github.com/ayaseru/shiori/internal/queue"
)

// Cache prefixes purged after show mutations.  Schedule views derive from
// shows, so every show mutation stales both domains.
var showPrefixes = []string{"shows:", "schedule:"}

// AddShow creates a show in the tracker.  Status defaults to PLAN_TO_WATCH.
type AddShow struct {
	Title         string
	MALID         uint64
	ImageURL      string
	TotalEpisodes uint32
	PremiereAt    time.Time
	Status        string
}

func (AddShow) CommandName() string          { return "show.add" }
func (AddShow) InvalidatePrefixes() []string { return showPrefixes }

func (c AddShow) Validate() error {
	if c.Title == "" {
		return apperr.Validation("title", "required")
	}
	if c.Status != "" {
		if _, ok := model.ParseShowStatus(c.Status); !ok {
			return apperr.Validation("status", "unknown status "+c.Status)
		}
	}
	return nil
}

// UpdateShow rewrites a show's catalog fields.
type UpdateShow struct {
	ShowID        uint64
	Title         string
	ImageURL      string
	TotalEpisodes uint32
	PremiereAt    time.Time
}

func (UpdateShow) CommandName() string          { return "show.update" }
func (UpdateShow) InvalidatePrefixes() []string { return showPrefixes }

func (c UpdateShow) Validate() error {
	if c.ShowID == 0 {
		return apperr.Validation("show_id", "required")
	}
	if c.Title == "" {
		return apperr.Validation("title", "required")
	}
	return nil
}

// SetShowStatus moves a show along the status graph.
type SetShowStatus struct {
	ShowID uint64
	Status string
}

func (SetShowStatus) CommandName() string          { return "show.set_status" }
func (SetShowStatus) InvalidatePrefixes() []string { return showPrefixes }

func (c SetShowStatus) Validate() error {
	if c.ShowID == 0 {
		return apperr.Validation("show_id", "required")
	}
	if _, ok := model.ParseShowStatus(c.Status); !ok {
		return apperr.Validation("status", "unknown status "+c.Status)
	}
	return nil
}

// RecordWatched sets a show's watched-episode count.
type RecordWatched struct {
	ShowID  uint64
	Watched uint32
}

func (RecordWatched) CommandName() string          { return "show.record_watched" }
func (RecordWatched) InvalidatePrefixes() []string { return showPrefixes }

func (c RecordWatched) Validate() error {
	if c.ShowID == 0 {
		return apperr.Validation("show_id", "required")
	}
	return nil
}

// DeleteShow removes a show with its aliases and overrides.
type DeleteShow struct {
	ShowID uint64
}

func (DeleteShow) CommandName() string          { return "show.delete" }
func (DeleteShow) InvalidatePrefixes() []string { return showPrefixes }

func (c DeleteShow) Validate() error {
	if c.ShowID == 0 {
		return apperr.Validation("show_id", "required")
	}
	return nil
}

// AddAlias attaches an alternate title to a show.
type AddAlias struct {
	ShowID uint64
	Title  string
}

func (AddAlias) CommandName() string          { return "show.add_alias" }
func (AddAlias) InvalidatePrefixes() []string { return showPrefixes }

func (c AddAlias) Validate() error {
	if c.ShowID == 0 {
		return apperr.Validation("show_id", "required")
	}
	if c.Title == "" {
		return apperr.Validation("title", "required")
	}
	return nil
}

// DeleteAlias removes one alternate title.
type DeleteAlias struct {
	AliasID uint64
}

func (DeleteAlias) CommandName() string          { return "show.delete_alias" }
func (DeleteAlias) InvalidatePrefixes() []string { return showPrefixes }

func (c DeleteAlias) Validate() error {
	if c.AliasID == 0 {
		return apperr.Validation("alias_id", "required")
	}
	return nil
}

// SetOverride marks a broadcast week as skipped or doubled.
type SetOverride struct {
	ShowID uint64
	WeekOf time.Time
	Action string
}

func (SetOverride) CommandName() string          { return "schedule.set_override" }
func (SetOverride) InvalidatePrefixes() []string { return showPrefixes }

func (c SetOverride) Validate() error {
	if c.ShowID == 0 {
		return apperr.Validation("show_id", "required")
	}
	if c.WeekOf.IsZero() {
		return apperr.Validation("week_of", "required")
	}
	if !model.OverrideAction(c.Action).Valid() {
		return apperr.Validation("action", "must be SKIP or DOUBLE")
	}
	return nil
}

// DeleteOverride removes a schedule override.
type DeleteOverride struct {
	OverrideID uint64
}

func (DeleteOverride) CommandName() string          { return "schedule.delete_override" }
func (DeleteOverride) InvalidatePrefixes() []string { return showPrefixes }

func (c DeleteOverride) Validate() error {
	if c.OverrideID == 0 {
		return apperr.Validation("override_id", "required")
	}
	return nil
}

// ShowHandlers executes show and schedule commands.
type ShowHandlers struct {
	Shows     ShowStore
	Overrides OverrideStore
	Events    Publisher
	Now       func() time.Time // test seam; defaults to time.Now
}

func (h *ShowHandlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// HandleAdd creates a show and returns it.
func (h *ShowHandlers) HandleAdd(ctx context.Context, msg any) (any, error) {
	c := msg.(AddShow)
	status := model.StatusPlanToWatch
	if c.Status != "" {
		status, _ = model.ParseShowStatus(c.Status)
	}
	s := &model.Show{
		MALID:         c.MALID,
		Title:         c.Title,
		ImageURL:      c.ImageURL,
		TotalEpisodes: c.TotalEpisodes,
		PremiereAt:    c.PremiereAt,
		Status:        status,
	}
	if err := h.Shows.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// HandleUpdate rewrites catalog fields, keeping watched count and status.
func (h *ShowHandlers) HandleUpdate(ctx context.Context, msg any) (any, error) {
	c := msg.(UpdateShow)
	s, err := h.Shows.GetByID(ctx, c.ShowID)
	if err != nil {
		return nil, err
	}
	s.Title = c.Title
	s.ImageURL = c.ImageURL
	s.TotalEpisodes = c.TotalEpisodes
	s.PremiereAt = c.PremiereAt
	if err := h.Shows.Update(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// HandleSetStatus validates the transition against the status graph and the
// completion rule, then persists it.  Landing on COMPLETED publishes a
// show.completed event.
func (h *ShowHandlers) HandleSetStatus(ctx context.Context, msg any) (any, error) {
	c := msg.(SetShowStatus)
	next, _ := model.ParseShowStatus(c.Status)
	s, err := h.Shows.GetByID(ctx, c.ShowID)
	if err != nil {
		return nil, err
	}
	if !s.Status.CanTransition(next) {
		return nil, apperr.Validation("status",
			fmt.Sprintf("cannot move from %s to %s", s.Status, next))
	}
	if next == model.StatusCompleted && !s.CanComplete() {
		return nil, apperr.Validation("status",
			fmt.Sprintf("cannot complete: watched %d of %d episodes", s.WatchedEpisodes, s.TotalEpisodes))
	}
	if err := h.Shows.SetStatus(ctx, c.ShowID, next); err != nil {
		return nil, err
	}
	prev := s.Status
	s.Status = next
	if next == model.StatusCompleted && prev != model.StatusCompleted && h.Events != nil {
		h.Events.ShowCompleted(ctx, queue.ShowCompletedEvent{
			ShowID:          s.ID,
			Title:           s.Title,
			TotalEpisodes:   s.TotalEpisodes,
			WatchedEpisodes: s.WatchedEpisodes,
			CompletedAt:     h.now().Format(time.RFC3339),
		})
	}
	return s, nil
}

// HandleRecordWatched stores a watched-episode count after bounds checks.
func (h *ShowHandlers) HandleRecordWatched(ctx context.Context, msg any) (any, error) {
	c := msg.(RecordWatched)
	s, err := h.Shows.GetByID(ctx, c.ShowID)
	if err != nil {
		return nil, err
	}
	if s.TotalEpisodes > 0 && c.Watched > s.TotalEpisodes {
		return nil, apperr.Validation("watched",
			fmt.Sprintf("show has only %d episodes", s.TotalEpisodes))
	}
	if err := h.Shows.SetWatched(ctx, c.ShowID, c.Watched); err != nil {
		return nil, err
	}
	s.WatchedEpisodes = c.Watched
	return s, nil
}

// HandleDelete removes the show.
func (h *ShowHandlers) HandleDelete(ctx context.Context, msg any) (any, error) {
	c := msg.(DeleteShow)
	return nil, h.Shows.Delete(ctx, c.ShowID)
}

// HandleAddAlias attaches an alternate title; the show must exist.
func (h *ShowHandlers) HandleAddAlias(ctx context.Context, msg any) (any, error) {
	c := msg.(AddAlias)
	if _, err := h.Shows.GetByID(ctx, c.ShowID); err != nil {
		return nil, err
	}
	a := &model.ShowAlias{ShowID: c.ShowID, Title: c.Title}
	if err := h.Shows.AddAlias(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// HandleDeleteAlias removes one alias row.
func (h *ShowHandlers) HandleDeleteAlias(ctx context.Context, msg any) (any, error) {
	c := msg.(DeleteAlias)
	return nil, h.Shows.DeleteAlias(ctx, c.AliasID)
}

// HandleSetOverride stores a schedule override for an existing show.  The
// week is snapped to the show's broadcast slot date so the stored row always
// matches the episode arithmetic.
func (h *ShowHandlers) HandleSetOverride(ctx context.Context, msg any) (any, error) {
	c := msg.(SetOverride)
	s, err := h.Shows.GetByID(ctx, c.ShowID)
	if err != nil {
		return nil, err
	}
	weekOf, ok := s.SlotWeekOf(c.WeekOf)
	if !ok {
		return nil, apperr.Validation("week_of", "must be on or after the premiere of a scheduled show")
	}
	o := &model.ScheduleOverride{
		ShowID: c.ShowID,
		WeekOf: weekOf,
		Action: model.OverrideAction(c.Action),
	}
	if err := h.Overrides.Upsert(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// HandleDeleteOverride removes an override row.
func (h *ShowHandlers) HandleDeleteOverride(ctx context.Context, msg any) (any, error) {
	c := msg.(DeleteOverride)
	return nil, h.Overrides.Delete(ctx, c.OverrideID)
}
