// Package repository contains data access logic for the tracker's domain
// operations.  This file defines repository methods for shows and their
// alias titles.  Times are stored as DATETIME in UTC; the driver's
// parseTime=true option scans them into time.Time directly.
package repository

import (
	"context"      // context for controlling query lifetime
	"database/sql" // sql provides DB abstraction
	"errors"       // errors for sentinel comparison
	"strings"      // strings for duplicate-key detection

	"github.com/ayaseru/shiori/internal/model"
)

// showColumns is the column list shared by every SELECT in this file.
const showColumns = `id, mal_id, title, image_url, total_episodes, watched_episodes, premiere_at, status, created_at, updated_at`

// ShowRepo manages persistence for shows and show aliases.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *ShowRepo) DB() *sql.DB {
	return r.db
}

// scanShow scans one row into a model.Show.  premiere_at is nullable for
// shows whose air date is not announced yet.
func scanShow(row interface{ Scan(...any) error }, s *model.Show) error {
	var premiere sql.NullTime
	err := row.Scan(&s.ID, &s.MALID, &s.Title, &s.ImageURL, &s.TotalEpisodes,
		&s.WatchedEpisodes, &premiere, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return err
	}
	if premiere.Valid {
		s.PremiereAt = premiere.Time
	}
	return nil
}

// premiereArg converts a zero premiere into NULL for inserts and updates.
func premiereArg(s *model.Show) any {
	if s.PremiereAt.IsZero() {
		return nil
	}
	return s.PremiereAt.UTC()
}

// Create inserts a new show and assigns the generated ID back to the struct.
// Status defaults to PLAN_TO_WATCH when unset.  A duplicate MAL id maps to
// ErrDuplicate.
func (r *ShowRepo) Create(ctx context.Context, s *model.Show) error {
	if s.Status == "" {
		s.Status = model.StatusPlanToWatch
	}
	const q = `INSERT INTO shows (mal_id, title, image_url, total_episodes, watched_episodes, premiere_at, status) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.MALID, s.Title, s.ImageURL, s.TotalEpisodes, s.WatchedEpisodes, premiereArg(s), s.Status)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	// Fetch the inserted row to populate DB-default fields (created_at, updated_at).
	const sel = `SELECT ` + showColumns + ` FROM shows WHERE id = ?`
	return scanShow(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// GetByID retrieves a show by its ID.  It returns ErrShowNotFound if there
// is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id uint64) (*model.Show, error) {
	const q = `SELECT ` + showColumns + ` FROM shows WHERE id = ?`
	var s model.Show
	if err := scanShow(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByMALID retrieves a show by its MyAnimeList id.  Imports use it to
// decide between creating and refreshing a show.
func (r *ShowRepo) GetByMALID(ctx context.Context, malID uint64) (*model.Show, error) {
	const q = `SELECT ` + showColumns + ` FROM shows WHERE mal_id = ? LIMIT 1`
	var s model.Show
	if err := scanShow(r.db.QueryRowContext(ctx, q, malID), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrShowNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByStatus returns all shows with the given list status ordered by
// title.  An empty status lists everything.  When no shows exist it returns
// an empty slice and nil error.
func (r *ShowRepo) ListByStatus(ctx context.Context, status model.ShowStatus) ([]model.Show, error) {
	q := `SELECT ` + showColumns + ` FROM shows`
	args := []any{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY title ASC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Show{}
	for rows.Next() {
		var s model.Show
		if err := scanShow(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAiringWindow returns shows whose premiere is set and not later than
// the given end of the schedule window.  The weekly schedule query derives
// per-week slots from these in memory.
func (r *ShowRepo) ListAiringWindow(ctx context.Context, until string) ([]model.Show, error) {
	const q = `SELECT ` + showColumns + ` FROM shows WHERE premiere_at IS NOT NULL AND premiere_at <= ? ORDER BY premiere_at ASC`
	rows, err := r.db.QueryContext(ctx, q, until)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Show{}
	for rows.Next() {
		var s model.Show
		if err := scanShow(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites a show's mutable attributes.  It only performs the UPDATE
// when at least one field differs; otherwise it returns ErrNoChange.  When
// the row doesn't exist it returns ErrShowNotFound.
func (r *ShowRepo) Update(ctx context.Context, s *model.Show) error {
	const q = `UPDATE shows
               SET title = ?, image_url = ?, total_episodes = ?, watched_episodes = ?, premiere_at = ?, status = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?
                 AND (title <> ? OR image_url <> ? OR total_episodes <> ? OR watched_episodes <> ? OR NOT (premiere_at <=> ?) OR status <> ?)`
	p := premiereArg(s)
	res, err := r.db.ExecContext(ctx, q,
		s.Title, s.ImageURL, s.TotalEpisodes, s.WatchedEpisodes, p, s.Status, // SET
		s.ID,
		s.Title, s.ImageURL, s.TotalEpisodes, s.WatchedEpisodes, p, s.Status, // only if at least one field differs
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}

	// Determine if it's "not found" or simply "no change".
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM shows WHERE id = ? LIMIT 1`, s.ID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrShowNotFound
		}
		return err
	}
	return ErrNoChange
}

// SetStatus stores a new list status.  Transition rules are enforced above
// the repository; this method only touches the row.
func (r *ShowRepo) SetStatus(ctx context.Context, id uint64, status model.ShowStatus) error {
	const q = `UPDATE shows SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either missing or already in this status; distinguish for callers.
		var current model.ShowStatus
		if err := r.db.QueryRowContext(ctx, `SELECT status FROM shows WHERE id = ?`, id).Scan(&current); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrShowNotFound
			}
			return err
		}
	}
	return nil
}

// SetWatched stores a new watched-episode count.
func (r *ShowRepo) SetWatched(ctx context.Context, id uint64, watched uint32) error {
	const q = `UPDATE shows SET watched_episodes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, watched, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM shows WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrShowNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a show together with its aliases and schedule overrides.
// The deletion occurs within a transaction so that no partial cleanup
// occurs.  If the show does not exist, ErrShowNotFound is returned.
func (r *ShowRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM shows WHERE id = ? LIMIT 1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrShowNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM show_aliases WHERE show_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM schedule_overrides WHERE show_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM shows WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}

// AddAlias attaches an alternate title to a show.  Duplicate alias titles
// per show map to ErrDuplicate.
func (r *ShowRepo) AddAlias(ctx context.Context, a *model.ShowAlias) error {
	const q = `INSERT INTO show_aliases (show_id, title) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.ShowID, a.Title)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// ListAliases returns every alias of a show ordered by title.
func (r *ShowRepo) ListAliases(ctx context.Context, showID uint64) ([]model.ShowAlias, error) {
	const q = `SELECT id, show_id, title FROM show_aliases WHERE show_id = ? ORDER BY title ASC`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.ShowAlias{}
	for rows.Next() {
		var a model.ShowAlias
		if err := rows.Scan(&a.ID, &a.ShowID, &a.Title); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteAlias removes one alias row.  Missing rows surface as sql.ErrNoRows
// so handlers can answer 404.
func (r *ShowRepo) DeleteAlias(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM show_aliases WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
