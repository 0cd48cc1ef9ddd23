package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/ayaseru/shiori/internal/model"
)

// ScheduleRepo manages schedule overrides (skipped and doubled broadcast
// weeks).
type ScheduleRepo struct {
	db *sql.DB
}

// NewScheduleRepo constructs a ScheduleRepo with the given DB handle.
func NewScheduleRepo(db *sql.DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

// Upsert stores an override for (show, week).  An existing row for the same
// week is replaced so re-marking a week flips its action instead of piling
// up rows.
func (r *ScheduleRepo) Upsert(ctx context.Context, o *model.ScheduleOverride) error {
	const q = `INSERT INTO schedule_overrides (show_id, week_of, action)
               VALUES (?, ?, ?)
               ON DUPLICATE KEY UPDATE action = VALUES(action)`
	res, err := r.db.ExecContext(ctx, q, o.ShowID, o.WeekOf.UTC().Format("2006-01-02"), o.Action)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		o.ID = uint64(id)
	}
	return nil
}

// ListByShow returns all overrides of one show ordered by week.
func (r *ScheduleRepo) ListByShow(ctx context.Context, showID uint64) ([]model.ScheduleOverride, error) {
	const q = `SELECT id, show_id, week_of, action, created_at FROM schedule_overrides WHERE show_id = ? ORDER BY week_of ASC`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOverrides(rows)
}

// ListAll returns every override keyed by show id.  The weekly schedule
// query loads them in one pass instead of per show.
func (r *ScheduleRepo) ListAll(ctx context.Context) (map[uint64][]model.ScheduleOverride, error) {
	const q = `SELECT id, show_id, week_of, action, created_at FROM schedule_overrides ORDER BY week_of ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	all, err := collectOverrides(rows)
	if err != nil {
		return nil, err
	}
	byShow := make(map[uint64][]model.ScheduleOverride, len(all))
	for _, o := range all {
		byShow[o.ShowID] = append(byShow[o.ShowID], o)
	}
	return byShow, nil
}

// Delete removes an override by id; missing rows map to ErrOverrideNotFound.
func (r *ScheduleRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedule_overrides WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrOverrideNotFound
	}
	return nil
}

func collectOverrides(rows *sql.Rows) ([]model.ScheduleOverride, error) {
	result := []model.ScheduleOverride{}
	for rows.Next() {
		var (
			o      model.ScheduleOverride
			weekOf time.Time
		)
		if err := rows.Scan(&o.ID, &o.ShowID, &weekOf, &o.Action, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.WeekOf = weekOf.UTC()
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
