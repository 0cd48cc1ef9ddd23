package repository

import (
	"context"
	"strings"

	"github.com/ayaseru/shiori/internal/model"
)

// ShowSearchQuery defines filters & pagination for searching shows.  Title
// matches the primary title or any alias, case-insensitively.
type ShowSearchQuery struct {
	Title    string
	Status   model.ShowStatus
	Page     int
	PageSize int
}

// ShowSearchRow is one search result.  It carries only the fields shown in
// list views; clients fetch the full show for details.
type ShowSearchRow struct {
	ID              uint64 `json:"id"`
	MALID           uint64 `json:"mal_id,omitempty"`
	Title           string `json:"title"`
	ImageURL        string `json:"image_url,omitempty"`
	TotalEpisodes   uint32 `json:"total_episodes"`
	WatchedEpisodes uint32 `json:"watched_episodes"`
	Status          string `json:"status"`
	PremiereAt      string `json:"premiere_at,omitempty"`
}

// Search returns matching shows plus the total match count for pagination.
// Results are ordered by title ascending.
func (r *ShowRepo) Search(ctx context.Context, q ShowSearchQuery) ([]ShowSearchRow, int64, error) {
	where := []string{}
	args := []any{}

	if q.Title != "" {
		where = append(where, `(LOWER(s.title) LIKE ? OR EXISTS (
			SELECT 1 FROM show_aliases a WHERE a.show_id = s.id AND LOWER(a.title) LIKE ?))`)
		pat := "%" + strings.ToLower(q.Title) + "%"
		args = append(args, pat, pat)
	}
	if q.Status != "" {
		where = append(where, "s.status = ?")
		args = append(args, q.Status)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM shows s WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	limit := q.PageSize
	offset := (q.Page - 1) * q.PageSize

	dataSQL := `SELECT
			s.id,
			s.mal_id,
			s.title,
			s.image_url,
			s.total_episodes,
			s.watched_episodes,
			s.status,
			COALESCE(DATE_FORMAT(s.premiere_at, '%Y-%m-%d'), '') AS premiere_at
		FROM shows s
		WHERE ` + cond + `
		ORDER BY s.title ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]ShowSearchRow, 0, limit)
	for rows.Next() {
		var d ShowSearchRow
		if err := rows.Scan(
			&d.ID,
			&d.MALID,
			&d.Title,
			&d.ImageURL,
			&d.TotalEpisodes,
			&d.WatchedEpisodes,
			&d.Status,
			&d.PremiereAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
