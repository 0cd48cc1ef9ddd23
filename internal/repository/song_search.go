package repository

import (
	"context"
	"database/sql"
	"strings"
)

// SongSearchQuery defines filters & pagination for searching the music
// library.  Text matches the title or the artist, case-insensitively.
type SongSearchQuery struct {
	Text          string
	FavoritesOnly bool
	Page          int
	PageSize      int
}

// SongSearchRow is one search result.
type SongSearchRow struct {
	ID         uint64  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist,omitempty"`
	VideoID    string  `json:"video_id"`
	PlaylistID *uint64 `json:"playlist_id,omitempty"`
	Favorite   bool    `json:"favorite"`
}

// Search returns matching songs plus the total match count for pagination.
// Results are ordered by title ascending.
func (r *SongRepo) Search(ctx context.Context, q SongSearchQuery) ([]SongSearchRow, int64, error) {
	where := []string{}
	args := []any{}

	if q.Text != "" {
		where = append(where, `(LOWER(title) LIKE ? OR LOWER(artist) LIKE ?)`)
		pat := "%" + strings.ToLower(q.Text) + "%"
		args = append(args, pat, pat)
	}
	if q.FavoritesOnly {
		where = append(where, "favorite = TRUE")
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM songs WHERE ` + cond
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
			id,
			title,
			artist,
			video_id,
			playlist_id,
			favorite
		FROM songs
		WHERE ` + cond + `
		ORDER BY title ASC
		LIMIT ? OFFSET ?`

	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]SongSearchRow, 0, limit)
	for rows.Next() {
		var (
			d        SongSearchRow
			playlist sql.NullInt64
		)
		if err := rows.Scan(
			&d.ID,
			&d.Title,
			&d.Artist,
			&d.VideoID,
			&playlist,
			&d.Favorite,
		); err != nil {
			return nil, 0, err
		}
		if playlist.Valid {
			id := uint64(playlist.Int64)
			d.PlaylistID = &id
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
