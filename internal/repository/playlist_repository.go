package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ayaseru/shiori/internal/model"
)

const playlistColumns = `id, name, youtube_id, video_count, created_at, updated_at`

// PlaylistRepo manages persistence for imported playlists.
type PlaylistRepo struct {
	db *sql.DB
}

// NewPlaylistRepo constructs a PlaylistRepo with the given DB handle.
func NewPlaylistRepo(db *sql.DB) *PlaylistRepo {
	return &PlaylistRepo{db: db}
}

// DB exposes the underlying sql.DB for transactions spanning the playlist
// and song repositories (playlist imports).
func (r *PlaylistRepo) DB() *sql.DB {
	return r.db
}

func scanPlaylist(row interface{ Scan(...any) error }, p *model.Playlist) error {
	return row.Scan(&p.ID, &p.Name, &p.YouTubePlaylistID, &p.VideoCount, &p.CreatedAt, &p.UpdatedAt)
}

// CreateTx inserts a playlist inside the caller's transaction.  A duplicate
// YouTube playlist id maps to ErrDuplicate.
func (r *PlaylistRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Playlist) error {
	const q = `INSERT INTO playlists (name, youtube_id, video_count) VALUES (?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, p.Name, p.YouTubePlaylistID, p.VideoCount)
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
	p.ID = uint64(id)
	return nil
}

// GetByID retrieves a playlist by its ID.
func (r *PlaylistRepo) GetByID(ctx context.Context, id uint64) (*model.Playlist, error) {
	const q = `SELECT ` + playlistColumns + ` FROM playlists WHERE id = ?`
	var p model.Playlist
	if err := scanPlaylist(r.db.QueryRowContext(ctx, q, id), &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlaylistNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByYouTubeID retrieves a playlist by its source playlist id.  Re-imports
// use it to refresh instead of duplicating.
func (r *PlaylistRepo) GetByYouTubeID(ctx context.Context, ytID string) (*model.Playlist, error) {
	const q = `SELECT ` + playlistColumns + ` FROM playlists WHERE youtube_id = ? LIMIT 1`
	var p model.Playlist
	if err := scanPlaylist(r.db.QueryRowContext(ctx, q, ytID), &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlaylistNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListAll returns every playlist ordered by name.
func (r *PlaylistRepo) ListAll(ctx context.Context) ([]model.Playlist, error) {
	const q = `SELECT ` + playlistColumns + ` FROM playlists ORDER BY name ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Playlist{}
	for rows.Next() {
		var p model.Playlist
		if err := scanPlaylist(rows, &p); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Rename updates the playlist display name; ErrNoChange when identical.
func (r *PlaylistRepo) Rename(ctx context.Context, id uint64, name string) error {
	const q = `UPDATE playlists SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND name <> ?`
	res, err := r.db.ExecContext(ctx, q, name, id, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM playlists WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPlaylistNotFound
		}
		return err
	}
	return ErrNoChange
}

// SetVideoCountTx stores the video count discovered by the last import.
func (r *PlaylistRepo) SetVideoCountTx(ctx context.Context, tx *sql.Tx, id uint64, count uint32) error {
	const q = `UPDATE playlists SET video_count = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := tx.ExecContext(ctx, q, count, id)
	return err
}

// Delete removes a playlist.  Songs that still reference it block the
// delete with ErrConflict; the caller decides whether to detach them first.
func (r *PlaylistRepo) Delete(ctx context.Context, id uint64) error {
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
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM playlists WHERE id = ? LIMIT 1`, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrPlaylistNotFound
		}
		return err
	}
	var songCount int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs WHERE playlist_id = ?`, id).Scan(&songCount); err != nil {
		return err
	}
	if songCount > 0 {
		err = ErrConflict
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id); err != nil {
		return err
	}
	return nil
}
