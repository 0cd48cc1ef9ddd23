package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ayaseru/shiori/internal/model"
)

const songColumns = `id, title, artist, video_id, playlist_id, favorite, created_at, updated_at`

// SongRepo manages persistence for the music library.
type SongRepo struct {
	db *sql.DB
}

// NewSongRepo constructs a SongRepo with the given DB handle.
func NewSongRepo(db *sql.DB) *SongRepo {
	return &SongRepo{db: db}
}

func scanSong(row interface{ Scan(...any) error }, s *model.Song) error {
	var playlist sql.NullInt64
	err := row.Scan(&s.ID, &s.Title, &s.Artist, &s.VideoID, &playlist, &s.Favorite, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return err
	}
	if playlist.Valid {
		id := uint64(playlist.Int64)
		s.PlaylistID = &id
	}
	return nil
}

func playlistArg(s *model.Song) any {
	if s.PlaylistID == nil {
		return nil
	}
	return *s.PlaylistID
}

// Create inserts a new song.  A duplicate video id maps to ErrDuplicate.
func (r *SongRepo) Create(ctx context.Context, s *model.Song) error {
	const q = `INSERT INTO songs (title, artist, video_id, playlist_id, favorite) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Title, s.Artist, s.VideoID, playlistArg(s), s.Favorite)
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
	const sel = `SELECT ` + songColumns + ` FROM songs WHERE id = ?`
	return scanSong(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// CreateTx inserts a song inside the caller's transaction.  Playlist imports
// use it so a failed import leaves no partial song rows behind.
func (r *SongRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Song) error {
	const q = `INSERT INTO songs (title, artist, video_id, playlist_id, favorite) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, s.Title, s.Artist, s.VideoID, playlistArg(s), s.Favorite)
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
	return nil
}

// GetByID retrieves a song by its ID; missing rows map to ErrSongNotFound.
func (r *SongRepo) GetByID(ctx context.Context, id uint64) (*model.Song, error) {
	const q = `SELECT ` + songColumns + ` FROM songs WHERE id = ?`
	var s model.Song
	if err := scanSong(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSongNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByVideoID retrieves a song by its YouTube video id.
func (r *SongRepo) GetByVideoID(ctx context.Context, videoID string) (*model.Song, error) {
	const q = `SELECT ` + songColumns + ` FROM songs WHERE video_id = ? LIMIT 1`
	var s model.Song
	if err := scanSong(r.db.QueryRowContext(ctx, q, videoID), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSongNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns songs, optionally filtered to favorites, ordered by title.
func (r *SongRepo) List(ctx context.Context, favoritesOnly bool) ([]model.Song, error) {
	q := `SELECT ` + songColumns + ` FROM songs`
	if favoritesOnly {
		q += ` WHERE favorite = TRUE`
	}
	q += ` ORDER BY title ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Song{}
	for rows.Next() {
		var s model.Song
		if err := scanSong(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListByPlaylist returns all songs belonging to a playlist in insertion
// order.
func (r *SongRepo) ListByPlaylist(ctx context.Context, playlistID uint64) ([]model.Song, error) {
	const q = `SELECT ` + songColumns + ` FROM songs WHERE playlist_id = ? ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, q, playlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := []model.Song{}
	for rows.Next() {
		var s model.Song
		if err := scanSong(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites a song's mutable fields; ErrNoChange when nothing differs.
func (r *SongRepo) Update(ctx context.Context, s *model.Song) error {
	const q = `UPDATE songs
               SET title = ?, artist = ?, favorite = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?
                 AND (title <> ? OR artist <> ? OR favorite <> ?)`
	res, err := r.db.ExecContext(ctx, q,
		s.Title, s.Artist, s.Favorite,
		s.ID,
		s.Title, s.Artist, s.Favorite,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM songs WHERE id = ? LIMIT 1`, s.ID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSongNotFound
		}
		return err
	}
	return ErrNoChange
}

// SetFavorite flips the favorite flag.
func (r *SongRepo) SetFavorite(ctx context.Context, id uint64, favorite bool) error {
	const q = `UPDATE songs SET favorite = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, favorite, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM songs WHERE id = ? LIMIT 1`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSongNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes one song.
func (r *SongRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM songs WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSongNotFound
	}
	return nil
}
