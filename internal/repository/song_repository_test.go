package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaseru/shiori/internal/model"
)

var songCols = []string{"id", "title", "artist", "video_id", "playlist_id",
	"favorite", "created_at", "updated_at"}

func newSongMock(t *testing.T) (*SongRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewSongRepo(db), mock
}

func TestSongCreate(t *testing.T) {
	repo, mock := newSongMock(t)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO songs`)).
		WithArgs("Bling-Bang-Bang-Born", "Creepy Nuts", "mLW35YMzELE", nil, false).
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`FROM songs WHERE id = ?`)).
		WithArgs(uint64(4)).
		WillReturnRows(mock.NewRows(songCols).
			AddRow(4, "Bling-Bang-Bang-Born", "Creepy Nuts", "mLW35YMzELE", nil, false, now, now))

	s := &model.Song{Title: "Bling-Bang-Bang-Born", Artist: "Creepy Nuts", VideoID: "mLW35YMzELE"}
	require.NoError(t, repo.Create(context.Background(), s))
	assert.Equal(t, uint64(4), s.ID)
	assert.Nil(t, s.PlaylistID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSongCreateDuplicateVideoID(t *testing.T) {
	repo, mock := newSongMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO songs`)).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'mLW35YMzELE' for key 'songs.video_id'"))

	err := repo.Create(context.Background(), &model.Song{Title: "Dup", VideoID: "mLW35YMzELE"})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSongListFavorites(t *testing.T) {
	repo, mock := newSongMock(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM songs WHERE favorite = TRUE ORDER BY title ASC`)).
		WillReturnRows(mock.NewRows(songCols).
			AddRow(1, "Idol", "YOASOBI", "ZRtdQ81jPUQ", 2, true, now, now))

	out, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.True(t, out[0].Favorite)
	require.NotNil(t, out[0].PlaylistID)
	assert.Equal(t, uint64(2), *out[0].PlaylistID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSongGetByVideoIDNotFound(t *testing.T) {
	repo, mock := newSongMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM songs WHERE video_id = ? LIMIT 1`)).
		WithArgs("missing_vid").
		WillReturnRows(mock.NewRows(songCols))

	_, err := repo.GetByVideoID(context.Background(), "missing_vid")
	assert.ErrorIs(t, err, ErrSongNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSongSearch(t *testing.T) {
	repo, mock := newSongMock(t)

	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs("%yoasobi%", "%yoasobi%").
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT .* FROM songs`).
		WithArgs("%yoasobi%", "%yoasobi%", 20, 0).
		WillReturnRows(mock.NewRows([]string{"id", "title", "artist", "video_id",
			"playlist_id", "favorite"}).
			AddRow(1, "Idol", "YOASOBI", "ZRtdQ81jPUQ", nil, true).
			AddRow(2, "Yuusha", "YOASOBI", "OIBODIPC_8Y", 3, false))

	rows, total, err := repo.Search(context.Background(), SongSearchQuery{Text: "YOASOBI"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "Idol", rows[0].Title)
	assert.Nil(t, rows[0].PlaylistID)
	require.NotNil(t, rows[1].PlaylistID)
	assert.Equal(t, uint64(3), *rows[1].PlaylistID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSongSearchFavoritesOnly(t *testing.T) {
	repo, mock := newSongMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM songs WHERE .*favorite = TRUE`).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT .* FROM songs`).
		WithArgs(20, 0).
		WillReturnRows(mock.NewRows([]string{"id", "title", "artist", "video_id",
			"playlist_id", "favorite"}))

	rows, total, err := repo.Search(context.Background(), SongSearchQuery{FavoritesOnly: true})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
