package command

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaseru/shiori/internal/apperr"
	"github.com/ayaseru/shiori/internal/model"
	"github.com/ayaseru/shiori/internal/repository"
	"github.com/ayaseru/shiori/internal/youtube"
)

// fakeSongStore keeps songs in memory.
type fakeSongStore struct {
	songs  map[uint64]*model.Song
	nextID uint64
}

func newFakeSongStore() *fakeSongStore {
	return &fakeSongStore{songs: map[uint64]*model.Song{}}
}

func (f *fakeSongStore) insert(s *model.Song) error {
	for _, ex := range f.songs {
		if ex.VideoID == s.VideoID {
			return repository.ErrDuplicate
		}
	}
	f.nextID++
	s.ID = f.nextID
	cp := *s
	f.songs[s.ID] = &cp
	return nil
}

func (f *fakeSongStore) Create(ctx context.Context, s *model.Song) error { return f.insert(s) }

func (f *fakeSongStore) CreateTx(ctx context.Context, tx *sql.Tx, s *model.Song) error {
	return f.insert(s)
}

func (f *fakeSongStore) GetByID(ctx context.Context, id uint64) (*model.Song, error) {
	s, ok := f.songs[id]
	if !ok {
		return nil, repository.ErrSongNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSongStore) GetByVideoID(ctx context.Context, videoID string) (*model.Song, error) {
	for _, s := range f.songs {
		if s.VideoID == videoID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrSongNotFound
}

func (f *fakeSongStore) Update(ctx context.Context, s *model.Song) error {
	if _, ok := f.songs[s.ID]; !ok {
		return repository.ErrSongNotFound
	}
	cp := *s
	f.songs[s.ID] = &cp
	return nil
}

func (f *fakeSongStore) SetFavorite(ctx context.Context, id uint64, favorite bool) error {
	s, ok := f.songs[id]
	if !ok {
		return repository.ErrSongNotFound
	}
	s.Favorite = favorite
	return nil
}

func (f *fakeSongStore) Delete(ctx context.Context, id uint64) error {
	if _, ok := f.songs[id]; !ok {
		return repository.ErrSongNotFound
	}
	delete(f.songs, id)
	return nil
}

// fakePlaylistStore keeps playlists in memory; DB hands out a sqlmock handle
// so the import transaction can begin and commit.
type fakePlaylistStore struct {
	db        *sql.DB
	playlists map[uint64]*model.Playlist
	nextID    uint64
}

func newFakePlaylistStore(db *sql.DB) *fakePlaylistStore {
	return &fakePlaylistStore{db: db, playlists: map[uint64]*model.Playlist{}}
}

func (f *fakePlaylistStore) DB() *sql.DB { return f.db }

func (f *fakePlaylistStore) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Playlist) error {
	f.nextID++
	p.ID = f.nextID
	cp := *p
	f.playlists[p.ID] = &cp
	return nil
}

func (f *fakePlaylistStore) GetByYouTubeID(ctx context.Context, ytID string) (*model.Playlist, error) {
	for _, p := range f.playlists {
		if p.YouTubePlaylistID == ytID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrPlaylistNotFound
}

func (f *fakePlaylistStore) Rename(ctx context.Context, id uint64, name string) error {
	p, ok := f.playlists[id]
	if !ok {
		return repository.ErrPlaylistNotFound
	}
	p.Name = name
	return nil
}

func (f *fakePlaylistStore) SetVideoCountTx(ctx context.Context, tx *sql.Tx, id uint64, count uint32) error {
	p, ok := f.playlists[id]
	if !ok {
		return repository.ErrPlaylistNotFound
	}
	p.VideoCount = count
	return nil
}

func (f *fakePlaylistStore) Delete(ctx context.Context, id uint64) error {
	if _, ok := f.playlists[id]; !ok {
		return repository.ErrPlaylistNotFound
	}
	delete(f.playlists, id)
	return nil
}

// fakePlaylistSource serves one canned scrape result.
type fakePlaylistSource struct {
	playlist *youtube.Playlist
}

func (f *fakePlaylistSource) FetchPlaylist(ctx context.Context, playlistID string) (*youtube.Playlist, error) {
	return f.playlist, nil
}

func newMusicHandlers(t *testing.T, src PlaylistSource) (*MusicHandlers, *fakeSongStore, *fakePlaylistStore, sqlmock.Sqlmock, *fakePublisher) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	songs := newFakeSongStore()
	playlists := newFakePlaylistStore(db)
	pub := &fakePublisher{}
	h := &MusicHandlers{Songs: songs, Playlists: playlists, Source: src, Events: pub}
	return h, songs, playlists, mock, pub
}

func TestHandleAddSongDuplicate(t *testing.T) {
	h, songs, _, _, _ := newMusicHandlers(t, nil)
	require.NoError(t, songs.Create(context.Background(), &model.Song{Title: "Idol", VideoID: "ZRtdQ81jPUQ"}))

	_, err := h.HandleAddSong(context.Background(), AddSong{Title: "Idol again", VideoID: "ZRtdQ81jPUQ"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestHandleImportPlaylist(t *testing.T) {
	src := &fakePlaylistSource{playlist: &youtube.Playlist{
		ID:       "PLtest123",
		Name:     "Anime OPs",
		VideoIDs: []string{"dQw4w9WgXcQ", "kJQP7kiw5Fk", "9bZkp7q19f0"},
	}}
	h, songs, playlists, mock, pub := newMusicHandlers(t, src)

	// One video is already in the library and must be skipped.
	require.NoError(t, songs.Create(context.Background(), &model.Song{Title: "Known", VideoID: "kJQP7kiw5Fk"}))

	mock.ExpectBegin()
	mock.ExpectCommit()

	out, err := h.HandleImportPlaylist(context.Background(), ImportPlaylist{YouTubePlaylistID: "PLtest123"})
	require.NoError(t, err)
	res := out.(ImportResult)
	assert.Equal(t, 2, res.Created)
	assert.Equal(t, 1, res.Skipped)

	pl, err := playlists.GetByYouTubeID(context.Background(), "PLtest123")
	require.NoError(t, err)
	assert.Equal(t, "Anime OPs", pl.Name)
	assert.Equal(t, uint32(3), pl.VideoCount)

	// Imported songs default their title to the video id and join the playlist.
	s, err := songs.GetByVideoID(context.Background(), "dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", s.Title)
	require.NotNil(t, s.PlaylistID)
	assert.Equal(t, pl.ID, *s.PlaylistID)

	require.Len(t, pub.imports, 1)
	assert.Equal(t, "youtube", pub.imports[0].Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleImportPlaylistCommitFailure(t *testing.T) {
	src := &fakePlaylistSource{playlist: &youtube.Playlist{
		ID:       "PLtest123",
		Name:     "Anime OPs",
		VideoIDs: []string{"dQw4w9WgXcQ"},
	}}
	h, _, _, mock, pub := newMusicHandlers(t, src)

	commitErr := errors.New("deadlock on commit")
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(commitErr)

	// A failed commit means nothing was persisted, so the handler must
	// report the error and publish no import event.
	_, err := h.HandleImportPlaylist(context.Background(), ImportPlaylist{YouTubePlaylistID: "PLtest123"})
	assert.ErrorIs(t, err, commitErr)
	assert.Empty(t, pub.imports)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleImportPlaylistEmpty(t *testing.T) {
	src := &fakePlaylistSource{playlist: &youtube.Playlist{ID: "PLempty", Name: "Empty"}}
	h, _, _, _, _ := newMusicHandlers(t, src)

	_, err := h.HandleImportPlaylist(context.Background(), ImportPlaylist{YouTubePlaylistID: "PLempty"})
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestHandleImportPlaylistRerun(t *testing.T) {
	src := &fakePlaylistSource{playlist: &youtube.Playlist{
		ID:       "PLtest123",
		Name:     "Anime OPs",
		VideoIDs: []string{"dQw4w9WgXcQ", "kJQP7kiw5Fk"},
	}}
	h, _, playlists, mock, _ := newMusicHandlers(t, src)

	mock.ExpectBegin()
	mock.ExpectCommit()
	_, err := h.HandleImportPlaylist(context.Background(), ImportPlaylist{YouTubePlaylistID: "PLtest123"})
	require.NoError(t, err)

	// Re-importing reuses the stored playlist and skips every song.
	mock.ExpectBegin()
	mock.ExpectCommit()
	out, err := h.HandleImportPlaylist(context.Background(), ImportPlaylist{YouTubePlaylistID: "PLtest123"})
	require.NoError(t, err)
	res := out.(ImportResult)
	assert.Zero(t, res.Created)
	assert.Equal(t, 2, res.Skipped)
	assert.Len(t, playlists.playlists, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
