package query

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaseru/shiori/internal/model"
	"github.com/ayaseru/shiori/internal/repository"
)

type fakeSongReader struct {
	songs []model.Song
}

func (f *fakeSongReader) List(_ context.Context, favoritesOnly bool) ([]model.Song, error) {
	out := make([]model.Song, 0, len(f.songs))
	for _, s := range f.songs {
		if favoritesOnly && !s.Favorite {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSongReader) ListByPlaylist(_ context.Context, playlistID uint64) ([]model.Song, error) {
	out := make([]model.Song, 0)
	for _, s := range f.songs {
		if s.PlaylistID != nil && *s.PlaylistID == playlistID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSongReader) Search(_ context.Context, q repository.SongSearchQuery) ([]repository.SongSearchRow, int64, error) {
	text := strings.ToLower(q.Text)
	rows := []repository.SongSearchRow{}
	for _, s := range f.songs {
		if q.FavoritesOnly && !s.Favorite {
			continue
		}
		if text != "" &&
			!strings.Contains(strings.ToLower(s.Title), text) &&
			!strings.Contains(strings.ToLower(s.Artist), text) {
			continue
		}
		rows = append(rows, repository.SongSearchRow{
			ID: s.ID, Title: s.Title, Artist: s.Artist,
			VideoID: s.VideoID, PlaylistID: s.PlaylistID, Favorite: s.Favorite,
		})
	}
	return rows, int64(len(rows)), nil
}

type fakePlaylistReader struct {
	playlists []model.Playlist
}

func (f *fakePlaylistReader) GetByID(_ context.Context, id uint64) (*model.Playlist, error) {
	for i := range f.playlists {
		if f.playlists[i].ID == id {
			p := f.playlists[i]
			return &p, nil
		}
	}
	return nil, repository.ErrPlaylistNotFound
}

func (f *fakePlaylistReader) ListAll(_ context.Context) ([]model.Playlist, error) {
	return append([]model.Playlist(nil), f.playlists...), nil
}

func musicFixture() *MusicQueries {
	pid := uint64(1)
	return &MusicQueries{
		Songs: &fakeSongReader{songs: []model.Song{
			{ID: 1, Title: "Yuusha", Artist: "YOASOBI", VideoID: "OIBODIPC_8Y", PlaylistID: &pid, Favorite: true},
			{ID: 2, Title: "Haru", VideoID: "aaaaaaaaaaa", PlaylistID: &pid},
			{ID: 3, Title: "Idol", Artist: "YOASOBI", VideoID: "ZRtdQ81jPUQ", Favorite: true},
		}},
		Playlists: &fakePlaylistReader{playlists: []model.Playlist{
			{ID: 1, Name: "Anime OPs", YouTubePlaylistID: "PLtest123", VideoCount: 2},
			{ID: 2, Name: "Chill", YouTubePlaylistID: "PLchill", VideoCount: 0},
		}},
	}
}

func TestHandleListSongs(t *testing.T) {
	h := musicFixture()

	out, err := h.HandleListSongs(context.Background(), ListSongs{})
	require.NoError(t, err)
	views := out.([]SongView)
	require.Len(t, views, 3)
	assert.Equal(t, "Yuusha", views[0].Title)
	require.NotNil(t, views[0].PlaylistID)
	assert.Equal(t, uint64(1), *views[0].PlaylistID)
	assert.Nil(t, views[2].PlaylistID)
}

func TestHandleListSongsFavoritesOnly(t *testing.T) {
	h := musicFixture()

	out, err := h.HandleListSongs(context.Background(), ListSongs{FavoritesOnly: true})
	require.NoError(t, err)
	views := out.([]SongView)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.True(t, v.Favorite)
	}
}

func TestHandleSearchSongs(t *testing.T) {
	h := musicFixture()

	out, err := h.HandleSearchSongs(context.Background(), SearchSongs{Text: "yoasobi"})
	require.NoError(t, err)
	res := out.(SearchSongsResult)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, 1, res.Page)
	require.Len(t, res.Items, 2)
	for _, it := range res.Items {
		assert.Equal(t, "YOASOBI", it.Artist)
	}
}

func TestHandleSearchSongsFavoritesOnly(t *testing.T) {
	h := musicFixture()

	out, err := h.HandleSearchSongs(context.Background(), SearchSongs{Text: "haru", FavoritesOnly: true})
	require.NoError(t, err)
	res := out.(SearchSongsResult)
	assert.Zero(t, res.Total)
	assert.Empty(t, res.Items)
}

func TestHandleListPlaylists(t *testing.T) {
	h := musicFixture()

	out, err := h.HandleListPlaylists(context.Background(), ListPlaylists{})
	require.NoError(t, err)
	views := out.([]PlaylistView)
	require.Len(t, views, 2)
	assert.Equal(t, "Anime OPs", views[0].Name)
	assert.Equal(t, "PLtest123", views[0].YouTubeID)
	assert.Equal(t, uint32(2), views[0].VideoCount)
}

func TestHandleGetPlaylist(t *testing.T) {
	h := musicFixture()

	out, err := h.HandleGetPlaylist(context.Background(), GetPlaylist{PlaylistID: 1})
	require.NoError(t, err)
	d := out.(PlaylistDetail)
	assert.Equal(t, "Anime OPs", d.Name)
	require.Len(t, d.Songs, 2)
	assert.Equal(t, "OIBODIPC_8Y", d.Songs[0].VideoID)
}

func TestHandleGetPlaylistNotFound(t *testing.T) {
	h := musicFixture()

	_, err := h.HandleGetPlaylist(context.Background(), GetPlaylist{PlaylistID: 99})
	assert.ErrorIs(t, err, repository.ErrPlaylistNotFound)
}

func TestGetPlaylistValidate(t *testing.T) {
	assert.Error(t, GetPlaylist{}.Validate())
	assert.NoError(t, GetPlaylist{PlaylistID: 1}.Validate())
}
