package query

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ayaseru/shiori/internal/apperr"
	"github.com/ayaseru/shiori/internal/model"
	"github.com/ayaseru/shiori/internal/repository"
)

// SongReader is the slice of the song repository query handlers need.
type SongReader interface {
	List(ctx context.Context, favoritesOnly bool) ([]model.Song, error)
	ListByPlaylist(ctx context.Context, playlistID uint64) ([]model.Song, error)
	Search(ctx context.Context, q repository.SongSearchQuery) ([]repository.SongSearchRow, int64, error)
}

// PlaylistReader loads playlists.
type PlaylistReader interface {
	GetByID(ctx context.Context, id uint64) (*model.Playlist, error)
	ListAll(ctx context.Context) ([]model.Playlist, error)
}

// SongView is the JSON form of one library song.
type SongView struct {
	ID         uint64  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist,omitempty"`
	VideoID    string  `json:"video_id"`
	PlaylistID *uint64 `json:"playlist_id,omitempty"`
	Favorite   bool    `json:"favorite"`
}

// PlaylistView is the JSON form of one playlist.
type PlaylistView struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	YouTubeID  string `json:"youtube_id"`
	VideoCount uint32 `json:"video_count"`
}

// PlaylistDetail pairs a playlist with its songs.
type PlaylistDetail struct {
	PlaylistView
	Songs []SongView `json:"songs"`
}

func songView(s *model.Song) SongView {
	return SongView{
		ID:         s.ID,
		Title:      s.Title,
		Artist:     s.Artist,
		VideoID:    s.VideoID,
		PlaylistID: s.PlaylistID,
		Favorite:   s.Favorite,
	}
}

// ListSongs lists the library, optionally only starred songs.
type ListSongs struct {
	FavoritesOnly bool
}

func (ListSongs) QueryName() string  { return "song.list" }
func (q ListSongs) CacheKey() string { return "music:songs:" + strconv.FormatBool(q.FavoritesOnly) }

// ListPlaylists lists every playlist.
type ListPlaylists struct{}

func (ListPlaylists) QueryName() string { return "playlist.list" }
func (ListPlaylists) CacheKey() string  { return "music:playlists" }

// SearchSongs filters the library by title or artist, with pagination.
type SearchSongs struct {
	Text          string
	FavoritesOnly bool
	Page          int
	PageSize      int
}

func (SearchSongs) QueryName() string { return "song.search" }
func (q SearchSongs) CacheKey() string {
	return fmt.Sprintf("music:songs:search:%s:%t:%d:%d", q.Text, q.FavoritesOnly, q.Page, q.PageSize)
}

// SearchSongsResult pairs one page of rows with the total match count.
type SearchSongsResult struct {
	Items []repository.SongSearchRow `json:"items"`
	Total int64                      `json:"total"`
	Page  int                        `json:"page"`
}

// GetPlaylist loads one playlist with its songs.
type GetPlaylist struct {
	PlaylistID uint64
}

func (GetPlaylist) QueryName() string { return "playlist.get" }
func (q GetPlaylist) CacheKey() string {
	return fmt.Sprintf("music:playlist:%d", q.PlaylistID)
}

func (q GetPlaylist) Validate() error {
	if q.PlaylistID == 0 {
		return apperr.Validation("playlist_id", "required")
	}
	return nil
}

// MusicQueries executes song and playlist queries.
type MusicQueries struct {
	Songs     SongReader
	Playlists PlaylistReader
}

// HandleListSongs lists library songs.
func (h *MusicQueries) HandleListSongs(ctx context.Context, msg any) (any, error) {
	q := msg.(ListSongs)
	songs, err := h.Songs.List(ctx, q.FavoritesOnly)
	if err != nil {
		return nil, err
	}
	out := make([]SongView, 0, len(songs))
	for i := range songs {
		out = append(out, songView(&songs[i]))
	}
	return out, nil
}

// HandleSearchSongs pages through matching songs.
func (h *MusicQueries) HandleSearchSongs(ctx context.Context, msg any) (any, error) {
	q := msg.(SearchSongs)
	page := q.Page
	if page < 1 {
		page = 1
	}
	rows, total, err := h.Songs.Search(ctx, repository.SongSearchQuery{
		Text:          q.Text,
		FavoritesOnly: q.FavoritesOnly,
		Page:          page,
		PageSize:      q.PageSize,
	})
	if err != nil {
		return nil, err
	}
	return SearchSongsResult{Items: rows, Total: total, Page: page}, nil
}

// HandleListPlaylists lists every playlist.
func (h *MusicQueries) HandleListPlaylists(ctx context.Context, msg any) (any, error) {
	pls, err := h.Playlists.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PlaylistView, 0, len(pls))
	for _, p := range pls {
		out = append(out, PlaylistView{ID: p.ID, Name: p.Name, YouTubeID: p.YouTubePlaylistID, VideoCount: p.VideoCount})
	}
	return out, nil
}

// HandleGetPlaylist loads one playlist with its songs.
func (h *MusicQueries) HandleGetPlaylist(ctx context.Context, msg any) (any, error) {
	q := msg.(GetPlaylist)
	p, err := h.Playlists.GetByID(ctx, q.PlaylistID)
	if err != nil {
		return nil, err
	}
	songs, err := h.Songs.ListByPlaylist(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	d := PlaylistDetail{
		PlaylistView: PlaylistView{ID: p.ID, Name: p.Name, YouTubeID: p.YouTubePlaylistID, VideoCount: p.VideoCount},
		Songs:        make([]SongView, 0, len(songs)),
	}
	for i := range songs {
		d.Songs = append(d.Songs, songView(&songs[i]))
	}
	return d, nil
}
