package command

import (
	"context"
	"errors"
	"time"

	"github.com/ayaseru/shiori/internal/apperr"
	"github.com/ayaseru/shiori/internal/model"
	"github.com/ayaseru/shiori/internal/queue"
	"github.com/ayaseru/shiori/internal/repository"
)

// Cache prefix purged after music mutations.
var musicPrefixes = []string{"music:"}

// AddSong adds one song to the library.
type AddSong struct {
	Title    string
	Artist   string
	VideoID  string
	Favorite bool
}

func (AddSong) CommandName() string          { return "song.add" }
func (AddSong) InvalidatePrefixes() []string { return musicPrefixes }

func (c AddSong) Validate() error {
	if c.Title == "" {
		return apperr.Validation("title", "required")
	}
	if !model.ValidVideoID(c.VideoID) {
		return apperr.Validation("video_id", "must be an 11-character YouTube video id")
	}
	return nil
}

// UpdateSong rewrites a song's editable fields.
type UpdateSong struct {
	SongID   uint64
	Title    string
	Artist   string
	Favorite bool
}

func (UpdateSong) CommandName() string          { return "song.update" }
func (UpdateSong) InvalidatePrefixes() []string { return musicPrefixes }

func (c UpdateSong) Validate() error {
	if c.SongID == 0 {
		return apperr.Validation("song_id", "required")
	}
	if c.Title == "" {
		return apperr.Validation("title", "required")
	}
	return nil
}

// SetFavorite stars or unstars a song.
type SetFavorite struct {
	SongID   uint64
	Favorite bool
}

func (SetFavorite) CommandName() string          { return "song.set_favorite" }
func (SetFavorite) InvalidatePrefixes() []string { return musicPrefixes }

func (c SetFavorite) Validate() error {
	if c.SongID == 0 {
		return apperr.Validation("song_id", "required")
	}
	return nil
}

// DeleteSong removes one song.
type DeleteSong struct {
	SongID uint64
}

func (DeleteSong) CommandName() string          { return "song.delete" }
func (DeleteSong) InvalidatePrefixes() []string { return musicPrefixes }

func (c DeleteSong) Validate() error {
	if c.SongID == 0 {
		return apperr.Validation("song_id", "required")
	}
	return nil
}

// RenamePlaylist changes a playlist's display name.
type RenamePlaylist struct {
	PlaylistID uint64
	Name       string
}

func (RenamePlaylist) CommandName() string          { return "playlist.rename" }
func (RenamePlaylist) InvalidatePrefixes() []string { return musicPrefixes }

func (c RenamePlaylist) Validate() error {
	if c.PlaylistID == 0 {
		return apperr.Validation("playlist_id", "required")
	}
	if c.Name == "" {
		return apperr.Validation("name", "required")
	}
	return nil
}

// DeletePlaylist removes an empty playlist.
type DeletePlaylist struct {
	PlaylistID uint64
}

func (DeletePlaylist) CommandName() string          { return "playlist.delete" }
func (DeletePlaylist) InvalidatePrefixes() []string { return musicPrefixes }

func (c DeletePlaylist) Validate() error {
	if c.PlaylistID == 0 {
		return apperr.Validation("playlist_id", "required")
	}
	return nil
}

// ImportPlaylist scrapes a YouTube playlist and stores it with its songs.
type ImportPlaylist struct {
	YouTubePlaylistID string
}

func (ImportPlaylist) CommandName() string          { return "playlist.import" }
func (ImportPlaylist) InvalidatePrefixes() []string { return musicPrefixes }

func (c ImportPlaylist) Validate() error {
	if c.YouTubePlaylistID == "" {
		return apperr.Validation("playlist_id", "required")
	}
	return nil
}

// ImportMALList imports one status bucket of a MAL user's anime list.
type ImportMALList struct {
	Username string
	Status   string
}

func (ImportMALList) CommandName() string          { return "mal.import" }
func (ImportMALList) InvalidatePrefixes() []string { return showPrefixes }

func (c ImportMALList) Validate() error {
	if c.Username == "" {
		return apperr.Validation("username", "required")
	}
	if _, ok := model.ParseShowStatus(c.Status); !ok {
		return apperr.Validation("status", "unknown status "+c.Status)
	}
	return nil
}

// ImportResult summarizes an import run.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// MusicHandlers executes song and playlist commands.
type MusicHandlers struct {
	Songs     SongStore
	Playlists PlaylistStore
	Source    PlaylistSource
	Events    Publisher
	Now       func() time.Time
}

func (h *MusicHandlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// HandleAddSong creates one song; a duplicate video id is a conflict.
func (h *MusicHandlers) HandleAddSong(ctx context.Context, msg any) (any, error) {
	c := msg.(AddSong)
	s := &model.Song{Title: c.Title, Artist: c.Artist, VideoID: c.VideoID, Favorite: c.Favorite}
	if err := h.Songs.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// HandleUpdateSong rewrites a song's editable fields.
func (h *MusicHandlers) HandleUpdateSong(ctx context.Context, msg any) (any, error) {
	c := msg.(UpdateSong)
	s, err := h.Songs.GetByID(ctx, c.SongID)
	if err != nil {
		return nil, err
	}
	s.Title = c.Title
	s.Artist = c.Artist
	s.Favorite = c.Favorite
	if err := h.Songs.Update(ctx, s); err != nil && !errors.Is(err, repository.ErrNoChange) {
		return nil, err
	}
	return s, nil
}

// HandleSetFavorite flips the star flag.
func (h *MusicHandlers) HandleSetFavorite(ctx context.Context, msg any) (any, error) {
	c := msg.(SetFavorite)
	return nil, h.Songs.SetFavorite(ctx, c.SongID, c.Favorite)
}

// HandleDeleteSong removes a song.
func (h *MusicHandlers) HandleDeleteSong(ctx context.Context, msg any) (any, error) {
	c := msg.(DeleteSong)
	return nil, h.Songs.Delete(ctx, c.SongID)
}

// HandleRenamePlaylist renames a playlist; no-change is not an error.
func (h *MusicHandlers) HandleRenamePlaylist(ctx context.Context, msg any) (any, error) {
	c := msg.(RenamePlaylist)
	if err := h.Playlists.Rename(ctx, c.PlaylistID, c.Name); err != nil && !errors.Is(err, repository.ErrNoChange) {
		return nil, err
	}
	return nil, nil
}

// HandleDeletePlaylist removes an empty playlist.
func (h *MusicHandlers) HandleDeletePlaylist(ctx context.Context, msg any) (any, error) {
	c := msg.(DeletePlaylist)
	return nil, h.Playlists.Delete(ctx, c.PlaylistID)
}

// HandleImportPlaylist scrapes the playlist and stores it with its songs in
// one transaction.  Songs whose video id already exists anywhere in the
// library are skipped.  Song titles default to the video id; the original
// tracker filled titles in by hand afterwards.
func (h *MusicHandlers) HandleImportPlaylist(ctx context.Context, msg any) (any, error) {
	c := msg.(ImportPlaylist)
	scraped, err := h.Source.FetchPlaylist(ctx, c.YouTubePlaylistID)
	if err != nil {
		return nil, err
	}
	if len(scraped.VideoIDs) == 0 {
		return nil, apperr.Validation("playlist_id", "playlist is empty or not public")
	}

	// Figure out which videos are new before opening the transaction.
	fresh := make([]string, 0, len(scraped.VideoIDs))
	skipped := 0
	for _, vid := range scraped.VideoIDs {
		if _, err := h.Songs.GetByVideoID(ctx, vid); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, repository.ErrSongNotFound) {
			return nil, err
		}
		fresh = append(fresh, vid)
	}

	var created int
	tx, err := h.Playlists.DB().BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	// No-op once the transaction commits; unwinds every error return below.
	defer func() { _ = tx.Rollback() }()

	pl, err := h.Playlists.GetByYouTubeID(ctx, scraped.ID)
	if errors.Is(err, repository.ErrPlaylistNotFound) {
		pl = &model.Playlist{Name: scraped.Name, YouTubePlaylistID: scraped.ID}
		err = h.Playlists.CreateTx(ctx, tx, pl)
	}
	if err != nil {
		return nil, err
	}
	if err := h.Playlists.SetVideoCountTx(ctx, tx, pl.ID, uint32(len(scraped.VideoIDs))); err != nil {
		return nil, err
	}
	for _, vid := range fresh {
		song := &model.Song{Title: vid, VideoID: vid, PlaylistID: &pl.ID}
		if err := h.Songs.CreateTx(ctx, tx, song); err != nil {
			return nil, err
		}
		created++
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	res := ImportResult{Created: created, Skipped: skipped}
	if h.Events != nil {
		h.Events.ImportCompleted(ctx, queue.ImportCompletedEvent{
			Source:     "youtube",
			Subject:    scraped.ID,
			Created:    res.Created,
			Skipped:    res.Skipped,
			FinishedAt: h.now().Format(time.RFC3339),
		})
	}
	return res, nil
}

// ImportHandlers executes MAL list imports against the show store.
type ImportHandlers struct {
	Shows  ShowStore
	Source MALSource
	Events Publisher
	Now    func() time.Time
}

func (h *ImportHandlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now().UTC()
}

// HandleImportMAL fetches one list bucket and creates or refreshes each
// entry.  Existing shows keep their watched count and list status; only
// catalog fields picked up from MAL are refreshed.
func (h *ImportHandlers) HandleImportMAL(ctx context.Context, msg any) (any, error) {
	c := msg.(ImportMALList)
	status, _ := model.ParseShowStatus(c.Status)
	entries, err := h.Source.FetchList(ctx, c.Username, status)
	if err != nil {
		return nil, err
	}

	var res ImportResult
	for _, e := range entries {
		existing, err := h.Shows.GetByMALID(ctx, e.MALID)
		if errors.Is(err, repository.ErrShowNotFound) {
			s := &model.Show{
				MALID:         e.MALID,
				Title:         e.Title,
				ImageURL:      e.ImageURL,
				TotalEpisodes: e.TotalEpisodes,
				PremiereAt:    e.PremiereAt,
				Status:        status,
			}
			if err := h.Shows.Create(ctx, s); err != nil {
				return nil, err
			}
			res.Created++
			continue
		}
		if err != nil {
			return nil, err
		}
		changed := existing.Title != e.Title ||
			(e.ImageURL != "" && existing.ImageURL != e.ImageURL) ||
			(e.TotalEpisodes > 0 && existing.TotalEpisodes != e.TotalEpisodes) ||
			(!e.PremiereAt.IsZero() && !existing.PremiereAt.Equal(e.PremiereAt))
		if !changed {
			res.Skipped++
			continue
		}
		existing.Title = e.Title
		if e.ImageURL != "" {
			existing.ImageURL = e.ImageURL
		}
		if e.TotalEpisodes > 0 {
			existing.TotalEpisodes = e.TotalEpisodes
		}
		if !e.PremiereAt.IsZero() {
			existing.PremiereAt = e.PremiereAt
		}
		if err := h.Shows.Update(ctx, existing); err != nil && !errors.Is(err, repository.ErrNoChange) {
			return nil, err
		}
		res.Updated++
	}

	if h.Events != nil {
		h.Events.ImportCompleted(ctx, queue.ImportCompletedEvent{
			Source:     "mal",
			Subject:    c.Username,
			Created:    res.Created,
			Updated:    res.Updated,
			Skipped:    res.Skipped,
			FinishedAt: h.now().Format(time.RFC3339),
		})
	}
	return res, nil
}
