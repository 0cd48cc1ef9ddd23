// Package command defines the write side of the application layer: command
// messages, their validation, and the handlers that execute them against
// the repositories.  Handlers are registered on the command bus at startup
// (see Register) and reached only through bus dispatch.
package command

import (
	"context"
	"database/sql"

	"github.com/ayaseru/shiori/internal/mal"
	"github.com/ayaseru/shiori/internal/model"
	"github.com/ayaseru/shiori/internal/queue"
	"github.com/ayaseru/shiori/internal/youtube"
)

// ShowStore is the slice of the show repository command handlers need.
type ShowStore interface {
	Create(ctx context.Context, s *model.Show) error
	GetByID(ctx context.Context, id uint64) (*model.Show, error)
	GetByMALID(ctx context.Context, malID uint64) (*model.Show, error)
	Update(ctx context.Context, s *model.Show) error
	SetStatus(ctx context.Context, id uint64, status model.ShowStatus) error
	SetWatched(ctx context.Context, id uint64, watched uint32) error
	Delete(ctx context.Context, id uint64) error
	AddAlias(ctx context.Context, a *model.ShowAlias) error
	DeleteAlias(ctx context.Context, id uint64) error
}

// OverrideStore persists schedule overrides.
type OverrideStore interface {
	Upsert(ctx context.Context, o *model.ScheduleOverride) error
	Delete(ctx context.Context, id uint64) error
	ListByShow(ctx context.Context, showID uint64) ([]model.ScheduleOverride, error)
}

// SongStore is the slice of the song repository command handlers need.
type SongStore interface {
	Create(ctx context.Context, s *model.Song) error
	CreateTx(ctx context.Context, tx *sql.Tx, s *model.Song) error
	GetByID(ctx context.Context, id uint64) (*model.Song, error)
	GetByVideoID(ctx context.Context, videoID string) (*model.Song, error)
	Update(ctx context.Context, s *model.Song) error
	SetFavorite(ctx context.Context, id uint64, favorite bool) error
	Delete(ctx context.Context, id uint64) error
}

// PlaylistStore is the slice of the playlist repository command handlers
// need.  DB exposes the handle for the import transaction spanning playlist
// and song rows.
type PlaylistStore interface {
	DB() *sql.DB
	CreateTx(ctx context.Context, tx *sql.Tx, p *model.Playlist) error
	GetByYouTubeID(ctx context.Context, ytID string) (*model.Playlist, error)
	Rename(ctx context.Context, id uint64, name string) error
	SetVideoCountTx(ctx context.Context, tx *sql.Tx, id uint64, count uint32) error
	Delete(ctx context.Context, id uint64) error
}

// MALSource fetches import candidates from MyAnimeList.
type MALSource interface {
	FetchList(ctx context.Context, username string, status model.ShowStatus) ([]mal.ListEntry, error)
	FetchAnime(ctx context.Context, malID uint64) (*mal.AnimeDetail, error)
}

// PlaylistSource fetches playlist contents from YouTube.
type PlaylistSource interface {
	FetchPlaylist(ctx context.Context, playlistID string) (*youtube.Playlist, error)
}

// Publisher emits domain events.  Implementations must not block the
// request path on broker failures; errors are swallowed at the call site.
type Publisher interface {
	ShowCompleted(ctx context.Context, ev queue.ShowCompletedEvent)
	ImportCompleted(ctx context.Context, ev queue.ImportCompletedEvent)
}
