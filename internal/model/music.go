package model

import (
	"regexp"
	"time"
)

// videoIDPattern matches a YouTube video identifier: exactly eleven
// characters from the URL-safe base64 alphabet.
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ValidVideoID reports whether id is a well-formed YouTube video identifier.
func ValidVideoID(id string) bool { return videoIDPattern.MatchString(id) }

// Song is a single entry in the music library.  Songs reference a YouTube
// video and may optionally belong to an imported playlist.
type Song struct {
	ID         uint64    // songs.id
	Title      string    // songs.title
	Artist     string    // songs.artist
	VideoID    string    // songs.video_id
	PlaylistID *uint64   // songs.playlist_id (nullable)
	Favorite   bool      // songs.favorite
	CreatedAt  time.Time // songs.created_at
	UpdatedAt  time.Time // songs.updated_at
}

// Playlist groups songs imported from a YouTube playlist.  VideoCount
// records how many videos the import discovered, which can exceed the number
// of songs kept when the user prunes entries.
type Playlist struct {
	ID                uint64    // playlists.id
	Name              string    // playlists.name
	YouTubePlaylistID string    // playlists.youtube_id
	VideoCount        uint32    // playlists.video_count
	CreatedAt         time.Time // playlists.created_at
	UpdatedAt         time.Time // playlists.updated_at
}
