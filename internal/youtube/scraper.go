// Package youtube scrapes playlist pages into ordered video id lists.  The
// playlist page embeds its videos in ytInitialData; pulling the
// `"videoId":"..."` occurrences in document order and deduplicating them
// recovers the playlist without an API key.
package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ayaseru/shiori/internal/apperr"
)

// maxVideos caps how many ids one import keeps.
const maxVideos = 100

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const maxBodyBytes = 8 << 20

// Playlist is the scrape result: the playlist's display name and its video
// ids in page order, duplicates removed.
type Playlist struct {
	ID       string
	Name     string
	VideoIDs []string
}

// Scraper fetches playlist pages.  BaseURL is overridable for tests.
type Scraper struct {
	BaseURL string
	HTTP    *http.Client
}

// NewScraper builds a Scraper against youtube.com with a 10 second timeout.
func NewScraper() *Scraper {
	return &Scraper{
		BaseURL: "https://www.youtube.com",
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

var (
	videoIDPattern = regexp.MustCompile(`"videoId":"([a-zA-Z0-9_-]{11})"`)
	titlePattern   = regexp.MustCompile(`<title>(.+?)</title>`)
)

// FetchPlaylist downloads the playlist page and extracts the name and video
// ids.  Failures reaching YouTube come back as NetworkError.
func (s *Scraper) FetchPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	pageURL := fmt.Sprintf("%s/playlist?list=%s", s.BaseURL, playlistID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, apperr.Network(pageURL, err)
	}
	req.Header.Set("User-Agent", browserUA)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	resp, err := s.HTTP.Do(req)
	if err != nil {
		return nil, apperr.Network(pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Network(pageURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.Network(pageURL, err)
	}
	return parsePlaylist(playlistID, string(body)), nil
}

// parsePlaylist pulls the playlist name and video ids out of the page HTML.
// The name falls back to the playlist id when the title tag is missing.
func parsePlaylist(playlistID, body string) *Playlist {
	name := playlistID
	if m := titlePattern.FindStringSubmatch(body); m != nil {
		name = strings.TrimSpace(strings.ReplaceAll(m[1], " - YouTube", ""))
	}

	// Dedupe while preserving page order.
	seen := make(map[string]bool)
	ids := []string{}
	for _, m := range videoIDPattern.FindAllStringSubmatch(body, -1) {
		id := m[1]
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
		if len(ids) >= maxVideos {
			break
		}
	}
	return &Playlist{ID: playlistID, Name: name, VideoIDs: ids}
}
