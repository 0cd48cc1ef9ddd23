package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaseru/shiori/internal/apperr"
)

const playlistPage = `<html><head><title>Anime OPs - YouTube</title></head>
<body><script>var ytInitialData = {"contents":[
{"videoId":"dQw4w9WgXcQ","x":1},
{"videoId":"kJQP7kiw5Fk","x":2},
{"videoId":"dQw4w9WgXcQ","x":3},
{"videoId":"9bZkp7q19f0","x":4}
]};</script></body></html>`

func TestFetchPlaylist(t *testing.T) {
	var gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/playlist", r.URL.Path)
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(playlistPage))
	}))
	defer srv.Close()

	s := &Scraper{BaseURL: srv.URL, HTTP: srv.Client()}
	pl, err := s.FetchPlaylist(context.Background(), "PLtest123")
	require.NoError(t, err)

	assert.Equal(t, "list=PLtest123", gotQuery)
	assert.Equal(t, browserUA, gotUA)

	assert.Equal(t, "PLtest123", pl.ID)
	assert.Equal(t, "Anime OPs", pl.Name)
	assert.Equal(t, []string{"dQw4w9WgXcQ", "kJQP7kiw5Fk", "9bZkp7q19f0"}, pl.VideoIDs,
		"duplicates removed, page order kept")
}

func TestFetchPlaylistUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := &Scraper{BaseURL: srv.URL, HTTP: srv.Client()}
	_, err := s.FetchPlaylist(context.Background(), "PLtest123")
	var ne *apperr.NetworkError
	assert.ErrorAs(t, err, &ne)
}

func TestParsePlaylistFallbackName(t *testing.T) {
	pl := parsePlaylist("PLnotitle", `<html><body>no title tag</body></html>`)
	assert.Equal(t, "PLnotitle", pl.Name)
	assert.Empty(t, pl.VideoIDs)
}

func TestParsePlaylistCap(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < maxVideos+50; i++ {
		fmt.Fprintf(&b, `{"videoId":"vid%08d"}`, i)
	}
	b.WriteString("</body></html>")

	pl := parsePlaylist("PLbig", b.String())
	assert.Len(t, pl.VideoIDs, maxVideos)
	assert.Equal(t, "vid00000000", pl.VideoIDs[0])
}
