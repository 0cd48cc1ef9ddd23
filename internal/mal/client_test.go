package mal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaseru/shiori/internal/apperr"
	"github.com/ayaseru/shiori/internal/model"
)

// listPage wraps rows in the data-items attribute the way the real list
// page does, with HTML-escaped JSON.
const listPage = `<html><body>
<table class="list-table" data-items="[
{&quot;anime_id&quot;:5114,&quot;anime_title&quot;:&quot;Fullmetal Alchemist: Brotherhood&quot;,&quot;anime_num_episodes&quot;:64,&quot;anime_image_path&quot;:&quot;/images/anime/1223/96541.jpg&quot;,&quot;anime_start_date_string&quot;:&quot;04-05-09&quot;},
{&quot;anime_id&quot;:0,&quot;anime_title&quot;:&quot;broken row&quot;},
{&quot;anime_id&quot;:21,&quot;anime_title&quot;:&quot;One Piece&quot;,&quot;anime_num_episodes&quot;:0,&quot;anime_image_path&quot;:&quot;&quot;,&quot;anime_start_date_string&quot;:&quot;-&quot;}
]"></table>
</body></html>`

func newTestClient(srv *httptest.Server) *Client {
	return &Client{BaseURL: srv.URL, HTTP: srv.Client()}
}

func TestFetchList(t *testing.T) {
	var gotPath, gotQuery, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(listPage))
	}))
	defer srv.Close()

	entries, err := newTestClient(srv).FetchList(context.Background(), "ayaseru", model.StatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, "/animelist/ayaseru", gotPath)
	assert.Equal(t, "status=2", gotQuery)
	assert.Equal(t, browserUA, gotUA)

	require.Len(t, entries, 2, "row without an id is skipped")

	fma := entries[0]
	assert.Equal(t, uint64(5114), fma.MALID)
	assert.Equal(t, "Fullmetal Alchemist: Brotherhood", fma.Title)
	assert.Equal(t, uint32(64), fma.TotalEpisodes)
	assert.Equal(t, "/images/anime/1223/96541.jpg", fma.ImageURL)
	assert.Equal(t, time.Date(2009, time.April, 5, 0, 0, 0, 0, time.UTC), fma.PremiereAt)

	op := entries[1]
	assert.Equal(t, uint64(21), op.MALID)
	assert.True(t, op.PremiereAt.IsZero(), `"-" start date means unannounced`)
}

func TestFetchListPrivate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>Access to this list has been restricted.</body></html>`))
	}))
	defer srv.Close()

	entries, err := newTestClient(srv).FetchList(context.Background(), "private", model.StatusWatching)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFetchListUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchList(context.Background(), "ayaseru", model.StatusWatching)
	var ne *apperr.NetworkError
	assert.ErrorAs(t, err, &ne)
}

func TestFetchAnime(t *testing.T) {
	page := `<html><head><title>Sousou no Frieren - MyAnimeList.net</title></head>
<body><div class="spaceit_pad"><span class="dark_text">Episodes:</span> 28</div></body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/anime/52991", r.URL.Path)
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	d, err := newTestClient(srv).FetchAnime(context.Background(), 52991)
	require.NoError(t, err)
	assert.Equal(t, uint64(52991), d.MALID)
	assert.Equal(t, "Sousou no Frieren", d.Title)
	assert.Equal(t, uint32(28), d.TotalEpisodes)
}

func TestFetchAnimeUnknownEpisodes(t *testing.T) {
	page := `<html><head><title>One Piece - MyAnimeList.net</title></head>
<body><span class="dark_text">Episodes:</span> Unknown</body></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	d, err := newTestClient(srv).FetchAnime(context.Background(), 21)
	require.NoError(t, err)
	assert.Zero(t, d.TotalEpisodes)
}

func TestParseStartDate(t *testing.T) {
	cases := map[string]time.Time{
		"04-05-09":   time.Date(2009, time.April, 5, 0, 0, 0, 0, time.UTC),
		"2023-09-29": time.Date(2023, time.September, 29, 0, 0, 0, 0, time.UTC),
		"10-23":      time.Date(2023, time.October, 1, 0, 0, 0, 0, time.UTC),
		"1999":       time.Date(1999, time.January, 1, 0, 0, 0, 0, time.UTC),
		"-":          {},
		"":           {},
		"soon":       {},
	}
	for in, want := range cases {
		assert.Equal(t, want, parseStartDate(in), in)
	}
}
