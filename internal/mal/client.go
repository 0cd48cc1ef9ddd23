// Package mal fetches and parses MyAnimeList pages for imports.  MAL has no
// stable public API for list pages, so imports scrape the same HTML the
// site serves to browsers: the list page embeds its rows as JSON in a
// `data-items` attribute, and the anime detail page carries the episode
// total in its sidebar.
package mal

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ayaseru/shiori/internal/apperr"
	"github.com/ayaseru/shiori/internal/model"
)

// browserUA is sent on every request; MAL rejects the default Go user agent.
const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBodyBytes caps how much of a page is read.
const maxBodyBytes = 8 << 20

// listStatusParam maps list statuses to MAL's numeric status query values.
var listStatusParam = map[model.ShowStatus]string{
	model.StatusWatching:    "1",
	model.StatusCompleted:   "2",
	model.StatusOnHold:      "3",
	model.StatusDropped:     "4",
	model.StatusPlanToWatch: "6",
}

// ListEntry is one row parsed from a user's anime list.
type ListEntry struct {
	MALID         uint64
	Title         string
	ImageURL      string
	TotalEpisodes uint32
	PremiereAt    time.Time // zero when the start date is unannounced
}

// AnimeDetail is the subset of an anime detail page the importer needs.
type AnimeDetail struct {
	MALID         uint64
	Title         string
	TotalEpisodes uint32
}

// Client fetches MAL pages.  BaseURL is overridable for tests.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a Client against myanimelist.net with the 10 second
// timeout the original tracker used.
func NewClient() *Client {
	return &Client{
		BaseURL: "https://myanimelist.net",
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// fetch GETs a page with the browser UA and returns its body.  All failures
// come back as NetworkError so callers can map them to 502.
func (c *Client) fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", apperr.Network(pageURL, err)
	}
	req.Header.Set("User-Agent", browserUA)
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", apperr.Network(pageURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apperr.Network(pageURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", apperr.Network(pageURL, err)
	}
	return string(body), nil
}

// dataItemsPattern captures the JSON rows embedded in the list table tag.
var dataItemsPattern = regexp.MustCompile(`data-items="([^"]*)"`)

// malListItem mirrors the fields of a data-items row the importer reads.
type malListItem struct {
	AnimeID     uint64 `json:"anime_id"`
	AnimeTitle  string `json:"anime_title"`
	NumEpisodes uint32 `json:"anime_num_episodes"`
	ImagePath   string `json:"anime_image_path"`
	StartDate   string `json:"anime_start_date_string"`
}

// FetchList downloads a user's anime list for one status bucket and parses
// its rows.  Users with a private list produce an empty slice, not an error.
func (c *Client) FetchList(ctx context.Context, username string, status model.ShowStatus) ([]ListEntry, error) {
	param, ok := listStatusParam[status]
	if !ok {
		param = "1"
	}
	pageURL := fmt.Sprintf("%s/animelist/%s?status=%s", c.BaseURL, url.PathEscape(username), param)
	body, err := c.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return parseList(body)
}

// parseList extracts the data-items JSON from a list page.
func parseList(body string) ([]ListEntry, error) {
	m := dataItemsPattern.FindStringSubmatch(body)
	if m == nil {
		return []ListEntry{}, nil
	}
	raw := html.UnescapeString(m[1])
	var items []malListItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("parse list items: %w", err)
	}
	out := make([]ListEntry, 0, len(items))
	for _, it := range items {
		if it.AnimeID == 0 || it.AnimeTitle == "" {
			continue
		}
		out = append(out, ListEntry{
			MALID:         it.AnimeID,
			Title:         it.AnimeTitle,
			ImageURL:      it.ImagePath,
			TotalEpisodes: it.NumEpisodes,
			PremiereAt:    parseStartDate(it.StartDate),
		})
	}
	return out, nil
}

// startDateLayouts covers the formats MAL uses in list rows.
var startDateLayouts = []string{"01-02-06", "2006-01-02", "01-06", "2006"}

// parseStartDate decodes MAL's start date strings.  Unknown or partial
// dates yield the zero time, which the domain treats as unannounced.
func parseStartDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return time.Time{}
	}
	for _, layout := range startDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}

var (
	episodesPattern = regexp.MustCompile(`(?s)<span class="dark_text">\s*Episodes:\s*</span>\s*(\d+|Unknown)`)
	titlePattern    = regexp.MustCompile(`<title>(.+?)</title>`)
)

// FetchAnime downloads one anime detail page and parses its title and
// episode total.  An "Unknown" episode count maps to zero.
func (c *Client) FetchAnime(ctx context.Context, malID uint64) (*AnimeDetail, error) {
	pageURL := fmt.Sprintf("%s/anime/%d", c.BaseURL, malID)
	body, err := c.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	d := &AnimeDetail{MALID: malID}
	if m := titlePattern.FindStringSubmatch(body); m != nil {
		title := html.UnescapeString(m[1])
		title = strings.TrimSuffix(title, " - MyAnimeList.net")
		d.Title = strings.TrimSpace(title)
	}
	if m := episodesPattern.FindStringSubmatch(body); m != nil && m[1] != "Unknown" {
		if n, err := strconv.ParseUint(m[1], 10, 32); err == nil {
			d.TotalEpisodes = uint32(n)
		}
	}
	return d, nil
}
