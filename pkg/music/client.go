package music

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://itunes.apple.com"

// Service is the metadata-fetch collaborator surface. Both methods return
// (nil, nil) when the catalog simply has no match.
type Service interface {
	Search(ctx context.Context, query string) (*Track, error)
	Lookup(ctx context.Context, id string) (*Track, error)
}

// Client queries an iTunes-style catalog endpoint. Results are cached by
// track id in the injected cache.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *Cache
}

// NewClient builds a catalog client. A nil cache disables caching.
func NewClient(baseURL string, timeout time.Duration, cache *Cache) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		cache:      cache,
	}
}

type catalogResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []catalogTrack `json:"results"`
}

type catalogTrack struct {
	TrackID         int64  `json:"trackId"`
	TrackName       string `json:"trackName"`
	ArtistName      string `json:"artistName"`
	ArtworkURL100   string `json:"artworkUrl100"`
	PreviewURL      string `json:"previewUrl"`
	TrackTimeMillis int64  `json:"trackTimeMillis"`
}

// Search returns the best catalog match for a free-text query.
func (c *Client) Search(ctx context.Context, query string) (*Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is required")
	}

	params := url.Values{}
	params.Set("term", query)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", "1")

	track, err := c.fetch(ctx, "/search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if track != nil {
		c.cachePut(*track)
	}

	return track, nil
}

// Lookup returns the catalog record for a known track id, served from the
// cache when fresh.
func (c *Client) Lookup(ctx context.Context, id string) (*Track, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("track id is required")
	}

	if c.cache != nil {
		if track, ok := c.cache.Get(id); ok {
			return track, nil
		}
	}

	params := url.Values{}
	params.Set("id", id)

	track, err := c.fetch(ctx, "/lookup?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("lookup %s: %w", id, err)
	}
	if track != nil {
		c.cachePut(*track)
	}

	return track, nil
}

func (c *Client) fetch(ctx context.Context, pathAndQuery string) (*Track, error) {
	log := musicLogger()
	startedAt := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+pathAndQuery, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("catalog request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debug("catalog request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "status", resp.StatusCode)
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var parsed catalogResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	log.Debug("catalog request completed", "duration_ms", time.Since(startedAt).Milliseconds(), "results", parsed.ResultCount)

	if len(parsed.Results) == 0 {
		return nil, nil
	}

	track := parsed.Results[0].toTrack()
	return &track, nil
}

func (c *Client) cachePut(track Track) {
	if c.cache != nil && track.ID != "" {
		c.cache.Put(track)
	}
}

func (r catalogTrack) toTrack() Track {
	track := Track{
		Title:      strings.TrimSpace(r.TrackName),
		Artist:     strings.TrimSpace(r.ArtistName),
		ArtworkURL: strings.TrimSpace(r.ArtworkURL100),
		PreviewURL: strings.TrimSpace(r.PreviewURL),
	}
	if r.TrackID > 0 {
		track.ID = strconv.FormatInt(r.TrackID, 10)
	}
	if r.TrackTimeMillis > 0 {
		track.Duration = time.Duration(r.TrackTimeMillis) * time.Millisecond
	}
	track.normalize()

	return track
}

func musicLogger() *slog.Logger {
	return slog.Default().With("component", "music.client")
}
