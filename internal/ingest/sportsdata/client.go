// Package sportsdata fetches season roster feeds from SportsDataIO.
package sportsdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fortuna/prospect/internal/store"
)

const (
	BaseURL = "http://archive.sportsdata.io"

	maxBodyBytes = 32 << 20
	excerptLen   = 200
)

// leaguePaths are the per-league API roots under the base URL
var leaguePaths = map[store.League]string{
	store.LeagueNBA:  "/v3/nba/stats/json",
	store.LeagueNCAA: "/v3/cbb/stats/json",
}

// ErrNoFeed is returned for a league without a configured feed
var ErrNoFeed = errors.New("no feed configured")

// Feed names one archive file and the key that unlocks it
type Feed struct {
	Path string
	Key  string
}

// Client handles SportsDataIO requests
type Client struct {
	baseURL    string
	httpClient *http.Client
	feeds      map[store.League]Feed
	logger     *log.Logger
}

// New creates a client. An empty baseURL uses BaseURL.
func New(baseURL string, timeout time.Duration, feeds map[store.League]Feed) *Client {
	if baseURL == "" {
		baseURL = BaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		feeds:      feeds,
		logger:     log.WithPrefix("sportsdata"),
	}
}

// FeedURL builds the request URL for league, key included
func (c *Client) FeedURL(league store.League) (string, error) {
	feed, ok := c.feeds[league]
	root, known := leaguePaths[league]
	if !ok || !known || feed.Path == "" {
		return "", fmt.Errorf("%s: %w", league, ErrNoFeed)
	}

	u := c.baseURL + root + feed.Path
	if feed.Key != "" {
		u += "?key=" + url.QueryEscape(feed.Key)
	}
	return u, nil
}

// FetchRoster downloads the league feed and converts it to roster records
func (c *Client) FetchRoster(ctx context.Context, league store.League) ([]store.PlayerRecord, error) {
	rows, err := c.FetchSeason(ctx, league)
	if err != nil {
		return nil, err
	}
	return Records(rows, league), nil
}

// FetchSeason downloads the raw feed rows for league
func (c *Client) FetchSeason(ctx context.Context, league store.League) ([]PlayerSeason, error) {
	u, err := c.FeedURL(league)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", league, err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Fetching roster feed", "league", league, "path", c.feeds[league].Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s feed: %w", league, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s feed: %w", league, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s feed: status %d: %s", league, resp.StatusCode, excerpt(body))
	}

	// A missing content type is tolerated; anything else must be JSON
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "application/json") {
		return nil, fmt.Errorf("fetch %s feed: non-JSON response (%s): %s", league, ct, excerpt(body))
	}

	var rows []PlayerSeason
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode %s feed: %w (body: %s)", league, err, excerpt(body))
	}

	c.logger.Info("Fetched roster feed", "league", league, "players", len(rows))
	return rows, nil
}

func excerpt(body []byte) string {
	return string(body[:min(len(body), excerptLen)])
}
