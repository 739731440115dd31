// Package ingest loads league rosters from the upstream feed, going
// through the Redis roster cache when one is configured.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fortuna/prospect/internal/metrics"
	"github.com/fortuna/prospect/internal/publisher"
	"github.com/fortuna/prospect/internal/store"
)

// Fetcher downloads one league roster
type Fetcher interface {
	FetchRoster(ctx context.Context, league store.League) ([]store.PlayerRecord, error)
}

// RosterCache stores rosters between fetches
type RosterCache interface {
	GetRoster(ctx context.Context, league store.League) ([]store.PlayerRecord, bool, error)
	SetRoster(ctx context.Context, league store.League, records []store.PlayerRecord) error
}

// RefreshPublisher announces completed loads
type RefreshPublisher interface {
	PublishRosterRefresh(ctx context.Context, ev publisher.RosterRefreshEvent) error
}

// Result is the outcome of loading one league
type Result struct {
	League  store.League
	Records []store.PlayerRecord
	Err     error
	Cached  bool
}

// RosterLoader loads every league concurrently. A failure in one league
// never affects the other.
type RosterLoader struct {
	fetcher   Fetcher
	cache     RosterCache
	publisher RefreshPublisher
	metrics   metrics.Metrics
	logger    *log.Logger
}

// NewRosterLoader creates a loader. cache and pub may be nil.
func NewRosterLoader(fetcher Fetcher, cache RosterCache, pub RefreshPublisher, m metrics.Metrics) *RosterLoader {
	return &RosterLoader{
		fetcher:   fetcher,
		cache:     cache,
		publisher: pub,
		metrics:   m,
		logger:    log.WithPrefix("ingest"),
	}
}

// LoadAll loads every league. With force set the cache is not read, but
// fresh rosters are still written back to it.
func (rl *RosterLoader) LoadAll(ctx context.Context, force bool) map[store.League]Result {
	results := make(map[store.League]Result, len(store.Leagues))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, league := range store.Leagues {
		wg.Add(1)
		go func(league store.League) {
			defer wg.Done()
			res := rl.Load(ctx, league, force)
			mu.Lock()
			results[league] = res
			mu.Unlock()
		}(league)
	}
	wg.Wait()

	rl.announce(ctx, results, force)
	return results
}

// Load loads a single league
func (rl *RosterLoader) Load(ctx context.Context, league store.League, force bool) Result {
	start := time.Now()

	if !force && rl.cache != nil {
		records, ok, err := rl.cache.GetRoster(ctx, league)
		switch {
		case err != nil:
			rl.logger.Warn("Roster cache read failed, fetching upstream", "league", league, "error", err)
		case ok:
			rl.observe(league, metrics.OutcomeCached, start)
			rl.logger.Debug("Roster served from cache", "league", league, "players", len(records))
			return Result{League: league, Records: records, Cached: true}
		}
	}

	records, err := rl.fetcher.FetchRoster(ctx, league)
	if err != nil {
		rl.observe(league, metrics.OutcomeError, start)
		rl.logger.Error("Roster fetch failed", "league", league, "error", err)
		return Result{League: league, Err: fmt.Errorf("load %s roster: %w", league, err)}
	}
	rl.observe(league, metrics.OutcomeSuccess, start)

	if rl.cache != nil {
		if err := rl.cache.SetRoster(ctx, league, records); err != nil {
			rl.logger.Warn("Roster cache write failed", "league", league, "error", err)
		}
	}

	rl.logger.Info("Roster loaded", "league", league, "players", len(records), "took", time.Since(start).Round(time.Millisecond))
	return Result{League: league, Records: records}
}

func (rl *RosterLoader) observe(league store.League, outcome string, start time.Time) {
	if rl.metrics != nil {
		rl.metrics.ObserveRosterFetch(league.Key(), outcome, time.Since(start).Seconds())
	}
}

// announce publishes a refresh event when at least one league loaded
func (rl *RosterLoader) announce(ctx context.Context, results map[store.League]Result, force bool) {
	if rl.publisher == nil {
		return
	}

	ev := publisher.RosterRefreshEvent{
		Counts: make(map[store.League]int, len(results)),
		Forced: force,
	}
	loaded := false
	for league, res := range results {
		if res.Err != nil {
			if ev.Errors == nil {
				ev.Errors = make(map[store.League]string)
			}
			ev.Errors[league] = res.Err.Error()
			continue
		}
		loaded = true
		ev.Counts[league] = len(res.Records)
	}
	if !loaded {
		return
	}

	if err := rl.publisher.PublishRosterRefresh(ctx, ev); err != nil {
		rl.logger.Warn("Failed to publish roster refresh", "error", err)
	}
}

// FileFetcher reads rosters previously saved as JSON, one file per league
type FileFetcher map[store.League]string

// FetchRoster implements Fetcher
func (ff FileFetcher) FetchRoster(_ context.Context, league store.League) ([]store.PlayerRecord, error) {
	path, ok := ff[league]
	if !ok || path == "" {
		return nil, fmt.Errorf("no roster file for %s", league)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s roster file: %w", league, err)
	}

	var records []store.PlayerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode %s roster file: %w", league, err)
	}
	for i := range records {
		records[i].League = league
	}
	return records, nil
}
