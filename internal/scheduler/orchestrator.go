package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/fortuna/prospect/internal/ingest"
	"github.com/fortuna/prospect/internal/metrics"
	"github.com/fortuna/prospect/internal/store"
)

// Loader fetches league rosters
type Loader interface {
	LoadAll(ctx context.Context, force bool) map[store.League]ingest.Result
	Load(ctx context.Context, league store.League, force bool) ingest.Result
}

// Orchestrator keeps the roster store fresh: one load at start, then a
// refresh every interval, plus manual refreshes on demand.
type Orchestrator struct {
	loader  Loader
	rosters *store.RosterStore
	metrics metrics.Metrics
	config  *Config
	logger  *log.Logger

	// refreshMu serialises refreshes so a manual trigger never races the ticker
	refreshMu sync.Mutex

	mu          sync.Mutex
	cancel      context.CancelFunc
	onRefresh   []func(store.Rosters)
	lastRefresh time.Time
	refreshes   int
}

// Config holds scheduler configuration
type Config struct {
	RefreshInterval time.Duration // Default: 6h
	MaxRetries      int           // Default: 3
	RetryDelay      time.Duration // Default: 5s
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() *Config {
	return &Config{
		RefreshInterval: 6 * time.Hour,
		MaxRetries:      3,
		RetryDelay:      5 * time.Second,
	}
}

// Status is reported by the rosters status endpoint
type Status struct {
	RefreshInterval string             `json:"refresh_interval"`
	LastRefresh     *time.Time         `json:"last_refresh,omitempty"`
	Refreshes       int                `json:"refreshes"`
	Rosters         store.RosterStatus `json:"rosters"`
}

// NewOrchestrator creates a new scheduler orchestrator
func NewOrchestrator(loader Loader, rosters *store.RosterStore, m metrics.Metrics, config *Config) *Orchestrator {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries < 1 {
		config.MaxRetries = 1
	}
	return &Orchestrator{
		loader:  loader,
		rosters: rosters,
		metrics: m,
		config:  config,
		logger:  log.WithPrefix("scheduler"),
	}
}

// OnRefresh registers fn to run with the new snapshot after every refresh
func (o *Orchestrator) OnRefresh(fn func(store.Rosters)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onRefresh = append(o.onRefresh, fn)
}

// Start loads the rosters and then refreshes them every interval.
// It blocks until ctx is cancelled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	o.mu.Lock()
	o.cancel = cancel
	o.mu.Unlock()

	o.logger.Info("Roster scheduler started", "interval", o.config.RefreshInterval, "max_retries", o.config.MaxRetries)

	// Run immediately on start
	o.Refresh(ctx, false)

	ticker := time.NewTicker(o.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("Roster scheduler stopped")
			return
		case <-ticker.C:
			// Interval refreshes must see upstream changes, so skip the cache
			o.Refresh(ctx, true)
		}
	}
}

// Stop gracefully stops the scheduler
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
}

// TriggerRefresh forces a refresh that bypasses the cache
func (o *Orchestrator) TriggerRefresh(ctx context.Context) Status {
	o.logger.Info("Manual roster refresh triggered")
	o.Refresh(ctx, true)
	return o.GetStatus()
}

// Refresh loads every league, retrying failed leagues, and installs the
// results in the roster store. Leagues that still fail keep their last
// good roster.
func (o *Orchestrator) Refresh(ctx context.Context, force bool) store.Rosters {
	o.refreshMu.Lock()
	defer o.refreshMu.Unlock()

	start := time.Now()
	results := o.loader.LoadAll(ctx, force)

	// Install every league that loaded before retrying the others
	var failed []ingest.Result
	for _, league := range store.Leagues {
		res, ok := results[league]
		if !ok {
			continue
		}
		res.League = league
		if res.Err != nil {
			failed = append(failed, res)
			continue
		}
		o.rosters.Apply(league, res.Records, nil, time.Now())
	}

	var wg sync.WaitGroup
	for _, res := range failed {
		wg.Add(1)
		go func(res ingest.Result) {
			defer wg.Done()
			res = o.retry(ctx, res, force)
			if res.Err != nil {
				o.logger.Error("Roster load gave up", "league", res.League, "error", res.Err)
			}
			o.rosters.Apply(res.League, res.Records, res.Err, time.Now())
		}(res)
	}
	wg.Wait()

	snapshot := o.rosters.Snapshot()
	if o.metrics != nil {
		for _, league := range store.Leagues {
			o.metrics.SetRosterSize(league.Key(), len(snapshot.League(league)))
		}
	}

	o.mu.Lock()
	o.lastRefresh = time.Now()
	o.refreshes++
	callbacks := append([]func(store.Rosters){}, o.onRefresh...)
	o.mu.Unlock()

	o.logger.Info("Rosters refreshed",
		"nba", len(snapshot.NBA), "ncaa", len(snapshot.NCAA),
		"errors", len(snapshot.Errors), "took", time.Since(start).Round(time.Millisecond))

	for _, fn := range callbacks {
		fn(snapshot)
	}
	return snapshot
}

// retry reloads a failed league until it succeeds, the attempts run out or
// ctx ends. It returns the last result.
func (o *Orchestrator) retry(ctx context.Context, res ingest.Result, force bool) ingest.Result {
	for attempt := 2; res.Err != nil && attempt <= o.config.MaxRetries; attempt++ {
		o.logger.Warn("Roster load failed, retrying", "league", res.League, "attempt", attempt, "max", o.config.MaxRetries, "error", res.Err)
		select {
		case <-ctx.Done():
			return res
		case <-time.After(o.config.RetryDelay):
		}
		next := o.loader.Load(ctx, res.League, force)
		next.League = res.League
		res = next
	}
	return res
}

// GetStatus returns current scheduler status
func (o *Orchestrator) GetStatus() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := Status{
		RefreshInterval: o.config.RefreshInterval.String(),
		Refreshes:       o.refreshes,
		Rosters:         o.rosters.Snapshot().Status(),
	}
	if !o.lastRefresh.IsZero() {
		last := o.lastRefresh
		st.LastRefresh = &last
	}
	return st
}
