package store

import (
	"sync"
	"time"
)

// Rosters is an immutable snapshot of both leagues' player records.
// Callers must not modify the slices; they are shared between requests.
type Rosters struct {
	NBA      []PlayerRecord       `json:"-"`
	NCAA     []PlayerRecord       `json:"-"`
	Errors   map[League]string    `json:"errors,omitempty"`
	LoadedAt map[League]time.Time `json:"loaded_at,omitempty"`
}

// League returns the roster for l, nil for unknown leagues
func (r Rosters) League(l League) []PlayerRecord {
	switch l {
	case LeagueNBA:
		return r.NBA
	case LeagueNCAA:
		return r.NCAA
	}
	return nil
}

// Empty reports whether neither league has any records
func (r Rosters) Empty() bool {
	return len(r.NBA) == 0 && len(r.NCAA) == 0
}

// RosterStatus summarises a snapshot for API responses
type RosterStatus struct {
	Counts   map[League]int       `json:"counts"`
	Errors   map[League]string    `json:"errors,omitempty"`
	LoadedAt map[League]time.Time `json:"loaded_at,omitempty"`
}

// Status returns counts, errors and load times for the snapshot
func (r Rosters) Status() RosterStatus {
	return RosterStatus{
		Counts: map[League]int{
			LeagueNBA:  len(r.NBA),
			LeagueNCAA: len(r.NCAA),
		},
		Errors:   r.Errors,
		LoadedAt: r.LoadedAt,
	}
}

// RosterStore holds the current roster snapshot in memory
type RosterStore struct {
	mu      sync.RWMutex
	current Rosters
}

// NewRosterStore creates an empty store
func NewRosterStore() *RosterStore {
	return &RosterStore{
		current: Rosters{
			Errors:   map[League]string{},
			LoadedAt: map[League]time.Time{},
		},
	}
}

// Snapshot returns the current rosters
func (s *RosterStore) Snapshot() Rosters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Apply installs a freshly loaded league roster, or records the failure.
// A failed load keeps the last good roster for that league.
func (s *RosterStore) Apply(league League, records []PlayerRecord, loadErr error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Rosters{
		NBA:      s.current.NBA,
		NCAA:     s.current.NCAA,
		Errors:   make(map[League]string, len(s.current.Errors)),
		LoadedAt: make(map[League]time.Time, len(s.current.LoadedAt)),
	}
	for k, v := range s.current.Errors {
		next.Errors[k] = v
	}
	for k, v := range s.current.LoadedAt {
		next.LoadedAt[k] = v
	}

	if loadErr != nil {
		next.Errors[league] = loadErr.Error()
		s.current = next
		return
	}

	delete(next.Errors, league)
	next.LoadedAt[league] = at
	switch league {
	case LeagueNBA:
		next.NBA = records
	case LeagueNCAA:
		next.NCAA = records
	}
	s.current = next
}
