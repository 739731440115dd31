package metrics

import "sync"

// Mock records calls for tests. It is safe for concurrent use.
type Mock struct {
	mu          sync.Mutex
	evaluations map[string]int
	fetches     map[string]int
	rosterSizes map[string]int
	wsClients   int
}

var _ Metrics = (*Mock)(nil)

// NewMock creates an empty mock
func NewMock() *Mock {
	return &Mock{
		evaluations: make(map[string]int),
		fetches:     make(map[string]int),
		rosterSizes: make(map[string]int),
	}
}

func (m *Mock) IncEvaluation(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluations[kind]++
}

func (m *Mock) ObserveRosterFetch(league, outcome string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetches[league+"/"+outcome]++
}

func (m *Mock) SetRosterSize(league string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rosterSizes[league] = n
}

func (m *Mock) SetWSClients(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wsClients = n
}

// Evaluations returns how many evaluations of kind were recorded
func (m *Mock) Evaluations(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evaluations[kind]
}

// Fetches returns how many roster fetches ended with outcome for league
func (m *Mock) Fetches(league, outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches[league+"/"+outcome]
}

// RosterSize returns the last size set for league
func (m *Mock) RosterSize(league string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rosterSizes[league]
}

// WSClients returns the last client count set
func (m *Mock) WSClients() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wsClients
}
