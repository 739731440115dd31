package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/fortuna/prospect/internal/metrics"
	"github.com/fortuna/prospect/internal/publisher"
	"github.com/fortuna/prospect/internal/scoring"
	"github.com/fortuna/prospect/internal/store"
)

const (
	DefaultCompareTop = 5
	MaxCompareTop     = 25

	DefaultSort = scoring.PlayerEfficiencyRating
)

// ErrNoRosters is returned when the requested league has never loaded
var ErrNoRosters = errors.New("rosters not loaded")

// RosterSource provides the current roster snapshot
type RosterSource interface {
	Snapshot() store.Rosters
}

// EvaluationPublisher receives one event per probability evaluation
type EvaluationPublisher interface {
	PublishEvaluation(ctx context.Context, ev publisher.EvaluationEvent) error
}

// ProspectService answers evaluation questions against the loaded rosters.
// It keeps no per-user state: every call receives the profile it scores.
type ProspectService struct {
	rosters   RosterSource
	publisher EvaluationPublisher
	metrics   metrics.Metrics
	logger    *log.Logger
}

// NewProspectService creates the service. pub and m may be nil.
func NewProspectService(rosters RosterSource, pub EvaluationPublisher, m metrics.Metrics) *ProspectService {
	return &ProspectService{
		rosters:   rosters,
		publisher: pub,
		metrics:   m,
		logger:    log.WithPrefix("service"),
	}
}

// ProbabilityResult pairs the scored profile with its estimate
type ProbabilityResult struct {
	Profile  *store.PlayerRecord `json:"profile"`
	Estimate *scoring.Estimate   `json:"estimate"`
}

// Probability estimates the user's chances against the current rosters.
// Estimate is nil when there is no profile.
func (s *ProspectService) Probability(ctx context.Context, user *store.PlayerRecord) *ProbabilityResult {
	snap := s.rosters.Snapshot()
	est := scoring.EstimateProbability(user, snap.NBA, snap.NCAA)
	s.count(metrics.KindProbability)

	if est != nil && s.publisher != nil {
		ev := publisher.EvaluationEvent{
			CompetitionLevel: user.CompetitionLevel,
			Age:              user.Age,
			Estimate:         est,
		}
		if err := s.publisher.PublishEvaluation(ctx, ev); err != nil {
			s.logger.Warn("Failed to publish evaluation", "error", err)
		}
	}
	return &ProbabilityResult{Profile: user, Estimate: est}
}

// ComparisonResult lists the closest statistical matches in a league
type ComparisonResult struct {
	League  store.League    `json:"league"`
	Top     int             `json:"top"`
	Matches []scoring.Match `json:"matches"`
}

// ClampTop applies the default and upper bound to a requested match count
func ClampTop(top int) int {
	switch {
	case top <= 0:
		return DefaultCompareTop
	case top > MaxCompareTop:
		return MaxCompareTop
	}
	return top
}

// Compare ranks the league's eligible players by similarity to user
func (s *ProspectService) Compare(ctx context.Context, user *store.PlayerRecord, league store.League, top int) (*ComparisonResult, error) {
	roster, err := s.roster(league)
	if err != nil {
		return nil, err
	}
	top = ClampTop(top)

	pool := scoring.Eligible(roster, league, true)
	matches := scoring.RankSimilar(user, pool, top)
	s.count(metrics.KindComparison)

	s.logger.Debug("Comparison served", "league", league, "pool", len(pool), "matches", len(matches))
	return &ComparisonResult{League: league, Top: top, Matches: matches}, nil
}

// RankingsQuery selects and orders a rankings view
type RankingsQuery struct {
	League store.League
	SortBy scoring.Statistic
	Search string
	User   *store.PlayerRecord
}

// RankingsView is a sorted league table, possibly including the user
type RankingsView struct {
	League    store.League         `json:"league"`
	SortBy    scoring.Statistic    `json:"sort_by"`
	SortLabel string               `json:"sort_label"`
	Search    string               `json:"search,omitempty"`
	Total     int                  `json:"total"`
	UserRank  *int                 `json:"user_rank"`
	Players   []store.PlayerRecord `json:"players"`
}

// Rankings builds the sorted table for a league. The user joins the table
// when the search is empty or matches their name.
func (s *ProspectService) Rankings(ctx context.Context, q RankingsQuery) (*RankingsView, error) {
	roster, err := s.roster(q.League)
	if err != nil {
		return nil, err
	}
	if q.SortBy == "" {
		q.SortBy = DefaultSort
	}
	if _, err := scoring.ParseStatistic(string(q.SortBy)); err != nil {
		return nil, err
	}

	term := strings.ToLower(strings.TrimSpace(q.Search))
	eligible := scoring.Eligible(roster, q.League, false)
	filtered := eligible
	if term != "" {
		filtered = make([]store.PlayerRecord, 0, len(eligible))
		for _, r := range eligible {
			if matchesSearch(r.Name, term) || matchesSearch(r.Team, term) {
				filtered = append(filtered, r)
			}
		}
	}

	var user *store.PlayerRecord
	if q.User != nil {
		name := q.User.Name
		if name == "" {
			name = store.UserName
		}
		if term == "" || matchesSearch(name, term) {
			user = q.User.Clone()
			user.League = q.League
		}
	}

	players := scoring.SortRoster(filtered, user, q.SortBy)
	s.count(metrics.KindRankings)

	view := &RankingsView{
		League:    q.League,
		SortBy:    q.SortBy,
		SortLabel: q.SortBy.Label(),
		Search:    strings.TrimSpace(q.Search),
		Total:     len(players),
		Players:   players,
	}
	if rank := scoring.RankOf(players); rank > 0 {
		view.UserRank = &rank
	}
	return view, nil
}

func matchesSearch(field, term string) bool {
	return strings.Contains(strings.ToLower(field), term)
}

// roster returns the league roster, failing only when the league has
// never loaded successfully.
func (s *ProspectService) roster(league store.League) ([]store.PlayerRecord, error) {
	if league != store.LeagueNBA && league != store.LeagueNCAA {
		return nil, fmt.Errorf("%w: %q", store.ErrUnknownLeague, league)
	}

	snap := s.rosters.Snapshot()
	roster := snap.League(league)
	if len(roster) == 0 && snap.LoadedAt[league].IsZero() {
		if msg, ok := snap.Errors[league]; ok {
			return nil, fmt.Errorf("%w: %s: %s", ErrNoRosters, league, msg)
		}
		return nil, fmt.Errorf("%w: %s", ErrNoRosters, league)
	}
	return roster, nil
}

func (s *ProspectService) count(kind string) {
	if s.metrics != nil {
		s.metrics.IncEvaluation(kind)
	}
}
