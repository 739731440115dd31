package store

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel identity of the synthetic user record
const (
	UserPlayerID = "USER_PLAYER"
	UserTeam     = "USER"
	UserName     = "Your Player"

	// The user's record always represents a single 30-minute game
	UserGames   = 1
	UserMinutes = 30.0
)

// League identifies which feed a record came from
type League string

const (
	LeagueNBA  League = "NBA"
	LeagueNCAA League = "NCAA"
)

// Leagues lists the supported leagues in load order
var Leagues = []League{LeagueNBA, LeagueNCAA}

// ErrUnknownLeague is returned when a league name is not NBA or NCAA
var ErrUnknownLeague = errors.New("unknown league")

// ParseLeague accepts "nba"/"ncaa" in any case
func ParseLeague(s string) (League, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(LeagueNBA):
		return LeagueNBA, nil
	case string(LeagueNCAA):
		return LeagueNCAA, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLeague, s)
}

// Key returns the lower-case form used in cache keys and URLs
func (l League) Key() string {
	return strings.ToLower(string(l))
}

// PlayerRecord represents one athlete-season of per-game statistics.
// Statistics are pointers because upstream feeds are sparse: a nil value
// means "not reported", which is different from zero.
type PlayerRecord struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	League   League `json:"league,omitempty"`
	Position string `json:"position,omitempty"`

	// Per-game counting stats
	Points       *float64 `json:"points,omitempty"`
	Rebounds     *float64 `json:"rebounds,omitempty"`
	Assists      *float64 `json:"assists,omitempty"`
	Steals       *float64 `json:"steals,omitempty"`
	BlockedShots *float64 `json:"blocked_shots,omitempty"`
	Turnovers    *float64 `json:"turnovers,omitempty"`

	// Shooting volume
	FieldGoalsMade         *float64 `json:"field_goals_made,omitempty"`
	FieldGoalsAttempted    *float64 `json:"field_goals_attempted,omitempty"`
	ThreePointersMade      *float64 `json:"three_pointers_made,omitempty"`
	ThreePointersAttempted *float64 `json:"three_pointers_attempted,omitempty"`
	FreeThrowsMade         *float64 `json:"free_throws_made,omitempty"`
	FreeThrowsAttempted    *float64 `json:"free_throws_attempted,omitempty"`

	// Shooting efficiency, 0-100
	FieldGoalsPercentage    *float64 `json:"field_goals_percentage,omitempty"`
	ThreePointersPercentage *float64 `json:"three_pointers_percentage,omitempty"`
	FreeThrowsPercentage    *float64 `json:"free_throws_percentage,omitempty"`

	PlayerEfficiencyRating *float64 `json:"player_efficiency_rating,omitempty"`
	Games                  *int     `json:"games,omitempty"`
	// Minutes is the season total, not per game
	Minutes *float64 `json:"minutes,omitempty"`

	Age              int              `json:"age,omitempty"`
	CompetitionLevel CompetitionLevel `json:"competition_level,omitempty"`
}

// IsUser reports whether r is the synthetic user record. The player id
// is the only sentinel; a real team may be abbreviated USER.
func (r *PlayerRecord) IsUser() bool {
	return r.PlayerID == UserPlayerID
}

// MinutesPerGame derives per-game minutes from the season total.
// Returns 0 when games are missing or not positive.
func (r *PlayerRecord) MinutesPerGame() float64 {
	if r.Games == nil || *r.Games <= 0 || r.Minutes == nil {
		return 0
	}
	return *r.Minutes / float64(*r.Games)
}

// Clone returns a deep copy so callers can adjust fields without touching
// a shared roster snapshot.
func (r *PlayerRecord) Clone() *PlayerRecord {
	if r == nil {
		return nil
	}
	cpy := *r
	for _, p := range []**float64{
		&cpy.Points, &cpy.Rebounds, &cpy.Assists, &cpy.Steals, &cpy.BlockedShots, &cpy.Turnovers,
		&cpy.FieldGoalsMade, &cpy.FieldGoalsAttempted, &cpy.ThreePointersMade,
		&cpy.ThreePointersAttempted, &cpy.FreeThrowsMade, &cpy.FreeThrowsAttempted,
		&cpy.FieldGoalsPercentage, &cpy.ThreePointersPercentage, &cpy.FreeThrowsPercentage,
		&cpy.PlayerEfficiencyRating, &cpy.Minutes,
	} {
		if *p != nil {
			v := **p
			*p = &v
		}
	}
	if cpy.Games != nil {
		g := *cpy.Games
		cpy.Games = &g
	}
	return &cpy
}

// Float returns a pointer to v. Used when building records by hand.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v
func Int(v int) *int {
	return &v
}
