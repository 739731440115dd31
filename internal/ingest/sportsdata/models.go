package sportsdata

import (
	"strconv"
	"strings"

	"github.com/fortuna/prospect/internal/store"
)

// PlayerSeason is one row of a SportsDataIO player-season-stats feed.
// Any stat may be null in the archive files.
type PlayerSeason struct {
	PlayerID int    `json:"PlayerID"`
	Name     string `json:"Name"`
	Team     string `json:"Team"`
	Position string `json:"Position"`

	Games   *int     `json:"Games"`
	Minutes *float64 `json:"Minutes"`

	Points       *float64 `json:"Points"`
	Rebounds     *float64 `json:"Rebounds"`
	Assists      *float64 `json:"Assists"`
	Steals       *float64 `json:"Steals"`
	BlockedShots *float64 `json:"BlockedShots"`
	Turnovers    *float64 `json:"Turnovers"`

	FieldGoalsMade          *float64 `json:"FieldGoalsMade"`
	FieldGoalsAttempted     *float64 `json:"FieldGoalsAttempted"`
	FieldGoalsPercentage    *float64 `json:"FieldGoalsPercentage"`
	ThreePointersMade       *float64 `json:"ThreePointersMade"`
	ThreePointersAttempted  *float64 `json:"ThreePointersAttempted"`
	ThreePointersPercentage *float64 `json:"ThreePointersPercentage"`
	FreeThrowsMade          *float64 `json:"FreeThrowsMade"`
	FreeThrowsAttempted     *float64 `json:"FreeThrowsAttempted"`
	FreeThrowsPercentage    *float64 `json:"FreeThrowsPercentage"`

	PlayerEfficiencyRating *float64 `json:"PlayerEfficiencyRating"`
}

// Record converts a feed row into a roster record tagged with league
func (p PlayerSeason) Record(league store.League) store.PlayerRecord {
	return store.PlayerRecord{
		PlayerID: strconv.Itoa(p.PlayerID),
		Name:     strings.TrimSpace(p.Name),
		Team:     strings.TrimSpace(p.Team),
		League:   league,
		Position: p.Position,

		Points:       p.Points,
		Rebounds:     p.Rebounds,
		Assists:      p.Assists,
		Steals:       p.Steals,
		BlockedShots: p.BlockedShots,
		Turnovers:    p.Turnovers,

		FieldGoalsMade:         p.FieldGoalsMade,
		FieldGoalsAttempted:    p.FieldGoalsAttempted,
		ThreePointersMade:      p.ThreePointersMade,
		ThreePointersAttempted: p.ThreePointersAttempted,
		FreeThrowsMade:         p.FreeThrowsMade,
		FreeThrowsAttempted:    p.FreeThrowsAttempted,

		FieldGoalsPercentage:    p.FieldGoalsPercentage,
		ThreePointersPercentage: p.ThreePointersPercentage,
		FreeThrowsPercentage:    p.FreeThrowsPercentage,

		PlayerEfficiencyRating: p.PlayerEfficiencyRating,
		Games:                  p.Games,
		Minutes:                p.Minutes,
	}
}

// Records converts every row of a feed
func Records(rows []PlayerSeason, league store.League) []store.PlayerRecord {
	out := make([]store.PlayerRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.Record(league))
	}
	return out
}
