// Package scoring holds the pure computations behind the prospect tools:
// eligibility filtering, the probability heuristic, similarity matching
// and roster ranking. Nothing here does I/O or keeps state between calls.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/fortuna/prospect/internal/store"
)

// Statistic identifies a numeric field of a PlayerRecord
type Statistic string

const (
	Points                  Statistic = "Points"
	Rebounds                Statistic = "Rebounds"
	Assists                 Statistic = "Assists"
	Steals                  Statistic = "Steals"
	BlockedShots            Statistic = "BlockedShots"
	Turnovers               Statistic = "Turnovers"
	FieldGoalsPercentage    Statistic = "FieldGoalsPercentage"
	ThreePointersPercentage Statistic = "ThreePointersPercentage"
	FreeThrowsPercentage    Statistic = "FreeThrowsPercentage"
	PlayerEfficiencyRating  Statistic = "PlayerEfficiencyRating"
	Minutes                 Statistic = "Minutes"
)

// ErrUnknownStatistic is returned by ParseStatistic for names outside the table
var ErrUnknownStatistic = errors.New("unknown statistic")

type statDef struct {
	label string
	get   func(*store.PlayerRecord) *float64
}

var statistics = map[Statistic]statDef{
	Points:                  {"Points (PPG)", func(r *store.PlayerRecord) *float64 { return r.Points }},
	Rebounds:                {"Rebounds (RPG)", func(r *store.PlayerRecord) *float64 { return r.Rebounds }},
	Assists:                 {"Assists (APG)", func(r *store.PlayerRecord) *float64 { return r.Assists }},
	Steals:                  {"Steals (SPG)", func(r *store.PlayerRecord) *float64 { return r.Steals }},
	BlockedShots:            {"Blocked Shots (BPG)", func(r *store.PlayerRecord) *float64 { return r.BlockedShots }},
	Turnovers:               {"Turnovers (TPG)", func(r *store.PlayerRecord) *float64 { return r.Turnovers }},
	FieldGoalsPercentage:    {"FG%", func(r *store.PlayerRecord) *float64 { return r.FieldGoalsPercentage }},
	ThreePointersPercentage: {"3P%", func(r *store.PlayerRecord) *float64 { return r.ThreePointersPercentage }},
	FreeThrowsPercentage:    {"FT%", func(r *store.PlayerRecord) *float64 { return r.FreeThrowsPercentage }},
	PlayerEfficiencyRating:  {"PER (Efficiency)", func(r *store.PlayerRecord) *float64 { return r.PlayerEfficiencyRating }},
	Minutes:                 {"Minutes Per Game (MPG)", func(r *store.PlayerRecord) *float64 { return r.Minutes }},
}

// SortableStatistics is the order the rankings page offers sort keys in
var SortableStatistics = []Statistic{
	Points, Rebounds, Assists, Steals, BlockedShots, PlayerEfficiencyRating,
	FieldGoalsPercentage, ThreePointersPercentage, FreeThrowsPercentage, Minutes,
}

// ParseStatistic maps a field name to its identifier
func ParseStatistic(name string) (Statistic, error) {
	s := Statistic(name)
	if _, ok := statistics[s]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatistic, name)
	}
	return s, nil
}

// Label returns the display label for s
func (s Statistic) Label() string {
	if def, ok := statistics[s]; ok {
		return def.label
	}
	return string(s)
}

// Value reads s from r. ok is false when r is nil, the field is absent,
// or the value is not a finite number. Minutes is the raw season total.
func (s Statistic) Value(r *store.PlayerRecord) (v float64, ok bool) {
	if r == nil {
		return 0, false
	}
	def, known := statistics[s]
	if !known {
		return 0, false
	}
	p := def.get(r)
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}

// roundTo1 rounds half away from zero to one decimal place
func roundTo1(v float64) float64 {
	return math.Round(v*10) / 10
}
