// Package profile turns raw form input into a validated user record.
//
// Input arrives as loosely typed JSON (strings, numbers, blanks) from the
// REST and WebSocket surfaces. Parse checks every field against its range,
// reports all failures together, and fills in the derived values the
// scoring code expects: shooting percentages, a simple efficiency rating
// and the synthetic user identity.
package profile

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/fortuna/prospect/internal/store"
)

// Field holds one raw form value. It accepts a JSON string, number or null.
type Field string

// UnmarshalJSON keeps the raw text of numbers and the contents of strings
func (f *Field) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*f = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Field(s)
	default:
		*f = Field(raw)
	}
	return nil
}

// Blank reports whether the field was left empty
func (f Field) Blank() bool {
	return strings.TrimSpace(string(f)) == ""
}

// Input is the profile form as submitted by a client
type Input struct {
	Name string `json:"name"`

	Points       Field `json:"points"`
	Rebounds     Field `json:"rebounds"`
	Assists      Field `json:"assists"`
	Steals       Field `json:"steals"`
	BlockedShots Field `json:"blocked_shots"`
	Turnovers    Field `json:"turnovers"`

	FieldGoalsMade         Field `json:"field_goals_made"`
	FieldGoalsAttempted    Field `json:"field_goals_attempted"`
	ThreePointersMade      Field `json:"three_pointers_made"`
	ThreePointersAttempted Field `json:"three_pointers_attempted"`
	FreeThrowsMade         Field `json:"free_throws_made"`
	FreeThrowsAttempted    Field `json:"free_throws_attempted"`

	FieldGoalsPercentage    Field `json:"field_goals_percentage"`
	ThreePointersPercentage Field `json:"three_pointers_percentage"`
	FreeThrowsPercentage    Field `json:"free_throws_percentage"`

	Age              Field  `json:"age"`
	CompetitionLevel string `json:"competition_level"`
}

// ValidationError collects every failing field, keyed by its JSON name
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return "invalid profile: " + strings.Join(msgs, " ")
}

type numberRule struct {
	key      string
	label    string
	required bool
	min, max float64
	value    func(*Input) Field
	target   func(*store.PlayerRecord) **float64
}

var numberRules = []numberRule{
	{"points", "Points Per Game (PPG)", true, 0, 70,
		func(in *Input) Field { return in.Points },
		func(r *store.PlayerRecord) **float64 { return &r.Points }},
	{"rebounds", "Rebounds Per Game (RPG)", true, 0, 30,
		func(in *Input) Field { return in.Rebounds },
		func(r *store.PlayerRecord) **float64 { return &r.Rebounds }},
	{"assists", "Assists Per Game (APG)", true, 0, 20,
		func(in *Input) Field { return in.Assists },
		func(r *store.PlayerRecord) **float64 { return &r.Assists }},
	{"steals", "Steals Per Game (SPG)", true, 0, 10,
		func(in *Input) Field { return in.Steals },
		func(r *store.PlayerRecord) **float64 { return &r.Steals }},
	{"blocked_shots", "Blocks Per Game (BPG)", true, 0, 10,
		func(in *Input) Field { return in.BlockedShots },
		func(r *store.PlayerRecord) **float64 { return &r.BlockedShots }},
	{"turnovers", "Turnovers Per Game (TPG)", true, 0, 10,
		func(in *Input) Field { return in.Turnovers },
		func(r *store.PlayerRecord) **float64 { return &r.Turnovers }},
	{"field_goals_made", "Field Goals Made (FGM)", false, 0, 30,
		func(in *Input) Field { return in.FieldGoalsMade },
		func(r *store.PlayerRecord) **float64 { return &r.FieldGoalsMade }},
	{"field_goals_attempted", "Field Goals Attempted (FGA)", false, 0, 50,
		func(in *Input) Field { return in.FieldGoalsAttempted },
		func(r *store.PlayerRecord) **float64 { return &r.FieldGoalsAttempted }},
	{"three_pointers_made", "3-Pointers Made (3PM)", false, 0, 15,
		func(in *Input) Field { return in.ThreePointersMade },
		func(r *store.PlayerRecord) **float64 { return &r.ThreePointersMade }},
	{"three_pointers_attempted", "3-Pointers Attempted (3PA)", false, 0, 25,
		func(in *Input) Field { return in.ThreePointersAttempted },
		func(r *store.PlayerRecord) **float64 { return &r.ThreePointersAttempted }},
	{"free_throws_made", "Free Throws Made (FTM)", false, 0, 25,
		func(in *Input) Field { return in.FreeThrowsMade },
		func(r *store.PlayerRecord) **float64 { return &r.FreeThrowsMade }},
	{"free_throws_attempted", "Free Throws Attempted (FTA)", false, 0, 30,
		func(in *Input) Field { return in.FreeThrowsAttempted },
		func(r *store.PlayerRecord) **float64 { return &r.FreeThrowsAttempted }},
	{"field_goals_percentage", "Field Goal % (FG%)", false, 0, 100,
		func(in *Input) Field { return in.FieldGoalsPercentage },
		func(r *store.PlayerRecord) **float64 { return &r.FieldGoalsPercentage }},
	{"three_pointers_percentage", "3-Point % (3P%)", false, 0, 100,
		func(in *Input) Field { return in.ThreePointersPercentage },
		func(r *store.PlayerRecord) **float64 { return &r.ThreePointersPercentage }},
	{"free_throws_percentage", "Free Throw % (FT%)", false, 0, 100,
		func(in *Input) Field { return in.FreeThrowsPercentage },
		func(r *store.PlayerRecord) **float64 { return &r.FreeThrowsPercentage }},
}

const (
	ageKey   = "age"
	ageLabel = "Your Age"
	minAge   = 12
	maxAge   = 45

	levelKey   = "competition_level"
	levelLabel = "Current Competition Level"
)

// Parse validates in and returns the user record the scoring code works
// with. On failure the error is a *ValidationError naming every bad field.
func Parse(in Input) (*store.PlayerRecord, error) {
	failures := make(map[string]string)
	rec := &store.PlayerRecord{}

	for _, rule := range numberRules {
		v, msg := checkNumber(rule.value(&in), rule.label, rule.required, rule.min, rule.max)
		if msg != "" {
			failures[rule.key] = msg
			continue
		}
		if v != nil {
			*rule.target(rec) = v
		}
	}

	age, msg := checkNumber(in.Age, ageLabel, true, minAge, maxAge)
	switch {
	case msg != "":
		failures[ageKey] = msg
	case *age != math.Trunc(*age):
		failures[ageKey] = fmt.Sprintf("%s must be a whole number.", ageLabel)
	default:
		rec.Age = int(*age)
	}

	level := store.CompetitionLevel(strings.TrimSpace(in.CompetitionLevel))
	switch {
	case level == "":
		failures[levelKey] = fmt.Sprintf("%s is required.", levelLabel)
	case !level.Known():
		failures[levelKey] = fmt.Sprintf("%s must be one of the listed levels.", levelLabel)
	default:
		rec.CompetitionLevel = level
	}

	if len(failures) > 0 {
		return nil, &ValidationError{Fields: failures}
	}

	derive(rec)

	rec.Name = strings.TrimSpace(in.Name)
	if rec.Name == "" {
		rec.Name = store.UserName
	}
	rec.PlayerID = store.UserPlayerID
	rec.Team = store.UserTeam
	rec.Games = store.Int(store.UserGames)
	rec.Minutes = store.Float(store.UserMinutes)
	return rec, nil
}

// Decode parses a JSON profile form and validates it
func Decode(data []byte) (*store.PlayerRecord, error) {
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return Parse(in)
}

// checkNumber returns the parsed value (nil when blank and optional) or a
// message describing why the field is invalid.
func checkNumber(f Field, label string, required bool, lo, hi float64) (*float64, string) {
	if f.Blank() {
		if required {
			return nil, fmt.Sprintf("%s is required.", label)
		}
		return nil, ""
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Sprintf("%s must be a number.", label)
	}
	if v < lo {
		return nil, fmt.Sprintf("%s must be at least %s.", label, formatBound(lo))
	}
	if v > hi {
		return nil, fmt.Sprintf("%s must be no more than %s.", label, formatBound(hi))
	}
	return &v, ""
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// derive fills shooting percentages from made/attempted pairs and computes
// a simple efficiency rating.
func derive(r *store.PlayerRecord) {
	r.FieldGoalsPercentage = shootingPercentage(r.FieldGoalsPercentage, r.FieldGoalsMade, r.FieldGoalsAttempted)
	r.ThreePointersPercentage = shootingPercentage(r.ThreePointersPercentage, r.ThreePointersMade, r.ThreePointersAttempted)
	r.FreeThrowsPercentage = shootingPercentage(r.FreeThrowsPercentage, r.FreeThrowsMade, r.FreeThrowsAttempted)

	if r.Points != nil && (r.PlayerEfficiencyRating == nil || *r.PlayerEfficiencyRating == 0) {
		per := val(r.Points) + val(r.Rebounds) + val(r.Assists) + val(r.Steals) + val(r.BlockedShots) -
			(val(r.FieldGoalsAttempted) - val(r.FieldGoalsMade)) -
			(val(r.FreeThrowsAttempted) - val(r.FreeThrowsMade)) -
			val(r.Turnovers)
		r.PlayerEfficiencyRating = store.Float(round1(per))
	}
}

func shootingPercentage(pct, made, attempted *float64) *float64 {
	if pct != nil || made == nil || attempted == nil || *attempted <= 0 {
		return pct
	}
	return store.Float(round1(*made / *attempted * 100))
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
