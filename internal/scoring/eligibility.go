package scoring

import "github.com/fortuna/prospect/internal/store"

// Thresholds is the minimum sample a record needs to count as a benchmark
type Thresholds struct {
	MinGames   int     `json:"min_games"`
	MinMinutes float64 `json:"min_minutes"`
}

var (
	NBAThresholds  = Thresholds{MinGames: 20, MinMinutes: 200}
	NCAAThresholds = Thresholds{MinGames: 10, MinMinutes: 150}
)

// ThresholdsFor returns the eligibility thresholds for a league
func ThresholdsFor(l store.League) Thresholds {
	if l == store.LeagueNCAA {
		return NCAAThresholds
	}
	return NBAThresholds
}

// Filter keeps records with Games >= minGames and Minutes >= minMinutes,
// in input order. Records missing either value are dropped. When
// excludeUser is set the synthetic user record is dropped too.
func Filter(roster []store.PlayerRecord, minGames int, minMinutes float64, excludeUser bool) []store.PlayerRecord {
	out := make([]store.PlayerRecord, 0, len(roster))
	for i := range roster {
		r := &roster[i]
		if r.Games == nil || r.Minutes == nil {
			continue
		}
		if *r.Games < minGames || *r.Minutes < minMinutes {
			continue
		}
		if excludeUser && r.IsUser() {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// Eligible applies the league thresholds to roster
func Eligible(roster []store.PlayerRecord, league store.League, excludeUser bool) []store.PlayerRecord {
	t := ThresholdsFor(league)
	return Filter(roster, t.MinGames, t.MinMinutes, excludeUser)
}
