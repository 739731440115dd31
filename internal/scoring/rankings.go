package scoring

import (
	"math"
	"sort"

	"github.com/fortuna/prospect/internal/store"
)

// UserEntry builds the roster entry that represents the user in a ranking.
// Missing numeric stats become 0 so the user always has a position; Games
// falls back to 1. Returns nil when user is nil or has no Points value.
func UserEntry(user *store.PlayerRecord) *store.PlayerRecord {
	if user == nil || user.Points == nil {
		return nil
	}

	entry := user.Clone()
	entry.PlayerID = store.UserPlayerID
	entry.Team = store.UserTeam
	if entry.Name == "" {
		entry.Name = store.UserName
	}

	for _, p := range []**float64{
		&entry.Points, &entry.Rebounds, &entry.Assists, &entry.Steals, &entry.BlockedShots,
		&entry.PlayerEfficiencyRating, &entry.FieldGoalsPercentage,
		&entry.ThreePointersPercentage, &entry.FreeThrowsPercentage, &entry.Minutes,
	} {
		if *p == nil || math.IsNaN(**p) {
			*p = store.Float(0)
		}
	}
	if entry.Games == nil || *entry.Games == 0 {
		entry.Games = store.Int(1)
	}
	return entry
}

// SortRoster returns a copy of roster ordered by stat, highest first. When
// user yields a UserEntry it replaces any existing user record and is
// placed at the front before sorting, so it wins ties. Sorting by Minutes
// uses per-game minutes. Records without a value sort last.
func SortRoster(roster []store.PlayerRecord, user *store.PlayerRecord, stat Statistic) []store.PlayerRecord {
	out := make([]store.PlayerRecord, 0, len(roster)+1)
	if entry := UserEntry(user); entry != nil {
		out = append(out, *entry)
		for i := range roster {
			if !roster[i].IsUser() {
				out = append(out, roster[i])
			}
		}
	} else {
		out = append(out, roster...)
	}

	keys := make([]float64, len(out))
	for i := range out {
		keys[i] = sortKey(&out[i], stat)
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]] > keys[idx[b]]
	})

	sorted := make([]store.PlayerRecord, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

func sortKey(r *store.PlayerRecord, stat Statistic) float64 {
	if stat == Minutes {
		if r.Games == nil || *r.Games <= 0 {
			return 0
		}
		if _, ok := Minutes.Value(r); !ok {
			return math.Inf(-1)
		}
		return r.MinutesPerGame()
	}
	v, ok := stat.Value(r)
	if !ok {
		return math.Inf(-1)
	}
	return v
}

// RankOf returns the 1-based position of the user record in a sorted roster,
// or 0 when it is not present.
func RankOf(sorted []store.PlayerRecord) int {
	for i := range sorted {
		if sorted[i].IsUser() {
			return i + 1
		}
	}
	return 0
}
