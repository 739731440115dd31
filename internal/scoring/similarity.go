package scoring

import (
	"math"
	"sort"

	"github.com/fortuna/prospect/internal/store"
)

// InvalidSimilarity marks a comparison that could not be made because a
// record was missing. RankSimilar drops these entries.
var InvalidSimilarity = math.Inf(-1)

type similarityWeight struct {
	stat   Statistic
	weight float64
	// norm scales a raw difference to roughly [0,1]
	norm float64
}

// Turnovers carry a negative weight. The contribution formula is the same
// for every stat, so a matching turnover rate lowers the score. Kept as is.
var similarityWeights = []similarityWeight{
	{Points, 1.5, 30},
	{Rebounds, 1.2, 15},
	{Assists, 1.3, 10},
	{Steals, 0.8, 3},
	{BlockedShots, 0.8, 3},
	{FieldGoalsPercentage, 1.5, 30},
	{ThreePointersPercentage, 1.3, 30},
	{FreeThrowsPercentage, 0.7, 30},
	{PlayerEfficiencyRating, 2.0, 20},
	{Turnovers, -0.5, 5},
	{Minutes, 0.5, 20},
}

// Match pairs a roster record with its similarity to the user
type Match struct {
	Player          store.PlayerRecord `json:"player"`
	SimilarityScore float64            `json:"similarity_score"`
}

// Similarity scores how closely candidate's stat line matches user's, as a
// percentage of the weight applied. Only stats present on both records
// count. Returns 0 when nothing was comparable and InvalidSimilarity when
// either record is nil.
//
// With every stat present the score lies in [-0.5/12.1, 11.6/12.1]*100;
// over arbitrary subsets of stats it lies in [-100, 100].
func Similarity(user, candidate *store.PlayerRecord) float64 {
	if user == nil || candidate == nil {
		return InvalidSimilarity
	}

	var sum, totalWeight float64
	for _, w := range similarityWeights {
		u, ok := w.stat.Value(user)
		if !ok {
			continue
		}
		c, ok := w.stat.Value(candidate)
		if !ok {
			continue
		}
		normalized := math.Abs(u-c) / w.norm
		sum += (1 - math.Min(normalized, 1)) * w.weight
		totalWeight += math.Abs(w.weight)
	}

	if totalWeight == 0 {
		return 0
	}
	return sum / totalWeight * 100
}

// RankSimilar scores every record in pool against user and returns the
// topN best matches, most similar first.
func RankSimilar(user *store.PlayerRecord, pool []store.PlayerRecord, topN int) []Match {
	if user == nil || topN <= 0 || len(pool) == 0 {
		return []Match{}
	}

	matches := make([]Match, 0, len(pool))
	for i := range pool {
		score := Similarity(user, &pool[i])
		if math.IsInf(score, -1) {
			continue
		}
		matches = append(matches, Match{Player: pool[i], SimilarityScore: score})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].SimilarityScore > matches[j].SimilarityScore
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}
