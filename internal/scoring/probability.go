package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/fortuna/prospect/internal/store"
)

// The estimator is a hand-tuned heuristic for motivation, not a calibrated
// model. The constants below are deliberate product choices.
const (
	maxScore         = 100.0
	levelPoints      = 25.0
	statPoints       = 50.0
	minBenchmarkPool = 5

	benchmarkMinGames   = 10
	benchmarkMinMinutes = 150.0
)

// benchmarkStats are compared against the NCAA pool, each worth an equal
// share of statPoints.
var benchmarkStats = []Statistic{
	Points, Rebounds, Assists, PlayerEfficiencyRating, FieldGoalsPercentage, ThreePointersPercentage,
}

// Estimate is the outcome of the probability heuristic
type Estimate struct {
	// CollegiateProbability is the chance of playing NCAA D1, in percent
	CollegiateProbability float64 `json:"ncaa"`
	// ProfessionalProbability is the chance of reaching the NBA, in percent
	ProfessionalProbability float64 `json:"nba"`
	// CompositeScore is the 0-100 intermediate both probabilities derive from
	CompositeScore float64 `json:"composite_score"`
}

// EstimateProbability scores user against the benchmark rosters.
// Returns nil when there is no user or no benchmark data at all.
func EstimateProbability(user *store.PlayerRecord, nba, ncaa []store.PlayerRecord) *Estimate {
	if user == nil || (len(nba) == 0 && len(ncaa) == 0) {
		return nil
	}

	score := user.CompetitionLevel.Weight() * levelPoints
	score += ageAdjustment(user.Age)
	score += statContribution(user, benchmarkPool(ncaa))
	score = math.Max(0, math.Min(score, maxScore))

	return &Estimate{
		CollegiateProbability:   roundTo1(collegiateProbability(user.CompetitionLevel, score)),
		ProfessionalProbability: roundTo1(professionalProbability(user.CompetitionLevel, score)),
		CompositeScore:          roundTo1(score),
	}
}

func ageAdjustment(age int) float64 {
	switch {
	case age >= 16 && age <= 23:
		return 10
	case age > 28 && age <= 32:
		return -5
	case age > 32:
		return -10
	}
	return 0
}

// benchmarkPool is stricter than the league thresholds: both bounds are exclusive.
func benchmarkPool(ncaa []store.PlayerRecord) []store.PlayerRecord {
	pool := make([]store.PlayerRecord, 0, len(ncaa))
	for i := range ncaa {
		r := &ncaa[i]
		if r.IsUser() || r.Games == nil || r.Minutes == nil {
			continue
		}
		if *r.Games > benchmarkMinGames && *r.Minutes > benchmarkMinMinutes {
			pool = append(pool, *r)
		}
	}
	return pool
}

func statContribution(user *store.PlayerRecord, pool []store.PlayerRecord) float64 {
	if len(pool) <= minBenchmarkPool {
		return perFallback(user)
	}

	share := statPoints / float64(len(benchmarkStats))
	var total float64
	for _, stat := range benchmarkStats {
		userValue, ok := stat.Value(user)
		if !ok {
			continue
		}
		values := make([]float64, 0, len(pool))
		for i := range pool {
			if v, ok := stat.Value(&pool[i]); ok {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			continue
		}
		total += PercentileRank(values, userValue) * share
	}
	return total
}

// perFallback is used when the benchmark pool is too small to rank against
func perFallback(user *store.PlayerRecord) float64 {
	per, ok := PlayerEfficiencyRating.Value(user)
	if !ok {
		return 0
	}
	var bonus float64
	if per > 15 {
		bonus += 10
	}
	if per > 20 {
		bonus += 10
	}
	return bonus
}

// PercentileRank returns the fraction of values that are <= v, in [0,1].
// values is sorted in place; an empty slice ranks 0.
func PercentileRank(values []float64, v float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sort.Float64s(values)
	n := sort.Search(len(values), func(i int) bool { return values[i] > v })
	return float64(n) / float64(len(values))
}

func collegiateProbability(level store.CompetitionLevel, score float64) float64 {
	l := string(level)
	var p float64
	switch {
	case strings.Contains(l, "college_d1"):
		p = math.Min(90, score*0.8+20)
	case strings.Contains(l, "college_d2"), strings.Contains(l, "college_d3"), strings.Contains(l, "juco_elite"):
		p = math.Min(80, score*0.9)
	case strings.Contains(l, "high_school_varsity_elite"):
		p = math.Min(70, score*0.8)
	default:
		p = math.Min(60, score*0.7)
	}
	return math.Max(1, p)
}

func professionalProbability(level store.CompetitionLevel, score float64) float64 {
	l := string(level)
	var p float64
	switch {
	case level == store.LevelNBAGLeague || level == store.LevelNBAProspect || strings.Contains(l, "pro_overseas_high"):
		p = math.Min(50, (score-40)*0.8)
	case strings.Contains(l, "college_d1_high") && score > 75:
		p = math.Min(30, (score-60)*0.7)
	case score > 85:
		p = math.Min(15, (score-75)*0.5)
	}
	return math.Max(0, p)
}
