package scoring

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/prospect/internal/store"
)

// ncaaPool returns ten eligible NCAA records with evenly spaced stats:
// Points 10..28, Rebounds 1..10, Assists 0.5..5, PER 10..19, FG% 40..49, 3P% 30..39.
func ncaaPool() []store.PlayerRecord {
	pool := make([]store.PlayerRecord, 0, 10)
	for i := 0; i < 10; i++ {
		f := float64(i)
		pool = append(pool, store.PlayerRecord{
			PlayerID:                fakeID(i),
			Name:                    "Benchmark",
			Team:                    "STATE",
			League:                  store.LeagueNCAA,
			Points:                  store.Float(10 + 2*f),
			Rebounds:                store.Float(1 + f),
			Assists:                 store.Float(0.5 * (f + 1)),
			PlayerEfficiencyRating:  store.Float(10 + f),
			FieldGoalsPercentage:    store.Float(40 + f),
			ThreePointersPercentage: store.Float(30 + f),
			Games:                   store.Int(30),
			Minutes:                 store.Float(900),
		})
	}
	return pool
}

func fakeID(i int) string {
	return string(rune('a' + i))
}

func TestPercentileRank(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		v      float64
		want   float64
	}{
		{"middle of sorted pool", []float64{10, 20, 30, 40, 50}, 30, 0.6},
		{"unsorted input", []float64{50, 10, 40, 30, 20}, 30, 0.6},
		{"below every value", []float64{10, 20, 30}, 5, 0},
		{"above every value", []float64{10, 20, 30}, 31, 1},
		{"ties count as at or below", []float64{10, 10, 10, 20}, 10, 0.75},
		{"empty pool", nil, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PercentileRank(tt.values, tt.v))
		})
	}
}

func TestEstimateProbabilityRequiresInputs(t *testing.T) {
	user := &store.PlayerRecord{CompetitionLevel: store.LevelCollegeD2, Age: 20}

	assert.Nil(t, EstimateProbability(nil, ncaaPool(), ncaaPool()))
	assert.Nil(t, EstimateProbability(user, nil, nil))
	assert.Nil(t, EstimateProbability(user, []store.PlayerRecord{}, []store.PlayerRecord{}))

	// NBA data alone is enough to compute, through the PER fallback
	assert.NotNil(t, EstimateProbability(user, []store.PlayerRecord{{PlayerID: "1"}}, nil))
}

func TestAgeAdjustmentBoundaries(t *testing.T) {
	tests := []struct {
		age  int
		want float64
	}{
		{15, 0},
		{16, 10},
		{23, 10},
		{24, 0},
		{28, 0},
		{29, -5},
		{32, -5},
		{33, -10},
		{45, -10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ageAdjustment(tt.age), "age %d", tt.age)
	}
}

func TestEstimateProbabilityEndToEnd(t *testing.T) {
	user := &store.PlayerRecord{
		PlayerID:                store.UserPlayerID,
		Team:                    store.UserTeam,
		CompetitionLevel:        store.LevelCollegeD1Mid,
		Age:                     20,
		Points:                  store.Float(18),
		Rebounds:                store.Float(5),
		Assists:                 store.Float(4),
		PlayerEfficiencyRating:  store.Float(19),
		FieldGoalsPercentage:    store.Float(48),
		ThreePointersPercentage: store.Float(35),
	}

	// The user record inside the roster must not join the benchmark pool
	ncaa := append(ncaaPool(), *user.Clone())
	ncaa[len(ncaa)-1].Games = store.Int(40)
	ncaa[len(ncaa)-1].Minutes = store.Float(1200)

	got := EstimateProbability(user, nil, ncaa)
	require.NotNil(t, got)

	// level 0.55*25 = 13.75, age +10, percentiles
	// 0.5 + 0.5 + 0.8 + 1.0 + 0.9 + 0.6 = 4.3 -> 4.3*50/6 = 35.833
	// composite 59.583; "college_d1_mid" contains "college_d1"
	assert.Equal(t, 59.6, got.CompositeScore)
	assert.Equal(t, 67.7, got.CollegiateProbability)
	assert.Equal(t, 0.0, got.ProfessionalProbability)
}

func TestEstimateProbabilitySkipsMissingStats(t *testing.T) {
	pool := ncaaPool()
	for i := range pool {
		pool[i].ThreePointersPercentage = nil
	}
	user := &store.PlayerRecord{
		CompetitionLevel: store.LevelRecreational,
		Age:              25,
		Points:           store.Float(100),
		// no rebounds, assists or shooting
		ThreePointersPercentage: store.Float(99),
	}

	got := EstimateProbability(user, nil, pool)
	require.NotNil(t, got)
	// 0.02*25 = 0.5 plus points percentile 1.0 * 50/6; 3P% has no pool values
	assert.Equal(t, 8.8, got.CompositeScore)
}

func TestEstimateProbabilityPERFallback(t *testing.T) {
	small := ncaaPool()[:5]

	tests := []struct {
		name          string
		per           *float64
		wantComposite float64
	}{
		{"no PER", nil, 15},
		{"PER at 15 earns nothing", store.Float(15), 15},
		{"PER above 15", store.Float(16), 25},
		{"PER above 20", store.Float(21), 35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &store.PlayerRecord{
				CompetitionLevel:       store.LevelNBAGLeague,
				Age:                    30,
				PlayerEfficiencyRating: tt.per,
			}
			got := EstimateProbability(user, nil, small)
			require.NotNil(t, got)
			// g-league 0.8*25 = 20, age 30 -> -5
			assert.Equal(t, tt.wantComposite, got.CompositeScore)
			assert.GreaterOrEqual(t, got.ProfessionalProbability, 0.0)
		})
	}
}

func TestEstimateProbabilityClampsAndFloors(t *testing.T) {
	user := &store.PlayerRecord{CompetitionLevel: store.LevelRecreational, Age: 40}
	got := EstimateProbability(user, nil, ncaaPool())
	require.NotNil(t, got)

	// 0.5 - 10 is below zero
	assert.Equal(t, 0.0, got.CompositeScore)
	assert.Equal(t, 1.0, got.CollegiateProbability)
	assert.Equal(t, 0.0, got.ProfessionalProbability)
}

func TestEstimateProbabilityProfessionalLevels(t *testing.T) {
	top := &store.PlayerRecord{
		Age:                     20,
		Points:                  store.Float(40),
		Rebounds:                store.Float(20),
		Assists:                 store.Float(10),
		PlayerEfficiencyRating:  store.Float(30),
		FieldGoalsPercentage:    store.Float(60),
		ThreePointersPercentage: store.Float(50),
	}

	gLeague := top.Clone()
	gLeague.CompetitionLevel = store.LevelNBAGLeague
	got := EstimateProbability(gLeague, nil, ncaaPool())
	require.NotNil(t, got)
	// 20 + 10 + 50
	assert.Equal(t, 80.0, got.CompositeScore)
	assert.Equal(t, 32.0, got.ProfessionalProbability)
	assert.Equal(t, 56.0, got.CollegiateProbability)

	d1High := top.Clone()
	d1High.CompetitionLevel = store.LevelCollegeD1High
	got = EstimateProbability(d1High, nil, ncaaPool())
	require.NotNil(t, got)
	// 16.25 + 10 + 50 = 76.25 > 75
	assert.InDelta(t, 76.25, got.CompositeScore, 0.06)
	assert.InDelta(t, 11.375, got.ProfessionalProbability, 0.08)
	assert.Equal(t, 81.0, got.CollegiateProbability)
}

func TestCollegiateProbabilityBranches(t *testing.T) {
	tests := []struct {
		level store.CompetitionLevel
		score float64
		want  float64
	}{
		{store.LevelCollegeD1Low, 50, 60},
		{store.LevelCollegeD1High, 100, 90},
		{store.LevelCollegeD2, 50, 45},
		{store.LevelCollegeD3, 100, 80},
		{store.LevelCollegeJucoElite, 40, 36},
		{store.LevelHighSchoolVarsityElite, 50, 40},
		{store.LevelHighSchoolVarsityElite, 100, 70},
		{store.LevelHighSchoolVarsity, 50, 35},
		{store.LevelHighSchoolVarsity, 100, 60},
		{store.CompetitionLevel("unknown"), 0, 1},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, collegiateProbability(tt.level, tt.score), 1e-9, "%s at %v", tt.level, tt.score)
	}
}

func TestProfessionalProbabilityBranches(t *testing.T) {
	tests := []struct {
		level store.CompetitionLevel
		score float64
		want  float64
	}{
		{store.LevelNBAProspect, 100, 48},
		{store.LevelNBAGLeague, 30, 0},
		{store.LevelProOverseasHigh, 90, 40},
		{store.LevelProOverseasMid, 90, 7.5},
		{store.LevelCollegeD1High, 75, 0},
		{store.LevelCollegeD1High, 100, 28},
		{store.LevelCollegeD1Mid, 85, 0},
		{store.LevelCollegeD1Mid, 100, 12.5},
		{store.LevelRecreational, 100, 12.5},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, professionalProbability(tt.level, tt.score), 1e-9, "%s at %v", tt.level, tt.score)
	}
}

func TestEstimateProbabilityBoundsOnRandomInputs(t *testing.T) {
	faker := gofakeit.New(42)
	pool := randomRoster(faker, 40, store.LeagueNCAA)

	for i := 0; i < 200; i++ {
		level := store.CompetitionLevels[faker.IntRange(0, len(store.CompetitionLevels)-1)].Level
		user := &store.PlayerRecord{
			CompetitionLevel:        level,
			Age:                     faker.IntRange(12, 45),
			Points:                  store.Float(faker.Float64Range(0, 70)),
			Rebounds:                store.Float(faker.Float64Range(0, 30)),
			Assists:                 store.Float(faker.Float64Range(0, 20)),
			PlayerEfficiencyRating:  store.Float(faker.Float64Range(-10, 60)),
			FieldGoalsPercentage:    store.Float(faker.Float64Range(0, 100)),
			ThreePointersPercentage: store.Float(faker.Float64Range(0, 100)),
		}

		got := EstimateProbability(user, nil, pool)
		require.NotNil(t, got)
		assert.GreaterOrEqual(t, got.CompositeScore, 0.0)
		assert.LessOrEqual(t, got.CompositeScore, 100.0)
		assert.GreaterOrEqual(t, got.CollegiateProbability, 1.0)
		assert.LessOrEqual(t, got.CollegiateProbability, 90.0)
		assert.GreaterOrEqual(t, got.ProfessionalProbability, 0.0)
		assert.LessOrEqual(t, got.ProfessionalProbability, 50.0)

		again := EstimateProbability(user, nil, pool)
		assert.Equal(t, got, again)
	}
}

// randomRoster builds n records with every stat set. Games and minutes
// straddle the league thresholds so some records are ineligible.
func randomRoster(faker *gofakeit.Faker, n int, league store.League) []store.PlayerRecord {
	roster := make([]store.PlayerRecord, 0, n)
	for i := 0; i < n; i++ {
		roster = append(roster, store.PlayerRecord{
			PlayerID:                faker.UUID(),
			Name:                    faker.Name(),
			Team:                    faker.Company(),
			League:                  league,
			Points:                  store.Float(faker.Float64Range(0, 35)),
			Rebounds:                store.Float(faker.Float64Range(0, 15)),
			Assists:                 store.Float(faker.Float64Range(0, 12)),
			Steals:                  store.Float(faker.Float64Range(0, 3)),
			BlockedShots:            store.Float(faker.Float64Range(0, 3)),
			Turnovers:               store.Float(faker.Float64Range(0, 5)),
			FieldGoalsPercentage:    store.Float(faker.Float64Range(30, 65)),
			ThreePointersPercentage: store.Float(faker.Float64Range(0, 50)),
			FreeThrowsPercentage:    store.Float(faker.Float64Range(40, 95)),
			PlayerEfficiencyRating:  store.Float(faker.Float64Range(0, 35)),
			Games:                   store.Int(faker.IntRange(0, 40)),
			Minutes:                 store.Float(faker.Float64Range(0, 1400)),
		})
	}
	return roster
}

func TestUserSentinelIsThePlayerID(t *testing.T) {
	roster := ncaaPool()
	roster[0].Team = store.UserTeam
	roster[1].PlayerID = store.UserPlayerID

	pool := benchmarkPool(roster)
	filtered := Filter(roster, 0, 0, true)

	assert.Len(t, pool, len(roster)-1)
	assert.Len(t, filtered, len(roster)-1)
	assert.Equal(t, roster[0].PlayerID, pool[0].PlayerID)
	assert.Equal(t, roster[0].PlayerID, filtered[0].PlayerID)
	for i := range pool {
		assert.NotEqual(t, store.UserPlayerID, pool[i].PlayerID)
		assert.NotEqual(t, store.UserPlayerID, filtered[i].PlayerID)
	}
}
