package store

// CompetitionLevel is the skill tier the user currently plays at
type CompetitionLevel string

const (
	LevelRecreational           CompetitionLevel = "recreational"
	LevelHighSchoolJV           CompetitionLevel = "high_school_jv"
	LevelHighSchoolVarsity      CompetitionLevel = "high_school_varsity"
	LevelHighSchoolVarsityElite CompetitionLevel = "high_school_varsity_elite"
	LevelCollegeClub            CompetitionLevel = "college_club"
	LevelCollegeJucoElite       CompetitionLevel = "college_juco_elite"
	LevelCollegeD3              CompetitionLevel = "college_d3"
	LevelCollegeD2              CompetitionLevel = "college_d2"
	LevelCollegeD1Low           CompetitionLevel = "college_d1_low"
	LevelCollegeD1Mid           CompetitionLevel = "college_d1_mid"
	LevelCollegeD1High          CompetitionLevel = "college_d1_high"
	LevelProOverseasLow         CompetitionLevel = "pro_overseas_low"
	LevelProOverseasMid         CompetitionLevel = "pro_overseas_mid"
	LevelProOverseasHigh        CompetitionLevel = "pro_overseas_high"
	LevelNBAGLeague             CompetitionLevel = "nba_g_league"
	LevelNBAProspect            CompetitionLevel = "nba_prospect"
)

// LevelInfo describes one selectable competition level
type LevelInfo struct {
	Level CompetitionLevel `json:"value"`
	Label string           `json:"label"`
	// Weight is the heuristic tier weight in [0,1] used by the probability estimator
	Weight float64 `json:"weight"`
}

// CompetitionLevels is ordered the way the input form presents them
var CompetitionLevels = []LevelInfo{
	{LevelRecreational, "Recreational League", 0.02},
	{LevelHighSchoolJV, "High School JV", 0.05},
	{LevelHighSchoolVarsity, "High School Varsity (Average)", 0.1},
	{LevelHighSchoolVarsityElite, "High School Varsity (Elite/Top AAU)", 0.2},
	{LevelCollegeClub, "College Club Ball / JUCO (Lower Tier)", 0.15},
	{LevelCollegeJucoElite, "JUCO (Elite D1 Caliber)", 0.3},
	{LevelCollegeD3, "NCAA Division 3", 0.25},
	{LevelCollegeD2, "NCAA Division 2", 0.35},
	{LevelCollegeD1Low, "NCAA Division 1 (Low-Major)", 0.45},
	{LevelCollegeD1Mid, "NCAA Division 1 (Mid-Major)", 0.55},
	{LevelCollegeD1High, "NCAA Division 1 (High-Major/Power 5)", 0.65},
	{LevelProOverseasLow, "Professional (Overseas - Lower Tier)", 0.5},
	{LevelProOverseasMid, "Professional (Overseas - Mid Tier)", 0.6},
	{LevelProOverseasHigh, "Professional (Overseas - Top Tier/EuroLeague)", 0.75},
	{LevelNBAGLeague, "NBA G-League", 0.8},
	{LevelNBAProspect, "NBA Prospect (Not yet drafted but on radar)", 0.85},
}

var levelIndex = func() map[CompetitionLevel]LevelInfo {
	m := make(map[CompetitionLevel]LevelInfo, len(CompetitionLevels))
	for _, l := range CompetitionLevels {
		m[l.Level] = l
	}
	return m
}()

// Known reports whether l is one of the enumerated levels
func (l CompetitionLevel) Known() bool {
	_, ok := levelIndex[l]
	return ok
}

// Weight returns the tier weight, 0 for unrecognized levels
func (l CompetitionLevel) Weight() float64 {
	return levelIndex[l].Weight
}

// Label returns the display label, or the raw value when unknown
func (l CompetitionLevel) Label() string {
	if info, ok := levelIndex[l]; ok {
		return info.Label
	}
	return string(l)
}
