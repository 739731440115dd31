package service

import (
	"github.com/fortuna/prospect/internal/scoring"
	"github.com/fortuna/prospect/internal/store"
)

// StatisticInfo describes one sortable statistic
type StatisticInfo struct {
	Value scoring.Statistic `json:"value"`
	Label string            `json:"label"`
}

// Catalogue lists the choices a client can offer
type Catalogue struct {
	Levels     []store.LevelInfo                   `json:"levels"`
	Statistics []StatisticInfo                     `json:"statistics"`
	Leagues    []store.League                      `json:"leagues"`
	Thresholds map[store.League]scoring.Thresholds `json:"thresholds"`
	DefaultTop int                                 `json:"default_top"`
	MaxTop     int                                 `json:"max_top"`
}

// GetCatalogue returns the competition levels, sortable statistics and
// league eligibility thresholds
func GetCatalogue() Catalogue {
	stats := make([]StatisticInfo, 0, len(scoring.SortableStatistics))
	for _, s := range scoring.SortableStatistics {
		stats = append(stats, StatisticInfo{Value: s, Label: s.Label()})
	}

	thresholds := make(map[store.League]scoring.Thresholds, len(store.Leagues))
	for _, l := range store.Leagues {
		thresholds[l] = scoring.ThresholdsFor(l)
	}

	return Catalogue{
		Levels:     store.CompetitionLevels,
		Statistics: stats,
		Leagues:    store.Leagues,
		Thresholds: thresholds,
		DefaultTop: DefaultCompareTop,
		MaxTop:     MaxCompareTop,
	}
}
