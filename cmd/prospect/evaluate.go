package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fortuna/prospect/internal/ingest"
	"github.com/fortuna/prospect/internal/profile"
	"github.com/fortuna/prospect/internal/scheduler"
	"github.com/fortuna/prospect/internal/service"
	"github.com/fortuna/prospect/internal/store"
)

var (
	nbaFile  string
	ncaaFile string
	topN     int
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <profile.json>",
	Short: "Score a profile file and print the estimate and closest matches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEvaluate(cmd.Context(), args[0])
	},
}

func init() {
	evaluateCmd.Flags().StringVar(&nbaFile, "nba-file", "", "read the NBA roster from a saved JSON file instead of the feed")
	evaluateCmd.Flags().StringVar(&ncaaFile, "ncaa-file", "", "read the NCAA roster from a saved JSON file instead of the feed")
	evaluateCmd.Flags().IntVar(&topN, "top", service.DefaultCompareTop, "number of similar players per league")
	rootCmd.AddCommand(evaluateCmd)
}

type evaluation struct {
	*service.ProbabilityResult
	Comparisons map[store.League]*service.ComparisonResult `json:"comparisons"`
	Rosters     store.RosterStatus                          `json:"rosters"`
}

func runEvaluate(ctx context.Context, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read profile: %w", err)
	}
	user, err := profile.Decode(data)
	if err != nil {
		return err
	}

	var fetcher ingest.Fetcher = newFeedClient(cfg)
	if nbaFile != "" || ncaaFile != "" {
		fetcher = ingest.FileFetcher{store.LeagueNBA: nbaFile, store.LeagueNCAA: ncaaFile}
	}

	rosters := store.NewRosterStore()
	schedulerConfig := scheduler.DefaultConfig()
	schedulerConfig.MaxRetries = 1
	sched := scheduler.NewOrchestrator(ingest.NewRosterLoader(fetcher, nil, nil, nil), rosters, nil, schedulerConfig)
	snap := sched.Refresh(ctx, true)

	svc := service.NewProspectService(rosters, nil, nil)
	out := evaluation{
		ProbabilityResult: svc.Probability(ctx, user),
		Comparisons:       map[store.League]*service.ComparisonResult{},
		Rosters:           snap.Status(),
	}
	for _, league := range store.Leagues {
		res, err := svc.Compare(ctx, user, league, topN)
		if err != nil {
			fmt.Fprintf(os.Stderr, "compare %s: %v\n", league, err)
			continue
		}
		out.Comparisons[league] = res
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
