package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fortuna/prospect/internal/config"
	"github.com/fortuna/prospect/internal/ingest/sportsdata"
	"github.com/fortuna/prospect/internal/store"
)

const (
	serviceName    = "prospect"
	serviceVersion = "1.0.0"
)

var rootCmd = &cobra.Command{
	Use:     serviceName,
	Short:   "Basketball prospect evaluation service",
	Version: serviceVersion,
	Long: `Scores a player's per-game statistics against current NBA and NCAA
rosters, estimating their chances of playing at each level and listing
the professionals and collegians with the most similar stat lines.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		cfg.ApplyLogLevel()
	},
}

// cfg is loaded once before any subcommand runs
var cfg config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

// newFeedClient builds the SportsDataIO client from configuration
func newFeedClient(c config.Config) *sportsdata.Client {
	feeds := map[store.League]sportsdata.Feed{
		store.LeagueNBA:  {Path: c.NBAFeedPath, Key: c.NBAAPIKey},
		store.LeagueNCAA: {Path: c.NCAAFeedPath, Key: c.NCAAAPIKey},
	}
	if c.NBAAPIKey == "" || c.NCAAAPIKey == "" {
		log.Warn("SportsDataIO key missing, requests may be rejected",
			"nba_key", c.NBAAPIKey != "", "ncaa_key", c.NCAAAPIKey != "")
	}
	return sportsdata.New(c.SportsDataBase, c.FetchTimeout, feeds)
}
