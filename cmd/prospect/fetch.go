package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fortuna/prospect/internal/store"
)

var outDir string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download both league rosters and save them as JSON files",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd.Context())
	},
}

func init() {
	fetchCmd.Flags().StringVar(&outDir, "out", ".", "directory to write nba.json and ncaa.json into")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	client := newFeedClient(cfg)
	var errs []error
	for _, league := range store.Leagues {
		records, err := client.FetchRoster(ctx, league)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		data, err := json.MarshalIndent(records, "", "  ")
		if err != nil {
			errs = append(errs, err)
			continue
		}
		path := filepath.Join(outDir, league.Key()+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", path, err))
			continue
		}
		log.Info("Saved roster", "league", league, "players", len(records), "path", path)
	}
	return errors.Join(errs...)
}
