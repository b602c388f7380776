package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"cityanalysis/internal/kits"
	"cityanalysis/internal/persistence/indexdb"
)

func openIndex(path, configPath string) *indexdb.SQLiteIndex {
	path = strings.TrimSpace(path)
	if path == "" {
		cfg, err := kits.Load(configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "config:", err)
			os.Exit(2)
		}
		path = cfg.IndexDB
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "missing -index (or index_db in -config)")
		os.Exit(2)
	}
	idx, err := indexdb.OpenSQLite(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	return idx
}

func runsCmd(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	indexPath := fs.String("index", "", "sqlite index path")
	configPath := fs.String("config", "", "YAML config (used for index_db when -index is empty)")
	limit := fs.Int("limit", 20, "result limit")
	_ = fs.Parse(args)

	idx := openIndex(*indexPath, *configPath)
	runs, err := idx.ListRuns(context.Background(), *limit)
	_ = idx.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	for _, r := range runs {
		_ = enc.Encode(struct {
			ID        int64  `json:"id"`
			Source    string `json:"source"`
			Era       string `json:"era"`
			CreatedAt string `json:"created_at"`
			Buckets   int    `json:"buckets"`
		}{r.ID, r.Source, r.Era, r.CreatedAt.Format(time.RFC3339), r.Buckets})
	}
}

func rankingsCmd(args []string) {
	fs := flag.NewFlagSet("rankings", flag.ExitOnError)
	indexPath := fs.String("index", "", "sqlite index path")
	configPath := fs.String("config", "", "YAML config (used for index_db when -index is empty)")
	runID := fs.Int64("run", 0, "run id (default latest)")
	kit := fs.String("kit", "", "kit subtype (required)")
	_ = fs.Parse(args)

	if strings.TrimSpace(*kit) == "" {
		fmt.Fprintln(os.Stderr, "missing -kit")
		os.Exit(2)
	}
	idx := openIndex(*indexPath, *configPath)
	rows, err := latestRankings(context.Background(), idx, *runID, strings.TrimSpace(*kit))
	_ = idx.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		if errors.Is(err, errNoRuns) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	for _, r := range rows {
		row := struct {
			Rank       int      `json:"rank"`
			Building   string   `json:"building"`
			ID         string   `json:"id"`
			Size       string   `json:"size"`
			Street     *int     `json:"street"`
			Efficiency *float64 `json:"efficiency"`
			Expected   float64  `json:"expected"`
		}{Rank: r.Rank, Building: r.BuildingName, ID: r.BuildingID, Size: r.SizeLabel, Expected: r.Expected}
		if r.HasStreet {
			row.Street = &r.Street
		}
		if r.HasEfficiency {
			row.Efficiency = &r.Efficiency
		}
		_ = enc.Encode(row)
	}
}

var errNoRuns = errors.New("no runs recorded")

// latestRankings resolves runID 0 to the newest run.
func latestRankings(ctx context.Context, idx *indexdb.SQLiteIndex, runID int64, kit string) ([]indexdb.Ranking, error) {
	if runID == 0 {
		runs, err := idx.ListRuns(ctx, 1)
		if err != nil {
			return nil, err
		}
		if len(runs) == 0 {
			return nil, errNoRuns
		}
		runID = runs[0].ID
	}
	return idx.Rankings(ctx, runID, kit)
}
