package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cityanalysis/internal/aggregate"
	"cityanalysis/internal/analysis"
	"cityanalysis/internal/kits"
	"cityanalysis/internal/persistence/indexdb"
	persistlog "cityanalysis/internal/persistence/log"
	"cityanalysis/internal/persistence/snapshot"
	"cityanalysis/internal/report"
	"cityanalysis/internal/report/xlsx"
	"cityanalysis/internal/reward"
)

func reportCmd(args []string) {
	fs := flag.NewFlagSet("kitreport", flag.ExitOnError)
	configPath := fs.String("config", "", "YAML config with directories and kit catalog (optional)")
	era := fs.String("era", "", "era component to inspect (default from config, VirtualFuture)")
	inputDir := fs.String("input", "", "directory holding city_*.json snapshots (overrides config)")
	outputDir := fs.String("output", "", "directory for reports (overrides config)")
	file := fs.String("file", "", "analyze this snapshot instead of the newest one in -input")
	indexPath := fs.String("index", "", "sqlite index to record the run in (overrides config)")
	audit := fs.Bool("audit", false, "write every classified reward to audit_<era>.jsonl.zst")
	verbose := fs.Bool("v", false, "log scan statistics to stderr")
	_ = fs.Parse(args)

	cfg, err := kits.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	if s := strings.TrimSpace(*era); s != "" {
		cfg.Era = s
	}
	if s := strings.TrimSpace(*inputDir); s != "" {
		cfg.InputDir = s
	}
	if s := strings.TrimSpace(*outputDir); s != "" {
		cfg.OutputDir = s
	}
	if s := strings.TrimSpace(*indexPath); s != "" {
		cfg.IndexDB = s
	}

	j := job{
		cfg:   cfg,
		file:  strings.TrimSpace(*file),
		audit: *audit,
		now:   time.Now,
	}
	if *verbose {
		j.logger = log.New(os.Stderr, "[kitreport] ", log.LstdFlags)
	}

	out, err := j.run(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, "kitreport:", err)
		if errors.Is(err, snapshot.ErrNoInput) {
			os.Exit(2)
		}
		os.Exit(1)
	}
	out.print(os.Stdout)
}

type job struct {
	cfg    kits.Config
	file   string
	audit  bool
	now    func() time.Time
	logger *log.Logger
}

type written struct {
	Label string
	Count int
	Path  string
}

type outcome struct {
	Source   string
	Era      string
	Empty    bool
	Reports  []written
	Workbook string
	Audit    string
	RunID    int64
}

func (j job) run(ctx context.Context) (outcome, error) {
	src := j.file
	if src == "" {
		latest, err := snapshot.LatestCityFile(j.cfg.InputDir)
		if err != nil {
			return outcome{}, err
		}
		src = latest
	}
	doc, err := snapshot.ReadCity(src)
	if err != nil {
		return outcome{}, err
	}

	out := outcome{Source: src, Era: j.cfg.Era}

	// The audit trail is buffered in memory until we know there is
	// something to report.
	var matches []match
	opts := analysis.Options{Logger: j.logger}
	if j.audit {
		opts.OnMatch = func(b aggregate.Building, c reward.Classified) {
			matches = append(matches, match{b, c})
		}
	}
	res := analysis.Run(doc, j.cfg.Era, j.cfg.Catalog(), opts)
	if res.Report.Empty() {
		out.Empty = true
		return out, nil
	}

	if err := os.MkdirAll(j.cfg.OutputDir, 0o755); err != nil {
		return outcome{}, err
	}
	safeEra := strings.ReplaceAll(j.cfg.Era, " ", "_")

	wb := report.Workbook(res.Report)
	if err := wb.Validate(); err != nil {
		return outcome{}, err
	}

	for _, k := range res.Report.Kits {
		var buf bytes.Buffer
		h := report.Header{SourceFile: src, Era: j.cfg.Era, KitLabel: k.Kit.Label}
		if err := report.WriteText(&buf, h, k.Buckets); err != nil {
			return outcome{}, err
		}
		path := filepath.Join(j.cfg.OutputDir, fmt.Sprintf("%s_buildings_%s.txt", k.Kit.SubType, safeEra))
		if err := writeFileAtomic(path, buf.Bytes()); err != nil {
			return outcome{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		out.Reports = append(out.Reports, written{Label: k.Kit.Label, Count: len(k.Buckets), Path: path})
	}

	out.Workbook = filepath.Join(j.cfg.OutputDir, fmt.Sprintf("kit_buildings_%s.xlsx", safeEra))
	if err := xlsx.WriteFile(out.Workbook, wb, xlsx.Options{Now: j.now}); err != nil {
		return outcome{}, fmt.Errorf("%s: %w", filepath.Base(out.Workbook), err)
	}

	if j.audit {
		path, err := writeAudit(j.cfg.OutputDir, safeEra, matches)
		if err != nil {
			return outcome{}, fmt.Errorf("audit: %w", err)
		}
		out.Audit = path
	}

	if j.cfg.IndexDB != "" {
		idx, err := indexdb.OpenSQLite(j.cfg.IndexDB)
		if err != nil {
			return outcome{}, fmt.Errorf("index: %w", err)
		}
		defer idx.Close()
		id, err := idx.RecordRun(ctx, src, j.cfg.Era, j.now(), res.Report)
		if err != nil {
			return outcome{}, fmt.Errorf("index: %w", err)
		}
		out.RunID = id
	}
	return out, nil
}

type match struct {
	b aggregate.Building
	c reward.Classified
}

func writeAudit(dir, era string, matches []match) (string, error) {
	l := persistlog.NewAuditLogger(filepath.Join(dir, "audit"), era)
	for _, m := range matches {
		if err := l.WriteAudit(m.b, m.c); err != nil {
			_ = l.Close()
			return "", err
		}
	}
	return l.Path(), l.Close()
}

func (o outcome) print(w io.Writer) {
	if o.Empty {
		fmt.Fprintf(w, "No kit-producing buildings found for era %s in %s\n", o.Era, filepath.Base(o.Source))
		return
	}
	fmt.Fprintf(w, "Latest file: %s\n", o.Source)
	fmt.Fprintf(w, "Era inspected: %s\n", o.Era)
	for _, r := range o.Reports {
		fmt.Fprintf(w, "%s: %d building(s) written to %s\n", r.Label, r.Count, r.Path)
	}
	fmt.Fprintf(w, "Excel workbook: %s\n", o.Workbook)
	if o.Audit != "" {
		fmt.Fprintf(w, "Audit trail: %s\n", o.Audit)
	}
	if o.RunID != 0 {
		fmt.Fprintf(w, "Indexed as run %d\n", o.RunID)
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
