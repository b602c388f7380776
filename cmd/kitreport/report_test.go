package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cityanalysis/internal/kits"
	"cityanalysis/internal/persistence/indexdb"
	"cityanalysis/internal/persistence/snapshot"
)

const cityJSON = `{"CityEntities":{
  "1":{"id":"W_Kit","name":"Kit Workshop","components":{
    "AllAge":{"placement":{"size":{"x":4,"y":4}}},
    "Virtual Future":{"production":{"options":[
      {"name":"Make","time":3600,"products":[
        {"type":"genericReward","reward":{"id":"k1","subType":"one_up_kit","amount":1}}
      ]}
    ]}}
  }}
}}`

func testJob(t *testing.T) (job, string) {
	t.Helper()
	base := t.TempDir()
	cfg := kits.Config{
		InputDir:  filepath.Join(base, "input"),
		OutputDir: filepath.Join(base, "output"),
		Era:       "Virtual Future",
		Kits: []kits.Kit{
			{SubType: "one_up_kit", Label: "One Up Kit"},
			{SubType: "renovation_kit", Label: "Renovation Kit"},
		},
	}
	if err := snapshot.WriteCity(filepath.Join(cfg.InputDir, "city_1.json.zst"), []byte(cityJSON)); err != nil {
		t.Fatalf("WriteCity: %v", err)
	}
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return job{cfg: cfg, now: func() time.Time { return at }}, base
}

func TestJobRun_WritesReports(t *testing.T) {
	j, base := testJob(t)
	j.audit = true
	j.cfg.IndexDB = filepath.Join(base, "index.db")

	out, err := j.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Empty || len(out.Reports) != 2 {
		t.Fatalf("outcome: %+v", out)
	}

	upPath := filepath.Join(j.cfg.OutputDir, "one_up_kit_buildings_Virtual_Future.txt")
	if out.Reports[0].Path != upPath || out.Reports[0].Count != 1 || out.Reports[1].Count != 0 {
		t.Fatalf("reports: %+v", out.Reports)
	}
	txt, err := os.ReadFile(upPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(txt), "1. Kit Workshop | size 4x4 | street n/a | efficiency 1.875 fragments/tile") {
		t.Fatalf("report text:\n%s", txt)
	}
	if _, err := os.Stat(filepath.Join(j.cfg.OutputDir, "renovation_kit_buildings_Virtual_Future.txt")); err != nil {
		t.Fatalf("empty kit report missing: %v", err)
	}
	if filepath.Base(out.Workbook) != "kit_buildings_Virtual_Future.xlsx" {
		t.Fatalf("workbook: %s", out.Workbook)
	}
	if _, err := os.Stat(out.Workbook); err != nil {
		t.Fatalf("workbook missing: %v", err)
	}
	if _, err := os.Stat(out.Audit); err != nil {
		t.Fatalf("audit missing: %v", err)
	}
	if out.RunID == 0 {
		t.Fatalf("run not indexed")
	}

	idx, err := indexdb.OpenSQLite(j.cfg.IndexDB)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()
	rows, err := idx.Rankings(context.Background(), out.RunID, "one_up_kit")
	if err != nil || len(rows) != 1 || rows[0].BuildingID != "W_Kit" || rows[0].Efficiency != 1.875 {
		t.Fatalf("rankings: %v %+v", err, rows)
	}

	var buf bytes.Buffer
	out.print(&buf)
	for _, want := range []string{
		"Latest file: " + filepath.Join(j.cfg.InputDir, "city_1.json.zst"),
		"Era inspected: Virtual Future",
		"One Up Kit: 1 building(s) written to " + upPath,
		"Renovation Kit: 0 building(s) written to ",
		"Excel workbook: " + out.Workbook,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("summary missing %q:\n%s", want, buf.String())
		}
	}
}

func TestJobRun_NothingFoundWritesNothing(t *testing.T) {
	j, _ := testJob(t)
	j.cfg.Era = "BronzeAge"

	out, err := j.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !out.Empty {
		t.Fatalf("expected empty outcome: %+v", out)
	}
	if _, err := os.Stat(j.cfg.OutputDir); !os.IsNotExist(err) {
		t.Fatalf("output dir should not exist: %v", err)
	}
	var buf bytes.Buffer
	out.print(&buf)
	if buf.String() != "No kit-producing buildings found for era BronzeAge in city_1.json.zst\n" {
		t.Fatalf("message: %q", buf.String())
	}
}

func TestJobRun_NoInput(t *testing.T) {
	j, base := testJob(t)
	j.cfg.InputDir = filepath.Join(base, "missing")
	if _, err := j.run(context.Background()); !errors.Is(err, snapshot.ErrNoInput) {
		t.Fatalf("expected ErrNoInput, got %v", err)
	}
}

func TestJobRun_ExplicitFile(t *testing.T) {
	j, base := testJob(t)
	path := filepath.Join(base, "elsewhere", "mine.json")
	if err := snapshot.WriteCity(path, []byte(cityJSON)); err != nil {
		t.Fatalf("WriteCity: %v", err)
	}
	j.file = path
	j.cfg.InputDir = filepath.Join(base, "missing")
	out, err := j.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Source != path {
		t.Fatalf("source: %s", out.Source)
	}
}
