package indexdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"cityanalysis/internal/aggregate"
	"cityanalysis/internal/kits"
)

func sampleReport() aggregate.Report {
	return aggregate.Report{Kits: []aggregate.KitReport{
		{
			Kit: kits.Kit{SubType: "one_up_kit", Label: "One Up Kit"},
			Buckets: []aggregate.Bucket{
				{
					Building:      aggregate.Building{ID: "W1", Name: "Workshop", SizeLabel: "4x4", Area: 16, HasArea: true},
					Expected:      30,
					Efficiency:    1.875,
					HasEfficiency: true,
				},
				{
					Building: aggregate.Building{ID: "W2", Name: "Shed", SizeLabel: "unknown", Street: 1, HasStreet: true},
					Expected: 5,
				},
			},
		},
		{Kit: kits.Kit{SubType: "renovation_kit", Label: "Renovation Kit"}},
	}}
}

func TestSQLiteIndex_RecordAndQuery(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db", "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	id1, err := idx.RecordRun(ctx, "/in/city_1.json", "VirtualFuture", at, sampleReport())
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	id2, err := idx.RecordRun(ctx, "/in/city_2.json", "SpaceAgeMars", at.Add(time.Hour), aggregate.Report{})
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("ids not increasing: %d %d", id1, id2)
	}

	runs, err := idx.ListRuns(ctx, 0)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != id2 || runs[1].Buckets != 2 || runs[0].Buckets != 0 {
		t.Fatalf("runs: %+v", runs)
	}
	if !runs[1].CreatedAt.Equal(at) || runs[1].Era != "VirtualFuture" {
		t.Fatalf("run 1: %+v", runs[1])
	}
	if limited, err := idx.ListRuns(ctx, 1); err != nil || len(limited) != 1 {
		t.Fatalf("limit: %v %d", err, len(limited))
	}

	got, err := idx.Rankings(ctx, id1, "one_up_kit")
	if err != nil {
		t.Fatalf("Rankings: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rankings: %+v", got)
	}
	if got[0].Rank != 1 || got[0].BuildingName != "Workshop" || !got[0].HasEfficiency || got[0].Efficiency != 1.875 || got[0].HasStreet {
		t.Fatalf("first: %+v", got[0])
	}
	if got[1].Rank != 2 || got[1].HasEfficiency || !got[1].HasStreet || got[1].Street != 1 {
		t.Fatalf("second: %+v", got[1])
	}
	if none, err := idx.Rankings(ctx, id1, "renovation_kit"); err != nil || len(none) != 0 {
		t.Fatalf("renovation: %v %+v", err, none)
	}
}

func TestSQLiteIndex_ReopenKeepsHistory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if _, err := idx.RecordRun(ctx, "a", "e", time.Now(), sampleReport()); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx.Close()
	runs, err := idx.ListRuns(ctx, 0)
	if err != nil || len(runs) != 1 {
		t.Fatalf("runs after reopen: %v %+v", err, runs)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()
	var v string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key='schema_version'`).Scan(&v); err != nil || v != schemaVersion {
		t.Fatalf("schema_version: %q %v", v, err)
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("expected error")
	}
}
