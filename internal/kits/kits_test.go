package kits

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cityanalysis/internal/report/xlsx"
)

func TestLoad_DefaultsWithoutPath(t *testing.T) {
	t.Setenv(EnvHome, "/tmp/cityanalysis")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Era != DefaultEra {
		t.Fatalf("era: got %q", cfg.Era)
	}
	if cfg.InputDir != filepath.Join("/tmp/cityanalysis", "input") || cfg.OutputDir != filepath.Join("/tmp/cityanalysis", "output") {
		t.Fatalf("dirs: %q %q", cfg.InputDir, cfg.OutputDir)
	}
	cat := cfg.Catalog()
	kits := cat.Kits()
	if len(kits) != 2 || kits[0].SubType != "one_up_kit" || kits[1].SubType != "renovation_kit" {
		t.Fatalf("kits: %+v", kits)
	}
	if k, ok := cat.Lookup("renovation_kit"); !ok || k.Label != "Renovation Kit" {
		t.Fatalf("lookup: %+v %v", k, ok)
	}
	if _, ok := cat.Lookup("fragment"); ok {
		t.Fatalf("fragment must not be a kit")
	}
}

func TestLoad_File(t *testing.T) {
	t.Setenv(EnvHome, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "kitreport.yaml")
	raw := `
base_dir: ` + dir + `
era: " SpaceAgeMars "
output_dir: ` + filepath.Join(dir, "reports") + `
kits:
  - subtype: one_up_kit
    label: One Up Kit
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Era != "SpaceAgeMars" {
		t.Fatalf("era: %q", cfg.Era)
	}
	if cfg.InputDir != filepath.Join(dir, "input") {
		t.Fatalf("input dir: %q", cfg.InputDir)
	}
	if cfg.OutputDir != filepath.Join(dir, "reports") {
		t.Fatalf("output dir: %q", cfg.OutputDir)
	}
	if n := len(cfg.Catalog().Kits()); n != 1 {
		t.Fatalf("kits: %d", n)
	}
}

func TestLoad_RejectsBadKits(t *testing.T) {
	cases := map[string]string{
		"empty":      "kits: []\n",
		"duplicate":  "kits:\n  - {subtype: a, label: A}\n  - {subtype: a, label: B}\n",
		"no label":   "kits:\n  - {subtype: a}\n",
		"sheet name": "kits:\n  - {subtype: a, label: \"A/B\"}\n",
		"apostrophe": "kits:\n  - {subtype: a, label: \"'Kit\"}\n",
	}
	for name, raw := range cases {
		path := filepath.Join(t.TempDir(), "kits.yaml")
		if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Load(path)
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if !strings.HasPrefix(err.Error(), "kits.yaml: ") {
			t.Fatalf("%s: error not prefixed with file: %v", name, err)
		}
	}
}

func TestNewCatalog_LabelsFollowSheetNameRules(t *testing.T) {
	label := "Набор для ремонта" // 17 runes, 32 bytes
	if _, err := NewCatalog([]Kit{{SubType: "a", Label: label}}); err != nil {
		t.Fatalf("multibyte label: %v", err)
	}
	long := strings.Repeat("Ж", 32)
	for _, bad := range []string{"'Kit", "Kit'", long, "a?b"} {
		_, err := NewCatalog([]Kit{{SubType: "a", Label: bad}})
		if !errors.Is(err, xlsx.ErrSheetName) {
			t.Fatalf("%q: got %v, want ErrSheetName", bad, err)
		}
	}
}
