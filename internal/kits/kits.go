package kits

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cityanalysis/internal/report/xlsx"
)

// FragmentsPerKit is the fixed exchange rate used for expected values.
const FragmentsPerKit = 30

const (
	DefaultEra     = "VirtualFuture"
	DefaultBaseDir = "~/Documents/FOE/CityAnalysis"

	// EnvHome overrides base_dir when set.
	EnvHome = "CITYANALYSIS_HOME"
)

type Config struct {
	BaseDir   string `yaml:"base_dir"`
	InputDir  string `yaml:"input_dir"`
	OutputDir string `yaml:"output_dir"`
	Era       string `yaml:"era"`
	IndexDB   string `yaml:"index_db"`
	Kits      []Kit  `yaml:"kits"`
}

// Kit is one target resource type.
type Kit struct {
	SubType string `yaml:"subtype"`
	Label   string `yaml:"label"`
}

// Catalog is the ordered set of target kits, keyed by reward subtype.
type Catalog struct {
	kits  []Kit
	index map[string]int
}

func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

func defaults() Config {
	return Config{
		BaseDir: DefaultBaseDir,
		Era:     DefaultEra,
		Kits: []Kit{
			{SubType: "one_up_kit", Label: "One Up Kit"},
			{SubType: "renovation_kit", Label: "Renovation Kit"},
		},
	}
}

// Normalize fills derived directories and trims whitespace. The home
// environment variable wins over base_dir from the file.
func (c *Config) Normalize() {
	if home := strings.TrimSpace(os.Getenv(EnvHome)); home != "" {
		c.BaseDir = home
	}
	c.BaseDir = expandHome(strings.TrimSpace(c.BaseDir))
	if c.BaseDir == "" {
		c.BaseDir = expandHome(DefaultBaseDir)
	}
	c.InputDir = expandHome(strings.TrimSpace(c.InputDir))
	if c.InputDir == "" {
		c.InputDir = filepath.Join(c.BaseDir, "input")
	}
	c.OutputDir = expandHome(strings.TrimSpace(c.OutputDir))
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.BaseDir, "output")
	}
	c.Era = strings.TrimSpace(c.Era)
	if c.Era == "" {
		c.Era = DefaultEra
	}
	c.IndexDB = expandHome(strings.TrimSpace(c.IndexDB))
	for i := range c.Kits {
		c.Kits[i].SubType = strings.TrimSpace(c.Kits[i].SubType)
		c.Kits[i].Label = strings.TrimSpace(c.Kits[i].Label)
	}
}

func (c Config) Validate() error {
	_, err := NewCatalog(c.Kits)
	return err
}

// Catalog builds the kit catalog; Load has already validated it.
func (c Config) Catalog() Catalog {
	cat, err := NewCatalog(c.Kits)
	if err != nil {
		panic(err)
	}
	return cat
}

func NewCatalog(kits []Kit) (Catalog, error) {
	if len(kits) == 0 {
		return Catalog{}, fmt.Errorf("no kits configured")
	}
	cat := Catalog{kits: make([]Kit, 0, len(kits)), index: make(map[string]int, len(kits))}
	labels := map[string]bool{}
	for _, k := range kits {
		if k.SubType == "" {
			return Catalog{}, fmt.Errorf("kit with empty subtype")
		}
		if k.Label == "" {
			return Catalog{}, fmt.Errorf("kit %s: empty label", k.SubType)
		}
		if _, dup := cat.index[k.SubType]; dup {
			return Catalog{}, fmt.Errorf("duplicate kit subtype %q", k.SubType)
		}
		if labels[strings.ToLower(k.Label)] {
			return Catalog{}, fmt.Errorf("duplicate kit label %q", k.Label)
		}
		if err := xlsx.ValidSheetName(k.Label); err != nil {
			return Catalog{}, fmt.Errorf("kit %s: label: %w", k.SubType, err)
		}
		labels[strings.ToLower(k.Label)] = true
		cat.index[k.SubType] = len(cat.kits)
		cat.kits = append(cat.kits, k)
	}
	return cat, nil
}

// Default is the catalog used when no config file is given.
func Default() Catalog {
	cat, _ := NewCatalog(defaults().Kits)
	return cat
}

// Lookup reports whether subtype is a target kit.
func (c Catalog) Lookup(subtype string) (Kit, bool) {
	i, ok := c.index[subtype]
	if !ok {
		return Kit{}, false
	}
	return c.kits[i], true
}

// Kits returns the kits in configured order.
func (c Catalog) Kits() []Kit {
	return append([]Kit(nil), c.kits...)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
