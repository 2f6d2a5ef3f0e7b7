package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	GrammarPath    string            `toml:"grammar_path"`
	ScanPaths      []string          `toml:"scan_paths"`
	SystemModule   string            `toml:"system_module"`
	ModuleMap      map[string]string `toml:"module_map"` // directory -> module name overrides
	InterfacePaths []string          `toml:"interface_paths"`
	IndexDB        string            `toml:"index_db"`
	UnitsDir       string            `toml:"units_dir"` // build-unit symbol listings ingested at prewarm
	HistoryDB      string            `toml:"history_db"`
	OTLPEndpoint   string            `toml:"otlp_endpoint"`
	Workers        int               `toml:"workers"`
	MetricsAddr    string            `toml:"metrics_addr"`
	Exclude        Exclude           `toml:"exclude"`
	Watch          Watch             `toml:"watch"`
	Interfaces     Interfaces        `toml:"interfaces"`
	Output         Output            `toml:"output"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

// Interfaces controls the secondary interface index.
type Interfaces struct {
	BuildRate  float64 `toml:"build_rate"`  // interface builds per second
	BuildBurst int     `toml:"build_burst"` // burst size
}

type Output struct {
	TSV string `toml:"tsv"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// Default returns a usable config when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if len(cfg.ScanPaths) == 0 {
		cfg.ScanPaths = []string{"."}
	}
	if cfg.SystemModule == "" {
		cfg.SystemModule = "Swift"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Interfaces.BuildRate <= 0 {
		cfg.Interfaces.BuildRate = 2
	}
	if cfg.Interfaces.BuildBurst <= 0 {
		cfg.Interfaces.BuildBurst = 2
	}
	if cfg.IndexDB == "" {
		cfg.IndexDB = ".swiftsight/index.db"
	}
	if cfg.HistoryDB == "" {
		cfg.HistoryDB = ".swiftsight/history.db"
	}
	if cfg.UnitsDir == "" {
		cfg.UnitsDir = ".swiftsight/units"
	}
}
