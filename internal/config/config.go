// Package config loads analyzer settings from a YAML file and fills in
// sensible defaults, including auto-detected game and save directories.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Zillatron27/x4-production-analyzer/internal/log"
)

// Thresholds hold the tunable constants of the analysis. The defaults match
// long-standing community rules of thumb; they are exposed here so a config
// file can shift them without a rebuild.
type Thresholds struct {
	// SurplusBelow: consumption/production ratios under this are a surplus.
	SurplusBelow float64 `yaml:"surplus_below"`
	// ShortageAbove: ratios over this are a shortage. The band between the
	// two, endpoints included, is balanced.
	ShortageAbove float64 `yaml:"shortage_above"`
	// MarginalBuffer flags wares whose surplus is thinner than this
	// fraction of production.
	MarginalBuffer float64 `yaml:"marginal_buffer"`
	// MinerRate is the assumed gather rate of one mining ship, units/hour.
	MinerRate float64 `yaml:"miner_rate"`
	// MiningSufficient and MiningMarginal grade assigned-miner cargo
	// capacity against raw-material consumption. Both are ratios of
	// capacity to hourly consumption.
	MiningSufficient float64 `yaml:"mining_sufficient"`
	MiningMarginal   float64 `yaml:"mining_marginal"`
}

// Config is the analyzer's runtime configuration.
type Config struct {
	GameDir    string     `yaml:"game_dir"`
	SaveDir    string     `yaml:"save_dir"`
	Language   int        `yaml:"language"`
	Database   string     `yaml:"database"`
	Theme      string     `yaml:"theme"`
	Thresholds Thresholds `yaml:"thresholds"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Language: 44,
		Thresholds: Thresholds{
			SurplusBelow:     0.8,
			ShortageAbove:    1.2,
			MarginalBuffer:   0.10,
			MinerRate:        10000,
			MiningSufficient: 1.0,
			MiningMarginal:   0.5,
		},
	}
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "x4analyzer", "config.yaml")
}

// Load reads a config file and merges it over the defaults. A missing file
// is not an error; the defaults plus auto-detection carry the day.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.detectPaths()
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.fillDefaults()
	cfg.detectPaths()
	log.Debug("Config loaded", "path", path)
	return cfg, nil
}

func (c *Config) fillDefaults() {
	def := Default()
	if c.Language == 0 {
		c.Language = def.Language
	}
	t := &c.Thresholds
	if t.SurplusBelow == 0 {
		t.SurplusBelow = def.Thresholds.SurplusBelow
	}
	if t.ShortageAbove == 0 {
		t.ShortageAbove = def.Thresholds.ShortageAbove
	}
	if t.MarginalBuffer == 0 {
		t.MarginalBuffer = def.Thresholds.MarginalBuffer
	}
	if t.MinerRate == 0 {
		t.MinerRate = def.Thresholds.MinerRate
	}
	if t.MiningSufficient == 0 {
		t.MiningSufficient = def.Thresholds.MiningSufficient
	}
	if t.MiningMarginal == 0 {
		t.MiningMarginal = def.Thresholds.MiningMarginal
	}
}

func (c *Config) detectPaths() {
	if c.GameDir == "" {
		c.GameDir = DetectGameDir()
	}
	if c.SaveDir == "" {
		c.SaveDir = DetectSaveDir()
	}
}
