package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/slotplanner/slotplanner/core/slotgrid"
	"github.com/slotplanner/slotplanner/core/solver"
)

// Config bundles the runtime settings of the planner.
type Config struct {
	Grid   slotgrid.Config `json:"grid"`
	Solver solver.Config   `json:"solver"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.Grid.SetDefaults()
	cfg.Solver.SetDefaults()
	return &cfg
}

// Load reads a yaml or json configuration file and applies optional
// environment overrides with the SP_ prefix.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("SP_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sp_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Grid.SetDefaults()
	cfg.Solver.SetDefaults()
	if err := cfg.Grid.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Solver.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
