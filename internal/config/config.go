package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/ziadkadry99/attnviz/internal/geometry"
	"github.com/ziadkadry99/attnviz/internal/tooltip"
	"github.com/ziadkadry99/attnviz/internal/viz"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ATTNVIZ_"

// sections are the nested config blocks; their env names use the first
// underscore as the key separator (ATTNVIZ_SERVER_PORT -> server.port).
var sections = []string{"container", "budgets", "tooltip", "server", "export"}

// envKey maps an environment variable name to its config key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	for _, sec := range sections {
		if strings.HasPrefix(key, sec+"_") {
			return sec + "." + strings.TrimPrefix(key, sec+"_")
		}
	}
	return key
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (ATTNVIZ_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// Overlay environment variables: ATTNVIZ_HEADS -> heads, etc.
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Heads < 1 || c.Heads > MaxHeads {
		return fmt.Errorf("heads must be between 1 and %d, got %d", MaxHeads, c.Heads)
	}

	if len(c.Tokens) > viz.MaxTokens {
		return fmt.Errorf("at most %d tokens, got %d", viz.MaxTokens, len(c.Tokens))
	}

	if c.Container.Width <= 0 || c.Container.Height <= 0 {
		return fmt.Errorf("container size must be positive, got %vx%v", c.Container.Width, c.Container.Height)
	}

	b := c.Budgets
	if b.StageUnit < 0 || b.MHAUnit < 0 || b.NormUnit < 0 || b.FFNUnit < 0 {
		return fmt.Errorf("budgets must be non-negative")
	}

	if c.Tooltip.DelayMS < 0 {
		return fmt.Errorf("tooltip.delay_ms must be non-negative")
	}
	if c.Tooltip.Padding < 0 {
		return fmt.Errorf("tooltip.padding must be non-negative")
	}
	if _, err := tooltip.ParseSide(c.Tooltip.Side); err != nil {
		return fmt.Errorf("invalid tooltip.side: %w", err)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Server.TickMS < 0 {
		return fmt.Errorf("server.tick_ms must be non-negative")
	}

	if c.Export.Frames < 1 {
		return fmt.Errorf("export.frames must be at least 1")
	}
	for _, pattern := range c.Export.Stages {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid export stage pattern %q", pattern)
		}
	}

	return nil
}

// VizOptions returns the mount options the configuration describes.
func (c *Config) VizOptions() viz.Options {
	side, _ := tooltip.ParseSide(c.Tooltip.Side)
	return viz.Options{
		Tokens:       c.Tokens,
		Heads:        c.Heads,
		Container:    geometry.Size{W: c.Container.Width, H: c.Container.Height},
		ScrollAnchor: true,
		Budgets:      c.Budgets,
		Tooltip: tooltip.Options{
			Delay:   time.Duration(c.Tooltip.DelayMS) * time.Millisecond,
			Padding: c.Tooltip.Padding,
			Side:    side,
		},
		Phrase: c.Phrase,
		Seed:   c.Seed,
	}
}

// Tick returns the session frame interval.
func (c *Config) Tick() time.Duration {
	return time.Duration(c.Server.TickMS) * time.Millisecond
}
