package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ziadkadry99/attnviz/internal/tooltip"
	"github.com/ziadkadry99/attnviz/internal/viz"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Heads != 2 {
		t.Errorf("expected default heads 2, got %d", cfg.Heads)
	}
	if len(cfg.Tokens) != 4 {
		t.Errorf("expected 4 default tokens, got %d", len(cfg.Tokens))
	}
	if cfg.Budgets.StageUnit != 1.75 {
		t.Errorf("expected default stage unit 1.75, got %v", cfg.Budgets.StageUnit)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.attnviz.yml")

	original := DefaultConfig()
	original.Tokens = []string{"the", "cat", "sat"}
	original.Heads = 3
	original.Seed = 7
	original.Budgets.MHAUnit = 0.5
	original.Tooltip.Side = "bottom"
	original.Export.Stages = []string{"mha/**"}

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.Heads != 3 || loaded.Seed != 7 {
		t.Errorf("heads/seed: got %d/%d", loaded.Heads, loaded.Seed)
	}
	if loaded.Budgets.MHAUnit != 0.5 {
		t.Errorf("mha_unit: got %v, want 0.5", loaded.Budgets.MHAUnit)
	}
	if loaded.Tooltip.Side != "bottom" {
		t.Errorf("tooltip.side: got %q", loaded.Tooltip.Side)
	}
	if len(loaded.Tokens) != 3 || loaded.Tokens[1] != "cat" {
		t.Errorf("tokens: got %v", loaded.Tokens)
	}
	if len(loaded.Export.Stages) != 1 || loaded.Export.Stages[0] != "mha/**" {
		t.Errorf("export.stages: got %v", loaded.Export.Stages)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.Heads != 2 {
		t.Errorf("expected default heads, got %d", cfg.Heads)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("ATTNVIZ_HEADS", "4")
	t.Setenv("ATTNVIZ_SERVER_PORT", "9090")
	t.Setenv("ATTNVIZ_TOOLTIP_DELAY_MS", "300")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Heads != 4 {
		t.Errorf("env override failed: got heads %d, want 4", loaded.Heads)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("nested env override failed: got port %d, want 9090", loaded.Server.Port)
	}
	if loaded.Tooltip.DelayMS != 300 {
		t.Errorf("nested env override failed: got delay %d, want 300", loaded.Tooltip.DelayMS)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ATTNVIZ_HEADS", "heads"},
		{"ATTNVIZ_SERVER_ALLOW_ALL", "server.allow_all"},
		{"ATTNVIZ_BUDGETS_STAGE_UNIT", "budgets.stage_unit"},
		{"ATTNVIZ_EXPORT_DIR", "export.dir"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero heads", func(c *Config) { c.Heads = 0 }},
		{"too many heads", func(c *Config) { c.Heads = MaxHeads + 1 }},
		{"too many tokens", func(c *Config) { c.Tokens = make([]string, viz.MaxTokens+1) }},
		{"zero width", func(c *Config) { c.Container.Width = 0 }},
		{"negative budget", func(c *Config) { c.Budgets.FFNUnit = -1 }},
		{"negative delay", func(c *Config) { c.Tooltip.DelayMS = -1 }},
		{"bad side", func(c *Config) { c.Tooltip.Side = "diagonal" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"no frames", func(c *Config) { c.Export.Frames = 0 }},
		{"bad glob", func(c *Config) { c.Export.Stages = []string{"mha/["} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestVizOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tooltip.DelayMS = 250
	cfg.Tooltip.Side = "left"
	opts := cfg.VizOptions()
	if opts.Tooltip.Delay != 250*time.Millisecond {
		t.Errorf("expected 250ms delay, got %v", opts.Tooltip.Delay)
	}
	if opts.Tooltip.Side != tooltip.SideLeft {
		t.Errorf("expected left side, got %q", opts.Tooltip.Side)
	}
	if opts.Container.W != 1200 || opts.Container.H != 800 {
		t.Errorf("unexpected container %+v", opts.Container)
	}
	if cfg.Tick() != 16*time.Millisecond {
		t.Errorf("expected 16ms tick, got %v", cfg.Tick())
	}
}
