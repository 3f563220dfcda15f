package config

import (
	"github.com/ziadkadry99/attnviz/internal/stages"
	"github.com/ziadkadry99/attnviz/internal/timeline"
	"github.com/ziadkadry99/attnviz/internal/tooltip"
	"github.com/ziadkadry99/attnviz/internal/viz"
)

// DefaultPath is the config file looked up in the working directory.
const DefaultPath = ".attnviz.yml"

// MaxHeads bounds the head count so panels stay readable.
const MaxHeads = 8

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Tokens: append([]string(nil), viz.DefaultTokens...),
		Phrase: stages.DefaultPhrase,
		Heads:  viz.DefaultHeads,
		Seed:   42,
		Container: ContainerConfig{
			Width:  1200,
			Height: 800,
		},
		Budgets: timeline.DefaultBudgets(),
		Tooltip: TooltipConfig{
			DelayMS: int(tooltip.DefaultDelay.Milliseconds()),
			Padding: tooltip.DefaultPadding,
			Side:    string(tooltip.SideTop),
		},
		Server: ServerConfig{
			Port:   8080,
			TickMS: 16,
		},
		Export: ExportConfig{
			Dir:    "frames",
			Frames: 60,
			Stages: []string{"**"},
		},
	}
}
