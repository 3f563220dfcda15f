package config

import "github.com/ziadkadry99/attnviz/internal/timeline"

// Config is the top-level attnviz configuration, corresponding to .attnviz.yml.
type Config struct {
	Tokens    []string         `yaml:"tokens" koanf:"tokens"`
	Phrase    string           `yaml:"phrase" koanf:"phrase"`
	Heads     int              `yaml:"heads" koanf:"heads"`
	Seed      int64            `yaml:"seed" koanf:"seed"`
	Container ContainerConfig  `yaml:"container" koanf:"container"`
	Budgets   timeline.Budgets `yaml:"budgets" koanf:"budgets"`
	Tooltip   TooltipConfig    `yaml:"tooltip" koanf:"tooltip"`
	Server    ServerConfig     `yaml:"server" koanf:"server"`
	Export    ExportConfig     `yaml:"export" koanf:"export"`
}

// ContainerConfig is the scene size used when the host does not measure one.
type ContainerConfig struct {
	Width  float64 `yaml:"width" koanf:"width"`
	Height float64 `yaml:"height" koanf:"height"`
}

// TooltipConfig holds tooltip timing and placement.
type TooltipConfig struct {
	DelayMS int     `yaml:"delay_ms" koanf:"delay_ms"`
	Padding float64 `yaml:"padding" koanf:"padding"`
	Side    string  `yaml:"side" koanf:"side"`
}

// ServerConfig holds HTTP host settings.
type ServerConfig struct {
	Port     int  `yaml:"port" koanf:"port"`
	AllowAll bool `yaml:"allow_all" koanf:"allow_all"`
	TickMS   int  `yaml:"tick_ms" koanf:"tick_ms"`
}

// ExportConfig holds SVG frame export settings.
type ExportConfig struct {
	Dir    string   `yaml:"dir" koanf:"dir"`
	Frames int      `yaml:"frames" koanf:"frames"`
	Stages []string `yaml:"stages" koanf:"stages"`
}
