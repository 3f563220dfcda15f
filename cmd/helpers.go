package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/ziadkadry99/attnviz/internal/config"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `attnviz init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "config: %d head(s), %d token(s), seed %d\n", cfg.Heads, len(cfg.Tokens), cfg.Seed)
	}
	return cfg, nil
}

// splitTokens accepts tokens either as several arguments or as one quoted
// sentence.
func splitTokens(args []string) []string {
	var out []string
	for _, a := range args {
		out = append(out, strings.FieldsFunc(a, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})...)
	}
	return out
}
