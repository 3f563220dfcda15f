package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to .attnviz.yml.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to attnviz! Let's configure your visualization.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Sentence.
	tokensPrompt := promptui.Prompt{
		Label:   "Sentence to visualize",
		Default: strings.Join(cfg.Tokens, " "),
		Validate: func(s string) error {
			if len(strings.Fields(s)) == 0 {
				return fmt.Errorf("enter at least one word")
			}
			return nil
		},
	}
	sentence, err := tokensPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("sentence: %w", err)
	}
	cfg.Tokens = strings.Fields(sentence)

	// 2. Head count.
	headsPrompt := promptui.Select{
		Label: "Number of attention heads",
		Items: []string{
			"1: locality only",
			"2: locality and first-token",
			"3: all three patterns",
			"4: patterns repeat from head 4",
		},
		CursorPos: cfg.Heads - 1,
	}
	headsIdx, _, err := headsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("head selection: %w", err)
	}
	cfg.Heads = headsIdx + 1

	// 3. Seed.
	seedPrompt := promptui.Prompt{
		Label:    "Random seed for the near-uniform heads",
		Default:  strconv.FormatInt(cfg.Seed, 10),
		Validate: validateInt,
	}
	seedStr, err := seedPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}
	cfg.Seed, _ = strconv.ParseInt(strings.TrimSpace(seedStr), 10, 64)

	// 4. Port.
	portPrompt := promptui.Prompt{
		Label:    "Server port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(strings.TrimSpace(portStr))

	// 5. Export directory.
	exportPrompt := promptui.Prompt{
		Label:   "Output directory for exported frames",
		Default: cfg.Export.Dir,
	}
	cfg.Export.Dir, err = exportPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("export dir: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// Save to .attnviz.yml.
	if err := cfg.Save(DefaultPath); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", DefaultPath)
	return cfg, nil
}

func validateInt(s string) error {
	if _, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64); err != nil {
		return fmt.Errorf("not a number")
	}
	return nil
}

func validatePort(s string) error {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("port must be between 0 and 65535")
	}
	return nil
}
