package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/attnviz/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "attnviz",
	Short: "Scroll-driven walkthrough of a transformer encoder block",
	Long: `attnviz animates one sentence through a transformer encoder block as the
reader scrolls: embeddings, positional encoding, multi-head attention, add & norm
and the feed-forward layer. It serves the interactive page, renders SVG frames
and exposes the synthetic attention weights to AI agents via MCP.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
