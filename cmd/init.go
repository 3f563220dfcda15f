package cmd

import (
	"github.com/spf13/cobra"
	"github.com/ziadkadry99/attnviz/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize attnviz configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to choose the sentence, head count, seed and server port, and writes a .attnviz.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
