package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/attnviz/internal/export"
	"github.com/ziadkadry99/attnviz/internal/viz"
)

var stagesCmd = &cobra.Command{
	Use:   "stages [patterns...]",
	Short: "List the scroll stages and their timeline windows",
	Long:  `Lists every stage with its start and end in pixels and as scroll progress. Arguments are glob patterns over stage ids.`,
	RunE:  runStages,
}

func init() {
	stagesCmd.Flags().Bool("json", false, "print JSON instead of a table")
	rootCmd.AddCommand(stagesCmd)
}

func runStages(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	for _, p := range args {
		if !export.ValidPattern(p) {
			return fmt.Errorf("invalid stage pattern %q", p)
		}
	}

	v, err := viz.Mount(cfg.VizOptions())
	if err != nil {
		return err
	}
	defer v.Unmount()

	windows := export.FilterStages(v.Stages(), args)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(windows)
	}

	if len(windows) == 0 {
		fmt.Println("No stages match.")
		return nil
	}
	fmt.Printf("%-18s %-26s %9s %9s %7s %7s\n", "ID", "TITLE", "START", "END", "FROM", "TO")
	for _, w := range windows {
		fmt.Printf("%-18s %-26s %9.0f %9.0f %6.1f%% %6.1f%%\n",
			w.ID, w.Title, w.Start, w.End, w.StartProgress*100, w.EndProgress*100)
	}
	fmt.Printf("\nScroll height: %.0fpx\n", v.ScrollHeight())
	return nil
}
