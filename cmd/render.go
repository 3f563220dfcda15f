package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/attnviz/internal/export"
	"github.com/ziadkadry99/attnviz/internal/progress"
	"github.com/ziadkadry99/attnviz/internal/viz"
)

var renderCmd = &cobra.Command{
	Use:   "render [tokens...]",
	Short: "Export the walkthrough as a sequence of SVG frames",
	Long: `Seeks the timeline through evenly spaced scroll positions and writes one SVG
file per position. --stage keeps only frames whose active stage matches one of
the glob patterns, e.g. --stage 'mha/*'.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("output", "", "output directory (defaults to export.dir)")
	renderCmd.Flags().Int("frames", 0, "number of scroll positions to sample (defaults to export.frames)")
	renderCmd.Flags().StringSlice("stage", nil, "stage glob patterns (defaults to export.stages)")
	renderCmd.Flags().Int("heads", 0, "number of attention heads")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := cfg.VizOptions()
	if tokens := splitTokens(args); len(tokens) > 0 {
		opts.Tokens = tokens
	}
	if heads, _ := cmd.Flags().GetInt("heads"); heads != 0 {
		opts.Heads = heads
	}

	eo := export.Options{
		Dir:      cfg.Export.Dir,
		Frames:   cfg.Export.Frames,
		Stages:   cfg.Export.Stages,
		Reporter: progress.NewReporter(),
	}
	if dir, _ := cmd.Flags().GetString("output"); dir != "" {
		eo.Dir = dir
	}
	if n, _ := cmd.Flags().GetInt("frames"); n != 0 {
		eo.Frames = n
	}
	if patterns, _ := cmd.Flags().GetStringSlice("stage"); len(patterns) > 0 {
		eo.Stages = patterns
	}

	v, err := viz.Mount(opts)
	if err != nil {
		return err
	}
	defer v.Unmount()

	frames, err := export.Run(v, eo)
	if err != nil {
		return fmt.Errorf("rendering frames: %w", err)
	}

	fmt.Printf("Rendered %d frame(s) to %s\n", len(frames), eo.Dir)
	return nil
}
