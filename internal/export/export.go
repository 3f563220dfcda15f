package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ziadkadry99/attnviz/internal/progress"
	"github.com/ziadkadry99/attnviz/internal/viz"
)

// Options control a frame export.
type Options struct {
	Dir      string
	Frames   int
	Stages   []string
	Reporter progress.Reporter
}

// Frame is one exported file.
type Frame struct {
	Path     string  `json:"path"`
	Progress float64 `json:"progress"`
	Stage    string  `json:"stage"`
}

// Positions returns n progress values evenly spaced over [0,1], both ends
// included. A single frame is the final state.
func Positions(n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{1}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) / float64(n-1)
	}
	return out
}

// FileName is the file an exported frame is written to.
func FileName(index int, stage string) string {
	return fmt.Sprintf("frame-%03d-%s.svg", index, strings.ReplaceAll(stage, "/", "-"))
}

// Run seeks v through opts.Frames positions and writes one SVG per position
// whose active stage matches opts.Stages.
func Run(v *viz.Visualization, opts Options) ([]Frame, error) {
	if opts.Frames < 1 {
		return nil, fmt.Errorf("exporting frames: frame count must be positive, got %d", opts.Frames)
	}
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating export dir %s: %w", opts.Dir, err)
	}
	rep := opts.Reporter
	if rep == nil {
		rep = progress.Nop{}
	}

	var selected []Frame
	for _, p := range Positions(opts.Frames) {
		stage := v.StageAt(p)
		if MatchesStage(stage, opts.Stages) {
			selected = append(selected, Frame{Progress: p, Stage: stage})
		}
	}

	rep.Start(len(selected))
	defer rep.Finish()
	for i := range selected {
		f := &selected[i]
		f.Path = filepath.Join(opts.Dir, FileName(i, f.Stage))
		v.SetProgress(f.Progress)
		if err := writeFrame(v, f.Path); err != nil {
			return selected[:i], err
		}
		rep.Update(i+1, filepath.Base(f.Path))
	}
	return selected, nil
}

func writeFrame(v *viz.Visualization, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating frame %s: %w", path, err)
	}
	if err := v.WriteSVG(file); err != nil {
		file.Close()
		return fmt.Errorf("rendering frame %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing frame %s: %w", path, err)
	}
	return nil
}
