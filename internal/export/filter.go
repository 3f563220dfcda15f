package export

import (
	"path"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ziadkadry99/attnviz/internal/viz"
)

// MatchesStage returns true if the stage id matches any of the glob
// patterns. Stage ids are slash separated (mha/softmax), so mha/** selects
// every attention sub-stage. If patterns is empty, everything matches.
func MatchesStage(id string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, id); err == nil && matched {
			return true
		}

		// Also try matching against just the last segment (softmax).
		if matched, err := doublestar.Match(pattern, path.Base(id)); err == nil && matched {
			return true
		}
	}
	return false
}

// FilterStages keeps the windows whose stage matches patterns.
func FilterStages(windows []viz.StageWindow, patterns []string) []viz.StageWindow {
	out := make([]viz.StageWindow, 0, len(windows))
	for _, w := range windows {
		if MatchesStage(w.ID, patterns) {
			out = append(out, w)
		}
	}
	return out
}

// ValidPattern reports whether pattern is a well-formed stage glob.
func ValidPattern(pattern string) bool {
	return doublestar.ValidatePattern(pattern)
}
