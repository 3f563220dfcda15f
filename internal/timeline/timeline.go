package timeline

import (
	"fmt"
	"log"
	"math"

	"github.com/ziadkadry99/attnviz/internal/geometry"
	"github.com/ziadkadry99/attnviz/internal/scene"
)

// Keyframe applies a stage's effect at local progress in [0,1]. It must be a
// pure function of local: the same value always yields the same writes.
type Keyframe func(local float64, s *scene.Snapshot)

// Segment is a scroll-offset window of the master timeline.
type Segment struct {
	ID       string
	Start    float64
	Duration float64
	Apply    Keyframe
}

// End returns the offset right after the segment.
func (s Segment) End() float64 { return s.Start + s.Duration }

// Local maps the absolute timeline offset to the segment's local progress.
func (s Segment) Local(offset float64) float64 {
	if s.Duration <= 0 {
		if offset >= s.Start {
			return 1
		}
		return 0
	}
	return geometry.Clamp((offset-s.Start)/s.Duration, 0, 1)
}

// Timeline is the master timeline composed of ordered segments over a scene.
// It never declares nodes; Seek only writes snapshots of the tree.
type Timeline struct {
	tree     *scene.Tree
	segments []Segment
	total    float64
}

// Build validates the segments and composes them into one timeline. Segments
// must be ordered by start, must not overlap and must have non-negative
// durations.
func Build(tree *scene.Tree, segments []Segment) (*Timeline, error) {
	if tree == nil {
		return nil, fmt.Errorf("building timeline: nil scene tree")
	}
	seen := make(map[string]bool, len(segments))
	var end float64
	for i, seg := range segments {
		if seg.ID == "" {
			return nil, fmt.Errorf("building timeline: segment %d has no id", i)
		}
		if seen[seg.ID] {
			return nil, fmt.Errorf("building timeline: duplicate segment %q", seg.ID)
		}
		seen[seg.ID] = true
		if seg.Start < 0 || seg.Duration < 0 || math.IsNaN(seg.Start) || math.IsNaN(seg.Duration) {
			return nil, fmt.Errorf("building timeline: segment %q has invalid window [%v, +%v]", seg.ID, seg.Start, seg.Duration)
		}
		if seg.Start < end {
			return nil, fmt.Errorf("building timeline: segment %q starts at %v before previous end %v", seg.ID, seg.Start, end)
		}
		end = seg.End()
	}

	segs := make([]Segment, len(segments))
	copy(segs, segments)
	return &Timeline{tree: tree, segments: segs, total: end}, nil
}

// Total returns the timeline's total duration in pixels.
func (t *Timeline) Total() float64 { return t.total }

// Segments returns the segments in order.
func (t *Timeline) Segments() []Segment {
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	return out
}

// Segment returns the segment with the given id.
func (t *Timeline) Segment(id string) (Segment, bool) {
	for _, s := range t.segments {
		if s.ID == id {
			return s, true
		}
	}
	return Segment{}, false
}

// Seek computes the scene at progress. Progress is clamped to [0,1]. Every
// segment runs, those outside their window at local 0 or 1, so the result
// depends on progress alone and seeking is idempotent in both directions.
func (t *Timeline) Seek(progress float64) *scene.Snapshot {
	offset := geometry.Clamp(progress, 0, 1) * t.total
	snap := t.tree.Base()
	for _, seg := range t.segments {
		t.apply(seg, seg.Local(offset), snap)
	}
	return snap
}

// apply runs one keyframe. A keyframe that panics leaves its targets at the
// state earlier segments produced.
func (t *Timeline) apply(seg Segment, local float64, snap *scene.Snapshot) {
	if seg.Apply == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("timeline: segment %s at %.3f: %v", seg.ID, local, r)
		}
	}()
	seg.Apply(local, snap)
}

// Local returns the local progress of segment id at the given progress.
func (t *Timeline) Local(id string, progress float64) (float64, bool) {
	seg, ok := t.Segment(id)
	if !ok {
		return 0, false
	}
	return seg.Local(geometry.Clamp(progress, 0, 1) * t.total), true
}

// Active returns the segment whose window holds progress. At a boundary the
// later segment wins; progress 1 maps to the last segment.
func (t *Timeline) Active(progress float64) (Segment, bool) {
	if len(t.segments) == 0 {
		return Segment{}, false
	}
	offset := geometry.Clamp(progress, 0, 1) * t.total
	for i := len(t.segments) - 1; i >= 0; i-- {
		if offset >= t.segments[i].Start {
			return t.segments[i], true
		}
	}
	return t.segments[0], true
}

// ProgressAt converts an absolute offset back to progress.
func (t *Timeline) ProgressAt(offset float64) float64 {
	if t.total <= 0 {
		return 0
	}
	return geometry.Clamp(offset/t.total, 0, 1)
}
