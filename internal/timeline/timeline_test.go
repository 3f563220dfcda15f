package timeline

import (
	"math"
	"testing"

	"github.com/ziadkadry99/attnviz/internal/scene"
)

// newTree declares one rect per id with width 0.
func newTree(t *testing.T, ids ...scene.ID) *scene.Tree {
	t.Helper()
	tree := scene.NewTree()
	for _, id := range ids {
		if err := tree.Declare("", id, scene.KindRect, scene.Attrs{"width": "0"}); err != nil {
			t.Fatalf("Declare %s: %v", id, err)
		}
	}
	return tree
}

// widthTo animates id's width to 100*local.
func widthTo(id scene.ID) Keyframe {
	return func(local float64, s *scene.Snapshot) {
		if local <= 0 {
			return
		}
		s.SetFloat(id, "width", 100*local)
	}
}

func TestBuildValidation(t *testing.T) {
	tree := newTree(t, "a")
	tests := []struct {
		name string
		segs []Segment
	}{
		{"empty id", []Segment{{ID: "", Duration: 1}}},
		{"duplicate id", []Segment{{ID: "a", Duration: 1}, {ID: "a", Start: 1, Duration: 1}}},
		{"negative duration", []Segment{{ID: "a", Duration: -1}}},
		{"overlap", []Segment{{ID: "a", Duration: 10}, {ID: "b", Start: 5, Duration: 10}}},
		{"nan start", []Segment{{ID: "a", Start: math.NaN(), Duration: 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tree, tt.segs); err == nil {
				t.Error("expected error")
			}
		})
	}
	if _, err := Build(nil, nil); err == nil {
		t.Error("expected error for nil tree")
	}
}

func TestSequenceHasNoGaps(t *testing.T) {
	segs := Sequence(
		Step{ID: "a", Duration: 10},
		Step{ID: "b", Duration: 5},
		Step{ID: "c", Duration: -3},
		Step{ID: "d", Duration: 2},
	)
	var end float64
	for _, s := range segs {
		if s.Start != end {
			t.Errorf("segment %s starts at %v, want %v", s.ID, s.Start, end)
		}
		end = s.End()
	}
	if end != 17 {
		t.Errorf("total = %v, want 17", end)
	}
	tl, err := Build(newTree(t), segs)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if tl.Total() != 17 {
		t.Errorf("Total = %v, want 17", tl.Total())
	}
}

func TestSeekLocalProgress(t *testing.T) {
	tree := newTree(t, "a", "b")
	tl, err := Build(tree, Sequence(
		Step{ID: "grow-a", Duration: 100, Apply: widthTo("a")},
		Step{ID: "grow-b", Duration: 100, Apply: widthTo("b")},
	))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	tests := []struct {
		progress float64
		a, b     float64
	}{
		{-1, 0, 0},
		{0, 0, 0},
		{0.25, 50, 0},
		{0.5, 100, 0},
		{0.75, 100, 50},
		{1, 100, 100},
		{7, 100, 100},
		{math.NaN(), 0, 0},
	}
	for _, tt := range tests {
		s := tl.Seek(tt.progress)
		if got := s.Float("a", "width"); got != tt.a {
			t.Errorf("Seek(%v): a = %v, want %v", tt.progress, got, tt.a)
		}
		if got := s.Float("b", "width"); got != tt.b {
			t.Errorf("Seek(%v): b = %v, want %v", tt.progress, got, tt.b)
		}
	}
}

func TestSeekIdempotentAndReversible(t *testing.T) {
	tree := newTree(t, "a", "b")
	tl, err := Build(tree, Sequence(
		Step{ID: "grow-a", Duration: 3, Apply: widthTo("a")},
		Step{ID: "grow-b", Duration: 7, Apply: widthTo("b")},
	))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	once := tl.Seek(0.42)
	twice := tl.Seek(0.42)
	if !once.Equal(twice) {
		t.Error("Seek is not idempotent")
	}

	tl.Seek(0.8)
	back := tl.Seek(0.3)
	fresh, _ := Build(tree, tl.Segments())
	if !back.Equal(fresh.Seek(0.3)) {
		t.Error("seeking backwards differs from a fresh seek")
	}
}

func TestSeekRecoversFromPanickingKeyframe(t *testing.T) {
	tree := newTree(t, "a", "b")
	tl, err := Build(tree, Sequence(
		Step{ID: "broken", Duration: 1, Apply: func(float64, *scene.Snapshot) { panic("boom") }},
		Step{ID: "grow-b", Duration: 1, Apply: widthTo("b")},
	))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := tl.Seek(1)
	if s.Float("b", "width") != 100 {
		t.Error("segments after a panicking keyframe should still run")
	}
}

func TestActiveAndLocal(t *testing.T) {
	tl, err := Build(newTree(t), Sequence(
		Step{ID: "one", Duration: 10},
		Step{ID: "two", Duration: 10},
	))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tests := []struct {
		progress float64
		want     string
	}{
		{0, "one"},
		{0.49, "one"},
		{0.5, "two"},
		{1, "two"},
	}
	for _, tt := range tests {
		seg, ok := tl.Active(tt.progress)
		if !ok || seg.ID != tt.want {
			t.Errorf("Active(%v) = %q, want %q", tt.progress, seg.ID, tt.want)
		}
	}
	if local, ok := tl.Local("two", 0.75); !ok || local != 0.5 {
		t.Errorf("Local(two, 0.75) = %v, %v", local, ok)
	}
	if _, ok := tl.Local("three", 0.5); ok {
		t.Error("unknown segment should not be found")
	}
}

func TestZeroDurationSegment(t *testing.T) {
	seg := Segment{ID: "z", Start: 5}
	if seg.Local(4) != 0 || seg.Local(5) != 1 {
		t.Errorf("zero-duration local = %v, %v", seg.Local(4), seg.Local(5))
	}
}
