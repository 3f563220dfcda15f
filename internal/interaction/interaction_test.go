package interaction

import (
	"testing"

	"github.com/ziadkadry99/attnviz/internal/attention"
	"github.com/ziadkadry99/attnviz/internal/geometry"
	"github.com/ziadkadry99/attnviz/internal/model"
	"github.com/ziadkadry99/attnviz/internal/scene"
	"github.com/ziadkadry99/attnviz/internal/stages"
	"github.com/ziadkadry99/attnviz/internal/timeline"
)

func setup(t *testing.T) (*stages.Env, *scene.Snapshot) {
	t.Helper()
	tree := scene.NewTree()
	tokens := model.TokensFrom([]string{"Transformers", "power", "modern", "AI"})
	env := stages.NewEnv(tree, geometry.Size{W: 1200, H: 800}, tokens, 2, attention.NewSource(1), "")
	if err := stages.Declare(tree, env); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	tl, err := timeline.Build(tree, timeline.Sequence(stages.Library(env, timeline.DefaultBudgets(), 800)...))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	seg, _ := tl.Segment(stages.StageSoftmax)
	return env, tl.Seek(seg.End() / tl.Total())
}

func strongPaths(s *scene.Snapshot, h, n int) (strong []int) {
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if s.HasClass(stages.PathID(h, i, j), ClassStrong) {
				strong = append(strong, i)
			}
		}
	}
	return strong
}

func TestHoverMarksExactlyRowPaths(t *testing.T) {
	env, s := setup(t)
	set := NewSet(env)
	if err := set.Dispatch(Event{Kind: Enter, Head: 0, Token: 2}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	set.Apply(s)

	strong := strongPaths(s, 0, 4)
	if len(strong) != 4 {
		t.Fatalf("expected 4 strong paths, got %d", len(strong))
	}
	for _, src := range strong {
		if src != 2 {
			t.Errorf("path with data-source %d marked strong", src)
		}
	}
	for j := 0; j < 4; j++ {
		if v, _ := s.Get(stages.PathID(0, 2, j), "data-source"); v != "2" {
			t.Errorf("strong path has data-source %q", v)
		}
	}
	if got := strongPaths(s, 1, 4); len(got) != 0 {
		t.Errorf("head 1 state must be independent, got %d strong paths", len(got))
	}

	want := env.Layout.ChartBar(0, 3, env.Model.Weight(0, 2, 3))
	if got := s.Rect(stages.ChartID(0, 3)); got.H-want.H > 0.006 || want.H-got.H > 0.006 {
		t.Errorf("chart bar: expected height %v, got %v", want.H, got.H)
	}
}

func TestSelectionOverridesHover(t *testing.T) {
	env, _ := setup(t)
	c := NewController(env, 0)

	c.PointerEnter(1)
	c.Click(1)
	c.PointerLeave(1)
	if i, ok := c.Selection().Displayed(); !ok || i != 1 {
		t.Fatalf("selection should survive leave, got %d %v", i, ok)
	}

	c.PointerEnter(3)
	if i, _ := c.Selection().Displayed(); i != 1 {
		t.Errorf("selection should win over hover, got %d", i)
	}

	c.Click(1)
	if i, ok := c.Selection().Displayed(); !ok || i != 3 {
		t.Errorf("after deselect the hover should show, got %d %v", i, ok)
	}
	c.PointerLeave(3)
	if _, ok := c.Selection().Displayed(); ok {
		t.Error("nothing should be displayed")
	}
}

func TestApplyWithoutDisplayLeavesStages(t *testing.T) {
	env, s := setup(t)
	before := s.Clone()
	NewSet(env).Apply(s)
	if !before.Equal(s) {
		t.Error("apply with no hover must not change the snapshot")
	}
}

func TestDispatchErrors(t *testing.T) {
	env, _ := setup(t)
	set := NewSet(env)
	tests := []struct {
		name string
		ev   Event
	}{
		{"unknown head", Event{Kind: Enter, Head: 5}},
		{"negative head", Event{Kind: Enter, Head: -1}},
		{"unknown kind", Event{Kind: "drag", Head: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := set.Dispatch(tt.ev); err == nil {
				t.Error("expected error")
			}
		})
	}
	if err := set.Dispatch(Event{Kind: Click, Head: 0, Token: 99}); err != nil {
		t.Errorf("out of range token should be ignored, got %v", err)
	}
	c, _ := set.Controller(0)
	if _, ok := c.Selection().Displayed(); ok {
		t.Error("out of range token must not be selected")
	}
}

func TestDescribe(t *testing.T) {
	env, _ := setup(t)
	c := NewController(env, 1)
	if got := c.Describe(0); got == "" {
		t.Error("expected description")
	}
	if got := c.Describe(10); got != "" {
		t.Errorf("expected empty description, got %q", got)
	}
}

func TestRebindKeepsSelection(t *testing.T) {
	env, _ := setup(t)
	set := NewSet(env)
	set.Dispatch(Event{Kind: Click, Head: 1, Token: 2})

	resized := stages.NewEnv(scene.NewTree(), geometry.Size{W: 600, H: 500}, env.Tokens, 2, attention.NewSource(1), "")
	set.Rebind(resized)
	c, _ := set.Controller(1)
	if i, ok := c.Selection().Displayed(); !ok || i != 2 {
		t.Errorf("selection should survive a resize, got %d %v", i, ok)
	}

	fewer := stages.NewEnv(scene.NewTree(), geometry.Size{W: 600, H: 500}, env.Tokens[:2], 2, attention.NewSource(1), "")
	set.Rebind(fewer)
	c, _ = set.Controller(1)
	if _, ok := c.Selection().Displayed(); ok {
		t.Error("selection should reset when the tokens change")
	}
}
