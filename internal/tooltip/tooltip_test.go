package tooltip

import (
	"strings"
	"testing"
	"time"

	"github.com/ziadkadry99/attnviz/internal/geometry"
	"github.com/ziadkadry99/attnviz/internal/scene"
)

func TestPlaceStaysInsideViewport(t *testing.T) {
	viewport := geometry.Size{W: 640, H: 480}
	const padding = 8.0
	bounds := geometry.Rect{W: viewport.W, H: viewport.H}.Inset(padding - 1e-9)
	tips := []geometry.Size{{W: 40, H: 20}, {W: 200, H: 60}, {W: 900, H: 700}}
	for _, side := range []Side{SideTop, SideBottom, SideLeft, SideRight} {
		for _, tip := range tips {
			for x := 0.0; x <= viewport.W; x += 40 {
				for y := 0.0; y <= viewport.H; y += 40 {
					trigger := geometry.Rect{X: x, Y: y, W: 24, H: 12}
					r := Place(trigger, tip, side, DefaultGap, viewport, padding)
					if !bounds.Contains(r) {
						t.Fatalf("side %s tip %+v trigger (%v,%v): %+v escapes %+v", side, tip, x, y, r, bounds)
					}
				}
			}
		}
	}
}

func TestPlaceAnchorsOnSide(t *testing.T) {
	viewport := geometry.Size{W: 1000, H: 1000}
	trigger := geometry.Rect{X: 500, Y: 500, W: 20, H: 10}
	tip := geometry.Size{W: 100, H: 30}
	tests := []struct {
		side Side
		want geometry.Rect
	}{
		{SideTop, geometry.Rect{X: 460, Y: 462, W: 100, H: 30}},
		{SideBottom, geometry.Rect{X: 460, Y: 518, W: 100, H: 30}},
		{SideLeft, geometry.Rect{X: 392, Y: 490, W: 100, H: 30}},
		{SideRight, geometry.Rect{X: 528, Y: 490, W: 100, H: 30}},
	}
	for _, tt := range tests {
		t.Run(string(tt.side), func(t *testing.T) {
			got := Place(trigger, tip, tt.side, 8, viewport, 8)
			if got != tt.want {
				t.Errorf("expected %+v, got %+v", tt.want, got)
			}
		})
	}
}

func TestStateMachine(t *testing.T) {
	e := New(Options{Delay: 100 * time.Millisecond})
	viewport := geometry.Size{W: 800, H: 600}
	resolve := func(string) (geometry.Rect, bool) { return geometry.Rect{X: 100, Y: 100, W: 20, H: 10}, true }
	t0 := time.Unix(0, 0)

	e.Enter(t0, "a", "hello", "")
	if e.State() != Pending {
		t.Fatalf("expected pending, got %s", e.State())
	}
	if e.Advance(t0.Add(50*time.Millisecond), viewport, resolve) {
		t.Fatal("should not show before the delay")
	}
	if !e.Advance(t0.Add(100*time.Millisecond), viewport, resolve) || e.State() != Visible {
		t.Fatalf("expected visible after the delay, got %s", e.State())
	}

	e.Enter(t0.Add(200*time.Millisecond), "b", "world", SideBottom)
	if e.State() != Visible || e.Content() != "world" || e.Trigger() != "b" {
		t.Errorf("content should swap in place: %s %q %q", e.State(), e.Trigger(), e.Content())
	}

	e.Leave("a")
	if e.State() != Visible {
		t.Error("leaving a stale trigger must not hide")
	}
	e.Leave("b")
	if e.State() != Idle {
		t.Errorf("expected idle, got %s", e.State())
	}
}

func TestRepositionHidesMissingTrigger(t *testing.T) {
	e := New(Options{Delay: 0})
	viewport := geometry.Size{W: 800, H: 600}
	present := func(string) (geometry.Rect, bool) { return geometry.Rect{X: 10, Y: 10, W: 5, H: 5}, true }
	gone := func(string) (geometry.Rect, bool) { return geometry.Rect{}, false }

	now := time.Now()
	e.Enter(now, "a", "x", "")
	e.Advance(now, viewport, present)
	if e.State() != Visible {
		t.Fatalf("expected visible, got %s", e.State())
	}
	e.Reposition(geometry.Size{W: 400, H: 300}, gone)
	if e.State() != Idle {
		t.Errorf("expected idle after trigger removal, got %s", e.State())
	}
}

func TestSingleNodeApply(t *testing.T) {
	tree := scene.NewTree()
	if err := tree.Declare("", "root", scene.KindGroup, nil); err != nil {
		t.Fatal(err)
	}
	if err := Declare(tree, "root"); err != nil {
		t.Fatalf("Declare: %v", err)
	}
	if err := Declare(tree, "root"); err == nil {
		t.Error("a second tooltip node must be rejected")
	}

	e := New(Options{Delay: 0})
	resolve := func(string) (geometry.Rect, bool) { return geometry.Rect{X: 50, Y: 50, W: 10, H: 10}, true }
	now := time.Now()
	for _, content := range []string{"first", "second"} {
		e.Enter(now, "a", content, "")
		e.Advance(now, geometry.Size{W: 300, H: 300}, resolve)
		s := tree.Base()
		e.Apply(s)
		if !s.Visible(NodeID) {
			t.Fatal("tooltip should be visible")
		}
		if got, _ := s.Get(TextID, scene.TextKey); got != content {
			t.Errorf("expected text %q, got %q", content, got)
		}
	}

	e.Leave("a")
	s := tree.Base()
	e.Apply(s)
	if s.Visible(NodeID) {
		t.Error("tooltip should be hidden when idle")
	}
}

func TestMeasureWraps(t *testing.T) {
	short := Measure("hi")
	long := Measure(string(make([]rune, 200)))
	if short.H >= long.H {
		t.Errorf("long content should wrap to more lines: %v vs %v", short, long)
	}
	if long.W > maxWidth {
		t.Errorf("width %v exceeds max %v", long.W, maxWidth)
	}
}

func TestParseSide(t *testing.T) {
	if s, err := ParseSide(""); err != nil || s != SideTop {
		t.Errorf("empty side: %v %v", s, err)
	}
	if _, err := ParseSide("diagonal"); err == nil {
		t.Error("expected error for unknown side")
	}
}

func TestMeasureLineCount(t *testing.T) {
	// 264px of usable width holds 37 glyphs, so 75 runes take three lines.
	got := Measure(strings.Repeat("a", 75))
	if want := 3*lineHeight + 2*padY; got.H != want {
		t.Errorf("height = %v, want %v", got.H, want)
	}
	if want := 37*charWidth + 2*padX; got.W != want {
		t.Errorf("width = %v, want %v", got.W, want)
	}
}
