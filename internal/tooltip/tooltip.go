package tooltip

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ziadkadry99/attnviz/internal/geometry"
	"github.com/ziadkadry99/attnviz/internal/scene"
)

// Side is where the tooltip is anchored relative to its trigger.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// ParseSide validates a side name. An empty name means top.
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case "":
		return SideTop, nil
	case SideTop, SideBottom, SideLeft, SideRight:
		return Side(s), nil
	}
	return "", fmt.Errorf("unknown tooltip side %q", s)
}

// State of the tooltip engine.
type State int

const (
	Idle State = iota
	Pending
	Visible
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Visible:
		return "visible"
	default:
		return "idle"
	}
}

// Defaults.
const (
	DefaultDelay   = 150 * time.Millisecond
	DefaultPadding = 8.0
	DefaultGap     = 8.0
)

// Typography used by Measure.
const (
	charWidth  = 7.0
	lineHeight = 16.0
	padX       = 8.0
	padY       = 6.0
	maxWidth   = 280.0
)

// Options configure an Engine.
type Options struct {
	Delay   time.Duration
	Padding float64
	Gap     float64
	Side    Side
}

func (o Options) withDefaults() Options {
	if o.Delay < 0 {
		o.Delay = 0
	}
	if o.Padding <= 0 {
		o.Padding = DefaultPadding
	}
	if o.Gap <= 0 {
		o.Gap = DefaultGap
	}
	if o.Side == "" {
		o.Side = SideTop
	}
	return o
}

// Resolver returns the current bounding rect of a trigger, or false when the
// trigger no longer exists.
type Resolver func(trigger string) (geometry.Rect, bool)

// Engine is the tooltip state machine of one mounted visualization. It owns
// a single tooltip node whose content is swapped per trigger.
type Engine struct {
	opts     Options
	state    State
	trigger  string
	content  string
	side     Side
	since    time.Time
	rect     geometry.Rect
	viewport geometry.Size
}

// New returns an idle engine.
func New(opts Options) *Engine {
	return &Engine{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// State returns the current state.
func (e *Engine) State() State { return e.state }

// Trigger returns the current trigger id, empty when idle.
func (e *Engine) Trigger() string { return e.trigger }

// Content returns the current content.
func (e *Engine) Content() string { return e.content }

// Rect returns the last placed tooltip rectangle.
func (e *Engine) Rect() geometry.Rect { return e.rect }

// Enter starts the delay for trigger. When a tooltip is already visible the
// content moves to the new trigger without waiting again. An empty side uses
// the configured default.
func (e *Engine) Enter(now time.Time, trigger, content string, side Side) {
	if side == "" {
		side = e.opts.Side
	}
	e.trigger = trigger
	e.content = content
	e.side = side
	if e.state == Visible {
		return
	}
	e.state = Pending
	e.since = now
}

// Leave returns to idle if trigger is the current one.
func (e *Engine) Leave(trigger string) {
	if trigger != e.trigger {
		return
	}
	e.hide()
}

func (e *Engine) hide() {
	e.state = Idle
	e.trigger = ""
	e.content = ""
	e.rect = geometry.Rect{}
}

// Advance promotes a pending tooltip once the delay has elapsed and places it
// within viewport. It reports whether the engine changed state.
func (e *Engine) Advance(now time.Time, viewport geometry.Size, resolve Resolver) bool {
	if e.state != Pending || now.Sub(e.since) < e.opts.Delay {
		return false
	}
	e.state = Visible
	e.Reposition(viewport, resolve)
	return true
}

// Reposition recomputes the placement of a visible tooltip, hiding it when
// its trigger has disappeared.
func (e *Engine) Reposition(viewport geometry.Size, resolve Resolver) {
	e.viewport = viewport
	if e.state != Visible {
		return
	}
	trigger, ok := resolve(e.trigger)
	if !ok {
		e.hide()
		return
	}
	e.rect = Place(trigger, Measure(e.content), e.side, e.opts.Gap, viewport, e.opts.Padding)
}

// Place anchors a tip of size tip on side of trigger, gap pixels away, then
// clamps it so it lies within viewport inset by padding on every edge.
func Place(trigger geometry.Rect, tip geometry.Size, side Side, gap float64, viewport geometry.Size, padding float64) geometry.Rect {
	c := trigger.Center()
	r := geometry.Rect{W: tip.W, H: tip.H}
	switch side {
	case SideBottom:
		r.X, r.Y = c.X-tip.W/2, trigger.Bottom()+gap
	case SideLeft:
		r.X, r.Y = trigger.X-gap-tip.W, c.Y-tip.H/2
	case SideRight:
		r.X, r.Y = trigger.Right()+gap, c.Y-tip.H/2
	default:
		r.X, r.Y = c.X-tip.W/2, trigger.Y-gap-tip.H
	}

	bounds := geometry.Rect{W: viewport.W, H: viewport.H}.Inset(padding)
	if r.W > bounds.W {
		r.W = bounds.W
	}
	if r.H > bounds.H {
		r.H = bounds.H
	}
	r.X = geometry.Clamp(r.X, bounds.X, bounds.Right()-r.W)
	r.Y = geometry.Clamp(r.Y, bounds.Y, bounds.Bottom()-r.H)
	return r
}

// Measure estimates the box needed for content, wrapping at a fixed width.
func Measure(content string) geometry.Size {
	usable := maxWidth - 2*padX
	perLine := int(usable / charWidth)
	lines, widest := 0, 0
	for _, line := range strings.Split(content, "\n") {
		n := utf8.RuneCountInString(line)
		wrapped := 1
		if n > perLine {
			wrapped = (n + perLine - 1) / perLine
			n = perLine
		}
		lines += wrapped
		if n > widest {
			widest = n
		}
	}
	return geometry.Size{
		W: float64(widest)*charWidth + 2*padX,
		H: float64(lines)*lineHeight + 2*padY,
	}
}

// Node ids of the tooltip.
const (
	NodeID scene.ID = "tooltip"
	BoxID  scene.ID = "tooltip/box"
	TextID scene.ID = "tooltip/text"
)

// Declare adds the tooltip node under parent. It starts hidden.
func Declare(tree *scene.Tree, parent scene.ID) error {
	if err := tree.Declare(parent, NodeID, scene.KindGroup, scene.Attrs{
		scene.AttrVisibility: "hidden",
		"role":               "tooltip",
		"pointer-events":     "none",
	}); err != nil {
		return fmt.Errorf("declaring tooltip: %w", err)
	}
	if err := tree.Declare(NodeID, BoxID, scene.KindRect, scene.Attrs{
		"x": "0", "y": "0", "width": "0", "height": "0",
		"rx": "4", "fill": "#222633", "stroke": "#4e79a7",
	}); err != nil {
		return fmt.Errorf("declaring tooltip: %w", err)
	}
	if err := tree.Declare(NodeID, TextID, scene.KindText, scene.Attrs{
		scene.TextKey: "", "x": "0", "y": "0", "font-size": "12", "fill": "#e6e6e6",
	}); err != nil {
		return fmt.Errorf("declaring tooltip: %w", err)
	}
	return nil
}

// Apply writes the engine's state onto the tooltip node of s.
func (e *Engine) Apply(s *scene.Snapshot) {
	if e.state != Visible {
		s.Hide(NodeID)
		return
	}
	s.Show(NodeID)
	s.SetRect(BoxID, e.rect)
	s.SetFloat(TextID, "x", e.rect.X+padX)
	s.SetFloat(TextID, "y", e.rect.Y+padY+lineHeight*0.75)
	s.SetText(TextID, e.content)
	s.Set(NodeID, "data-trigger", e.trigger)
}
