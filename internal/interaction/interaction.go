package interaction

import (
	"fmt"
	"math"
	"strings"

	"github.com/ziadkadry99/attnviz/internal/scene"
	"github.com/ziadkadry99/attnviz/internal/stages"
)

// Path and token classes toggled by the controller.
const (
	ClassStrong   = "strong"
	ClassWeak     = "weak"
	ClassHovered  = "token-hovered"
	ClassSelected = "token-selected"
)

// EventKind is a pointer event on a query token element.
type EventKind string

const (
	Enter EventKind = "enter"
	Leave EventKind = "leave"
	Click EventKind = "click"
)

// Event is one pointer event routed to a head's controller.
type Event struct {
	Kind  EventKind `json:"kind"`
	Head  int       `json:"head"`
	Token int       `json:"token"`
}

// HoverSelection is the per-head interaction state. A selection overrides
// the hover for display.
type HoverSelection struct {
	Hovered  *int `json:"hovered,omitempty"`
	Selected *int `json:"selected,omitempty"`
}

// Displayed returns the token whose row is on display.
func (hs HoverSelection) Displayed() (int, bool) {
	if hs.Selected != nil {
		return *hs.Selected, true
	}
	if hs.Hovered != nil {
		return *hs.Hovered, true
	}
	return 0, false
}

// Controller owns the hover and selection of one head.
type Controller struct {
	head int
	env  *stages.Env
	sel  HoverSelection
}

// NewController returns the controller for head h of env.
func NewController(env *stages.Env, h int) *Controller {
	return &Controller{head: h, env: env}
}

// Head returns the controlled head index.
func (c *Controller) Head() int { return c.head }

// Selection returns a copy of the current state.
func (c *Controller) Selection() HoverSelection { return c.sel }

func (c *Controller) valid(i int) bool { return i >= 0 && i < c.env.N() }

// PointerEnter hovers token i.
func (c *Controller) PointerEnter(i int) {
	if !c.valid(i) {
		return
	}
	c.sel.Hovered = &i
}

// PointerLeave clears the hover unless a selection is active.
func (c *Controller) PointerLeave(i int) {
	if c.sel.Selected != nil {
		return
	}
	if c.sel.Hovered != nil && *c.sel.Hovered == i {
		c.sel.Hovered = nil
	}
}

// Click toggles the selection of token i.
func (c *Controller) Click(i int) {
	if !c.valid(i) {
		return
	}
	if c.sel.Selected != nil && *c.sel.Selected == i {
		c.sel.Selected = nil
		return
	}
	c.sel.Selected = &i
}

// Apply overlays the interaction state on s: paths from the displayed token
// become strong and every other path weak, and the head's chart shows the
// displayed row. With nothing displayed s is left as the stages wrote it.
func (c *Controller) Apply(s *scene.Snapshot) {
	i, ok := c.sel.Displayed()
	if !ok {
		return
	}
	h := c.head
	n := c.env.N()
	l := c.env.Layout
	for src := 0; src < n; src++ {
		q := stages.QueryID(h, src)
		s.RemoveClass(q, ClassHovered)
		s.RemoveClass(q, ClassSelected)
		for j := 0; j < n; j++ {
			id := stages.PathID(h, src, j)
			if src == i {
				s.RemoveClass(id, ClassWeak)
				s.AddClass(id, ClassStrong)
			} else {
				s.RemoveClass(id, ClassStrong)
				s.AddClass(id, ClassWeak)
			}
			if !s.Visible(id) {
				continue
			}
			op := s.Float(id, scene.AttrOpacity)
			if src == i {
				s.SetOpacity(id, math.Max(op, 0.9))
				s.SetFloat(id, "stroke-width", 4)
			} else {
				s.SetOpacity(id, op*0.35)
			}
		}
	}
	if c.sel.Selected != nil {
		s.AddClass(stages.QueryID(h, i), ClassSelected)
	} else {
		s.AddClass(stages.QueryID(h, i), ClassHovered)
	}

	for j, w := range c.env.Model.Row(h, i) {
		id := stages.ChartID(h, j)
		s.Show(id)
		s.SetOpacity(id, 1)
		s.SetRect(id, l.ChartBar(h, j, w))
	}
	label := stages.ChartLabelID(h)
	s.SetText(label, fmt.Sprintf("attention from %s", c.env.Tokens[i].Text))
	s.SetOpacity(label, 1)
}

// Describe is the tooltip text for query token i of the controlled head.
func (c *Controller) Describe(i int) string {
	if !c.valid(i) {
		return ""
	}
	row := c.env.Model.Row(c.head, i)
	var b strings.Builder
	fmt.Fprintf(&b, "%s · head %d", c.env.Tokens[i].Text, c.head+1)
	for j, w := range row {
		fmt.Fprintf(&b, "\n%s %.2f", c.env.Tokens[j].Text, w)
	}
	return b.String()
}

// Set holds one controller per head.
type Set struct {
	ctrls []*Controller
}

// NewSet builds a controller for every head of env.
func NewSet(env *stages.Env) *Set {
	s := &Set{ctrls: make([]*Controller, env.Heads())}
	for h := range s.ctrls {
		s.ctrls[h] = NewController(env, h)
	}
	return s
}

// Rebind points every controller at a rebuilt env. Selections survive when
// the head and token counts are unchanged and are reset otherwise.
func (s *Set) Rebind(env *stages.Env) {
	if env.Heads() != len(s.ctrls) {
		*s = *NewSet(env)
		return
	}
	for _, c := range s.ctrls {
		if c.env.N() != env.N() {
			c.sel = HoverSelection{}
		}
		c.env = env
	}
}

// Len returns the number of controllers.
func (s *Set) Len() int { return len(s.ctrls) }

// Controller returns the controller of head h.
func (s *Set) Controller(h int) (*Controller, bool) {
	if h < 0 || h >= len(s.ctrls) {
		return nil, false
	}
	return s.ctrls[h], true
}

// Dispatch routes ev to its head's controller.
func (s *Set) Dispatch(ev Event) error {
	c, ok := s.Controller(ev.Head)
	if !ok {
		return fmt.Errorf("dispatching %s: no head %d", ev.Kind, ev.Head)
	}
	switch ev.Kind {
	case Enter:
		c.PointerEnter(ev.Token)
	case Leave:
		c.PointerLeave(ev.Token)
	case Click:
		c.Click(ev.Token)
	default:
		return fmt.Errorf("dispatching: unknown pointer event %q", ev.Kind)
	}
	return nil
}

// Apply overlays every controller on s.
func (s *Set) Apply(snap *scene.Snapshot) {
	for _, c := range s.ctrls {
		c.Apply(snap)
	}
}
