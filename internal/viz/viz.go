package viz

import (
	"fmt"
	"io"
	"log"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ziadkadry99/attnviz/internal/attention"
	"github.com/ziadkadry99/attnviz/internal/geometry"
	"github.com/ziadkadry99/attnviz/internal/interaction"
	"github.com/ziadkadry99/attnviz/internal/model"
	"github.com/ziadkadry99/attnviz/internal/scene"
	"github.com/ziadkadry99/attnviz/internal/stages"
	"github.com/ziadkadry99/attnviz/internal/timeline"
	"github.com/ziadkadry99/attnviz/internal/tooltip"
)

// DefaultHeads is the head count used when none is given.
const DefaultHeads = 2

// Mount limits. Each head holds an n by n matrix and draws n*n paths.
const (
	MaxHeads  = 16
	MaxTokens = 64
)

// DefaultTokens is the sentence shown when the host supplies none.
var DefaultTokens = []string{"Transformers", "power", "modern", "AI"}

// Options configure a mount.
type Options struct {
	Tokens    []string
	Heads     int
	Container geometry.Size
	// Viewport is the host viewport; its height sizes the scroll budgets.
	// Zero means the container size.
	Viewport geometry.Size
	// ScrollAnchor reports whether the host found its scroll container.
	ScrollAnchor bool
	Budgets      timeline.Budgets
	Tooltip      tooltip.Options
	Phrase       string
	Seed         int64
	// Source overrides the seeded noise source of the uniform heads.
	Source attention.Source
}

// Frame is one batch of work for the host: the patches bringing its DOM to
// the current state plus the active stage.
type Frame struct {
	Patches  []scene.Patch `json:"patches"`
	Stage    string        `json:"stage"`
	Progress float64       `json:"progress"`
	// Listeners is the full replacement listener set, present only when it
	// changed since the previous frame.
	Listeners []Listener `json:"listeners,omitempty"`
}

// Teardown is what the host must undo on unmount.
type Teardown struct {
	Patches     []scene.Patch `json:"patches"`
	Listeners   []Listener    `json:"listeners"`
	RemoveStyle bool          `json:"remove_style"`
}

// StageWindow is a stage's place on the timeline.
type StageWindow struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Start         float64 `json:"start"`
	End           float64 `json:"end"`
	StartProgress float64 `json:"start_progress"`
	EndProgress   float64 `json:"end_progress"`
}

// Visualization is one mounted instance. It is not safe for concurrent use;
// a single goroutine owns it for its whole life.
type Visualization struct {
	id   string
	opts Options

	tree     *scene.Tree
	env      *stages.Env
	timeline *timeline.Timeline
	ctrls    *interaction.Set
	tip      *tooltip.Engine

	listeners Registry
	style     string

	scroll   bool
	progress float64

	applied *scene.Snapshot
	// pending holds structural patches from a rebuild, sent with the next frame.
	pending []scene.Patch
	rects   map[scene.ID]geometry.Rect
	// relisten is set when the listener set changed since the last frame.
	relisten bool

	unmounted bool
}

// Mount builds a visualization: scene tree, attention model, timeline,
// per-head controllers, tooltip, scoped stylesheet and listener registry.
func Mount(opts Options) (*Visualization, error) {
	if opts.Heads < 0 {
		return nil, fmt.Errorf("mounting visualization: invalid head count %d", opts.Heads)
	}
	if opts.Heads > MaxHeads {
		return nil, fmt.Errorf("mounting visualization: %d heads exceeds the limit of %d", opts.Heads, MaxHeads)
	}
	if opts.Heads == 0 {
		opts.Heads = DefaultHeads
	}
	if opts.Tokens == nil {
		opts.Tokens = DefaultTokens
	}
	if len(opts.Tokens) > MaxTokens {
		return nil, fmt.Errorf("mounting visualization: %d tokens exceeds the limit of %d", len(opts.Tokens), MaxTokens)
	}
	if opts.Seed == 0 {
		opts.Seed = attention.DefaultSeed
	}
	opts.Budgets = opts.Budgets.WithDefaults()

	v := &Visualization{
		id:     uuid.New().String(),
		opts:   opts,
		tip:    tooltip.New(opts.Tooltip),
		scroll: opts.ScrollAnchor,
	}
	v.style = Stylesheet(v.id)
	if err := v.build(model.TokensFrom(opts.Tokens), false); err != nil {
		return nil, fmt.Errorf("mounting visualization: %w", err)
	}
	v.ctrls = interaction.NewSet(v.env)

	if !v.scroll {
		log.Printf("viz: mount %s: scroll anchor missing, timeline disabled", v.id)
		v.progress = v.staticProgress()
	}
	v.register()
	return v, nil
}

// register replaces the listener set: scroll on the container when the
// timeline is enabled, pointer events on every query token.
func (v *Visualization) register() {
	v.listeners.RemoveAll()
	if v.scroll {
		v.listeners.Add(ContainerTarget, "scroll")
	}
	for h := 0; h < v.env.Heads(); h++ {
		for i := 0; i < v.env.N(); i++ {
			for _, ev := range []string{"pointerenter", "pointerleave", "click"} {
				v.listeners.Add(stages.QueryID(h, i), ev)
			}
		}
	}
}

// build declares a fresh scene for tokens at the current options. With
// keepWeights the current attention model is reused when it still matches the
// token and head counts.
func (v *Visualization) build(tokens []model.Token, keepWeights bool) error {
	tree := scene.NewTree()
	var env *stages.Env
	if keepWeights && v.env != nil && v.env.Model.Tokens() == len(tokens) && v.env.Model.NumHeads() == v.opts.Heads {
		env = stages.NewEnvWithModel(tree, v.opts.Container, tokens, v.env.Model, v.opts.Phrase)
	} else {
		src := v.opts.Source
		if src == nil {
			src = attention.NewSource(v.opts.Seed)
		}
		env = stages.NewEnv(tree, v.opts.Container, tokens, v.opts.Heads, src, v.opts.Phrase)
	}
	if err := stages.Declare(tree, env); err != nil {
		return err
	}
	if err := tooltip.Declare(tree, stages.RootID); err != nil {
		return err
	}
	tl, err := timeline.Build(tree, timeline.Sequence(stages.Library(env, v.opts.Budgets, v.viewport().H)...))
	if err != nil {
		return err
	}
	v.tree, v.env, v.timeline = tree, env, tl
	return nil
}

// rebuild replaces the scene and queues the patches the host needs. Trees
// with the same node ids are reconciled by the next frame's diff; otherwise
// the listener set is replaced and, once the host holds nodes, every old node
// is deleted and the new ones are created.
func (v *Visualization) rebuild(tokens []model.Token, keepWeights bool) error {
	old := v.tree
	if err := v.build(tokens, keepWeights); err != nil {
		return err
	}
	v.ctrls.Rebind(v.env)
	if !v.scroll {
		v.progress = v.staticProgress()
	}
	if sameIDs(old, v.tree) {
		return nil
	}
	v.register()
	v.relisten = true
	if v.applied != nil {
		v.pending = append(v.pending, old.DeletePatches()...)
		v.applied = nil
	}
	return nil
}

func sameIDs(a, b *scene.Tree) bool {
	ai, bi := a.IDs(), b.IDs()
	if len(ai) != len(bi) {
		return false
	}
	for i := range ai {
		if ai[i] != bi[i] {
			return false
		}
	}
	return true
}

func (v *Visualization) viewport() geometry.Size {
	vp := v.opts.Viewport
	if vp.W <= 0 {
		vp.W = v.opts.Container.W
	}
	if vp.H <= 0 {
		vp.H = v.opts.Container.H
	}
	return vp
}

// staticProgress is where the timeline rests without scroll: the end of the
// softmax stage, so every head shows its paths and chart.
func (v *Visualization) staticProgress() float64 {
	seg, ok := v.timeline.Segment(stages.StageSoftmax)
	if !ok || v.timeline.Total() <= 0 {
		return 1
	}
	return seg.End() / v.timeline.Total()
}

// ID returns the mount id used to scope the stylesheet.
func (v *Visualization) ID() string { return v.id }

// Style returns the scoped stylesheet, empty after unmount.
func (v *Visualization) Style() string { return v.style }

// Listeners returns the registered listeners.
func (v *Visualization) Listeners() []Listener { return v.listeners.List() }

// ScrollEnabled reports whether the timeline follows scroll.
func (v *Visualization) ScrollEnabled() bool { return v.scroll }

// Progress returns the current timeline progress.
func (v *Visualization) Progress() float64 { return v.progress }

// Tokens returns the mounted tokens.
func (v *Visualization) Tokens() []model.Token { return v.env.Tokens }

// Model returns the attention model.
func (v *Visualization) Model() *attention.Model { return v.env.Model }

// Tooltip returns the tooltip engine.
func (v *Visualization) Tooltip() *tooltip.Engine { return v.tip }

// Controllers returns the per-head interaction controllers.
func (v *Visualization) Controllers() *interaction.Set { return v.ctrls }

// ScrollHeight is the scroll length the host must provide.
func (v *Visualization) ScrollHeight() float64 {
	return timeline.ScrollHeight(v.timeline.Total(), v.viewport().H)
}

// Stages returns every stage window of the timeline.
func (v *Visualization) Stages() []StageWindow {
	total := v.timeline.Total()
	var out []StageWindow
	for _, seg := range v.timeline.Segments() {
		st, _ := stages.Lookup(seg.ID)
		w := StageWindow{ID: seg.ID, Title: st.Title, Start: seg.Start, End: seg.End()}
		if total > 0 {
			w.StartProgress = seg.Start / total
			w.EndProgress = seg.End() / total
		}
		out = append(out, w)
	}
	return out
}

// StageAt returns the id of the stage active at progress p.
func (v *Visualization) StageAt(p float64) string {
	if seg, ok := v.timeline.Active(p); ok {
		return seg.ID
	}
	return ""
}

// Scroll records the latest scroll state. It is ignored when the timeline is
// disabled or the mount has been torn down.
func (v *Visualization) Scroll(s timeline.ScrollState) {
	if v.unmounted || !v.scroll {
		return
	}
	v.progress = s.Progress()
}

// SetProgress moves the timeline directly, clamped to [0,1].
func (v *Visualization) SetProgress(p float64) {
	if v.unmounted {
		return
	}
	v.progress = geometry.Clamp(p, 0, 1)
}

// Pointer routes a pointer event to its head and drives the tooltip.
func (v *Visualization) Pointer(ev interaction.Event, now time.Time) error {
	if v.unmounted {
		return nil
	}
	if err := v.ctrls.Dispatch(ev); err != nil {
		return err
	}
	trigger := string(stages.QueryID(ev.Head, ev.Token))
	switch ev.Kind {
	case interaction.Enter:
		c, _ := v.ctrls.Controller(ev.Head)
		if text := c.Describe(ev.Token); text != "" {
			v.tip.Enter(now, trigger, text, "")
		}
	case interaction.Leave:
		v.tip.Leave(trigger)
	}
	return nil
}

// SetRects records the host-measured bounding boxes of trigger elements in
// scene coordinates. A nil map falls back to estimates from the snapshot.
func (v *Visualization) SetRects(rects map[scene.ID]geometry.Rect) {
	v.rects = rects
}

// Resize rebuilds the layout for a new container and repositions a visible
// tooltip, hiding it if its trigger is gone.
func (v *Visualization) Resize(container, viewport geometry.Size) error {
	if v.unmounted {
		return nil
	}
	v.opts.Container = container
	v.opts.Viewport = viewport
	if err := v.rebuild(v.env.Tokens, true); err != nil {
		return fmt.Errorf("resizing visualization: %w", err)
	}
	v.tip.Reposition(v.opts.Container, v.resolver(v.compose()))
	return nil
}

// SetTokens replaces the tokens, rebuilding the attention model and scene.
func (v *Visualization) SetTokens(words []string) error {
	if v.unmounted {
		return nil
	}
	if len(words) > MaxTokens {
		return fmt.Errorf("setting tokens: %d tokens exceeds the limit of %d", len(words), MaxTokens)
	}
	v.tip.Leave(v.tip.Trigger())
	if err := v.rebuild(model.TokensFrom(words), false); err != nil {
		return fmt.Errorf("setting tokens: %w", err)
	}
	return nil
}

// compose is the scene at the current progress with the interaction overlay
// and stage marks, before the tooltip.
func (v *Visualization) compose() *scene.Snapshot {
	snap := v.timeline.Seek(v.progress)
	stages.MarkActive(snap, v.activeStage())
	snap.Set(stages.RootID, "data-mount", v.id)
	v.ctrls.Apply(snap)
	return snap
}

// activeStage is the stage the rail marks. Without scroll the timeline rests
// on the boundary after softmax, which Active resolves to the next stage.
func (v *Visualization) activeStage() string {
	if !v.scroll {
		if _, ok := v.timeline.Segment(stages.StageSoftmax); ok {
			return stages.StageSoftmax
		}
	}
	return v.StageAt(v.progress)
}

// resolver finds trigger rects in the host measurements, falling back to an
// estimate from the element's declared text position.
func (v *Visualization) resolver(snap *scene.Snapshot) tooltip.Resolver {
	return func(trigger string) (geometry.Rect, bool) {
		id := scene.ID(trigger)
		if v.rects != nil {
			r, ok := v.rects[id]
			return r, ok
		}
		if !snap.Visible(id) {
			return geometry.Rect{}, false
		}
		text, _ := snap.Get(id, scene.TextKey)
		w := float64(utf8.RuneCountInString(text))*6.5 + 4
		x, y := snap.Float(id, "x"), snap.Float(id, "y")
		return geometry.Rect{X: x - w/2, Y: y - 12, W: w, H: 16}, true
	}
}

// Frame computes one batch: seek, interaction overlay, tooltip and stage
// class, returning the patches against the last applied state.
func (v *Visualization) Frame(now time.Time) Frame {
	if v.unmounted {
		return Frame{}
	}
	snap := v.compose()
	resolve := v.resolver(snap)
	if !v.tip.Advance(now, v.opts.Container, resolve) {
		v.tip.Reposition(v.opts.Container, resolve)
	}
	v.tip.Apply(snap)

	var patches []scene.Patch
	if len(v.pending) > 0 {
		patches = append(patches, v.pending...)
		v.pending = nil
	}
	if v.applied == nil {
		patches = append(patches, v.tree.CreatePatches(snap)...)
	} else {
		patches = append(patches, scene.Diff(v.applied, snap)...)
	}
	v.applied = snap

	stage, _ := snap.Get(stages.RootID, "data-stage")
	f := Frame{Patches: patches, Stage: stage, Progress: v.progress}
	if v.relisten {
		f.Listeners = v.listeners.List()
		v.relisten = false
	}
	return f
}

// Snapshot returns the last applied state, or the current one if no frame
// has been produced yet.
func (v *Visualization) Snapshot() *scene.Snapshot {
	if v.applied != nil {
		return v.applied.Clone()
	}
	snap := v.compose()
	v.tip.Apply(snap)
	return snap
}

// WriteSVG renders the current state as a standalone SVG document.
func (v *Visualization) WriteSVG(w io.Writer) error {
	opts := scene.DefaultSVGOptions()
	l := v.env.Layout
	opts.Width, opts.Height = l.Container.W, l.Container.H
	opts.Stylesheet = v.style
	opts.MountID = v.id
	return scene.RenderSVG(w, v.tree, v.Snapshot(), opts)
}

// Unmount tears the instance down: every listener, every node created for
// the host and the scoped stylesheet. Later calls return an empty teardown.
func (v *Visualization) Unmount() Teardown {
	if v.unmounted {
		return Teardown{}
	}
	v.unmounted = true
	td := Teardown{Listeners: v.listeners.RemoveAll(), RemoveStyle: v.style != ""}
	// A rebuild not yet flushed still owes the host the old tree's deletes.
	td.Patches = v.pending
	if v.applied != nil {
		td.Patches = append(td.Patches, v.tree.DeletePatches()...)
	}
	v.style = ""
	v.applied = nil
	v.pending = nil
	v.tip.Leave(v.tip.Trigger())
	return td
}

// Mounted reports whether Unmount has not been called yet.
func (v *Visualization) Mounted() bool { return !v.unmounted }
