package stages

import (
	"fmt"
	"unicode/utf8"

	"github.com/ziadkadry99/attnviz/internal/attention"
	"github.com/ziadkadry99/attnviz/internal/geometry"
	"github.com/ziadkadry99/attnviz/internal/model"
	"github.com/ziadkadry99/attnviz/internal/scene"
)

// DefaultPhrase is revealed character by character by the intro stage.
const DefaultPhrase = "Inside a Transformer Block"

// Intro phrase typography.
const (
	introFontSize  = 28.0
	introCharWidth = 16.0
)

const (
	textFill   = "#e6e6e6"
	panelFill  = "#1a1d27"
	pathColor  = "#9ecae1"
	waveColor  = "#ffffff"
	pulseColor = "#ffd166"
)

// Env is everything the stage keyframes read. It is built by the Scene
// Renderer at mount and replaced wholesale on rebuild.
type Env struct {
	Layout geometry.Layout
	Tokens []model.Token
	Model  *attention.Model
	Arena  *scene.Arena
	Phrase string
}

// NewEnv lays out tokens in container and builds the attention model and the
// arena over tree.
func NewEnv(tree *scene.Tree, container geometry.Size, tokens []model.Token, heads int, src attention.Source, phrase string) *Env {
	return NewEnvWithModel(tree, container, tokens, attention.NewModel(heads, len(tokens), src), phrase)
}

// NewEnvWithModel is NewEnv over an existing model, used when only the
// layout changes and the weights must stay as they are.
func NewEnvWithModel(tree *scene.Tree, container geometry.Size, tokens []model.Token, m *attention.Model, phrase string) *Env {
	return &Env{
		Layout: geometry.NewLayout(container, len(tokens), m.NumHeads()),
		Tokens: tokens,
		Model:  m,
		Arena:  scene.NewArena(tree),
		Phrase: phrase,
	}
}

// N returns the token count.
func (e *Env) N() int { return len(e.Tokens) }

// Heads returns the head count.
func (e *Env) Heads() int { return e.Model.NumHeads() }

func (e *Env) phraseRunes() []rune {
	if e.Phrase == "" {
		return []rune(DefaultPhrase)
	}
	return []rune(e.Phrase)
}

// introCharX is the x position of phrase character k, centring the phrase.
func (e *Env) introCharX(k int) float64 {
	n := utf8.RuneCountInString(string(e.phraseRunes()))
	start := e.Layout.Container.W/2 - float64(n)*introCharWidth/2
	return start + (float64(k)+0.5)*introCharWidth
}

// pathGeometry is the curve from query i to key j inside head h.
func (e *Env) pathGeometry(h, i, j int) geometry.Path {
	l := e.Layout
	from := l.ProjectionRect(h, i, 0)
	return geometry.BezierPath(l.PanelX(h, i), from.Bottom()+6, l.PanelX(h, j), l.KeyY(h))
}

func fmtf(v float64) string { return geometry.Format(v) }

// Declare adds every node the stages animate to tree. Nodes start in their
// rest state: hidden or fully transparent.
func Declare(tree *scene.Tree, env *Env) error {
	d := declarer{tree: tree}
	l := env.Layout
	n := env.N()
	heads := env.Heads()

	d.node("", RootID, scene.KindGroup, scene.Attrs{"data-stage": ""})
	for _, g := range []scene.ID{IntroID, TokensID, EmbeddingID, PositionalID, HeadsID, OutputID, RailID} {
		d.node(RootID, g, scene.KindGroup, nil)
	}

	for k, r := range env.phraseRunes() {
		d.node(IntroID, IntroCharID(k), scene.KindText, scene.Attrs{
			scene.TextKey:   string(r),
			"x":             fmtf(env.introCharX(k)),
			"y":             fmtf(l.IntroY()),
			"font-size":     fmtf(introFontSize),
			"text-anchor":   "middle",
			"fill":          textFill,
			scene.AttrOpacity: "0",
		})
	}

	bar := l.BarSize()
	for i, tok := range env.Tokens {
		d.node(TokensID, TokenTextID(i), scene.KindText, scene.Attrs{
			scene.TextKey:     tok.Text,
			"x":               fmtf(l.TokenX(i)),
			"y":               fmtf(l.TokenY()),
			"text-anchor":     "middle",
			"fill":            textFill,
			"data-token":      fmt.Sprint(i),
			scene.AttrOpacity: "0",
		})

		r := geometry.BarRect(l.TokenX(i), l.EmbedY(), geometry.Size{})
		d.vector(env.Arena, EmbeddingID, BaseKey(i), rectAttrs(r, model.ColorBase.Fill()))

		wave := geometry.BarRect(l.TokenX(i), l.EmbedY(), bar)
		wave.H = bar.H / 4
		attrs := rectAttrs(wave, waveColor)
		attrs[scene.AttrVisibility] = "hidden"
		attrs[scene.AttrOpacity] = "0"
		d.node(PositionalID, WaveID(i), scene.KindRect, attrs)
	}

	for h := 0; h < heads; h++ {
		d.declareHead(env, h)
	}

	for i := 0; i < n; i++ {
		r := geometry.BarRect(l.TokenX(i), l.OutputY(), geometry.Size{})
		d.vector(env.Arena, OutputID, MergedKey(heads, i), rectAttrs(r, model.ColorPostAttention.Fill()))
	}

	for k, st := range catalog {
		d.node(RailID, RailItemID(st.ID), scene.KindText, scene.Attrs{
			scene.TextKey: st.Title,
			"x":           "8",
			"y":           fmtf(16 + float64(k)*14),
			"font-size":   "10",
			"fill":        textFill,
			"data-stage":  st.ID,
			scene.AttrClass: "stage-inactive",
		})
	}

	return d.err
}

func (d *declarer) declareHead(env *Env, h int) {
	l := env.Layout
	n := env.N()
	p := l.Panel(h)
	head, _ := env.Model.Head(h)

	d.node(HeadsID, HeadID(h), scene.KindGroup, scene.Attrs{"data-head": fmt.Sprint(h)})
	panel := rectAttrs(p, panelFill)
	panel[scene.AttrOpacity] = "0"
	panel["rx"] = "8"
	d.node(HeadID(h), PanelID(h), scene.KindRect, panel)
	d.node(HeadID(h), HeadLabelID(h), scene.KindText, scene.Attrs{
		scene.TextKey:     fmt.Sprintf("Head %d · %s", h+1, head.Pattern),
		"x":               fmtf(p.X + 8),
		"y":               fmtf(p.Y + 14),
		"font-size":       "11",
		"fill":            textFill,
		scene.AttrOpacity: "0",
	})

	clone := l.CloneSize()
	for i := 0; i < n; i++ {
		c := l.CloneCenter(h, i)
		d.vector(env.Arena, HeadID(h), CloneKey(h, i), rectAttrs(geometry.BarRect(c.X, c.Y, clone), model.ColorBase.Fill()))
		d.node(HeadID(h), QueryID(h, i), scene.KindText, scene.Attrs{
			scene.TextKey:     env.Tokens[i].Text,
			"x":               fmtf(c.X),
			"y":               fmtf(c.Y - clone.H/2 - 6),
			"font-size":       "11",
			"text-anchor":     "middle",
			"fill":            textFill,
			"data-head":       fmt.Sprint(h),
			"data-token":      fmt.Sprint(i),
			scene.AttrClass:   "token-hit",
			scene.AttrOpacity: "0",
		})
		for k := range projections {
			r := l.ProjectionRect(h, i, k)
			r.H = 0
			attrs := rectAttrs(r, projectionColors[k])
			attrs[scene.AttrVisibility] = "hidden"
			d.node(HeadID(h), ProjectionID(h, i, k), scene.KindRect, attrs)
		}
	}

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d.node(HeadID(h), PathID(h, i, j), scene.KindPath, scene.Attrs{
				"d":                  env.pathGeometry(h, i, j).D(),
				"fill":               "none",
				"stroke":             pathColor,
				"stroke-width":       "1",
				"data-head":          fmt.Sprint(h),
				"data-source":        fmt.Sprint(i),
				"data-target":        fmt.Sprint(j),
				scene.AttrClass:      "attention-line",
				scene.AttrOpacity:    "0",
				scene.AttrVisibility: "hidden",
			})
		}
	}

	for j := 0; j < n; j++ {
		d.node(HeadID(h), KeyLabelID(h, j), scene.KindText, scene.Attrs{
			scene.TextKey:     env.Tokens[j].Text,
			"x":               fmtf(l.PanelX(h, j)),
			"y":               fmtf(l.KeyY(h) + 14),
			"font-size":       "10",
			"text-anchor":     "middle",
			"fill":            textFill,
			scene.AttrOpacity: "0",
		})
		attrs := rectAttrs(l.ChartBar(h, j, 0), projectionColors[1])
		attrs[scene.AttrVisibility] = "hidden"
		attrs["data-target"] = fmt.Sprint(j)
		d.node(HeadID(h), ChartID(h, j), scene.KindRect, attrs)

		out := geometry.BarRect(l.HeadOutputCenter(h, j).X, l.HeadOutputCenter(h, j).Y, geometry.Size{})
		attrs = rectAttrs(out, projectionColors[2])
		attrs[scene.AttrVisibility] = "hidden"
		d.node(HeadID(h), HeadOutID(h, j), scene.KindRect, attrs)
	}
	d.node(HeadID(h), ChartLabelID(h), scene.KindText, scene.Attrs{
		scene.TextKey:     "",
		"x":               fmtf(p.Right() - 8),
		"y":               fmtf(p.Y + 14),
		"font-size":       "10",
		"text-anchor":     "end",
		"fill":            textFill,
		scene.AttrOpacity: "0",
	})
}

func rectAttrs(r geometry.Rect, fill string) scene.Attrs {
	return scene.Attrs{
		"x":            fmtf(r.X),
		"y":            fmtf(r.Y),
		"width":        fmtf(r.W),
		"height":       fmtf(r.H),
		"fill":         fill,
		"stroke":       "none",
		"stroke-width": "0",
	}
}

// declarer collects the first declaration error so Declare reads linearly.
type declarer struct {
	tree *scene.Tree
	err  error
}

func (d *declarer) node(parent, id scene.ID, kind scene.Kind, attrs scene.Attrs) {
	if d.err != nil {
		return
	}
	d.err = d.tree.Declare(parent, id, kind, attrs)
}

func (d *declarer) vector(arena *scene.Arena, parent scene.ID, key scene.Key, attrs scene.Attrs) {
	if d.err != nil {
		return
	}
	_, d.err = arena.Declare(parent, key, attrs)
}
