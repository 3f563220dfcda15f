package stages

import (
	"fmt"
	"math"

	"github.com/ziadkadry99/attnviz/internal/geometry"
	"github.com/ziadkadry99/attnviz/internal/model"
	"github.com/ziadkadry99/attnviz/internal/scene"
	"github.com/ziadkadry99/attnviz/internal/timeline"
)

// Stage ids in timeline order.
const (
	StageIntro       = "intro"
	StageEmbedding   = "embedding"
	StagePositional  = "positional"
	StageInputSplit  = "mha/input-split"
	StageQKV         = "mha/qkv"
	StageScores      = "mha/scores"
	StageSoftmax     = "mha/softmax"
	StageWeightedSum = "mha/weighted-sum"
	StageConcat      = "mha/concat"
	StageAddNorm1    = "add-norm/1"
	StageFFN         = "ffn"
	StageAddNorm2    = "add-norm/2"
)

// Unit selects which budget a stage draws its scroll length from.
type Unit string

const (
	UnitStage Unit = "stage"
	UnitMHA   Unit = "mha"
	UnitNorm  Unit = "norm"
	UnitFFN   Unit = "ffn"
)

// Of returns the unit's length in viewport heights.
func (u Unit) Of(b timeline.Budgets) float64 {
	switch u {
	case UnitMHA:
		return b.MHAUnit
	case UnitNorm:
		return b.NormUnit
	case UnitFFN:
		return b.FFNUnit
	default:
		return b.StageUnit
	}
}

// Stage describes one catalog entry.
type Stage struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Unit  Unit   `json:"unit"`
	build func(*Env) timeline.Keyframe
}

var catalog = []Stage{
	{ID: StageIntro, Title: "Intro", Unit: UnitStage, build: intro},
	{ID: StageEmbedding, Title: "Embedding", Unit: UnitStage, build: embedding},
	{ID: StagePositional, Title: "Positional Encoding", Unit: UnitStage, build: positional},
	{ID: StageInputSplit, Title: "Split Into Heads", Unit: UnitMHA, build: inputSplit},
	{ID: StageQKV, Title: "Q / K / V", Unit: UnitMHA, build: qkv},
	{ID: StageScores, Title: "Attention Scores", Unit: UnitMHA, build: scores},
	{ID: StageSoftmax, Title: "Softmax", Unit: UnitMHA, build: softmax},
	{ID: StageWeightedSum, Title: "Weighted Sum", Unit: UnitMHA, build: weightedSum},
	{ID: StageConcat, Title: "Concatenate Heads", Unit: UnitMHA, build: concat},
	{ID: StageAddNorm1, Title: "Add & Norm", Unit: UnitNorm, build: addNorm(1)},
	{ID: StageFFN, Title: "Feed-Forward", Unit: UnitFFN, build: feedForward},
	{ID: StageAddNorm2, Title: "Add & Norm", Unit: UnitNorm, build: addNorm(2)},
}

// Catalog returns the stages in timeline order.
func Catalog() []Stage {
	out := make([]Stage, len(catalog))
	copy(out, catalog)
	return out
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (Stage, bool) {
	for _, st := range catalog {
		if st.ID == id {
			return st, true
		}
	}
	return Stage{}, false
}

// Library builds the keyframes of every stage over env, sized by budgets in
// units of viewportHeight pixels.
func Library(env *Env, budgets timeline.Budgets, viewportHeight float64) []timeline.Step {
	budgets = budgets.WithDefaults()
	if viewportHeight <= 0 {
		viewportHeight = geometry.MinContainerHeight
	}
	steps := make([]timeline.Step, len(catalog))
	for i, st := range catalog {
		steps[i] = timeline.Step{
			ID:       st.ID,
			Duration: st.Unit.Of(budgets) * viewportHeight,
			Apply:    st.build(env),
		}
	}
	return steps
}

// smooth is the smoothstep easing curve; it maps 0->0 and 1->1 exactly.
func smooth(t float64) float64 {
	t = geometry.Clamp(t, 0, 1)
	return t * t * (3 - 2*t)
}

// window maps local progress into a sub-window [from, from+span] of it.
func window(local, from, span float64) float64 {
	if span <= 0 {
		if local >= from {
			return 1
		}
		return 0
	}
	return geometry.Clamp((local-from)/span, 0, 1)
}

// pulse rises from 0 to 1 and back over local.
func pulse(local float64) float64 {
	return math.Sin(math.Pi * geometry.Clamp(local, 0, 1))
}

func intro(env *Env) timeline.Keyframe {
	const span = 0.3
	return func(local float64, s *scene.Snapshot) {
		if local <= 0 {
			return
		}
		chars := len(env.phraseRunes())
		for k := 0; k < chars; k++ {
			start := 0.0
			if chars > 1 {
				start = float64(k) / float64(chars-1) * (1 - span)
			}
			s.SetOpacity(IntroCharID(k), window(local, start, span))
		}
		tokens := window(local, 1-span, span)
		for i := 0; i < env.N(); i++ {
			s.SetOpacity(TokenTextID(i), tokens)
		}
	}
}

func embedding(env *Env) timeline.Keyframe {
	return func(local float64, s *scene.Snapshot) {
		if local <= 0 {
			return
		}
		l := env.Layout
		target := l.BarSize()
		grow := smooth(window(local, 0.2, 0.8))
		for i := 0; i < env.N(); i++ {
			s.SetOpacity(TokenTextID(i), 1-window(local, 0, 0.5))
			key := BaseKey(i)
			env.Arena.Spawn(s, key)
			id, _ := env.Arena.Lookup(key)
			size := geometry.Size{W: target.W * grow, H: target.H * grow}
			s.SetRect(id, geometry.BarRect(l.TokenX(i), l.EmbedY(), size))
			env.Arena.SetColorStage(s, key, model.ColorBase)
		}
	}
}

func positional(env *Env) timeline.Keyframe {
	return func(local float64, s *scene.Snapshot) {
		if local <= 0 || local >= 1 {
			return
		}
		l := env.Layout
		bar := l.BarSize()
		decay := 1 - local
		for i := 0; i < env.N(); i++ {
			// Each bar's wave starts a little later than its left neighbour.
			delay := 0.25 * float64(i) / math.Max(float64(env.N()), 1)
			phase := window(local, delay, 1-delay)
			wave := WaveID(i)
			s.Show(wave)
			waveH := bar.H / 4
			top := l.EmbedY() - bar.H/2
			y := top + (bar.H-waveH)*(1-phase)
			s.SetFloat(wave, "y", y)
			s.SetOpacity(wave, 0.6*decay*pulse(phase))

			id, _ := env.Arena.Lookup(BaseKey(i))
			s.Set(id, "stroke", pulseColor)
			s.SetFloat(id, "stroke-width", 3*decay*pulse(phase*2))
		}
	}
}

func inputSplit(env *Env) timeline.Keyframe {
	return func(local float64, s *scene.Snapshot) {
		if local <= 0 {
			return
		}
		l := env.Layout
		t := smooth(local)
		base := l.BarSize()
		clone := l.CloneSize()
		for h := 0; h < env.Heads(); h++ {
			s.SetOpacity(PanelID(h), 0.85*t)
			s.SetOpacity(HeadLabelID(h), t)
			for i := 0; i < env.N(); i++ {
				key := CloneKey(h, i)
				env.Arena.Spawn(s, key)
				id, _ := env.Arena.Lookup(key)
				c := l.CloneCenter(h, i)
				size := geometry.Size{
					W: geometry.Lerp(base.W, clone.W, t),
					H: geometry.Lerp(base.H, clone.H, t),
				}
				x := geometry.Lerp(l.TokenX(i), c.X, t)
				y := geometry.Lerp(l.EmbedY(), c.Y, t)
				s.SetRect(id, geometry.BarRect(x, y, size))
				s.SetOpacity(QueryID(h, i), window(local, 0.5, 0.5))
			}
		}
		for i := 0; i < env.N(); i++ {
			id, _ := env.Arena.Lookup(BaseKey(i))
			s.SetOpacity(id, 1-0.6*t)
		}
	}
}

func qkv(env *Env) timeline.Keyframe {
	return func(local float64, s *scene.Snapshot) {
		if local <= 0 {
			return
		}
		l := env.Layout
		for h := 0; h < env.Heads(); h++ {
			for i := 0; i < env.N(); i++ {
				for k := range projections {
					// q, k and v appear one after another.
					t := smooth(window(local, float64(k)*0.2, 0.6))
					id := ProjectionID(h, i, k)
					r := l.ProjectionRect(h, i, k)
					r.H *= t
					s.Show(id)
					s.SetRect(id, r)
					s.SetOpacity(id, t)
				}
				s.SetOpacity(KeyLabelID(h, i), window(local, 0.6, 0.4))
			}
		}
	}
}

func scores(env *Env) timeline.Keyframe {
	return func(local float64, s *scene.Snapshot) {
		if local <= 0 {
			return
		}
		n := env.N()
		for h := 0; h < env.Heads(); h++ {
			for i := 0; i < n; i++ {
				// Rows are drawn top query first.
				t := smooth(window(local, 0.5*float64(i)/math.Max(float64(n), 1), 0.5))
				for j := 0; j < n; j++ {
					w := env.Model.Weight(h, i, j)
					id := PathID(h, i, j)
					s.Show(id)
					s.SetOpacity(id, w*t)
					s.SetFloat(id, "stroke-width", 1+3*w)
				}
			}
		}
	}
}

// chartRow is the query row shown by the softmax stage chart.
const chartRow = 0

func softmax(env *Env) timeline.Keyframe {
	return func(local float64, s *scene.Snapshot) {
		if local <= 0 {
			return
		}
		l := env.Layout
		t := smooth(local)
		for h := 0; h < env.Heads(); h++ {
			row := env.Model.Row(h, chartRow)
			for j, w := range row {
				id := ChartID(h, j)
				s.Show(id)
				s.SetRect(id, l.ChartBar(h, j, w*t))
			}
			if len(row) > 0 {
				s.SetText(ChartLabelID(h), fmt.Sprintf("softmax · %s", env.Tokens[chartRow].Text))
				s.SetOpacity(ChartLabelID(h), t)
			}
		}
	}
}

func weightedSum(env *Env) timeline.Keyframe {
	return func(local float64, s *scene.Snapshot) {
		if local <= 0 {
			return
		}
		l := env.Layout
		t := smooth(local)
		clone := l.CloneSize()
		n := env.N()
		for h := 0; h < env.Heads(); h++ {
			for i := 0; i < n; i++ {
				v := ProjectionID(h, i, 2)
				s.SetOpacity(v, 1-0.7*t)
				r := l.ProjectionRect(h, i, 2)
				r.Y = geometry.Lerp(r.Y, l.KeyY(h)-r.H, t)
				s.SetFloat(v, "y", r.Y)

				out := HeadOutID(h, i)
				c := l.HeadOutputCenter(h, i)
				s.Show(out)
				s.SetRect(out, geometry.BarRect(c.X, c.Y, geometry.Size{W: clone.W, H: clone.H * t}))
				s.SetOpacity(out, t)
				for j := 0; j < n; j++ {
					s.SetOpacity(PathID(h, i, j), env.Model.Weight(h, i, j)*(1-0.7*t))
				}
				s.SetOpacity(ChartID(h, i), 1-t)
			}
			s.SetOpacity(ChartLabelID(h), 1-t)
		}
	}
}

func concat(env *Env) timeline.Keyframe {
	return func(local float64, s *scene.Snapshot) {
		if local <= 0 {
			return
		}
		l := env.Layout
		t := smooth(local)
		heads := env.Heads()
		clone := l.CloneSize()
		bar := l.BarSize()
		n := env.N()
		for i := 0; i < n; i++ {
			for h := 0; h < heads; h++ {
				out := HeadOutID(h, i)
				c := l.HeadOutputCenter(h, i)
				x := geometry.Lerp(c.X, l.TokenX(i), t)
				y := geometry.Lerp(c.Y, l.OutputY(), t)
				s.SetRect(out, geometry.BarRect(x, y, clone))
				s.SetOpacity(out, 1-t)

				cloneID, _ := env.Arena.Lookup(CloneKey(h, i))
				s.SetOpacity(cloneID, 1-t)
				for k := range projections {
					s.SetOpacity(ProjectionID(h, i, k), (1-t)*0.5)
				}
				for j := 0; j < n; j++ {
					s.SetOpacity(PathID(h, i, j), env.Model.Weight(h, i, j)*0.3*(1-t))
				}
			}

			merged := MergedKey(heads, i)
			env.Arena.Spawn(s, merged)
			id, _ := env.Arena.Lookup(merged)
			s.SetRect(id, geometry.BarRect(l.TokenX(i), l.OutputY(), geometry.Size{W: bar.W, H: bar.H * t}))
			env.Arena.SetColorStage(s, merged, model.ColorPostAttention)

			if local >= 1 {
				from := make([]int, heads)
				for h := range from {
					from[h] = CloneKey(h, i).Generation
				}
				env.Arena.Merge(s, i, from, merged.Generation)
			}
		}
	}
}

func addNorm(which int) func(*Env) timeline.Keyframe {
	return func(env *Env) timeline.Keyframe {
		return func(local float64, s *scene.Snapshot) {
			if local <= 0 {
				return
			}
			l := env.Layout
			bar := l.BarSize()
			heads := env.Heads()
			for i := 0; i < env.N(); i++ {
				merged := MergedKey(heads, i)
				id, _ := env.Arena.Lookup(merged)
				// Residual add swells the bar, normalisation brings it back.
				h := bar.H * (1 + 0.3*pulse(local))
				s.SetRect(id, geometry.BarRect(l.TokenX(i), l.OutputY(), geometry.Size{W: bar.W, H: h}))
				s.SetFloat(id, "stroke-width", 2*pulse(local))
				s.Set(id, "stroke", pulseColor)

				if which == 1 {
					// The residual stream joins from the dimmed base bar.
					base := BaseKey(i)
					baseID, _ := env.Arena.Lookup(base)
					t := smooth(local)
					s.SetRect(baseID, geometry.BarRect(l.TokenX(i), geometry.Lerp(l.EmbedY(), l.OutputY(), t), bar))
					s.SetOpacity(baseID, 0.4*(1-t))
					if local >= 1 {
						env.Arena.Retire(s, base)
					}
				}
				if local >= 1 {
					s.Set(id, "data-norm", fmt.Sprint(which))
					s.Set(id, "stroke", "none")
					s.SetFloat(id, "stroke-width", 0)
					if which == 2 {
						env.Arena.SetColorStage(s, merged, model.ColorFinal)
					}
				}
			}
			if which == 2 && local >= 1 {
				s.AddClass(OutputID, "stage-final")
			}
		}
	}
}

func feedForward(env *Env) timeline.Keyframe {
	return func(local float64, s *scene.Snapshot) {
		if local <= 0 {
			return
		}
		l := env.Layout
		bar := l.BarSize()
		heads := env.Heads()
		// First linear layer expands the width, the second contracts it back.
		w := bar.W * (1 + 1.5*pulse(local))
		for i := 0; i < env.N(); i++ {
			merged := MergedKey(heads, i)
			id, _ := env.Arena.Lookup(merged)
			s.SetRect(id, geometry.BarRect(l.TokenX(i), l.OutputY(), geometry.Size{W: w, H: bar.H}))
			if local >= 0.5 {
				env.Arena.SetColorStage(s, merged, model.ColorPostFFN)
			}
		}
	}
}
