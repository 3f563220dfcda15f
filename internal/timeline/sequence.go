package timeline

// Step is a stage with a scroll budget, before it is placed on the timeline.
type Step struct {
	ID       string
	Duration float64
	Apply    Keyframe
}

// Sequence lays steps end to end starting at zero, producing segments with
// no gaps and no overlaps.
func Sequence(steps ...Step) []Segment {
	segs := make([]Segment, len(steps))
	var offset float64
	for i, st := range steps {
		d := st.Duration
		if d < 0 {
			d = 0
		}
		segs[i] = Segment{ID: st.ID, Start: offset, Duration: d, Apply: st.Apply}
		offset += d
	}
	return segs
}

// Budgets are the per-stage scroll lengths, in viewport heights. The values
// were tuned by eye; they are kept as named defaults and may be overridden
// from configuration.
type Budgets struct {
	StageUnit float64 `yaml:"stage_unit" koanf:"stage_unit" json:"stage_unit"`
	MHAUnit   float64 `yaml:"mha_unit" koanf:"mha_unit" json:"mha_unit"`
	NormUnit  float64 `yaml:"norm_unit" koanf:"norm_unit" json:"norm_unit"`
	FFNUnit   float64 `yaml:"ffn_unit" koanf:"ffn_unit" json:"ffn_unit"`
}

// Default budget units, in viewport heights per stage.
const (
	DefaultStageUnit = 1.75
	DefaultMHAUnit   = 0.75
	DefaultNormUnit  = 1.0
	DefaultFFNUnit   = 1.25
)

// DefaultBudgets returns the stock budgets.
func DefaultBudgets() Budgets {
	return Budgets{
		StageUnit: DefaultStageUnit,
		MHAUnit:   DefaultMHAUnit,
		NormUnit:  DefaultNormUnit,
		FFNUnit:   DefaultFFNUnit,
	}
}

// WithDefaults fills zero or negative units with the defaults.
func (b Budgets) WithDefaults() Budgets {
	d := DefaultBudgets()
	if b.StageUnit <= 0 {
		b.StageUnit = d.StageUnit
	}
	if b.MHAUnit <= 0 {
		b.MHAUnit = d.MHAUnit
	}
	if b.NormUnit <= 0 {
		b.NormUnit = d.NormUnit
	}
	if b.FFNUnit <= 0 {
		b.FFNUnit = d.FFNUnit
	}
	return b
}
