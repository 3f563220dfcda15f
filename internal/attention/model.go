package attention

// Head is one attention head of the visualization pipeline.
type Head struct {
	Index   int     `json:"index"`
	Pattern Pattern `json:"pattern"`
	Weights Matrix  `json:"weights"`
}

// Model holds the weight matrices of every head for one token count.
// It is rebuilt when the tokens or the head count change and is otherwise
// immutable.
type Model struct {
	tokens int
	heads  []Head
}

// NewModel computes the matrices for heads heads over n tokens, drawing the
// uniform branch noise from src in head order.
func NewModel(heads, n int, src Source) *Model {
	if heads < 0 {
		heads = 0
	}
	m := &Model{tokens: n, heads: make([]Head, heads)}
	for h := 0; h < heads; h++ {
		m.heads[h] = Head{
			Index:   h,
			Pattern: PatternFor(h),
			Weights: Weights(h, n, src),
		}
	}
	return m
}

// Tokens returns the token count the model was built for.
func (m *Model) Tokens() int { return m.tokens }

// NumHeads returns the number of heads.
func (m *Model) NumHeads() int { return len(m.heads) }

// Head returns head h and whether it exists.
func (m *Model) Head(h int) (Head, bool) {
	if h < 0 || h >= len(m.heads) {
		return Head{}, false
	}
	return m.heads[h], true
}

// Heads returns all heads in index order.
func (m *Model) Heads() []Head {
	out := make([]Head, len(m.heads))
	copy(out, m.heads)
	return out
}

// Weight returns weights[i][j] of head h, or 0 when out of range.
func (m *Model) Weight(h, i, j int) float64 {
	row := m.Row(h, i)
	if j < 0 || j >= len(row) {
		return 0
	}
	return row[j]
}

// Row returns row i of head h, or nil when out of range.
func (m *Model) Row(h, i int) []float64 {
	head, ok := m.Head(h)
	if !ok || i < 0 || i >= len(head.Weights) {
		return nil
	}
	return head.Weights[i]
}
