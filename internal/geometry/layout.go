package geometry

import "math"

// Minimum container dimensions; smaller measurements are raised to these so
// every row keeps a positive height.
const (
	MinContainerWidth  = 320.0
	MinContainerHeight = 360.0
)

// Layout derives every row, panel and bar size of the scene from the
// measured container. It is recomputed on resize and on token changes.
type Layout struct {
	Container Size
	Tokens    int
	Heads     int
	Margin    float64
}

// NewLayout builds a layout for n tokens and the given head count.
func NewLayout(container Size, n, heads int) Layout {
	if container.W < MinContainerWidth || math.IsNaN(container.W) {
		container.W = MinContainerWidth
	}
	if container.H < MinContainerHeight || math.IsNaN(container.H) {
		container.H = MinContainerHeight
	}
	if n < 0 {
		n = 0
	}
	if heads < 1 {
		heads = 1
	}
	return Layout{Container: container, Tokens: n, Heads: heads, Margin: DefaultMargin}
}

// IntroY is the baseline of the intro phrase.
func (l Layout) IntroY() float64 { return l.Container.H * 0.10 }

// TokenY is the baseline of the token text row.
func (l Layout) TokenY() float64 { return l.Container.H * 0.20 }

// EmbedY is the vertical centre of the base embedding bars.
func (l Layout) EmbedY() float64 { return l.Container.H * 0.32 }

// OutputY is the vertical centre of the merged output bars.
func (l Layout) OutputY() float64 { return l.Container.H * 0.90 }

// TokenX returns the x coordinate of token i across the full container.
func (l Layout) TokenX(i int) float64 {
	return TokenX(i, l.Tokens, l.Container.W)
}

// slotWidth is the width of one token slot across the full container.
func (l Layout) slotWidth(width float64) float64 {
	if l.Tokens == 0 {
		return width
	}
	margin := math.Min(l.Margin, width/4)
	return (width - 2*margin) / float64(l.Tokens)
}

// BarSize is the terminal size of a base embedding bar.
func (l Layout) BarSize() Size {
	w := Clamp(l.slotWidth(l.Container.W)*0.45, 8, 48)
	h := Clamp(l.Container.H*0.12, 24, 96)
	return Size{W: w, H: h}
}

// BarRect returns the rectangle of a bar of size s centred on (cx, cy).
func BarRect(cx, cy float64, s Size) Rect {
	return Rect{X: cx - s.W/2, Y: cy - s.H/2, W: s.W, H: s.H}
}

// Panel returns the sub-scene rectangle owned by head h. Panels split the
// container into equal columns between the rows of base and output bars.
func (l Layout) Panel(h int) Rect {
	const gap = 16.0
	top := l.Container.H * 0.42
	bottom := l.Container.H * 0.80
	usable := l.Container.W - 2*l.Margin
	w := (usable - gap*float64(l.Heads-1)) / float64(l.Heads)
	if w < 0 {
		w = 0
	}
	return Rect{
		X: l.Margin + float64(h)*(w+gap),
		Y: top,
		W: w,
		H: bottom - top,
	}
}

// PanelX returns the x coordinate of token i inside head h's panel.
func (l Layout) PanelX(h, i int) float64 {
	p := l.Panel(h)
	return SlotX(i, l.Tokens, p.X, p.W, l.Margin/2)
}

// QueryY is the row of query tokens at the top of each head panel.
func (l Layout) QueryY(h int) float64 {
	p := l.Panel(h)
	return p.Y + p.H*0.12
}

// KeyY is the row of key tokens near the bottom of each head panel.
func (l Layout) KeyY(h int) float64 {
	p := l.Panel(h)
	return p.Y + p.H*0.62
}

// ChartBaseY is the baseline of the per-head softmax chart.
func (l Layout) ChartBaseY(h int) float64 {
	p := l.Panel(h)
	return p.Bottom() - 4
}

// ChartMaxHeight is the height of a chart bar at weight 1.
func (l Layout) ChartMaxHeight(h int) float64 {
	return l.ChartBaseY(h) - l.KeyY(h) - 12
}

// CloneSize is the size of a per-head clone bar.
func (l Layout) CloneSize() Size {
	b := l.BarSize()
	scale := 1.0 / math.Sqrt(float64(l.Heads))
	return Size{W: math.Max(b.W*scale, 6), H: math.Max(b.H*0.5, 12)}
}

// CloneCenter is the spread position of token i's clone inside head h.
func (l Layout) CloneCenter(h, i int) Point {
	return Point{X: l.PanelX(h, i), Y: l.QueryY(h)}
}

// ProjectionRect is the rectangle of the q/k/v projection k (0,1,2) of token
// i in head h, stacked beside the clone.
func (l Layout) ProjectionRect(h, i, k int) Rect {
	c := l.CloneCenter(h, i)
	s := l.CloneSize()
	w := math.Max(s.W/3, 2)
	return Rect{
		X: c.X - s.W/2 + float64(k)*w,
		Y: c.Y + s.H/2 + 6,
		W: w,
		H: math.Max(s.H*0.6, 8),
	}
}

// ChartBar returns the bar for column j of head h at the given weight.
func (l Layout) ChartBar(h, j int, weight float64) Rect {
	w := math.Max(l.CloneSize().W*0.8, 4)
	ht := Clamp(weight, 0, 1) * l.ChartMaxHeight(h)
	x := l.PanelX(h, j)
	base := l.ChartBaseY(h)
	return Rect{X: x - w/2, Y: base - ht, W: w, H: ht}
}

// HeadOutputCenter is where head h collapses token i's weighted value sum.
func (l Layout) HeadOutputCenter(h, i int) Point {
	return Point{X: l.PanelX(h, i), Y: l.KeyY(h)}
}
