package geometry

import (
	"fmt"
	"math"
)

// DefaultMargin is the horizontal margin, in pixels, kept free on each side
// of the container when token slots are laid out.
const DefaultMargin = 40.0

// Point is a position in container pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair in pixels.
type Size struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the rectangle's centre point.
func (r Rect) Center() Point { return Point{X: r.X + r.W/2, Y: r.Y + r.H/2} }

// Contains reports whether o lies fully inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Inset shrinks the rectangle by d on every side. A negative result size is
// collapsed to zero around the centre.
func (r Rect) Inset(d float64) Rect {
	out := Rect{X: r.X + d, Y: r.Y + d, W: r.W - 2*d, H: r.H - 2*d}
	if out.W < 0 {
		out.X, out.W = r.X+r.W/2, 0
	}
	if out.H < 0 {
		out.Y, out.H = r.Y+r.H/2, 0
	}
	return out
}

// Clamp bounds v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates between a and b by t in [0,1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// TokenX returns the x coordinate of slot index among n evenly spaced slots
// across a container of the given width.
func TokenX(index, n int, containerWidth float64) float64 {
	return SlotX(index, n, 0, containerWidth, DefaultMargin)
}

// SlotX distributes n slots across [x0, x0+width] with a margin on each side
// and returns the centre of slot index. The margin is capped at a quarter of
// the width so narrow containers still get usable slots.
func SlotX(index, n int, x0, width, margin float64) float64 {
	if width <= 0 {
		return x0
	}
	if n <= 0 {
		return x0 + width/2
	}
	margin = math.Min(math.Max(margin, 0), width/4)
	usable := width - 2*margin
	slot := usable / float64(n)
	return x0 + margin + slot*(float64(index)+0.5)
}

// Path is a cubic Bezier curve from Start to End.
type Path struct {
	Start Point `json:"start"`
	C1    Point `json:"c1"`
	C2    Point `json:"c2"`
	End   Point `json:"end"`
}

// BezierPath builds the attention-flow curve from a query token (source) to
// a key token (target). Both control points sit at the vertical midpoint,
// horizontally aligned with the source and target respectively.
func BezierPath(sourceX, sourceY, targetX, targetY float64) Path {
	midY := (sourceY + targetY) / 2
	return Path{
		Start: Point{X: sourceX, Y: sourceY},
		C1:    Point{X: sourceX, Y: midY},
		C2:    Point{X: targetX, Y: midY},
		End:   Point{X: targetX, Y: targetY},
	}
}

// D renders the path as an SVG path data string.
func (p Path) D() string {
	return fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s",
		Format(p.Start.X), Format(p.Start.Y),
		Format(p.C1.X), Format(p.C1.Y),
		Format(p.C2.X), Format(p.C2.Y),
		Format(p.End.X), Format(p.End.Y))
}

// At evaluates the curve at parameter t in [0,1].
func (p Path) At(t float64) Point {
	t = Clamp(t, 0, 1)
	u := 1 - t
	b0, b1, b2, b3 := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return Point{
		X: b0*p.Start.X + b1*p.C1.X + b2*p.C2.X + b3*p.End.X,
		Y: b0*p.Start.Y + b1*p.C1.Y + b2*p.C2.Y + b3*p.End.Y,
	}
}

// Format renders a coordinate with two decimals and no trailing zeros, so
// equal geometry always yields equal attribute strings.
func Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	s := fmt.Sprintf("%.2f", v)
	for len(s) > 1 && s[len(s)-1] == '0' {
		s = s[:len(s)-1]
	}
	if s[len(s)-1] == '.' {
		s = s[:len(s)-1]
	}
	if s == "-0" {
		return "0"
	}
	return s
}
