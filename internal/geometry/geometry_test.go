package geometry

import (
	"math"
	"testing"
)

func TestTokenXEvenSpacing(t *testing.T) {
	const width = 840.0
	n := 4
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = TokenX(i, n, width)
	}

	// Usable width is 840 - 2*40 = 760, so each slot is 190px.
	if xs[0] != 40+95 {
		t.Errorf("first slot = %v, want %v", xs[0], 40+95.0)
	}
	for i := 1; i < n; i++ {
		if d := xs[i] - xs[i-1]; math.Abs(d-190) > 1e-9 {
			t.Errorf("gap %d = %v, want 190", i, d)
		}
	}
	if got := width - xs[n-1]; math.Abs(got-xs[0]) > 1e-9 {
		t.Errorf("layout not symmetric: left %v, right %v", xs[0], got)
	}
}

func TestTokenXDegenerate(t *testing.T) {
	tests := []struct {
		name  string
		index int
		n     int
		width float64
		want  float64
	}{
		{"no tokens", 0, 0, 400, 200},
		{"single token centred", 0, 1, 400, 200},
		{"zero width", 2, 4, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenX(tt.index, tt.n, tt.width); got != tt.want {
				t.Errorf("TokenX = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlotXNarrowContainerCapsMargin(t *testing.T) {
	// Margin 40 on a 100px container is capped to 25.
	got := SlotX(0, 1, 0, 100, 40)
	if got != 50 {
		t.Errorf("SlotX = %v, want 50", got)
	}
	if SlotX(0, 2, 0, 100, 40) != 25+12.5 {
		t.Errorf("SlotX first of two = %v", SlotX(0, 2, 0, 100, 40))
	}
}

func TestBezierPathControlPoints(t *testing.T) {
	p := BezierPath(100, 50, 300, 250)
	if p.C1.X != 100 || p.C2.X != 300 {
		t.Errorf("control x = %v, %v; want 100, 300", p.C1.X, p.C2.X)
	}
	if p.C1.Y != 150 || p.C2.Y != 150 {
		t.Errorf("control y = %v, %v; want 150", p.C1.Y, p.C2.Y)
	}
	if got := p.D(); got != "M 100 50 C 100 150, 300 150, 300 250" {
		t.Errorf("D() = %q", got)
	}
	if mid := p.At(0.5); mid.X != 200 || mid.Y != 150 {
		t.Errorf("At(0.5) = %+v, want {200 150}", mid)
	}
	if end := p.At(1); end != p.End {
		t.Errorf("At(1) = %+v, want %+v", end, p.End)
	}
}

func TestFormat(t *testing.T) {
	tests := map[float64]string{
		1:          "1",
		1.5:        "1.5",
		1.25:       "1.25",
		1.256:      "1.26",
		-0.0001:    "0",
		math.NaN(): "0",
		100:        "100",
	}
	for in, want := range tests {
		if got := Format(in); got != want {
			t.Errorf("Format(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestClamp(t *testing.T) {
	if Clamp(-1, 0, 1) != 0 || Clamp(2, 0, 1) != 1 || Clamp(0.4, 0, 1) != 0.4 {
		t.Error("Clamp bounds wrong")
	}
	if Clamp(math.NaN(), 0, 1) != 0 {
		t.Error("Clamp(NaN) should be lo")
	}
}

func TestRectContainsAndInset(t *testing.T) {
	outer := Rect{X: 0, Y: 0, W: 100, H: 100}
	if !outer.Contains(Rect{X: 10, Y: 10, W: 80, H: 80}) {
		t.Error("expected inner rect to be contained")
	}
	if outer.Contains(Rect{X: 50, Y: 50, W: 60, H: 10}) {
		t.Error("overflowing rect should not be contained")
	}
	in := outer.Inset(10)
	if in != (Rect{X: 10, Y: 10, W: 80, H: 80}) {
		t.Errorf("Inset = %+v", in)
	}
	collapsed := outer.Inset(80)
	if collapsed.W != 0 || collapsed.H != 0 || collapsed.X != 50 {
		t.Errorf("collapsed Inset = %+v", collapsed)
	}
}
