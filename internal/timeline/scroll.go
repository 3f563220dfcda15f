package timeline

import (
	"math"
	"sync"

	"github.com/ziadkadry99/attnviz/internal/geometry"
)

// ScrollState is derived from every scroll event of the host container.
type ScrollState struct {
	ScrollTop         float64 `json:"scroll_top"`
	TotalScrollHeight float64 `json:"total_scroll_height"`
}

// Progress returns the clamped scroll ratio. A non-positive or NaN height
// yields 0.
func (s ScrollState) Progress() float64 {
	if s.TotalScrollHeight <= 0 || math.IsNaN(s.TotalScrollHeight) {
		return 0
	}
	return geometry.Clamp(s.ScrollTop/s.TotalScrollHeight, 0, 1)
}

// ScrollHeight returns how many pixels of scroll the host must provide so the
// whole timeline is reachable while a viewport-high sticky stage is pinned.
func ScrollHeight(total, viewportHeight float64) float64 {
	if total < 0 {
		total = 0
	}
	return total + math.Max(viewportHeight, 0)
}

// Coalescer keeps only the most recent progress offered between two frame
// ticks. It is safe for use by one producer and one consumer goroutine.
type Coalescer struct {
	mu      sync.Mutex
	pending bool
	value   float64
	dropped int
}

// Offer records progress, replacing any value not yet taken.
func (c *Coalescer) Offer(progress float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		c.dropped++
	}
	c.value = progress
	c.pending = true
}

// Take returns the pending progress, if any, and clears it.
func (c *Coalescer) Take() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pending {
		return 0, false
	}
	c.pending = false
	return c.value, true
}

// Dropped returns how many offers were superseded before being taken.
func (c *Coalescer) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}
