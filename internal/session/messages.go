package session

import (
	"github.com/ziadkadry99/attnviz/internal/geometry"
	"github.com/ziadkadry99/attnviz/internal/scene"
	"github.com/ziadkadry99/attnviz/internal/viz"
)

// Inbound message types.
const (
	TypeMount   = "mount"
	TypeScroll  = "scroll"
	TypePointer = "pointer"
	TypeResize  = "resize"
	TypeRects   = "rects"
	TypeTokens  = "tokens"
	TypeUnmount = "unmount"
)

// Outbound message types.
const (
	TypeMounted   = "mounted"
	TypePatch     = "patch"
	TypeUnmounted = "unmounted"
	TypeError     = "error"
)

// request is the incoming WebSocket message format. Which fields are set
// depends on Type.
type request struct {
	Type string `json:"type"`

	Tokens         []string `json:"tokens,omitempty"`
	Heads          int      `json:"heads,omitempty"`
	Width          float64  `json:"width,omitempty"`
	Height         float64  `json:"height,omitempty"`
	ViewportWidth  float64  `json:"viewport_width,omitempty"`
	ViewportHeight float64  `json:"viewport_height,omitempty"`
	ScrollAnchor   *bool    `json:"scroll_anchor,omitempty"`

	ScrollTop         float64 `json:"scroll_top,omitempty"`
	TotalScrollHeight float64 `json:"total_scroll_height,omitempty"`

	Kind  string `json:"kind,omitempty"`
	Head  int    `json:"head,omitempty"`
	Token int    `json:"token,omitempty"`

	Rects map[scene.ID]geometry.Rect `json:"rects,omitempty"`
}

// response is the outgoing WebSocket message format.
type response struct {
	Type         string         `json:"type"`
	MountID      string         `json:"mount_id,omitempty"`
	Style        string         `json:"style,omitempty"`
	Listeners    []viz.Listener `json:"listeners,omitempty"`
	Patches      []scene.Patch  `json:"patches,omitempty"`
	ScrollHeight float64        `json:"scroll_height,omitempty"`
	Stage        string         `json:"stage,omitempty"`
	Progress     float64        `json:"progress,omitempty"`
	RemoveStyle  bool           `json:"remove_style,omitempty"`
	Message      string         `json:"message,omitempty"`
}
