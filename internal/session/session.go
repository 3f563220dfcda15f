package session

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/attnviz/internal/geometry"
	"github.com/ziadkadry99/attnviz/internal/interaction"
	"github.com/ziadkadry99/attnviz/internal/timeline"
	"github.com/ziadkadry99/attnviz/internal/tooltip"
	"github.com/ziadkadry99/attnviz/internal/viz"
)

// DefaultTick is the frame interval scroll events are coalesced to.
const DefaultTick = 16 * time.Millisecond

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler serves one visualization per WebSocket connection.
type Handler struct {
	defaults viz.Options
	tick     time.Duration
}

// New returns a handler mounting with defaults, producing frames every tick.
func New(defaults viz.Options, tick time.Duration) *Handler {
	if tick <= 0 {
		tick = DefaultTick
	}
	return &Handler{defaults: defaults, tick: tick}
}

// RegisterRoutes mounts the WebSocket endpoint onto the given router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.ServeWS)
}

// ServeWS upgrades the request and runs the session until the peer leaves.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("session: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	s := &session{conn: conn, defaults: h.defaults, tick: h.tick}
	s.run(r.Context())
}

// inbound is a decoded request or the reason one could not be decoded.
type inbound struct {
	req request
	err error
}

// session owns one connection and at most one mounted visualization. Only
// the run goroutine touches v and writes to conn.
type session struct {
	conn     *websocket.Conn
	defaults viz.Options
	tick     time.Duration

	v      *viz.Visualization
	scroll timeline.Coalescer
	dirty  bool
}

func (s *session) run(ctx context.Context) {
	msgs := make(chan inbound, 64)
	done := make(chan struct{})
	defer close(done)
	go s.read(msgs, done)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	defer s.teardown(false)

	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			if m.err != nil {
				s.sendError("invalid message format")
				continue
			}
			s.handle(m.req, time.Now())
		case now := <-ticker.C:
			s.frame(now)
		}
	}
}

// read decodes frames in arrival order until the connection fails.
func (s *session) read(out chan<- inbound, done <-chan struct{}) {
	defer close(out)
	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("session: websocket read: %v", err)
			}
			return
		}
		var req request
		err = json.Unmarshal(msg, &req)
		select {
		case out <- inbound{req: req, err: err}:
		case <-done:
			return
		}
	}
}

func (s *session) handle(req request, now time.Time) {
	if req.Type == TypeMount {
		s.mount(req, now)
		return
	}
	if s.v == nil {
		s.sendError("not mounted")
		return
	}

	switch req.Type {
	case TypeScroll:
		st := timeline.ScrollState{ScrollTop: req.ScrollTop, TotalScrollHeight: req.TotalScrollHeight}
		s.scroll.Offer(st.Progress())
	case TypePointer:
		ev := interaction.Event{Kind: interaction.EventKind(req.Kind), Head: req.Head, Token: req.Token}
		if err := s.v.Pointer(ev, now); err != nil {
			s.sendError(err.Error())
			return
		}
		s.dirty = true
	case TypeResize:
		container := geometry.Size{W: req.Width, H: req.Height}
		viewport := geometry.Size{W: req.ViewportWidth, H: req.ViewportHeight}
		if err := s.v.Resize(container, viewport); err != nil {
			s.sendError(err.Error())
			return
		}
		s.dirty = true
	case TypeRects:
		s.v.SetRects(req.Rects)
		s.dirty = true
	case TypeTokens:
		if err := s.v.SetTokens(req.Tokens); err != nil {
			s.sendError(err.Error())
			return
		}
		s.dirty = true
	case TypeUnmount:
		s.teardown(true)
	default:
		s.sendError("unknown message type: " + req.Type)
	}
}

func (s *session) mount(req request, now time.Time) {
	s.teardown(true)

	opts := s.defaults
	if len(req.Tokens) > 0 {
		opts.Tokens = req.Tokens
	}
	if req.Heads != 0 {
		opts.Heads = req.Heads
	}
	if req.Width > 0 || req.Height > 0 {
		opts.Container = geometry.Size{W: req.Width, H: req.Height}
	}
	if req.ViewportWidth > 0 || req.ViewportHeight > 0 {
		opts.Viewport = geometry.Size{W: req.ViewportWidth, H: req.ViewportHeight}
	}
	opts.ScrollAnchor = req.ScrollAnchor == nil || *req.ScrollAnchor

	v, err := viz.Mount(opts)
	if err != nil {
		s.sendError(err.Error())
		return
	}
	s.v = v
	s.scroll = timeline.Coalescer{}
	f := v.Frame(now)
	s.send(response{
		Type:         TypeMounted,
		MountID:      v.ID(),
		Style:        v.Style(),
		Listeners:    v.Listeners(),
		Patches:      f.Patches,
		ScrollHeight: v.ScrollHeight(),
		Stage:        f.Stage,
		Progress:     f.Progress,
	})
}

// frame applies the latest coalesced scroll and sends whatever changed.
func (s *session) frame(now time.Time) {
	if s.v == nil {
		return
	}
	if p, ok := s.scroll.Take(); ok && s.v.ScrollEnabled() {
		s.v.SetProgress(p)
		s.dirty = true
	}
	if !s.dirty && s.v.Tooltip().State() != tooltip.Pending {
		return
	}
	s.dirty = false
	f := s.v.Frame(now)
	if len(f.Patches) == 0 && f.Listeners == nil {
		return
	}
	s.send(response{
		Type:      TypePatch,
		Patches:   f.Patches,
		Listeners: f.Listeners,
		Stage:     f.Stage,
		Progress:  f.Progress,
	})
}

// teardown unmounts the current visualization, telling the peer what to
// remove when notify is set.
func (s *session) teardown(notify bool) {
	if s.v == nil {
		return
	}
	td := s.v.Unmount()
	s.v = nil
	s.dirty = false
	if !notify {
		return
	}
	s.send(response{
		Type:        TypeUnmounted,
		Patches:     td.Patches,
		Listeners:   td.Listeners,
		RemoveStyle: td.RemoveStyle,
	})
}

func (s *session) send(resp response) {
	if err := s.conn.WriteJSON(resp); err != nil {
		log.Printf("session: websocket write: %v", err)
	}
}

func (s *session) sendError(message string) {
	s.send(response{Type: TypeError, Message: message})
}
