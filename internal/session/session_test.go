package session

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/ziadkadry99/attnviz/internal/geometry"
	"github.com/ziadkadry99/attnviz/internal/scene"
	"github.com/ziadkadry99/attnviz/internal/stages"
	"github.com/ziadkadry99/attnviz/internal/tooltip"
	"github.com/ziadkadry99/attnviz/internal/viz"
)

func dial(t *testing.T) *websocket.Conn {
	t.Helper()
	h := New(viz.Options{
		Container: geometry.Size{W: 1200, H: 800},
		Tooltip:   tooltip.Options{Delay: 10 * time.Millisecond},
	}, 5*time.Millisecond)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads responses until match accepts one or the deadline passes.
func readUntil(t *testing.T, conn *websocket.Conn, match func(response) bool) response {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var resp response
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(resp) {
			return resp
		}
	}
}

func ofType(typ string) func(response) bool {
	return func(r response) bool { return r.Type == typ }
}

func mountDefault(t *testing.T, conn *websocket.Conn) response {
	t.Helper()
	err := conn.WriteJSON(request{
		Type:   TypeMount,
		Tokens: []string{"Transformers", "power", "modern", "AI"},
		Heads:  2,
		Width:  1200,
		Height: 800,
	})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	return readUntil(t, conn, ofType(TypeMounted))
}

func TestMountAndScrollRoundTrip(t *testing.T) {
	conn := dial(t)
	mounted := mountDefault(t, conn)

	if mounted.MountID == "" || !strings.Contains(mounted.Style, mounted.MountID) {
		t.Errorf("mounted should carry a scoped style, got id %q", mounted.MountID)
	}
	if len(mounted.Listeners) != 1+2*4*3 {
		t.Errorf("expected %d listeners, got %d", 1+2*4*3, len(mounted.Listeners))
	}
	if len(mounted.Patches) == 0 || mounted.Patches[0].Op != scene.OpCreate {
		t.Fatal("mounted should start with create patches")
	}
	if mounted.ScrollHeight <= 0 {
		t.Error("expected a positive scroll height")
	}

	for _, top := range []float64{100, 300, 500} {
		conn.WriteJSON(request{Type: TypeScroll, ScrollTop: top, TotalScrollHeight: 1000})
	}
	patch := readUntil(t, conn, func(r response) bool {
		return r.Type == TypePatch && r.Progress == 0.5
	})
	if patch.Stage == "" {
		t.Error("patch should name the active stage")
	}
}

func TestPointerMarksStrongPaths(t *testing.T) {
	conn := dial(t)
	mountDefault(t, conn)
	conn.WriteJSON(request{Type: TypeScroll, ScrollTop: 500, TotalScrollHeight: 1000})
	readUntil(t, conn, ofType(TypePatch))

	conn.WriteJSON(request{Type: TypePointer, Kind: "enter", Head: 0, Token: 2})
	target := stages.PathID(0, 2, 1)
	readUntil(t, conn, func(r response) bool {
		for _, p := range r.Patches {
			if p.ID == target && p.Key == scene.AttrClass && strings.Contains(p.Value, "strong") {
				return true
			}
		}
		return false
	})
	readUntil(t, conn, func(r response) bool {
		for _, p := range r.Patches {
			if p.ID == tooltip.NodeID && p.Key == scene.AttrVisibility && p.Value == "visible" {
				return true
			}
		}
		return false
	})
}

func TestUnmountReleasesEverything(t *testing.T) {
	conn := dial(t)
	mounted := mountDefault(t, conn)
	conn.WriteJSON(request{Type: TypeUnmount})
	un := readUntil(t, conn, ofType(TypeUnmounted))
	if len(un.Listeners) != len(mounted.Listeners) {
		t.Errorf("expected %d removed listeners, got %d", len(mounted.Listeners), len(un.Listeners))
	}
	if !un.RemoveStyle {
		t.Error("unmount should remove the style")
	}
	for _, p := range un.Patches {
		if p.Op != scene.OpDelete {
			t.Fatalf("unexpected %s patch on unmount", p.Op)
		}
	}

	conn.WriteJSON(request{Type: TypeScroll, ScrollTop: 1, TotalScrollHeight: 2})
	resp := readUntil(t, conn, ofType(TypeError))
	if resp.Message != "not mounted" {
		t.Errorf("expected not mounted error, got %q", resp.Message)
	}
}

func TestInvalidMessages(t *testing.T) {
	conn := dial(t)
	conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
	resp := readUntil(t, conn, ofType(TypeError))
	if resp.Message != "invalid message format" {
		t.Errorf("unexpected message %q", resp.Message)
	}

	mountDefault(t, conn)
	conn.WriteJSON(request{Type: "teleport"})
	resp = readUntil(t, conn, ofType(TypeError))
	if !strings.Contains(resp.Message, "teleport") {
		t.Errorf("unexpected message %q", resp.Message)
	}

	conn.WriteJSON(request{Type: TypePointer, Kind: "enter", Head: 7})
	resp = readUntil(t, conn, ofType(TypeError))
	if !strings.Contains(resp.Message, "no head 7") {
		t.Errorf("unexpected message %q", resp.Message)
	}
}
