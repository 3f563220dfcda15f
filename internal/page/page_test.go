package page

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/attnviz/internal/stages"
	"github.com/ziadkadry99/attnviz/internal/viz"
)

func TestSectionsFollowCatalog(t *testing.T) {
	sections, err := Sections(viz.Options{})
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}
	cat := stages.Catalog()
	if len(sections) != len(cat) {
		t.Fatalf("expected %d sections, got %d", len(cat), len(sections))
	}
	prev := -1.0
	for i, s := range sections {
		if s.ID != cat[i].ID {
			t.Errorf("section %d: expected %s, got %s", i, cat[i].ID, s.ID)
		}
		if s.Top < prev || s.Top < 0 || s.Top >= 1 {
			t.Errorf("section %s: top %v out of order (prev %v)", s.ID, s.Top, prev)
		}
		prev = s.Top
		if !strings.Contains(string(s.HTML), "<h2") {
			t.Errorf("section %s: expected rendered heading, got %q", s.ID, s.HTML)
		}
	}
	if sections[0].Top != 0 {
		t.Errorf("first section should start at 0, got %v", sections[0].Top)
	}
}

func TestSoftmaxCaptionHighlighted(t *testing.T) {
	sections, err := Sections(viz.Options{})
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}
	for _, s := range sections {
		if s.ID != stages.StageSoftmax {
			continue
		}
		html := string(s.HTML)
		if !strings.Contains(html, "<pre") {
			t.Errorf("expected highlighted code block, got %q", html)
		}
		if !strings.Contains(html, `id="softmax"`) {
			t.Errorf("expected auto heading id, got %q", html)
		}
		return
	}
	t.Fatal("softmax section missing")
}

func TestIndexRoute(t *testing.T) {
	p, err := New(viz.Options{Tokens: []string{"hello", "world"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := chi.NewRouter()
	p.RegisterRoutes(r)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type %q", ct)
	}
	body := w.Body.String()
	for _, want := range []string{
		`<title>` + stages.DefaultPhrase + `</title>`,
		`id="container"`,
		`data-heads="2"`,
		`value="hello world"`,
		`id="caption-` + stages.StageAddNorm2 + `"`,
		`'/ws'`,
		`m.type = 'mount'`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestIndexUsesPhrase(t *testing.T) {
	p, err := New(viz.Options{Phrase: "Attention Demo"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := chi.NewRouter()
	p.RegisterRoutes(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if !strings.Contains(w.Body.String(), "<title>Attention Demo</title>") {
		t.Error("expected configured phrase as title")
	}
}
