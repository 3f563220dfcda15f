package page

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ziadkadry99/attnviz/internal/stages"
	"github.com/ziadkadry99/attnviz/internal/viz"
)

// Section is one caption block placed alongside the scroll spacer.
type Section struct {
	ID    string
	Title string
	HTML  template.HTML
	// Top is the stage start as a fraction of the whole scroll.
	Top float64
}

// Page serves the host document that mounts a visualization over /ws.
type Page struct {
	defaults viz.Options
	tmpl     *template.Template
	sections []Section
}

// pageData holds the data passed to the host template.
type pageData struct {
	Title    string
	Tokens   string
	Heads    int
	Sections []Section
	Script   template.JS
}

// New renders every stage caption and parses the host template.
func New(defaults viz.Options) (*Page, error) {
	sections, err := Sections(defaults)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("page").Funcs(template.FuncMap{
		"pct": func(f float64) string { return fmt.Sprintf("%.3f%%", f*100) },
	}).Parse(pageTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	return &Page{defaults: defaults, tmpl: tmpl, sections: sections}, nil
}

// RegisterRoutes mounts the host page on the given router.
func (p *Page) RegisterRoutes(r chi.Router) {
	r.Get("/", p.handleIndex)
}

func (p *Page) handleIndex(w http.ResponseWriter, r *http.Request) {
	heads := p.defaults.Heads
	if heads == 0 {
		heads = viz.DefaultHeads
	}
	tokens := p.defaults.Tokens
	if tokens == nil {
		tokens = viz.DefaultTokens
	}
	data := pageData{
		Title:    stages.DefaultPhrase,
		Heads:    heads,
		Sections: p.sections,
		Script:   template.JS(clientScript),
	}
	if p.defaults.Phrase != "" {
		data.Title = p.defaults.Phrase
	}
	for i, t := range tokens {
		if i > 0 {
			data.Tokens += " "
		}
		data.Tokens += t
	}

	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, data); err != nil {
		log.Printf("page: rendering index: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// Sections renders the caption of every stage to HTML and positions it at the
// stage's start on a default-sized mount.
func Sections(defaults viz.Options) ([]Section, error) {
	opts := defaults
	opts.ScrollAnchor = true
	v, err := viz.Mount(opts)
	if err != nil {
		return nil, fmt.Errorf("building caption layout: %w", err)
	}
	defer v.Unmount()

	md := newMarkdown()
	var out []Section
	for _, w := range v.Stages() {
		var buf bytes.Buffer
		if err := md.Convert([]byte(stages.Caption(w.ID)), &buf); err != nil {
			return nil, fmt.Errorf("converting caption %s: %w", w.ID, err)
		}
		out = append(out, Section{
			ID:    w.ID,
			Title: w.Title,
			HTML:  template.HTML(buf.String()),
			Top:   w.StartProgress,
		})
	}
	return out, nil
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("github"),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)
}
