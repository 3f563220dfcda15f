package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/attnviz/internal/attention"
	"github.com/ziadkadry99/attnviz/internal/export"
	"github.com/ziadkadry99/attnviz/internal/interaction"
	"github.com/ziadkadry99/attnviz/internal/model"
	"github.com/ziadkadry99/attnviz/internal/viz"
)

// API serves read-only views of the visualization: weights, stage windows,
// snapshots and rendered frames. Every request mounts its own instance.
type API struct {
	defaults viz.Options
}

// New returns an API whose requests start from defaults.
func New(defaults viz.Options) *API {
	return &API{defaults: defaults}
}

// RegisterRoutes mounts the API endpoints on the given router.
func (a *API) RegisterRoutes(r chi.Router) {
	r.Get("/api/weights", a.handleWeights)
	r.Get("/api/stages", a.handleStages)
	r.Get("/api/snapshot", a.handleSnapshot)
	r.Get("/api/frame.svg", a.handleFrame)
}

// WeightsResponse is the body of GET /api/weights.
type WeightsResponse struct {
	Head    int               `json:"head"`
	Pattern attention.Pattern `json:"pattern"`
	Tokens  []string          `json:"tokens"`
	Weights attention.Matrix  `json:"weights"`
	RowSums []float64         `json:"row_sums"`
}

// SnapshotResponse is the body of GET /api/snapshot.
type SnapshotResponse struct {
	MountID  string          `json:"mount_id"`
	Progress float64         `json:"progress"`
	Stage    string          `json:"stage"`
	Nodes    json.RawMessage `json:"nodes"`
}

func (a *API) handleWeights(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	head, err := intParam(q.Get("head"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid head")
		return
	}
	seed, err := int64Param(q.Get("seed"), a.seed())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid seed")
		return
	}

	tokens := a.tokens(q.Get("tokens"))
	if nStr := q.Get("n"); nStr != "" {
		n, err := strconv.Atoi(nStr)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid n")
			return
		}
		if n > viz.MaxTokens {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("n must be at most %d", viz.MaxTokens))
			return
		}
		tokens = placeholderTokens(n)
	}
	if len(tokens) > viz.MaxTokens {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d tokens", viz.MaxTokens))
		return
	}
	if head < 0 {
		writeError(w, http.StatusBadRequest, "head must be non-negative")
		return
	}
	if head >= viz.MaxHeads {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("head must be below %d", viz.MaxHeads))
		return
	}

	// Heads before this one draw from the same source, so build them all to
	// keep the uniform heads identical to what a mount shows.
	m := attention.NewModel(head+1, len(tokens), attention.NewSource(seed))
	h, _ := m.Head(head)
	writeJSON(w, http.StatusOK, WeightsResponse{
		Head:    head,
		Pattern: h.Pattern,
		Tokens:  tokens,
		Weights: h.Weights,
		RowSums: h.Weights.RowSums(),
	})
}

func (a *API) handleStages(w http.ResponseWriter, r *http.Request) {
	v, err := a.mount(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer v.Unmount()

	var patterns []string
	if f := r.URL.Query().Get("filter"); f != "" {
		patterns = strings.Split(f, ",")
	}
	writeJSON(w, http.StatusOK, export.FilterStages(v.Stages(), patterns))
}

func (a *API) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	v, err := a.prepare(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer v.Unmount()

	snap := v.Snapshot()
	nodes, err := json.Marshal(snap)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SnapshotResponse{
		MountID:  v.ID(),
		Progress: v.Progress(),
		Stage:    v.StageAt(v.Progress()),
		Nodes:    nodes,
	})
}

func (a *API) handleFrame(w http.ResponseWriter, r *http.Request) {
	v, err := a.prepare(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer v.Unmount()

	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	if err := v.WriteSVG(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// mount builds an instance from defaults overridden by tokens and heads
// query parameters.
func (a *API) mount(r *http.Request) (*viz.Visualization, error) {
	q := r.URL.Query()
	opts := a.defaults
	opts.ScrollAnchor = true
	opts.Tokens = a.tokens(q.Get("tokens"))
	heads, err := intParam(q.Get("heads"), opts.Heads)
	if err != nil {
		return nil, fmt.Errorf("invalid heads")
	}
	opts.Heads = heads
	return viz.Mount(opts)
}

// prepare mounts an instance and moves it to the requested progress and
// selection (select=head:token).
func (a *API) prepare(r *http.Request) (*viz.Visualization, error) {
	v, err := a.mount(r)
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	p := 1.0
	if s := q.Get("progress"); s != "" {
		p, err = strconv.ParseFloat(s, 64)
		if err != nil {
			v.Unmount()
			return nil, fmt.Errorf("invalid progress")
		}
	}
	v.SetProgress(p)

	if sel := q.Get("select"); sel != "" {
		ev, err := parseSelect(sel)
		if err == nil {
			err = v.Pointer(ev, time.Now())
		}
		if err != nil {
			v.Unmount()
			return nil, fmt.Errorf("invalid select: %w", err)
		}
	}
	return v, nil
}

func parseSelect(s string) (interaction.Event, error) {
	headStr, tokenStr, ok := strings.Cut(s, ":")
	if !ok {
		return interaction.Event{}, fmt.Errorf("want head:token, got %q", s)
	}
	head, err := strconv.Atoi(headStr)
	if err != nil {
		return interaction.Event{}, fmt.Errorf("bad head %q", headStr)
	}
	token, err := strconv.Atoi(tokenStr)
	if err != nil {
		return interaction.Event{}, fmt.Errorf("bad token %q", tokenStr)
	}
	return interaction.Event{Kind: interaction.Click, Head: head, Token: token}, nil
}

func (a *API) tokens(param string) []string {
	if param != "" {
		return model.Texts(model.TokensFrom(strings.FieldsFunc(param, func(r rune) bool {
			return r == ',' || r == ' '
		})))
	}
	if len(a.defaults.Tokens) > 0 {
		return a.defaults.Tokens
	}
	return viz.DefaultTokens
}

func (a *API) seed() int64 {
	if a.defaults.Seed != 0 {
		return a.defaults.Seed
	}
	return attention.DefaultSeed
}

func placeholderTokens(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("t%d", i)
	}
	return out
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}

func int64Param(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
