package mcp

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/attnviz/internal/attention"
	"github.com/ziadkadry99/attnviz/internal/export"
	"github.com/ziadkadry99/attnviz/internal/interaction"
	"github.com/ziadkadry99/attnviz/internal/model"
	"github.com/ziadkadry99/attnviz/internal/viz"
)

// handleGetAttentionWeights returns one head's matrix as a text table.
func (s *Server) handleGetAttentionWeights(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	head := request.GetInt("head", 0)
	if head < 0 || head >= viz.MaxHeads {
		return mcp.NewToolResultError(fmt.Sprintf("head must be between 0 and %d", viz.MaxHeads-1)), nil
	}
	seed := int64(request.GetInt("seed", int(s.seed())))
	tokens := s.tokens(request.GetString("tokens", ""))
	if len(tokens) > viz.MaxTokens {
		return mcp.NewToolResultError(fmt.Sprintf("at most %d tokens", viz.MaxTokens)), nil
	}

	m := attention.NewModel(head+1, len(tokens), attention.NewSource(seed))
	h, _ := m.Head(head)
	return mcp.NewToolResultText(formatWeights(h, tokens)), nil
}

// handleListStages lists stage windows, optionally filtered by glob.
func (s *Server) handleListStages(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := viz.Mount(s.options(request))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("mount failed: %v", err)), nil
	}
	defer v.Unmount()

	var patterns []string
	if f := request.GetString("filter", ""); f != "" {
		patterns = strings.Split(f, ",")
	}
	windows := export.FilterStages(v.Stages(), patterns)
	if len(windows) == 0 {
		return mcp.NewToolResultText("No stages match the filter."), nil
	}
	return mcp.NewToolResultText(formatStages(windows)), nil
}

// handleRenderFrame renders one frame as SVG.
func (s *Server) handleRenderFrame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts := s.options(request)
	if heads := request.GetInt("heads", 0); heads != 0 {
		opts.Heads = heads
	}
	v, err := viz.Mount(opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("mount failed: %v", err)), nil
	}
	defer v.Unmount()

	progress := request.GetFloat("progress", 1)
	if id := request.GetString("stage", ""); id != "" {
		found := false
		for _, w := range v.Stages() {
			if w.ID == id {
				progress, found = w.EndProgress, true
				break
			}
		}
		if !found {
			return mcp.NewToolResultError(fmt.Sprintf("unknown stage %q", id)), nil
		}
	}
	v.SetProgress(progress)

	if sel := request.GetString("select", ""); sel != "" {
		ev, err := parseSelect(sel)
		if err == nil {
			err = v.Pointer(ev, time.Now())
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid select: %v", err)), nil
		}
	}

	var buf bytes.Buffer
	if err := v.WriteSVG(&buf); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) options(request mcp.CallToolRequest) viz.Options {
	opts := s.defaults
	opts.ScrollAnchor = true
	opts.Tokens = s.tokens(request.GetString("tokens", ""))
	return opts
}

func (s *Server) tokens(param string) []string {
	if param != "" {
		return model.Texts(model.TokensFrom(strings.FieldsFunc(param, func(r rune) bool {
			return r == ',' || r == ' '
		})))
	}
	if len(s.defaults.Tokens) > 0 {
		return s.defaults.Tokens
	}
	return viz.DefaultTokens
}

func (s *Server) seed() int64 {
	if s.defaults.Seed != 0 {
		return s.defaults.Seed
	}
	return attention.DefaultSeed
}

func parseSelect(sel string) (interaction.Event, error) {
	headStr, tokenStr, ok := strings.Cut(sel, ":")
	if !ok {
		return interaction.Event{}, fmt.Errorf("want head:token, got %q", sel)
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

// formatWeights renders a head's matrix for agent consumption.
func formatWeights(h attention.Head, tokens []string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Head %d (%s), %d token(s)\n", h.Index, h.Pattern, len(tokens)))
	if len(tokens) == 0 {
		sb.WriteString("No tokens.\n")
		return sb.String()
	}
	sb.WriteString("query \\ key")
	for _, t := range tokens {
		sb.WriteString("\t" + t)
	}
	sb.WriteString("\n")
	for i, row := range h.Weights {
		sb.WriteString(tokens[i])
		for _, w := range row {
			sb.WriteString(fmt.Sprintf("\t%.3f", w))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatStages lists windows one per line.
func formatStages(windows []viz.StageWindow) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d stage(s):\n", len(windows)))
	for _, w := range windows {
		sb.WriteString(fmt.Sprintf("- %s (%s): progress %.3f to %.3f\n", w.ID, w.Title, w.StartProgress, w.EndProgress))
	}
	return sb.String()
}
