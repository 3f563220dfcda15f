package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/attnviz/internal/viz"
)

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		tool     mcp.Tool
		wantName string
	}{
		{"get_attention_weights", getAttentionWeightsTool, "get_attention_weights"},
		{"list_stages", listStagesTool, "list_stages"},
		{"render_frame", renderFrameTool, "render_frame"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	srv := NewServer(viz.Options{Heads: 3})
	if srv == nil {
		t.Fatal("NewServer returned nil")
	}
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.defaults.Heads != 3 {
		t.Errorf("defaults.Heads = %d, want 3", srv.defaults.Heads)
	}
}

func TestHandleGetAttentionWeights(t *testing.T) {
	srv := NewServer(viz.Options{})
	ctx := context.Background()

	t.Run("locality head", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"head": 0, "tokens": "a b c"}

		result, err := srv.handleGetAttentionWeights(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		text := extractText(result)
		if !strings.Contains(text, "Head 0 (locality), 3 token(s)") {
			t.Errorf("missing header in %q", text)
		}
		// Header plus three rows.
		if lines := strings.Count(text, "\n"); lines != 5 {
			t.Errorf("expected 5 lines, got %d in %q", lines, text)
		}
	})

	t.Run("negative head", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"head": -1}

		result, err := srv.handleGetAttentionWeights(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for negative head")
		}
	})

	t.Run("head over limit", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"head": 100000000}

		result, err := srv.handleGetAttentionWeights(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for head over the limit")
		}
	})

	t.Run("too many tokens", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"tokens": strings.Repeat("w ", viz.MaxTokens+1)}

		result, err := srv.handleGetAttentionWeights(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for too many tokens")
		}
	})

	t.Run("default tokens", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"head": 1}

		result, err := srv.handleGetAttentionWeights(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := extractText(result)
		if !strings.Contains(text, "first-token") || !strings.Contains(text, "Transformers") {
			t.Errorf("expected default sentence on head 1, got %q", text)
		}
	})
}

func TestHandleListStages(t *testing.T) {
	srv := NewServer(viz.Options{})
	ctx := context.Background()

	t.Run("all", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{}

		result, err := srv.handleListStages(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(extractText(result), "Found 12 stage(s)") {
			t.Errorf("unexpected listing %q", extractText(result))
		}
	})

	t.Run("filtered", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"filter": "add-norm/*"}

		result, err := srv.handleListStages(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		text := extractText(result)
		if !strings.Contains(text, "Found 2 stage(s)") || strings.Contains(text, "mha/") {
			t.Errorf("unexpected listing %q", text)
		}
	})

	t.Run("no match", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"filter": "nothing"}

		result, err := srv.handleListStages(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(extractText(result), "No stages match") {
			t.Errorf("unexpected listing %q", extractText(result))
		}
	})
}

func TestHandleRenderFrame(t *testing.T) {
	srv := NewServer(viz.Options{})
	ctx := context.Background()

	t.Run("progress", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"progress": 0.5}

		result, err := srv.handleRenderFrame(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.HasPrefix(extractText(result), "<svg") {
			t.Error("expected an SVG document")
		}
	})

	t.Run("stage with selection", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"stage": "mha/softmax", "select": "0:2"}

		result, err := srv.handleRenderFrame(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %v", result.Content)
		}
		if !strings.Contains(extractText(result), "strong") {
			t.Error("expected strong paths for the selected token")
		}
	})

	t.Run("unknown stage", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"stage": "decoder"}

		result, err := srv.handleRenderFrame(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for unknown stage")
		}
	})

	t.Run("too many heads", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"heads": 100000}

		result, err := srv.handleRenderFrame(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for head count over the limit")
		}
	})

	t.Run("bad select", func(t *testing.T) {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = map[string]any{"select": "zero"}

		result, err := srv.handleRenderFrame(ctx, req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsError {
			t.Error("expected error for malformed select")
		}
	})
}

// extractText gets the text content from a CallToolResult.
func extractText(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}
