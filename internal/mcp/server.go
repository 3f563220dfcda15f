package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/attnviz/internal/viz"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes the visualization to agents.
type Server struct {
	defaults viz.Options
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server whose tools mount instances from defaults.
func NewServer(defaults viz.Options) *Server {
	s := &Server{defaults: defaults}

	s.mcp = server.NewMCPServer(
		"attnviz",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(getAttentionWeightsTool, s.handleGetAttentionWeights)
	s.mcp.AddTool(listStagesTool, s.handleListStages)
	s.mcp.AddTool(renderFrameTool, s.handleRenderFrame)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
