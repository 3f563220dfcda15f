package mcp

import "github.com/mark3labs/mcp-go/mcp"

// getAttentionWeightsTool defines the get_attention_weights MCP tool.
var getAttentionWeightsTool = mcp.NewTool("get_attention_weights",
	mcp.WithDescription("Get the synthetic attention matrix of one head. Each row holds the weights a query token gives every key token and sums to 1."),
	mcp.WithNumber("head",
		mcp.Description("Head index (default 0). Head 0 attends locally, head 1 to the first token, later heads uniformly."),
	),
	mcp.WithString("tokens",
		mcp.Description("Space or comma separated tokens (default: the configured sentence)"),
	),
	mcp.WithNumber("seed",
		mcp.Description("Seed for the weight noise (default: configured seed)"),
	),
)

// listStagesTool defines the list_stages MCP tool.
var listStagesTool = mcp.NewTool("list_stages",
	mcp.WithDescription("List the scroll stages of the transformer walkthrough with their positions on the timeline."),
	mcp.WithString("filter",
		mcp.Description("Comma separated glob patterns over stage ids, e.g. mha/*"),
	),
)

// renderFrameTool defines the render_frame MCP tool.
var renderFrameTool = mcp.NewTool("render_frame",
	mcp.WithDescription("Render the visualization at a scroll position as a standalone SVG document."),
	mcp.WithNumber("progress",
		mcp.Description("Scroll progress in [0,1] (default 1)"),
	),
	mcp.WithString("stage",
		mcp.Description("Render the end of this stage instead of a progress value"),
	),
	mcp.WithNumber("heads",
		mcp.Description("Number of attention heads (default: configured heads)"),
	),
	mcp.WithString("tokens",
		mcp.Description("Space or comma separated tokens"),
	),
	mcp.WithString("select",
		mcp.Description("Select a query token as head:token, e.g. 0:2"),
	),
)
