package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterTools registers all repocapsule MCP tools with the server
func RegisterTools(s *server.MCPServer) {
	RegisterToolsWithHandlers(s, NewHandlerSet(nil))
}

// RegisterToolsWithHandlers registers the tools backed by an explicit handler set
func RegisterToolsWithHandlers(s *server.MCPServer, handlers *HandlerSet) {
	// Tool 1: fingerprint_text - SimHash + MinHash fingerprint of raw text
	s.AddTool(mcp.NewTool("fingerprint_text",
		mcp.WithDescription("Compute a 64-bit SimHash and a MinHash signature for a text snippet"),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Text to fingerprint")),
		mcp.WithNumber("k",
			mcp.Description("Shingle width in bytes (default: 5)")),
		mcp.WithNumber("num_hashes",
			mcp.Description("MinHash signature length (default: 128)")),
		mcp.WithNumber("max_tokens",
			mcp.Description("SimHash token cap, 0 disables SimHash (default: 20000)")),
		mcp.WithNumber("max_shingles",
			mcp.Description("Shingle cap, 0 means unlimited (default: 20000)")),
	), handlers.HandleFingerprintText)

	// Tool 2: find_duplicates - Near-duplicate scan over a file tree
	s.AddTool(mcp.NewTool("find_duplicates",
		mcp.WithDescription("Scan text files for near-duplicates using MinHash LSH with a SimHash Hamming gate"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("File or directory to scan")),
		mcp.WithNumber("threshold",
			mcp.Description("Minimum estimated Jaccard similarity 0.0-1.0 (default: 0.78)")),
		mcp.WithNumber("hamming_max",
			mcp.Description("Maximum SimHash Hamming distance for a near-duplicate (default: 3)")),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of pairs to return, 0 = unlimited (default: 0)")),
	), handlers.HandleFindDuplicates)
}
