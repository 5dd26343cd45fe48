package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/JochiRaider/RepoCapsule/internal/qc"
	"github.com/JochiRaider/RepoCapsule/service"
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies(nil, "")
	}
	return &HandlerSet{deps: deps}
}

// HandleFingerprintText handles the fingerprint_text tool
func (h *HandlerSet) HandleFingerprintText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	text, ok := args["text"].(string)
	if !ok {
		return mcp.NewToolResultError("text parameter is required and must be a string"), nil
	}

	cfg := h.deps.Config()

	k := cfg.Fingerprint.K
	if v, ok := args["k"].(float64); ok {
		k = int(v)
	}
	if k < 1 {
		return mcp.NewToolResultError("k must be at least 1"), nil
	}

	numHashes := cfg.Fingerprint.NumHashes
	if v, ok := args["num_hashes"].(float64); ok {
		numHashes = int(v)
	}
	if numHashes < 1 {
		return mcp.NewToolResultError("num_hashes must be at least 1"), nil
	}

	maxTokens := cfg.Fingerprint.MaxTokens
	if v, ok := args["max_tokens"].(float64); ok {
		maxTokens = int(v)
	}

	maxShingles := cfg.Fingerprint.MaxShingles
	if v, ok := args["max_shingles"].(float64); ok {
		maxShingles = int(v)
	}

	simhash := qc.Simhash64Limit(text, maxTokens)
	signature, err := qc.SignatureForTextLimit(text, k, numHashes, maxShingles)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fingerprint failed: %v", err)), nil
	}

	responseData := map[string]interface{}{
		"simhash":    fmt.Sprintf("%016x", simhash),
		"signature":  signature,
		"k":          k,
		"num_hashes": numHashes,
	}

	jsonData, err := json.Marshal(responseData)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}

// HandleFindDuplicates handles the find_duplicates tool
func (h *HandlerSet) HandleFindDuplicates(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	cfg := h.deps.Config()

	opts := service.DedupOptions{
		Fingerprint: service.FingerprintOptions{
			K:           cfg.Fingerprint.K,
			NumHashes:   cfg.Fingerprint.NumHashes,
			MaxTokens:   cfg.Fingerprint.MaxTokens,
			MaxShingles: cfg.Fingerprint.MaxShingles,
		},
		SimhashHammingMax: cfg.Dedup.SimhashHammingMax,
		LSHBands:          cfg.Dedup.LSHBands,
		LSHRows:           cfg.Dedup.LSHRows,
		LSHThreshold:      cfg.Dedup.LSHThreshold,
		MinFamilySize:     cfg.Dedup.MinFamilySize,
		TopFamilies:       cfg.Dedup.TopFamilies,
	}

	if v, ok := args["threshold"].(float64); ok {
		if v <= 0 || v > 1 {
			return mcp.NewToolResultError("threshold must be in (0, 1]"), nil
		}
		opts.LSHThreshold = v
	}
	if v, ok := args["hamming_max"].(float64); ok {
		opts.SimhashHammingMax = int(v)
	}

	maxResults := 0
	if v, ok := args["max_results"].(float64); ok {
		maxResults = int(v)
	}

	files, err := service.CollectFiles([]string{path}, cfg.Input.IncludePatterns, cfg.Input.ExcludePatterns)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("file collection failed: %v", err)), nil
	}
	if len(files) < 2 {
		return mcp.NewToolResultError(fmt.Sprintf("need at least two files to scan for duplicates, found %d", len(files))), nil
	}

	svc := service.NewDedupService()
	svc.Progress().SetWriter(io.Discard)

	report, err := svc.Run(ctx, files, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("duplicate scan failed: %v", err)), nil
	}

	pairs := report.Pairs
	if maxResults > 0 && len(pairs) > maxResults {
		pairs = pairs[:maxResults]
	}

	responseData := map[string]interface{}{
		"scored":       report.Scored,
		"near_dups":    report.NearDups,
		"failed_files": report.FailedFiles,
		"pairs":        pairs,
		"top_families": report.TopFamilies,
	}

	jsonData, err := json.Marshal(responseData)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonData)), nil
}
