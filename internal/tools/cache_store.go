package tools

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/paxxchal/alx-backend-storage/internal/instrument"
	"github.com/paxxchal/alx-backend-storage/internal/store"
)

// CacheStoreHandler returns the MCP tool handler for the "cache-store" tool.
func CacheStoreHandler(c *store.Instrumented) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := req.RequireString("value")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		v, err := store.ParseValue(req.GetString("kind", "text"), raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		key, err := c.Store(ctx, v)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(key), nil
	}
}

// CacheRetrieveHandler returns the MCP tool handler for the "cache-retrieve" tool.
func CacheRetrieveHandler(c *store.Instrumented) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		key, err := req.RequireString("key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out, ok, err := c.RetrieveKind(ctx, key, req.GetString("as", "text"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if !ok {
			return mcp.NewToolResultText("(absent)"), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}

// CacheReplayHandler returns the MCP tool handler for the "cache-replay" tool.
func CacheReplayHandler(c *store.Instrumented) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var sb strings.Builder
		if err := instrument.Replay(ctx, c.KV(), &sb, req.GetString("operation", store.StoreOp)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}
