package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const healthProbeTimeout = 2 * time.Second

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthDeps are what the health tool reports on. Nil pingers are left out.
type HealthDeps struct {
	Version      string
	Database     Pinger
	ProfileCache Pinger
	// Pushdown reports whether aggregates may run inside the row store.
	Pushdown bool
}

type healthResult struct {
	Status       string `json:"status"`
	Version      string `json:"version"`
	Database     string `json:"database,omitempty"`
	ProfileCache string `json:"profile_cache,omitempty"`
	Pushdown     bool   `json:"pushdown"`
}

func probe(ctx context.Context, p Pinger) string {
	ctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return "unreachable"
	}
	return "ok"
}

// RegisterHealthTool adds the health tool to the MCP server.
func RegisterHealthTool(s *server.MCPServer, deps HealthDeps) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server health, version and whether aggregates are pushed down to the row store"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res := healthResult{Status: "ok", Version: deps.Version, Pushdown: deps.Pushdown}
		if deps.Database != nil {
			res.Database = probe(ctx, deps.Database)
		}
		if deps.ProfileCache != nil {
			res.ProfileCache = probe(ctx, deps.ProfileCache)
		}
		if res.Database == "unreachable" || res.ProfileCache == "unreachable" {
			res.Status = "degraded"
		}

		body, err := json.Marshal(res)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal health result: %w", err)
		}
		return mcp.NewToolResultText(string(body)), nil
	})
}
