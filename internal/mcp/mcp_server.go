// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/basket/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// windowOptions are the tool arguments shared by every report tool.
func windowOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("window_start", mcp.Description("Only use purchases on or after this date (YYYY-MM-DD or RFC3339).")),
		mcp.WithString("window_end", mcp.Description("Only use purchases on or before this date (YYYY-MM-DD or RFC3339).")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of rows returned.")),
	}
}

// NewMCPServer initializes and configures the Basket MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Basket Analytics Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_metrics ---
	s.AddTool(mcp.NewTool("get_metrics", append([]mcp.ToolOption{
		mcp.WithDescription("Aggregate marketplace sales into profitability metrics (GMV, net profit, margin, tier) per group."),
		mcp.WithString("group_by", mcp.Description("Grouping dimension. Defaults to 'seller'."), mcp.Enum("seller", "category", "state", "month", "shipping")),
	}, windowOptions()...)...), h.handleGetMetrics)

	// --- 2. Tool: get_rfm_segments ---
	s.AddTool(mcp.NewTool("get_rfm_segments", append([]mcp.ToolOption{
		mcp.WithDescription("Score customers on recency, frequency and monetary value and assign RFM segments."),
		mcp.WithString("segment", mcp.Description("Only list customers of this segment (e.g. 'Champions', 'at-risk').")),
		mcp.WithString("as_of", mcp.Description("Reference date for recency. Defaults to the latest purchase.")),
	}, windowOptions()...)...), h.handleGetRFMSegments)

	// --- 3. Tool: get_value_tiers ---
	s.AddTool(mcp.NewTool("get_value_tiers", append([]mcp.ToolOption{
		mcp.WithDescription("Split customers into equal-population value tiers by total spend."),
		mcp.WithString("as_of", mcp.Description("Ignore purchases after this date. Defaults to the latest purchase.")),
	}, windowOptions()...)...), h.handleGetValueTiers)

	// --- 4. Tool: get_cohorts ---
	s.AddTool(mcp.NewTool("get_cohorts", append([]mcp.ToolOption{
		mcp.WithDescription("Group customers by first-purchase month and report retention and cumulative LTV."),
		mcp.WithBoolean("include_matrix", mcp.Description("Include every (cohort, elapsed month) cell, not just the per-cohort summary.")),
	}, windowOptions()...)...), h.handleGetCohorts)

	// --- 5. Tool: get_policy ---
	s.AddTool(mcp.NewTool("get_policy",
		mcp.WithDescription("Show the business policy (commission, return rate, tiers, RFM bands) used by every report."),
	), h.handleGetPolicy)

	return s
}

// StartMCPServer starts the Basket MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
