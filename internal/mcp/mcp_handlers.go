package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/huangsam/basket/core"
	"github.com/huangsam/basket/internal/contract"
	"github.com/huangsam/basket/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
}

// applyCommon copies the arguments shared by every tool onto a cloned config.
func (h *toolHandler) applyCommon(request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = min(l, contract.MaxResultLimit)
	}
	start, err := contract.ParseDate(request.GetString("window_start", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid window_start: %w", err)
	}
	end, err := contract.ParseDate(request.GetString("window_end", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid window_end: %w", err)
	}
	if !start.IsZero() {
		cfg.WindowStart = start
	}
	if !end.IsZero() {
		cfg.WindowEnd = end
	}
	if !cfg.WindowStart.IsZero() && !cfg.WindowEnd.IsZero() && cfg.WindowEnd.Before(cfg.WindowStart) {
		return nil, fmt.Errorf("window_end %s is before window_start %s",
			cfg.WindowEnd.Format(contract.DateTimeFormat), cfg.WindowStart.Format(contract.DateTimeFormat))
	}
	asOf, err := contract.ParseDate(request.GetString("as_of", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid as_of: %w", err)
	}
	if !asOf.IsZero() {
		cfg.AsOf = asOf
	}
	return cfg, nil
}

func (h *toolHandler) handleGetMetrics(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.applyCommon(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if g := request.GetString("group_by", ""); g != "" {
		groupBy := schema.GroupBy(g)
		if _, ok := schema.ValidGroupBys[groupBy]; !ok {
			return mcp.NewToolResultError(fmt.Sprintf("invalid group_by '%s'", g)), nil
		}
		cfg.GroupBy = groupBy
	}

	groups, err := core.GetMetricsResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("metrics failed: %v", err)), nil
	}
	return jsonResult(schema.EnrichGroups(groups))
}

func (h *toolHandler) handleGetRFMSegments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.applyCommon(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s := request.GetString("segment", ""); s != "" {
		segment, err := contract.ParseSegment(s)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		cfg.Segment = segment
	}

	result, err := core.GetRFMResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("rfm scoring failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleGetValueTiers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.applyCommon(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := core.GetValueResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("value tiering failed: %v", err)), nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleGetCohorts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := h.applyCommon(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	result, err := core.GetCohortResults(core.WithSuppressHeader(ctx), cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("cohort analysis failed: %v", err)), nil
	}
	if !request.GetBool("include_matrix", false) {
		result.Rows = nil
	}
	return jsonResult(result)
}

func (h *toolHandler) handleGetPolicy(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(h.baseCfg.Policy)
}

// jsonResult wraps v as indented JSON text.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
