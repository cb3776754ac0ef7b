package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"FinAdvise/internal/domain/models"
	"FinAdvise/internal/usecase"
	xhttp "FinAdvise/pkg/http"
	applogger "FinAdvise/pkg/logger"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(s *mcp.Server, svc *usecase.AdvisoryService, l *applogger.Logger) {
	addTool(s, l, models.ToolResolveClients,
		func(ctx context.Context, in models.ResolveClientsRequest) any { return svc.ResolveClients(ctx, in) })
	addTool(s, l, models.ToolGetClientProfile,
		func(ctx context.Context, in models.ClientProfileRequest) any { return svc.GetClientProfile(ctx, in) })
	addTool(s, l, models.ToolAggregateHoldings,
		func(ctx context.Context, in models.HoldingsRequest) any { return svc.AggregateHoldings(ctx, in) })
	addTool(s, l, models.ToolComputeAllocationDrift,
		func(ctx context.Context, in models.AllocationRequest) any { return svc.ComputeAllocationDrift(ctx, in) })
	addTool(s, l, models.ToolGetPortfolioPerformance,
		func(ctx context.Context, in models.PerformanceRequest) any { return svc.GetPortfolioPerformance(ctx, in) })
}

// addTool registers name with the description from the tool catalog. The
// input schema is inferred from In; defaults and validation rules are the
// same ones the HTTP transport applies.
func addTool[In any](s *mcp.Server, l *applogger.Logger, name string, run func(context.Context, In) any) {
	def, ok := models.LookupTool(name)
	if !ok {
		panic(fmt.Sprintf("mcp: tool %q missing from catalog", name))
	}
	tool := &mcp.Tool{Name: def.Name, Description: def.Description}

	mcp.AddTool(s, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in In) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		if verr := xhttp.ValidateStruct(ctx, &in); verr != nil {
			l.Warn("mcp tool request rejected", applogger.String("tool", name), applogger.Int("errors", len(verr)))
			return jsonResult(verr, true)
		}
		res, _, err := jsonResult(run(ctx, in), false)
		l.Debug("mcp tool call",
			applogger.String("tool", name),
			applogger.Duration("duration", time.Since(start)),
		)
		return res, nil, err
	})
}

func jsonResult(v any, isError bool) (*mcp.CallToolResult, any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encode tool result: %w", err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
		IsError: isError,
	}, nil, nil
}
