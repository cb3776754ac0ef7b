package models

import "net/http"

// Tool names as exposed to the orchestrator.
const (
	ToolResolveClients          = "resolveClients"
	ToolGetClientProfile        = "getClientProfile"
	ToolAggregateHoldings       = "aggregateHoldings"
	ToolComputeAllocationDrift  = "computeAllocationDrift"
	ToolGetPortfolioPerformance = "getPortfolioPerformance"
)

// ParamDefinition describes one tool input parameter.
type ParamDefinition struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Required    bool     `json:"required"`
	Default     any      `json:"default,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// ToolDefinition describes a callable tool for selection by the orchestrator.
type ToolDefinition struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Params      []ParamDefinition `json:"params"`
}

// ToolCatalog returns the definitions of all advisory tools.
func ToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        ToolResolveClients,
			Description: "Search for clients by name, email, phone number, or account number. Returns matching clients with basic profile information and total assets.",
			Method:      http.MethodPost,
			Path:        "/api/tools/" + ToolResolveClients,
			Params: []ParamDefinition{
				{Name: "query", Type: "string", Description: "Search query - can be client name, email, phone, or account number", Required: true},
				{Name: "status", Type: "string", Description: "Filter by client status", Default: "all", Enum: []string{"all", "active", "prospect", "inactive"}},
				{Name: "limit", Type: "number", Description: "Maximum number of results to return", Default: 10},
			},
		},
		{
			Name:        ToolGetClientProfile,
			Description: "Get detailed profile information for a specific client by their name or ID. Includes contact info, accounts, holdings, and portfolio details.",
			Method:      http.MethodPost,
			Path:        "/api/tools/" + ToolGetClientProfile,
			Params: []ParamDefinition{
				{Name: "clientId", Type: "string", Description: "The client name or unique client ID", Required: true},
			},
		},
		{
			Name:        ToolAggregateHoldings,
			Description: "Get current portfolio holdings for a client account. Shows positions, values, allocation, and unrealized gains/losses.",
			Method:      http.MethodPost,
			Path:        "/api/tools/" + ToolAggregateHoldings,
			Params: []ParamDefinition{
				{Name: "accountId", Type: "string", Description: "The account ID to get holdings for (e.g., acc-001)", Required: true},
				{Name: "groupBy", Type: "string", Description: "How to group the holdings", Default: "none", Enum: []string{"none", "assetClass", "sector"}},
			},
		},
		{
			Name:        ToolComputeAllocationDrift,
			Description: "Get the current asset allocation for a client across all their accounts. Shows target vs actual allocation, drift per asset class and whether rebalancing is needed.",
			Method:      http.MethodPost,
			Path:        "/api/tools/" + ToolComputeAllocationDrift,
			Params: []ParamDefinition{
				{Name: "clientId", Type: "string", Description: "The client ID", Required: true},
			},
		},
		{
			Name:        ToolGetPortfolioPerformance,
			Description: "Get portfolio performance metrics for a client. Shows returns across different time periods compared to benchmarks.",
			Method:      http.MethodPost,
			Path:        "/api/tools/" + ToolGetPortfolioPerformance,
			Params: []ParamDefinition{
				{Name: "clientId", Type: "string", Description: "The client ID", Required: true},
				{Name: "benchmark", Type: "string", Description: "Benchmark to compare against", Default: "S&P 500"},
			},
		},
	}
}

// LookupTool returns the definition with the given name.
func LookupTool(name string) (ToolDefinition, bool) {
	for _, t := range ToolCatalog() {
		if t.Name == name {
			return t, true
		}
	}
	return ToolDefinition{}, false
}
