package models

// Requests for the advisory tool endpoints. Shared by the HTTP and MCP transports.

type ResolveClientsRequest struct {
	Query  string `query:"query" json:"query" validate:"required,notblank,max=200" jsonschema:"search query: client name, email, phone number or account number"`
	Status string `query:"status" json:"status,omitempty" default:"all" validate:"oneof=all active prospect inactive" jsonschema:"filter by client status: all, active, prospect or inactive"`
	Limit  int    `query:"limit" json:"limit,omitempty" default:"10" validate:"gte=1,lte=100" jsonschema:"maximum number of results to return"`
}

type ClientProfileRequest struct {
	ClientID string `query:"clientId" json:"clientId" validate:"required,notblank,max=200" jsonschema:"the client name or unique client ID"`
}

type HoldingsRequest struct {
	AccountID string `query:"accountId" json:"accountId" validate:"required,notblank,max=100" jsonschema:"the account ID to get holdings for, e.g. acc-001"`
	GroupBy   string `query:"groupBy" json:"groupBy,omitempty" default:"none" validate:"oneof=none assetClass sector" jsonschema:"how to group the holdings: none, assetClass or sector"`
}

type AllocationRequest struct {
	ClientID string `query:"clientId" json:"clientId" validate:"required,notblank,max=200" jsonschema:"the client ID"`
}

type PerformanceRequest struct {
	ClientID  string `query:"clientId" json:"clientId" validate:"required,notblank,max=200" jsonschema:"the client ID"`
	Benchmark string `query:"benchmark" json:"benchmark,omitempty" default:"S&P 500" validate:"max=100" jsonschema:"benchmark to compare against"`
}
