package models

// DataSource tags which backing source produced a result.
type DataSource string

const (
	SourceDatabase DataSource = "database"
	SourceMock     DataSource = "mock"
)

// Envelope fields shared by every tool result. Success is always present;
// Error is set only when Success is false.
type Envelope struct {
	Success  bool       `json:"success"`
	Source   DataSource `json:"source,omitempty"`
	Message  string     `json:"message,omitempty"`
	Error    string     `json:"error,omitempty"`
	AsOfDate string     `json:"asOfDate"`
}

// --- resolveClients ---

type AccountBrief struct {
	ID            string   `json:"id"`
	AccountNumber string   `json:"accountNumber,omitempty"`
	Name          string   `json:"name,omitempty"`
	Type          string   `json:"type"`
	Value         *float64 `json:"value"`
	Custodian     string   `json:"custodian,omitempty"`
}

type ClientMatch struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	FirstName     string         `json:"firstName,omitempty"`
	LastName      string         `json:"lastName,omitempty"`
	Email         string         `json:"email,omitempty"`
	Phone         string         `json:"phone,omitempty"`
	Status        string         `json:"status"`
	RiskTolerance string         `json:"riskTolerance,omitempty"`
	TotalAUM      *float64       `json:"totalAUM"`
	AccountCount  int            `json:"accountCount"`
	Accounts      []AccountBrief `json:"accounts,omitempty"`
	LastContact   string         `json:"lastContact,omitempty"`
}

type ResolveClientsResult struct {
	Envelope
	Results []ClientMatch `json:"results"`
}

// --- getClientProfile ---

type AccountDetail struct {
	ID              string   `json:"id"`
	AccountNumber   string   `json:"accountNumber,omitempty"`
	Name            string   `json:"name,omitempty"`
	Type            string   `json:"type"`
	Custodian       string   `json:"custodian,omitempty"`
	Value           *float64 `json:"value"`
	CostBasis       float64  `json:"costBasis"`
	UnrealizedGL    *float64 `json:"unrealizedGL"`
	InceptionDate   string   `json:"inceptionDate,omitempty"`
	IsBillable      bool     `json:"isBillable"`
	IsDiscretionary bool     `json:"isDiscretionary"`
}

type HoldingBrief struct {
	Symbol       string  `json:"ticker"`
	Name         string  `json:"name"`
	AssetClass   string  `json:"assetClass"`
	Units        float64 `json:"units"`
	Value        float64 `json:"value"`
	CostBasis    float64 `json:"costBasis"`
	UnrealizedGL float64 `json:"unrealizedGL"`
}

type ClientProfile struct {
	ID                        string          `json:"id"`
	Name                      string          `json:"name"`
	FirstName                 string          `json:"firstName"`
	LastName                  string          `json:"lastName"`
	Email                     string          `json:"email,omitempty"`
	Phone                     string          `json:"phone,omitempty"`
	Status                    string          `json:"status"`
	RiskTolerance             string          `json:"riskTolerance,omitempty"`
	TotalAUM                  *float64        `json:"totalAUM"`
	TotalCostBasis            float64         `json:"totalCostBasis"`
	UnrealizedGainLoss        float64         `json:"unrealizedGainLoss"`
	UnrealizedGainLossPercent *float64        `json:"unrealizedGainLossPercent"`
	Accounts                  []AccountDetail `json:"accounts"`
	TopHoldings               []HoldingBrief  `json:"topHoldings"`
	OnboardingDate            string          `json:"onboardingDate,omitempty"`
	LastContactDate           string          `json:"lastContactDate,omitempty"`
}

type ClientProfileResult struct {
	Envelope
	Client *ClientProfile `json:"client,omitempty"`
}

// --- aggregateHoldings ---

type HoldingsSummary struct {
	TotalMarketValue           float64  `json:"totalMarketValue"`
	TotalCostBasis             float64  `json:"totalCostBasis"`
	TotalUnrealizedGain        float64  `json:"totalUnrealizedGain"`
	TotalUnrealizedGainPercent *float64 `json:"totalUnrealizedGainPercent"`
	PositionCount              int      `json:"positionCount"`
}

type HoldingPosition struct {
	Symbol                string   `json:"symbol"`
	Name                  string   `json:"name"`
	Quantity              float64  `json:"quantity"`
	CostBasis             float64  `json:"costBasis"`
	MarketValue           float64  `json:"marketValue"`
	AssetClass            string   `json:"assetClass"`
	Sector                string   `json:"sector"`
	UnrealizedGain        float64  `json:"unrealizedGain"`
	UnrealizedGainPercent *float64 `json:"unrealizedGainPercent"`
	Weight                *float64 `json:"weight"`
}

type HoldingGroup struct {
	Holdings       []HoldingPosition `json:"holdings"`
	TotalValue     float64           `json:"totalValue"`
	TotalCost      float64           `json:"totalCost"`
	Weight         *float64          `json:"weight"`
	UnrealizedGain float64           `json:"unrealizedGain"`
}

type HoldingsResult struct {
	Envelope
	AccountID string                  `json:"accountId"`
	Summary   *HoldingsSummary        `json:"summary,omitempty"`
	Holdings  []HoldingPosition       `json:"holdings,omitempty"`
	GroupedBy string                  `json:"groupedBy,omitempty"`
	Groups    map[string]HoldingGroup `json:"groups,omitempty"`
}

// --- computeAllocationDrift ---

type AllocationResult struct {
	Envelope
	ClientID         string          `json:"clientId"`
	Allocation       []AllocationRow `json:"allocation,omitempty"`
	NeedsRebalancing bool            `json:"needsRebalancing"`
	Threshold        float64         `json:"threshold,omitempty"`
	Recommendation   string          `json:"recommendation,omitempty"`
}

// --- getPortfolioPerformance ---

type PerformanceEntry struct {
	Period        string  `json:"period"`
	Return        float64 `json:"return"`
	Benchmark     float64 `json:"benchmark"`
	BenchmarkName string  `json:"benchmarkName,omitempty"`
	ExcessReturn  float64 `json:"excessReturn"`
	Outperformed  bool    `json:"outperformed"`
}

type PerformanceSummary struct {
	YTDReturn    *float64 `json:"ytdReturn"`
	YTDBenchmark *float64 `json:"ytdBenchmark"`
	YTDExcess    float64  `json:"ytdExcess"`
}

type PerformanceResult struct {
	Envelope
	ClientID    string              `json:"clientId"`
	Benchmark   string              `json:"benchmark,omitempty"`
	Performance []PerformanceEntry  `json:"performance,omitempty"`
	Summary     *PerformanceSummary `json:"summary,omitempty"`
}
