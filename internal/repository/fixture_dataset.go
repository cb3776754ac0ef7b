package repository

import (
	"context"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"FinAdvise/internal/domain/models"
	domrepo "FinAdvise/internal/domain/repository"
	"FinAdvise/pkg/util"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures/advisory_snapshot.yaml
var advisorySnapshot []byte

// FixtureDataset is the immutable in-memory snapshot used when the durable
// store is absent or failing. Every read returns copies.
type FixtureDataset struct {
	clients     []models.Client
	holdings    map[string][]models.Holding
	closed      map[string]bool
	allocations map[string]models.AllocationPolicy
	performance map[string][]models.PerformancePeriod
}

var _ domrepo.AdvisoryStore = (*FixtureDataset)(nil)

// NewFixtureDataset parses the embedded snapshot.
func NewFixtureDataset() (*FixtureDataset, error) {
	return ParseFixtureDataset(advisorySnapshot)
}

// ParseFixtureDataset builds a dataset from a YAML snapshot document.
func ParseFixtureDataset(doc []byte) (*FixtureDataset, error) {
	var raw fixtureDoc
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("parse fixture snapshot: %w", err)
	}

	ds := &FixtureDataset{
		clients:     make([]models.Client, 0, len(raw.Clients)),
		holdings:    make(map[string][]models.Holding, len(raw.Holdings)),
		closed:      make(map[string]bool),
		allocations: make(map[string]models.AllocationPolicy, len(raw.Allocations)),
		performance: make(map[string][]models.PerformancePeriod, len(raw.Performance)),
	}

	for _, rc := range raw.Clients {
		c, err := rc.toModel()
		if err != nil {
			return nil, fmt.Errorf("client %s: %w", rc.ID, err)
		}
		for _, a := range c.Accounts {
			ds.closed[a.ID] = a.IsClosed
		}
		ds.clients = append(ds.clients, c)
	}
	for accountID, rows := range raw.Holdings {
		hs := make([]models.Holding, 0, len(rows))
		for _, h := range rows {
			hs = append(hs, h.toModel())
		}
		ds.holdings[accountID] = hs
	}
	for clientID, ra := range raw.Allocations {
		ds.allocations[clientID] = ra.toModel(clientID)
	}
	for clientID, rows := range raw.Performance {
		ps := make([]models.PerformancePeriod, 0, len(rows))
		for _, p := range rows {
			ps = append(ps, models.PerformancePeriod{
				Period:        p.Period,
				Return:        decimal.NewFromFloat(p.Return),
				Benchmark:     decimal.NewFromFloat(p.Benchmark),
				BenchmarkName: p.BenchmarkName,
			})
		}
		ds.performance[clientID] = ps
	}
	return ds, nil
}

// SearchClients applies the shared match predicate and status filter, ordered
// by total AUM descending with unknown AUM last.
func (d *FixtureDataset) SearchClients(_ context.Context, query string, status models.StatusFilter, limit int) ([]models.Client, error) {
	out := make([]models.Client, 0)
	for _, c := range d.clients {
		if c.Matches(query) && status.Allows(c.Status) {
			out = append(out, cloneClient(c))
		}
	}
	SortClientsByAUM(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// GetClient matches the client ID exactly or the full name case-insensitively.
func (d *FixtureDataset) GetClient(_ context.Context, idOrName string) (*models.Client, error) {
	key := strings.TrimSpace(idOrName)
	for _, c := range d.clients {
		if c.ID == key || strings.EqualFold(c.DisplayName(), key) {
			cc := cloneClient(c)
			return &cc, nil
		}
	}
	return nil, nil
}

func (d *FixtureDataset) ListHoldings(_ context.Context, accountID string) ([]models.Holding, error) {
	if d.closed[accountID] {
		return nil, nil
	}
	src := d.holdings[accountID]
	if len(src) == 0 {
		return nil, nil
	}
	out := make([]models.Holding, len(src))
	copy(out, src)
	return out, nil
}

func (d *FixtureDataset) GetAllocationPolicy(_ context.Context, clientID string) (*models.AllocationPolicy, error) {
	p, ok := d.allocations[clientID]
	if !ok {
		return nil, nil
	}
	cp := models.AllocationPolicy{
		ClientID:  p.ClientID,
		Target:    cloneWeights(p.Target),
		Actual:    cloneWeights(p.Actual),
		Threshold: p.Threshold,
	}
	return &cp, nil
}

func (d *FixtureDataset) ListPerformance(_ context.Context, clientID string) ([]models.PerformancePeriod, error) {
	src := d.performance[clientID]
	if len(src) == 0 {
		return nil, nil
	}
	out := make([]models.PerformancePeriod, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool {
		return models.PeriodRank(out[i].Period) < models.PeriodRank(out[j].Period)
	})
	return out, nil
}

// SortClientsByAUM orders clients by total AUM descending, unknown AUM last,
// ties broken by display name.
func SortClientsByAUM(cs []models.Client) {
	sort.SliceStable(cs, func(i, j int) bool {
		ai, aj := cs[i].TotalAUM(), cs[j].TotalAUM()
		switch {
		case ai.Valid && !aj.Valid:
			return true
		case !ai.Valid && aj.Valid:
			return false
		case ai.Valid && !ai.Decimal.Equal(aj.Decimal):
			return ai.Decimal.GreaterThan(aj.Decimal)
		default:
			return cs[i].DisplayName() < cs[j].DisplayName()
		}
	})
}

func cloneClient(c models.Client) models.Client {
	cc := c
	cc.Accounts = make([]models.Account, len(c.Accounts))
	copy(cc.Accounts, c.Accounts)
	return cc
}

func cloneWeights(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- snapshot document ---

type fixtureDoc struct {
	Clients     []fixtureClient                 `yaml:"clients"`
	Holdings    map[string][]fixtureHolding     `yaml:"holdings"`
	Allocations map[string]fixtureAllocation    `yaml:"allocations"`
	Performance map[string][]fixturePerformance `yaml:"performance"`
}

type fixtureClient struct {
	ID              string           `yaml:"id"`
	FirstName       string           `yaml:"first_name"`
	LastName        string           `yaml:"last_name"`
	FullName        string           `yaml:"full_name"`
	Email           string           `yaml:"email"`
	Phone           string           `yaml:"phone"`
	Status          string           `yaml:"status"`
	RiskTolerance   string           `yaml:"risk_tolerance"`
	OnboardingDate  string           `yaml:"onboarding_date"`
	LastContactDate string           `yaml:"last_contact_date"`
	Accounts        []fixtureAccount `yaml:"accounts"`
}

type fixtureAccount struct {
	ID              string   `yaml:"id"`
	AccountNumber   string   `yaml:"account_number"`
	Name            string   `yaml:"name"`
	Type            string   `yaml:"type"`
	Custodian       string   `yaml:"custodian"`
	MarketValue     *float64 `yaml:"market_value"`
	CostBasis       float64  `yaml:"cost_basis"`
	IsClosed        bool     `yaml:"is_closed"`
	InceptionDate   string   `yaml:"inception_date"`
	IsBillable      bool     `yaml:"is_billable"`
	IsDiscretionary bool     `yaml:"is_discretionary"`
}

type fixtureHolding struct {
	Symbol      string  `yaml:"symbol"`
	Name        string  `yaml:"name"`
	Quantity    float64 `yaml:"quantity"`
	CostBasis   float64 `yaml:"cost_basis"`
	MarketValue float64 `yaml:"market_value"`
	AssetClass  string  `yaml:"asset_class"`
	Sector      string  `yaml:"sector"`
}

type fixtureAllocation struct {
	Target    map[string]float64 `yaml:"target"`
	Actual    map[string]float64 `yaml:"actual"`
	Threshold *float64           `yaml:"rebalance_threshold"`
}

type fixturePerformance struct {
	Period        string  `yaml:"period"`
	Return        float64 `yaml:"return"`
	Benchmark     float64 `yaml:"benchmark"`
	BenchmarkName string  `yaml:"benchmark_name"`
}

func (rc fixtureClient) toModel() (models.Client, error) {
	onboarding, err := parseFixtureDate(rc.OnboardingDate)
	if err != nil {
		return models.Client{}, fmt.Errorf("onboarding_date: %w", err)
	}
	lastContact, err := parseFixtureDate(rc.LastContactDate)
	if err != nil {
		return models.Client{}, fmt.Errorf("last_contact_date: %w", err)
	}
	c := models.Client{
		ID:              rc.ID,
		FirstName:       rc.FirstName,
		LastName:        rc.LastName,
		FullName:        rc.FullName,
		Email:           rc.Email,
		Phone:           rc.Phone,
		Status:          models.ClientStatus(rc.Status),
		RiskTolerance:   rc.RiskTolerance,
		OnboardingDate:  onboarding,
		LastContactDate: lastContact,
		Accounts:        make([]models.Account, 0, len(rc.Accounts)),
	}
	if c.FullName == "" {
		c.FullName = c.FirstName + " " + c.LastName
	}
	for _, ra := range rc.Accounts {
		inception, err := parseFixtureDate(ra.InceptionDate)
		if err != nil {
			return models.Client{}, fmt.Errorf("account %s inception_date: %w", ra.ID, err)
		}
		a := models.Account{
			ID:              ra.ID,
			AccountNumber:   ra.AccountNumber,
			Name:            ra.Name,
			Type:            ra.Type,
			Custodian:       ra.Custodian,
			CostBasis:       decimal.NewFromFloat(ra.CostBasis),
			IsClosed:        ra.IsClosed,
			InceptionDate:   inception,
			IsBillable:      ra.IsBillable,
			IsDiscretionary: ra.IsDiscretionary,
		}
		if ra.MarketValue != nil {
			a.MarketValue = decimal.NewNullDecimal(decimal.NewFromFloat(*ra.MarketValue))
		}
		c.Accounts = append(c.Accounts, a)
	}
	return c, nil
}

func (h fixtureHolding) toModel() models.Holding {
	return models.Holding{
		Symbol:      h.Symbol,
		Name:        h.Name,
		Quantity:    decimal.NewFromFloat(h.Quantity),
		CostBasis:   decimal.NewFromFloat(h.CostBasis),
		MarketValue: decimal.NewFromFloat(h.MarketValue),
		AssetClass:  h.AssetClass,
		Sector:      h.Sector,
	}
}

func (ra fixtureAllocation) toModel(clientID string) models.AllocationPolicy {
	p := models.AllocationPolicy{
		ClientID: clientID,
		Target:   make(map[string]decimal.Decimal, len(ra.Target)),
		Actual:   make(map[string]decimal.Decimal, len(ra.Actual)),
	}
	for k, v := range ra.Target {
		p.Target[k] = decimal.NewFromFloat(v)
	}
	for k, v := range ra.Actual {
		p.Actual[k] = decimal.NewFromFloat(v)
	}
	if ra.Threshold != nil {
		p.Threshold = decimal.NewNullDecimal(decimal.NewFromFloat(*ra.Threshold))
	}
	return p
}

func parseFixtureDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, ok := util.ParseDate(s)
	if !ok {
		return nil, fmt.Errorf("invalid date %q", s)
	}
	return &t, nil
}
