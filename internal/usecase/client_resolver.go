package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"FinAdvise/internal/domain/models"
	applogger "FinAdvise/pkg/logger"
	"FinAdvise/pkg/util"
)

const maxBriefAccounts = 3

// ResolveClients searches clients by name, email, phone or account number.
func (s *AdvisoryService) ResolveClients(ctx context.Context, req models.ResolveClientsRequest) *models.ResolveClientsResult {
	query := strings.TrimSpace(req.Query)
	status := models.StatusFilter(req.Status)
	if status == "" {
		status = models.StatusAll
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	res := &models.ResolveClientsResult{Envelope: s.envelope(), Results: []models.ClientMatch{}}
	lk := s.chain.SearchClients(ctx, query, status, limit)
	if !lk.Found() {
		res.Source = lk.Source
		if lk.Err != nil {
			res.Error = storeErrorMessage
			return res
		}
		res.Message = fmt.Sprintf("No clients found matching %q", query)
		return res
	}

	clients := lk.Value
	if len(clients) > limit {
		clients = clients[:limit]
	}
	for _, c := range clients {
		res.Results = append(res.Results, clientMatch(c))
	}
	res.Success = true
	res.Source = lk.Source
	res.Message = fmt.Sprintf("Found %d client(s) matching %q", len(res.Results), query)
	return res
}

// GetClientProfile returns the profile of one client by id or full name.
func (s *AdvisoryService) GetClientProfile(ctx context.Context, req models.ClientProfileRequest) *models.ClientProfileResult {
	key := strings.TrimSpace(req.ClientID)
	res := &models.ClientProfileResult{Envelope: s.envelope()}

	lk := s.chain.GetClient(ctx, models.ToolGetClientProfile, key)
	if !lk.Found() {
		fail(&res.Envelope, lk, fmt.Sprintf("Client %q not found", key))
		return res
	}

	c := lk.Value
	profile := &models.ClientProfile{
		ID:                 c.ID,
		Name:               c.DisplayName(),
		FirstName:          c.FirstName,
		LastName:           c.LastName,
		Email:              c.Email,
		Phone:              c.Phone,
		Status:             string(c.Status),
		RiskTolerance:      c.RiskTolerance,
		TotalAUM:           toFloatPtr(c.TotalAUM()),
		TotalCostBasis:     toFloat(c.TotalCostBasis()),
		UnrealizedGainLoss: toFloat(c.UnrealizedGain()),
		Accounts:           []models.AccountDetail{},
		TopHoldings:        []models.HoldingBrief{},
		OnboardingDate:     util.FormatDatePtr(c.OnboardingDate),
		LastContactDate:    util.FormatDatePtr(c.LastContactDate),
	}
	profile.UnrealizedGainLossPercent = percentOf(c.UnrealizedGain(), c.TotalCostBasis(), 2)

	for _, a := range c.AccountsByValue() {
		d := models.AccountDetail{
			ID:              a.ID,
			AccountNumber:   a.AccountNumber,
			Name:            a.Name,
			Type:            a.Type,
			Custodian:       a.Custodian,
			Value:           toFloatPtr(a.MarketValue),
			CostBasis:       toFloat(a.CostBasis),
			InceptionDate:   util.FormatDatePtr(a.InceptionDate),
			IsBillable:      a.IsBillable,
			IsDiscretionary: a.IsDiscretionary,
		}
		if g, ok := a.UnrealizedGain(); ok {
			v := toFloat(g)
			d.UnrealizedGL = &v
		}
		profile.Accounts = append(profile.Accounts, d)
	}

	profile.TopHoldings = s.topHoldings(ctx, c, lk.Source)

	res.Success = true
	res.Source = lk.Source
	res.Client = profile
	return res
}

// topHoldings lists the largest positions of the client's largest open account.
// A failure here degrades the profile instead of failing it.
func (s *AdvisoryService) topHoldings(ctx context.Context, c *models.Client, source models.DataSource) []models.HoldingBrief {
	out := []models.HoldingBrief{}
	acct, ok := c.LargestOpenAccount()
	if !ok {
		return out
	}
	holdings, err := s.storeFor(source).ListHoldings(ctx, acct.ID)
	if err != nil {
		s.l.Warn("top holdings unavailable",
			applogger.String("client", c.ID),
			applogger.String("account", acct.ID),
			applogger.Error(err),
		)
		return out
	}
	sort.SliceStable(holdings, func(i, j int) bool {
		return holdings[i].MarketValue.GreaterThan(holdings[j].MarketValue)
	})
	if len(holdings) > s.topN {
		holdings = holdings[:s.topN]
	}
	for _, h := range holdings {
		out = append(out, models.HoldingBrief{
			Symbol:       h.Symbol,
			Name:         h.Name,
			AssetClass:   h.AssetClass,
			Units:        toFloat(h.Quantity),
			Value:        toFloat(h.MarketValue),
			CostBasis:    toFloat(h.CostBasis),
			UnrealizedGL: toFloat(h.UnrealizedGain()),
		})
	}
	return out
}

func clientMatch(c models.Client) models.ClientMatch {
	accounts := c.AccountsByValue()
	m := models.ClientMatch{
		ID:            c.ID,
		Name:          c.DisplayName(),
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		Email:         c.Email,
		Phone:         c.Phone,
		Status:        string(c.Status),
		RiskTolerance: c.RiskTolerance,
		TotalAUM:      toFloatPtr(c.TotalAUM()),
		AccountCount:  len(accounts),
		LastContact:   util.FormatDatePtr(c.LastContactDate),
	}
	if len(accounts) > maxBriefAccounts {
		accounts = accounts[:maxBriefAccounts]
	}
	for _, a := range accounts {
		m.Accounts = append(m.Accounts, models.AccountBrief{
			ID:            a.ID,
			AccountNumber: a.AccountNumber,
			Name:          a.Name,
			Type:          a.Type,
			Value:         toFloatPtr(a.MarketValue),
			Custodian:     a.Custodian,
		})
	}
	return m
}
