package usecase

import (
	"context"
	"fmt"
	"strings"

	"FinAdvise/internal/domain/models"
	applogger "FinAdvise/pkg/logger"
)

// AggregateHoldings summarises the holdings of one open account.
func (s *AdvisoryService) AggregateHoldings(ctx context.Context, req models.HoldingsRequest) *models.HoldingsResult {
	accountID := strings.TrimSpace(req.AccountID)
	groupBy := models.GroupBy(req.GroupBy)
	if groupBy == "" {
		groupBy = models.GroupByNone
	}

	res := &models.HoldingsResult{Envelope: s.envelope(), AccountID: accountID}
	lk := s.chain.ListHoldings(ctx, accountID)
	if !lk.Found() {
		fail(&res.Envelope, lk, fmt.Sprintf("No holdings found for account %q", accountID))
		return res
	}

	agg := AggregateHoldings(lk.Value, groupBy)
	s.checkWeights(accountID, agg)

	res.Success = true
	res.Source = lk.Source
	res.Summary = &agg.Summary
	if agg.GroupedBy != "" {
		res.GroupedBy = string(agg.GroupedBy)
		res.Groups = agg.Groups
		s.l.Debug("holdings grouped",
			applogger.String("account", accountID),
			applogger.Strings("groups", agg.GroupKeys()),
		)
		return res
	}
	res.Holdings = agg.Holdings
	return res
}

// checkWeights warns when the per-holding weights drift from 100 beyond tolerance.
func (s *AdvisoryService) checkWeights(accountID string, agg HoldingsAggregate) {
	if agg.Summary.TotalMarketValue == 0 {
		return
	}
	dev := agg.WeightSum.Sub(hundred).Abs()
	if dev.GreaterThan(s.tolerance) {
		s.l.Warn("holding weights do not sum to 100",
			applogger.String("account", accountID),
			applogger.Decimal("weight_sum", agg.WeightSum),
			applogger.Decimal("tolerance", s.tolerance),
		)
	}
}
