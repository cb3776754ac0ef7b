package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"FinAdvise/internal/domain/models"
	applogger "FinAdvise/pkg/logger"
)

const alertPublishTimeout = 5 * time.Second

// ComputeAllocationDrift compares a client's target and actual allocation.
// When rebalancing is needed a RebalanceAlert is published; publish
// failures are logged and do not change the result.
func (s *AdvisoryService) ComputeAllocationDrift(ctx context.Context, req models.AllocationRequest) *models.AllocationResult {
	clientID := strings.TrimSpace(req.ClientID)
	res := &models.AllocationResult{Envelope: s.envelope(), ClientID: clientID}

	lk := s.chain.GetAllocationPolicy(ctx, clientID)
	if !lk.Found() {
		fail(&res.Envelope, lk, fmt.Sprintf("No allocation data found for client %q", clientID))
		return res
	}

	policy := lk.Value
	drift := s.drift.Compute(policy.Target, policy.Actual, policy.Threshold)

	res.Success = true
	res.Source = lk.Source
	res.Allocation = drift.Rows
	res.NeedsRebalancing = drift.NeedsRebalancing
	res.Threshold = drift.Threshold
	res.Recommendation = drift.Recommendation

	if drift.NeedsRebalancing {
		s.publishAlert(ctx, clientID, lk.Source, drift, res.AsOfDate)
	}
	return res
}

func (s *AdvisoryService) publishAlert(ctx context.Context, clientID string, source models.DataSource, drift models.AllocationDrift, asOf string) {
	alert := &models.RebalanceAlert{
		ClientID:    clientID,
		Source:      source,
		MaxAbsDrift: drift.MaxAbsDrift,
		Threshold:   drift.Threshold,
		Allocation:  drift.Rows,
		AsOfDate:    asOf,
		CreatedAt:   s.clock().UTC(),
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertPublishTimeout)
	defer cancel()
	if err := s.alerts.PublishRebalanceAlert(pctx, alert); err != nil {
		s.l.Warn("rebalance alert not published",
			applogger.String("client", clientID),
			applogger.Error(err),
		)
	}
}
