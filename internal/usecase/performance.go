package usecase

import (
	"context"
	"fmt"
	"strings"

	"FinAdvise/internal/domain/models"

	"github.com/shopspring/decimal"
)

// GetPortfolioPerformance returns per-period returns against a benchmark.
func (s *AdvisoryService) GetPortfolioPerformance(ctx context.Context, req models.PerformanceRequest) *models.PerformanceResult {
	clientID := strings.TrimSpace(req.ClientID)
	benchmark := strings.TrimSpace(req.Benchmark)
	if benchmark == "" {
		benchmark = s.benchmark
	}
	res := &models.PerformanceResult{Envelope: s.envelope(), ClientID: clientID, Benchmark: benchmark}

	lk := s.chain.ListPerformance(ctx, clientID)
	if !lk.Found() {
		fail(&res.Envelope, lk, fmt.Sprintf("No performance data found for client %q", clientID))
		return res
	}

	var ytd *models.PerformancePeriod
	for i, p := range lk.Value {
		name := p.BenchmarkName
		if name == "" {
			name = benchmark
		}
		res.Performance = append(res.Performance, models.PerformanceEntry{
			Period:        p.Period,
			Return:        toFloat(p.Return),
			Benchmark:     toFloat(p.Benchmark),
			BenchmarkName: name,
			ExcessReturn:  toFloat(p.Return.Sub(p.Benchmark).Round(2)),
			Outperformed:  p.Return.GreaterThan(p.Benchmark),
		})
		if p.Period == "YTD" {
			ytd = &lk.Value[i]
		}
	}

	summary := &models.PerformanceSummary{}
	ret, bmk := decimal.Zero, decimal.Zero
	if ytd != nil {
		ret, bmk = ytd.Return, ytd.Benchmark
		r, b := toFloat(ret), toFloat(bmk)
		summary.YTDReturn, summary.YTDBenchmark = &r, &b
	}
	summary.YTDExcess = toFloat(ret.Sub(bmk).Round(2))

	res.Success = true
	res.Source = lk.Source
	res.Summary = summary
	return res
}
