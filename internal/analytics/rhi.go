package analytics

import (
	"time"

	"revinsight/internal/db"
)

// rhiWindowDays is fixed by design: the RHI is a headline KPI, not an
// ad-hoc query, so callers cannot configure its window.
const rhiWindowDays = 30

// RHI weights. Refunds carry the harshest per-unit penalty because refund
// rate is the most customer-damaging signal of the three.
const (
	rhiTrendWeight      = 0.4
	rhiCompletionWeight = 0.3
	rhiRefundWeight     = 0.3
)

// HealthIndex computes the Revenue Health Index, a composite 0-100 score
// over the last 30 days, rounded to one decimal.
func (s *Service) HealthIndex() (float64, error) {
	txs, err := s.store.FetchAll()
	if err != nil {
		return 0, err
	}
	return healthIndex(txs, s.now().UTC()), nil
}

// healthIndex blends three independently clamped sub-scores:
//
//   - trend (0.4): revenue growth of the second 15-day half over the first,
//     centered at 50 for flat revenue and capped so outliers cannot dominate
//   - completion rate (0.3): completed / all transactions in the window
//   - refund score (0.3): 100 minus ten times the refund rate
//
// Clamping each signal before weighting bounds the blast radius of any
// single degenerate input; the final sum is clamped again.
func healthIndex(txs []db.Transaction, now time.Time) float64 {
	windowStart := now.AddDate(0, 0, -rhiWindowDays)
	mid := windowStart.AddDate(0, 0, rhiWindowDays/2)

	var firstHalfRevenue, secondHalfRevenue float64
	var total, completed, refunded int

	for _, tx := range txs {
		nt := Normalize(tx)
		ed, ok := effectiveDate(nt)
		if !ok || ed.Before(windowStart) || ed.After(now) {
			continue
		}

		// Completion and refund rates count every transaction in the
		// window regardless of status.
		total++
		if nt.Status == db.StatusCompleted {
			completed++
		}
		if nt.Refunded {
			refunded++
		}

		if !includable(nt.Status) {
			continue
		}
		if ed.Before(mid) {
			firstHalfRevenue += nt.Amount
		} else {
			secondHalfRevenue += nt.Amount
		}
	}

	// Trend: zero first-half revenue is treated as 1.0 to keep the growth
	// rate finite.
	base := firstHalfRevenue
	if base <= 0 {
		base = 1.0
	}
	growthRate := (secondHalfRevenue - firstHalfRevenue) / base
	trendScore := clamp(50+growthRate*100, 0, 100)

	// A data-sparse window defaults to a healthy-but-not-perfect 80 rather
	// than penalizing a system that simply has no transactions yet.
	completionScore := 80.0
	refundRate := 0.0
	if total > 0 {
		completionScore = clamp(float64(completed)/float64(total)*100, 0, 100)
		refundRate = float64(refunded) / float64(total) * 100
	}
	refundScore := clamp(100-refundRate*10, 0, 100)

	rhi := rhiTrendWeight*trendScore + rhiCompletionWeight*completionScore + rhiRefundWeight*refundScore
	return round1(clamp(rhi, 0, 100))
}
