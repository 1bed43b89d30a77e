package analytics

import (
	"time"

	"revinsight/internal/db"
)

// Summary is the headline revenue view: today/MTD/YTD totals, the health
// index, the top products, and the most recent anomalies. Fully derived,
// assembled per request. Narrative is left empty for the caller to fill via
// the narrative generator.
type Summary struct {
	Today       float64          `json:"today"`
	MTD         float64          `json:"mtd"`
	YTD         float64          `json:"ytd"`
	RHI         float64          `json:"rhi"`
	TopProducts []ProductRanking `json:"top_products"`
	Anomalies   []AnomalyRecord  `json:"anomalies"`
	Narrative   string           `json:"narrative"`
}

const summaryAnomalyLimit = 5

// Summary assembles the revenue summary from a single store snapshot.
func (s *Service) Summary() (*Summary, error) {
	txs, err := s.store.FetchAll()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()

	todayStart := dayOf(now)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)

	// Anomalies from dailySeries arrive in ascending day order; the most
	// recent ones sit at the tail.
	anomalies := detectAnomalies(txs, now, DefaultAnomalyLookbackDays)
	recent := []AnomalyRecord{}
	for i := len(anomalies) - 1; i >= 0 && len(recent) < summaryAnomalyLimit; i-- {
		recent = append(recent, anomalies[i])
	}

	return &Summary{
		Today:       revenueSince(txs, todayStart),
		MTD:         revenueSince(txs, monthStart),
		YTD:         revenueSince(txs, yearStart),
		RHI:         healthIndex(txs, now),
		TopProducts: topProducts(txs, now, DefaultProductWindowDays),
		Anomalies:   recent,
	}, nil
}

// revenueSince sums includable revenue with an effective date at or after
// the given UTC boundary.
func revenueSince(txs []db.Transaction, since time.Time) float64 {
	var total float64
	for _, tx := range txs {
		nt := Normalize(tx)
		if !includable(nt.Status) {
			continue
		}
		ed, ok := effectiveDate(nt)
		if !ok || ed.Before(since) {
			continue
		}
		total += nt.Amount
	}
	return round2(total)
}
