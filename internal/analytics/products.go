package analytics

import (
	"fmt"
	"sort"
	"time"

	"revinsight/internal/db"
)

// DefaultProductWindowDays is the trailing window for product ranking when
// the caller supplies none.
const DefaultProductWindowDays = 30

const topProductLimit = 10

// defaultCategory is used until catalog enrichment exists; product names
// likewise default to the product ID.
const defaultCategory = "Product"

// ProductRanking is one product's aggregate over the ranking window.
type ProductRanking struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Revenue   float64 `json:"revenue"`
	Orders    int     `json:"orders"`
	Category  string  `json:"category"`
}

// TopProducts ranks products by summed revenue over the trailing window of
// days (1-365). The empty-window fallback of DailyRevenue applies here too,
// for consistency between endpoints.
func (s *Service) TopProducts(days int) ([]ProductRanking, error) {
	if days < 1 || days > 365 {
		return nil, &ValidationError{Msg: fmt.Sprintf("days must be between 1 and 365, got %d", days)}
	}
	txs, err := s.store.FetchAll()
	if err != nil {
		return nil, err
	}
	return topProducts(txs, s.now().UTC(), days), nil
}

func topProducts(txs []db.Transaction, now time.Time, days int) []ProductRanking {
	start := now.AddDate(0, 0, -days)

	ranked := rankProducts(txs, dayOf(start), dayOf(now))
	if len(ranked) == 0 {
		// Same fallback as the daily series: rank over everything the
		// store has rather than returning an empty board for a window
		// the data predates.
		if minDay, maxDay, ok := dataRange(txs); ok {
			ranked = rankProducts(txs, minDay, maxDay)
		}
	}

	if len(ranked) > topProductLimit {
		ranked = ranked[:topProductLimit]
	}
	return ranked
}

func rankProducts(txs []db.Transaction, startDay, endDay time.Time) []ProductRanking {
	type agg struct {
		revenue float64
		orders  int
	}
	byProduct := make(map[string]agg)
	for _, tx := range txs {
		nt := Normalize(tx)
		if !includable(nt.Status) {
			continue
		}
		ed, ok := effectiveDate(nt)
		if !ok {
			continue
		}
		day := dayOf(ed)
		if day.Before(startDay) || day.After(endDay) {
			continue
		}
		a := byProduct[nt.ProductID]
		a.revenue += nt.Amount
		a.orders++
		byProduct[nt.ProductID] = a
	}

	ranked := make([]ProductRanking, 0, len(byProduct))
	for id, a := range byProduct {
		if a.revenue <= 0 {
			continue
		}
		ranked = append(ranked, ProductRanking{
			ProductID: id,
			Name:      id,
			Revenue:   round2(a.revenue),
			Orders:    a.orders,
			Category:  defaultCategory,
		})
	}

	// Ties on revenue break by product ID ascending so the ordering is
	// deterministic across runs.
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Revenue != ranked[j].Revenue {
			return ranked[i].Revenue > ranked[j].Revenue
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	return ranked
}

// dataRange returns the min and max effective days over all includable
// transactions, or ok=false when none are bucketable.
func dataRange(txs []db.Transaction) (minDay, maxDay time.Time, ok bool) {
	days := collectEffectiveDays(txs)
	if len(days) == 0 {
		return minDay, maxDay, false
	}
	minDay, maxDay = widenToDataRange(days)
	return minDay, maxDay, true
}
