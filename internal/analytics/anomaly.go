package analytics

import (
	"fmt"
	"math"
	"time"

	"revinsight/internal/db"
)

// DefaultAnomalyLookbackDays is the lookback window for anomaly detection
// when the caller supplies none.
const DefaultAnomalyLookbackDays = 90

// anomalyZThreshold flags days whose revenue deviates from the window mean
// by more than this many (population) standard deviations.
const anomalyZThreshold = 2.5

// minAnomalySamples is the minimum number of daily buckets needed for the
// statistics to mean anything.
const minAnomalySamples = 7

const (
	DirectionSpike = "spike"
	DirectionDrop  = "drop"
)

// AnomalyRecord is a statistically significant daily deviation, with
// heuristic cause candidates attached. Derived per request, never persisted.
type AnomalyRecord struct {
	Day            string   `json:"day"`
	Revenue        float64  `json:"revenue"`
	Z              float64  `json:"z"`
	Direction      string   `json:"direction"`
	PossibleCauses []string `json:"possible_causes"`
}

// Anomalies runs z-score detection over the gap-filled daily series of the
// trailing lookback window (7-365 days). Fewer than seven buckets or a
// zero-variance series yields an empty result, not an error: insufficient
// data means no meaningful deviation is possible.
func (s *Service) Anomalies(lookbackDays int) ([]AnomalyRecord, error) {
	if lookbackDays < minAnomalySamples || lookbackDays > 365 {
		return nil, &ValidationError{Msg: fmt.Sprintf("lookback_days must be between %d and 365, got %d", minAnomalySamples, lookbackDays)}
	}
	txs, err := s.store.FetchAll()
	if err != nil {
		return nil, err
	}
	return detectAnomalies(txs, s.now().UTC(), lookbackDays), nil
}

func detectAnomalies(txs []db.Transaction, now time.Time, lookbackDays int) []AnomalyRecord {
	series, _ := dailySeries(txs, now.AddDate(0, 0, -lookbackDays), now)
	return detectSeriesAnomalies(series)
}

func detectSeriesAnomalies(series []DailyBucket) []AnomalyRecord {
	anomalies := []AnomalyRecord{}
	if len(series) < minAnomalySamples {
		return anomalies
	}

	mean, std := meanAndStddev(series)
	if std == 0 {
		return anomalies
	}

	for _, b := range series {
		z := (b.Revenue - mean) / std
		if math.Abs(z) <= anomalyZThreshold {
			continue
		}
		direction := DirectionDrop
		if z > 0 {
			direction = DirectionSpike
		}
		anomalies = append(anomalies, AnomalyRecord{
			Day:            b.Day,
			Revenue:        round2(b.Revenue),
			Z:              round2(z),
			Direction:      direction,
			PossibleCauses: anomalyCauses(b.Day, z > 0),
		})
	}
	return anomalies
}

// meanAndStddev returns population statistics (N denominator) over the
// series' revenue values.
func meanAndStddev(series []DailyBucket) (mean, std float64) {
	n := float64(len(series))
	for _, b := range series {
		mean += b.Revenue
	}
	mean /= n

	var variance float64
	for _, b := range series {
		d := b.Revenue - mean
		variance += d * d
	}
	variance /= n
	return mean, math.Sqrt(variance)
}

// anomalyCauses generates deterministic, rule-based cause candidates for
// day. Unconditional causes come first; at most three are returned.
func anomalyCauses(day string, spike bool) []string {
	t, err := time.Parse(dayLayout, day)
	if err != nil {
		return nil
	}
	weekday := t.Weekday()

	var causes []string
	if spike {
		causes = []string{
			fmt.Sprintf("Unusual spike on %s", weekday),
			"Possible marketing campaign success",
			"Large enterprise deal or bulk order",
		}
		if t.Day() >= 28 {
			causes = append(causes, "End of month purchasing surge")
		}
	} else {
		causes = []string{
			fmt.Sprintf("Revenue drop on %s", weekday),
			"Possible system or payment gateway issue",
			"Seasonal downturn or market factors",
		}
		if weekday == time.Saturday || weekday == time.Sunday {
			causes = append(causes, "Weekend effect")
		}
	}

	if len(causes) > 3 {
		causes = causes[:3]
	}
	return causes
}
