package analytics

import (
	"fmt"
	"time"

	"revinsight/internal/db"
)

const dayLayout = "2006-01-02"

// DefaultDailyWindowDays is the trailing window used when the caller
// supplies no explicit range.
const DefaultDailyWindowDays = 90

// DailyBucket is one calendar day (UTC) of the revenue series. The series
// has no gaps: days without qualifying transactions carry a zero bucket.
type DailyBucket struct {
	Day     string  `json:"day"`
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

// DailyRevenue returns the gap-filled daily revenue series for the
// inclusive [start, end] range. Empty start/end default to a trailing
// 90-day window ending now. Accepted date formats: YYYY-MM-DD or RFC 3339.
//
// The widened return is true when the requested window matched no
// transactions and the series was recomputed over the data's own full range
// instead (see widenToDataRange). Callers that want empty-means-empty must
// check it.
func (s *Service) DailyRevenue(startStr, endStr string) (series []DailyBucket, widened bool, err error) {
	start, end, err := s.resolveRange(startStr, endStr)
	if err != nil {
		return nil, false, err
	}

	txs, err := s.store.FetchAll()
	if err != nil {
		return nil, false, err
	}
	series, widened = dailySeries(txs, start, end)
	return series, widened, nil
}

// resolveRange parses optional start/end query values, applying the default
// window and rejecting malformed dates or an inverted range.
func (s *Service) resolveRange(startStr, endStr string) (start, end time.Time, err error) {
	end = s.now().UTC()
	if endStr != "" {
		t, ok := parseTimestamp(endStr)
		if !ok {
			return start, end, &ValidationError{Msg: fmt.Sprintf("invalid end date %q", endStr)}
		}
		end = t
	}
	start = end.AddDate(0, 0, -DefaultDailyWindowDays)
	if startStr != "" {
		t, ok := parseTimestamp(startStr)
		if !ok {
			return start, end, &ValidationError{Msg: fmt.Sprintf("invalid start date %q", startStr)}
		}
		start = t
	}
	if dayOf(end).Before(dayOf(start)) {
		return start, end, &ValidationError{Msg: "end date precedes start date"}
	}
	return start, end, nil
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dailySeries buckets includable transactions by effective day and fills
// every day of [start, end] so the result is continuous and ascending.
// Rows whose timestamps cannot be parsed at all are skipped; a malformed
// record never aborts the computation.
func dailySeries(txs []db.Transaction, start, end time.Time) ([]DailyBucket, bool) {
	startDay, endDay := dayOf(start), dayOf(end)

	days := collectEffectiveDays(txs)

	inWindow := 0
	for _, d := range days {
		if !d.day.Before(startDay) && !d.day.After(endDay) {
			inWindow++
		}
	}

	// Fallback: a window that matches nothing against a non-empty store
	// almost always means the caller guessed a range the data predates
	// (e.g. "last 90 days" over a historical sample). Widen to the data's
	// own range rather than returning an all-zero series. Deliberate UX
	// accommodation; callers get the widened flag so they can tell.
	widened := false
	if inWindow == 0 && len(days) > 0 {
		startDay, endDay = widenToDataRange(days)
		widened = true
	}

	type agg struct {
		revenue float64
		orders  int
	}
	byDay := make(map[string]agg)
	for _, d := range days {
		if d.day.Before(startDay) || d.day.After(endDay) {
			continue
		}
		key := d.day.Format(dayLayout)
		a := byDay[key]
		a.revenue += d.amount
		a.orders++
		byDay[key] = a
	}

	series := make([]DailyBucket, 0, int(endDay.Sub(startDay).Hours()/24)+1)
	for day := startDay; !day.After(endDay); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayLayout)
		a := byDay[key]
		series = append(series, DailyBucket{Day: key, Revenue: round2(a.revenue), Orders: a.orders})
	}
	return series, widened
}

type effectiveDay struct {
	day    time.Time
	amount float64
}

// collectEffectiveDays normalizes each transaction and resolves its
// effective day, dropping failed and unbucketable rows.
func collectEffectiveDays(txs []db.Transaction) []effectiveDay {
	days := make([]effectiveDay, 0, len(txs))
	for _, tx := range txs {
		nt := Normalize(tx)
		if !includable(nt.Status) {
			continue
		}
		ed, ok := effectiveDate(nt)
		if !ok {
			continue
		}
		days = append(days, effectiveDay{day: dayOf(ed), amount: nt.Amount})
	}
	return days
}

// widenToDataRange returns the min and max effective days of the available
// data. This is the single place the empty-window fallback lives.
func widenToDataRange(days []effectiveDay) (time.Time, time.Time) {
	min, max := days[0].day, days[0].day
	for _, d := range days[1:] {
		if d.day.Before(min) {
			min = d.day
		}
		if d.day.After(max) {
			max = d.day
		}
	}
	return min, max
}
