package analytics

import (
	"strings"
	"time"

	"revinsight/internal/db"
)

// Legacy values still present in older exports.
var statusAliases = map[string]string{
	"cancelled": db.StatusFailed,
}

var channelAliases = map[string]string{
	"email": db.ChannelPartner,
}

// Normalize coerces a stored transaction into its canonical shape:
// lower-cased, alias-mapped status and channel, and sentinel paid_at values
// ("nan" and friends, courtesy of spreadsheet exports) cleared to absent.
// It is pure and idempotent, and never fails: unrecognized values pass
// through unchanged. Cleanup, not validation.
func Normalize(tx db.Transaction) db.Transaction {
	tx.Status = normalizeEnum(tx.Status, statusAliases)
	tx.Channel = normalizeEnum(tx.Channel, channelAliases)
	if absentTimestamp(tx.PaidAt) {
		tx.PaidAt = ""
	}
	return tx
}

func normalizeEnum(v string, aliases map[string]string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if mapped, ok := aliases[v]; ok {
		return mapped
	}
	return v
}

// absentTimestamp reports whether s is one of the values spreadsheet
// tooling emits for a missing cell.
func absentTimestamp(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nan", "null", "none":
		return true
	}
	return false
}

// timestampLayouts is the fallback chain for the heterogeneous date strings
// seen in imported files. Layouts without an offset are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTimestamp parses s into a timezone-aware UTC instant, trying each
// supported layout in order.
func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// effectiveDate resolves the instant used to bucket tx by day: paid_at when
// present and parseable, else created_at. Returns false when neither parses;
// such rows are skipped by aggregation rather than aborting it.
func effectiveDate(tx db.Transaction) (time.Time, bool) {
	if !absentTimestamp(tx.PaidAt) {
		if t, ok := parseTimestamp(tx.PaidAt); ok {
			return t, true
		}
	}
	return parseTimestamp(tx.CreatedAt)
}

// includable reports whether a transaction's status counts toward revenue.
// Failed transactions are excluded entirely; an empty status (lenient
// import) is treated as includable.
func includable(status string) bool {
	switch status {
	case "", db.StatusCompleted, db.StatusPending, db.StatusRefunded:
		return true
	}
	return false
}
