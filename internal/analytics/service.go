package analytics

import (
	"math"
	"time"

	"revinsight/internal/db"
)

// StoreReader is the read capability the analytics core needs from the
// transaction store. Aggregation works over the full set (bounded by the
// store's own fetch cap) so gap-filling and window fallback behave correctly.
type StoreReader interface {
	FetchAll() ([]db.Transaction, error)
}

// Service computes revenue analytics on demand. Every query re-reads the
// transaction set and derives results fresh; there is no cache and no shared
// mutable state, so concurrent requests need no locking here.
type Service struct {
	store StoreReader
	now   func() time.Time
}

// NewService creates a Service over the given store reader.
func NewService(store StoreReader) *Service {
	return &Service{store: store, now: time.Now}
}

// NewServiceWithClock is NewService with an injectable clock for tests.
func NewServiceWithClock(store StoreReader, now func() time.Time) *Service {
	return &Service{store: store, now: now}
}

// ValidationError marks caller-supplied parameters that were rejected before
// any computation ran. The API layer maps these to 400 responses.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
