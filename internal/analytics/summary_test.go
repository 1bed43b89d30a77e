package analytics

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revinsight/internal/db"
)

func TestSummaryWindowBoundaries(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	today := productTx("p-today", 50, "2025-06-15T10:00:00Z")
	earlierMonth := productTx("p-month", 100, "2025-06-02T09:00:00Z")
	earlierYear := productTx("p-year", 200, "2025-03-01T09:00:00Z")
	lastYear := productTx("p-old", 1000, "2024-12-31T23:59:59Z")

	svc := NewServiceWithClock(&stubStore{txs: []db.Transaction{
		today, earlierMonth, earlierYear, lastYear,
	}}, fixedClock(now))

	sum, err := svc.Summary()
	require.NoError(t, err)

	assert.Equal(t, 50.0, sum.Today)
	assert.Equal(t, 150.0, sum.MTD)
	assert.Equal(t, 350.0, sum.YTD)
	assert.GreaterOrEqual(t, sum.RHI, 0.0)
	assert.LessOrEqual(t, sum.RHI, 100.0)

	// Narrative is filled by the HTTP layer, never here.
	assert.Empty(t, sum.Narrative)

	// Last 30 days of product revenue: only the June sales qualify.
	require.Len(t, sum.TopProducts, 2)
	assert.Equal(t, "p-month", sum.TopProducts[0].ProductID)
	assert.Equal(t, "p-today", sum.TopProducts[1].ProductID)
}

func TestSummaryAnomaliesNewestFirst(t *testing.T) {
	// Two isolated sale days inside an otherwise silent 90-day window both
	// register as spikes; the summary lists the newer one first.
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := NewServiceWithClock(&stubStore{txs: []db.Transaction{
		paidTx(100, "completed", "2025-06-02T09:00:00Z"),
		paidTx(50, "completed", "2025-06-15T10:00:00Z"),
	}}, fixedClock(now))

	sum, err := svc.Summary()
	require.NoError(t, err)
	require.Len(t, sum.Anomalies, 2)
	assert.Equal(t, "2025-06-15", sum.Anomalies[0].Day)
	assert.Equal(t, "2025-06-02", sum.Anomalies[1].Day)
	assert.LessOrEqual(t, len(sum.Anomalies), summaryAnomalyLimit)
}

func TestSummaryEmptyStore(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := NewServiceWithClock(&stubStore{}, fixedClock(now))

	sum, err := svc.Summary()
	require.NoError(t, err)
	assert.Zero(t, sum.Today)
	assert.Zero(t, sum.MTD)
	assert.Zero(t, sum.YTD)
	assert.Equal(t, 74.0, sum.RHI)
	assert.NotNil(t, sum.TopProducts)
	assert.Empty(t, sum.TopProducts)
	assert.NotNil(t, sum.Anomalies)
	assert.Empty(t, sum.Anomalies)
}

func TestSummaryPropagatesStoreError(t *testing.T) {
	svc := NewServiceWithClock(&stubStore{err: errors.New("connection reset")}, fixedClock(time.Now()))

	_, err := svc.Summary()
	require.Error(t, err)
}
