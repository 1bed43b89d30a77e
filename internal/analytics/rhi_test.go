package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revinsight/internal/db"
)

// rhiNow keeps the 30-day RHI window fixed across these tests: the window
// is [2025-05-31, 2025-06-30] with the half split at 2025-06-15.
var rhiNow = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)

func TestHealthIndexEmptyStoreDefaults(t *testing.T) {
	svc := NewServiceWithClock(&stubStore{}, fixedClock(rhiNow))

	rhi, err := svc.HealthIndex()
	require.NoError(t, err)
	// trend 50 (flat), completion 80 (sparse default), refund 100.
	assert.Equal(t, 74.0, rhi)
}

func TestHealthIndexFlatRevenue(t *testing.T) {
	svc := NewServiceWithClock(&stubStore{txs: []db.Transaction{
		paidTx(100, "completed", "2025-06-05T00:00:00Z"),
		paidTx(100, "completed", "2025-06-20T00:00:00Z"),
	}}, fixedClock(rhiNow))

	rhi, err := svc.HealthIndex()
	require.NoError(t, err)
	// trend 50, completion 100, refund 100.
	assert.Equal(t, 80.0, rhi)
}

func TestHealthIndexStrongGrowthCapped(t *testing.T) {
	svc := NewServiceWithClock(&stubStore{txs: []db.Transaction{
		paidTx(100, "completed", "2025-06-05T00:00:00Z"),
		paidTx(300, "completed", "2025-06-20T00:00:00Z"),
	}}, fixedClock(rhiNow))

	rhi, err := svc.HealthIndex()
	require.NoError(t, err)
	// growth 2.0 pushes the raw trend to 250; the clamp holds it at 100.
	assert.Equal(t, 100.0, rhi)
}

func TestHealthIndexRevenueCollapse(t *testing.T) {
	svc := NewServiceWithClock(&stubStore{txs: []db.Transaction{
		paidTx(300, "completed", "2025-06-05T00:00:00Z"),
	}}, fixedClock(rhiNow))

	rhi, err := svc.HealthIndex()
	require.NoError(t, err)
	// growth -1.0 floors trend at 0; completion 100, refund 100.
	assert.Equal(t, 60.0, rhi)
}

func TestHealthIndexRefundPenalty(t *testing.T) {
	var txs []db.Transaction
	for i := 0; i < 5; i++ {
		txs = append(txs, paidTx(100, "completed", "2025-06-05T00:00:00Z"))
		txs = append(txs, paidTx(100, "completed", "2025-06-20T00:00:00Z"))
	}
	// Half the window refunded: refund rate 50% means a refund score of 0.
	for i := 0; i < 5; i++ {
		txs[i].Refunded = true
	}
	svc := NewServiceWithClock(&stubStore{txs: txs}, fixedClock(rhiNow))

	rhi, err := svc.HealthIndex()
	require.NoError(t, err)
	// trend 50, completion 100, refund 0.
	assert.Equal(t, 50.0, rhi)
}

func TestHealthIndexAlwaysInRange(t *testing.T) {
	stores := []*stubStore{
		{},
		{txs: []db.Transaction{paidTx(1e12, "completed", "2025-06-20T00:00:00Z")}},
		{txs: func() []db.Transaction {
			var txs []db.Transaction
			for i := 0; i < 20; i++ {
				tx := paidTx(10, "failed", "2025-06-10T00:00:00Z")
				tx.Refunded = true
				txs = append(txs, tx)
			}
			return txs
		}()},
	}
	for _, st := range stores {
		svc := NewServiceWithClock(st, fixedClock(rhiNow))
		rhi, err := svc.HealthIndex()
		require.NoError(t, err)
		assert.GreaterOrEqual(t, rhi, 0.0)
		assert.LessOrEqual(t, rhi, 100.0)
	}
}
