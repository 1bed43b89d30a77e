package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revinsight/internal/db"
)

func productTx(productID string, amount float64, paidAt string) db.Transaction {
	tx := paidTx(amount, "completed", paidAt)
	tx.ProductID = productID
	return tx
}

func TestTopProductsOrdering(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	svc := NewServiceWithClock(&stubStore{txs: []db.Transaction{
		productTx("prod-b", 300, "2025-06-10T00:00:00Z"),
		productTx("prod-a", 250, "2025-06-11T00:00:00Z"),
		productTx("prod-a", 250, "2025-06-12T00:00:00Z"),
	}}, fixedClock(now))

	products, err := svc.TopProducts(30)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "prod-a", products[0].ProductID)
	assert.Equal(t, 500.0, products[0].Revenue)
	assert.Equal(t, 2, products[0].Orders)
	assert.Equal(t, "prod-b", products[1].ProductID)
	assert.Equal(t, 300.0, products[1].Revenue)

	// Catalog enrichment does not exist yet: name defaults to the ID,
	// category to the placeholder.
	assert.Equal(t, "prod-a", products[0].Name)
	assert.Equal(t, "Product", products[0].Category)
}

func TestTopProductsExcludesZeroRevenue(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	svc := NewServiceWithClock(&stubStore{txs: []db.Transaction{
		productTx("prod-a", 100, "2025-06-10T00:00:00Z"),
		productTx("prod-zero", 0, "2025-06-10T00:00:00Z"),
	}}, fixedClock(now))

	products, err := svc.TopProducts(30)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "prod-a", products[0].ProductID)
}

func TestTopProductsTieBreakByID(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	svc := NewServiceWithClock(&stubStore{txs: []db.Transaction{
		productTx("zebra", 100, "2025-06-10T00:00:00Z"),
		productTx("apple", 100, "2025-06-11T00:00:00Z"),
		productTx("mango", 100, "2025-06-12T00:00:00Z"),
	}}, fixedClock(now))

	products, err := svc.TopProducts(30)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "apple", products[0].ProductID)
	assert.Equal(t, "mango", products[1].ProductID)
	assert.Equal(t, "zebra", products[2].ProductID)
}

func TestTopProductsCapsAtTen(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	var txs []db.Transaction
	for i := 0; i < 12; i++ {
		txs = append(txs, productTx(fmt.Sprintf("prod-%02d", i), float64(100+i), "2025-06-10T00:00:00Z"))
	}
	svc := NewServiceWithClock(&stubStore{txs: txs}, fixedClock(now))

	products, err := svc.TopProducts(30)
	require.NoError(t, err)
	assert.Len(t, products, 10)
	assert.Equal(t, "prod-11", products[0].ProductID)
}

func TestTopProductsWindowFallback(t *testing.T) {
	// All sales predate the window; ranking falls back to the full data
	// range for consistency with the daily series.
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	svc := NewServiceWithClock(&stubStore{txs: []db.Transaction{
		productTx("prod-old", 400, "2024-01-10T00:00:00Z"),
	}}, fixedClock(now))

	products, err := svc.TopProducts(30)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "prod-old", products[0].ProductID)
}

func TestTopProductsValidatesDays(t *testing.T) {
	svc := NewServiceWithClock(&stubStore{}, fixedClock(time.Now()))
	var ve *ValidationError

	_, err := svc.TopProducts(0)
	require.ErrorAs(t, err, &ve)

	_, err = svc.TopProducts(366)
	require.ErrorAs(t, err, &ve)
}
