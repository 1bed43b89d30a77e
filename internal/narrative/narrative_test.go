package narrative

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"revinsight/internal/analytics"
)

func TestFallbackFullInput(t *testing.T) {
	in := Input{
		Today: 50,
		MTD:   12345.6,
		YTD:   99999,
		RHI:   82.5,
		TopProducts: []analytics.ProductRanking{
			{ProductID: "p1", Name: "p1", Revenue: 500},
		},
		Anomalies: []analytics.AnomalyRecord{
			{Day: "2025-06-01", Direction: analytics.DirectionSpike},
			{Day: "2025-06-05", Direction: analytics.DirectionDrop},
		},
	}

	got := Fallback(in)
	assert.Contains(t, got, "Month-to-date revenue stands at $12,345.60.")
	assert.Contains(t, got, "Today's revenue is $50.00.")
	assert.Contains(t, got, "Leading product is p1 with $500.00 in sales.")
	assert.Contains(t, got, "2 anomalies detected (1 spikes, 1 drops) requiring attention.")
	assert.Contains(t, got, "Revenue Health Index at 82.5% indicates strong overall performance.")
}

func TestFallbackAnomalyPhrasing(t *testing.T) {
	spikesOnly := Fallback(Input{Anomalies: []analytics.AnomalyRecord{
		{Direction: analytics.DirectionSpike},
		{Direction: analytics.DirectionSpike},
	}})
	assert.Contains(t, spikesOnly, "2 revenue spikes detected indicating strong performance periods.")

	dropsOnly := Fallback(Input{Anomalies: []analytics.AnomalyRecord{
		{Direction: analytics.DirectionDrop},
	}})
	assert.Contains(t, dropsOnly, "1 revenue drops detected that may need investigation.")
}

func TestFallbackRHITiers(t *testing.T) {
	assert.Contains(t, Fallback(Input{RHI: 70}), "indicates strong overall performance")
	assert.Contains(t, Fallback(Input{RHI: 55}), "shows moderate performance with room for improvement")
	assert.Contains(t, Fallback(Input{RHI: 20}), "suggests attention needed to improve key metrics")
}

func TestFallbackEmptyInput(t *testing.T) {
	assert.Equal(t, "Insufficient data for narrative generation.", Fallback(Input{}))
}

func TestGenerateWithoutKeyUsesFallback(t *testing.T) {
	gen := NewGenerator("", "gemini-2.0-flash")
	got := gen.Generate(context.Background(), Input{MTD: 100, RHI: 75})
	assert.Equal(t, Fallback(Input{MTD: 100, RHI: 75}), got)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{999.5, "999.50"},
		{1000, "1,000.00"},
		{12345.6, "12,345.60"},
		{1234567.89, "1,234,567.89"},
		{-9876.5, "-9,876.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAmount(tt.in), "formatAmount(%v)", tt.in)
	}
}
