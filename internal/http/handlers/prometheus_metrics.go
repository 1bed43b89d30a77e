package handlers

import (
	"bytes"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/valyala/fasthttp"
)

var (
	transactionsImported *prometheus.CounterVec
	rowsSkipped          *prometheus.CounterVec
	importBatches        *prometheus.CounterVec
	insightDuration      *prometheus.HistogramVec
)

func InitPrometheusMetrics() {
	transactionsImported = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "revinsight",
			Name:      "transactions_imported_total",
			Help:      "Total number of imported transactions.",
		},
		[]string{"channel"},
	)
	rowsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "revinsight",
			Name:      "import_rows_skipped_total",
			Help:      "Total number of import rows skipped, by reason.",
		},
		[]string{"reason"},
	)
	importBatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "revinsight",
			Name:      "import_batches_total",
			Help:      "Total number of import batches, by outcome.",
		},
		[]string{"outcome"},
	)
	insightDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "revinsight",
			Name:      "insight_duration_seconds",
			Help:      "Histogram of insight computation durations in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"endpoint"},
	)
	prometheus.MustRegister(transactionsImported, rowsSkipped, importBatches, insightDuration)
}

func observeInsight(endpoint string, start time.Time) {
	insightDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

// PrometheusMetrics serves the registry in text format. An optional
// ?channel= query narrows families carrying a "channel" label to that
// channel's series; families without the label pass through untouched.
func PrometheusMetrics() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		channel := string(ctx.QueryArgs().Peek("channel"))

		metricFamilies, err := prometheus.DefaultGatherer.Gather()
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to gather metrics")
			return
		}

		if channel != "" {
			metricFamilies = filterByLabel(metricFamilies, "channel", channel)
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
		for _, mf := range metricFamilies {
			if err := encoder.Encode(mf); err != nil {
				errResponse(ctx, fasthttp.StatusInternalServerError, "failed to encode metrics")
				return
			}
		}

		ctx.SetContentType(string(expfmt.FmtText))
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetBody(buf.Bytes())
	}
}

// filterByLabel keeps, for families that carry the given label at all, only
// the series whose label equals value.
func filterByLabel(families []*dto.MetricFamily, label, value string) []*dto.MetricFamily {
	filtered := make([]*dto.MetricFamily, 0, len(families))
	for _, mf := range families {
		hasLabel := false
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == label {
					hasLabel = true
					break
				}
			}
			if hasLabel {
				break
			}
		}
		if !hasLabel {
			filtered = append(filtered, mf)
			continue
		}

		var kept []*dto.Metric
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == label && l.GetValue() == value {
					kept = append(kept, m)
					break
				}
			}
		}
		if len(kept) == 0 {
			continue
		}
		filtered = append(filtered, &dto.MetricFamily{
			Name:   mf.Name,
			Help:   mf.Help,
			Type:   mf.Type,
			Metric: kept,
		})
	}
	return filtered
}
