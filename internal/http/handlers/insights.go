package handlers

import (
	"time"

	"github.com/valyala/fasthttp"

	"revinsight/internal/analytics"
	"revinsight/internal/narrative"
)

// RootInfo identifies the service.
func RootInfo() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		jsonResponse(ctx, map[string]any{"message": "Revenue Analytics API", "version": "1.0.0"})
	}
}

// DailyRevenue returns the gap-filled daily revenue series. Defaults to the
// last 90 days; start/end accept YYYY-MM-DD or RFC 3339.
//
// window_widened is true when the requested window matched no data and the
// series covers the data's own range instead (documented fallback).
func DailyRevenue(svc *analytics.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		defer observeInsight("daily_revenue", time.Now())
		start := string(ctx.QueryArgs().Peek("start"))
		end := string(ctx.QueryArgs().Peek("end"))

		series, widened, err := svc.DailyRevenue(start, end)
		if err != nil {
			analyticsError(ctx, err)
			return
		}
		jsonResponse(ctx, map[string]any{"series": series, "window_widened": widened})
	}
}

// RevenueSummary returns the headline summary with the narrative filled in.
// Narrative generation is best-effort: the generator falls back internally
// and never fails the request.
func RevenueSummary(svc *analytics.Service, gen narrative.Generator) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		defer observeInsight("revenue_summary", time.Now())
		summary, err := svc.Summary()
		if err != nil {
			analyticsError(ctx, err)
			return
		}
		summary.Narrative = gen.Generate(ctx, narrativeInput(summary))
		jsonResponse(ctx, summary)
	}
}

// TopProducts ranks products by revenue over a trailing window of days
// (default 30, bounds 1-365).
func TopProducts(svc *analytics.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		defer observeInsight("top_products", time.Now())
		days := queryInt(ctx, "days", analytics.DefaultProductWindowDays)

		products, err := svc.TopProducts(days)
		if err != nil {
			analyticsError(ctx, err)
			return
		}
		jsonResponse(ctx, map[string]any{"products": products})
	}
}

// Anomalies runs z-score detection over a trailing lookback window
// (default 90 days, bounds 7-365).
func Anomalies(svc *analytics.Service) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		defer observeInsight("anomalies", time.Now())
		lookback := queryInt(ctx, "lookback_days", analytics.DefaultAnomalyLookbackDays)

		anomalies, err := svc.Anomalies(lookback)
		if err != nil {
			analyticsError(ctx, err)
			return
		}
		jsonResponse(ctx, map[string]any{"anomalies": anomalies})
	}
}

// Narrative returns only the narrative text for the current summary.
func Narrative(svc *analytics.Service, gen narrative.Generator) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		defer observeInsight("narrative", time.Now())
		summary, err := svc.Summary()
		if err != nil {
			analyticsError(ctx, err)
			return
		}
		jsonResponse(ctx, map[string]any{"narrative": gen.Generate(ctx, narrativeInput(summary))})
	}
}

func narrativeInput(s *analytics.Summary) narrative.Input {
	return narrative.Input{
		Today:       s.Today,
		MTD:         s.MTD,
		YTD:         s.YTD,
		RHI:         s.RHI,
		TopProducts: s.TopProducts,
		Anomalies:   s.Anomalies,
	}
}
