package main

import (
	"log"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/valyala/fasthttp"

	"revinsight/internal/analytics"
	"revinsight/internal/config"
	"revinsight/internal/db"
	"revinsight/internal/http/handlers"
	appmw "revinsight/internal/http/middleware"
	"revinsight/internal/importer"
	"revinsight/internal/narrative"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	sqlDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	store := db.NewTransactionStore(sqlDB, cfg.MaxFetchRows)
	svc := analytics.NewService(store)
	im := importer.New(store, cfg.ImportMaxRows)
	gen := narrative.NewGenerator(cfg.GeminiAPIKey, cfg.GeminiModel)

	if cfg.GeminiAPIKey == "" {
		log.Printf("GEMINI_API_KEY not set, narratives use the template fallback")
	}

	handlers.InitPrometheusMetrics()

	r := router.New()

	// Global middleware chain: request logger, then CORS, then router.
	handler := handlers.RequestLogger(appmw.CORS(cfg)(r.Handler))

	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})

	r.GET("/api/", handlers.RootInfo())

	r.POST("/api/v1/transactions/import", handlers.ImportTransactions(im))
	r.GET("/api/v1/transactions", handlers.ListTransactions(store))
	r.GET("/api/v1/transactions/{order_id}", handlers.TransactionDetail(store))

	r.GET("/api/v1/insights/revenue/daily", handlers.DailyRevenue(svc))
	r.GET("/api/v1/insights/revenue/summary", handlers.RevenueSummary(svc, gen))
	r.GET("/api/v1/insights/revenue/by-product", handlers.TopProducts(svc))
	r.GET("/api/v1/insights/anomalies", handlers.Anomalies(svc))
	r.GET("/api/v1/insights/narrative", handlers.Narrative(svc, gen))

	r.GET("/api/v1/export/csv", handlers.ExportCSV(store, cfg))

	r.GET("/metrics", handlers.PrometheusMetrics())

	log.Printf("revinsight listening on %s", cfg.ListenAddr)
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
