package handlers

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/valyala/fasthttp"

	"revinsight/internal/config"
	dbpkg "revinsight/internal/db"
)

// exportFields is the CSV column order for exports.
var exportFields = []string{
	"id", "order_id", "user_id", "product_id", "amount", "currency",
	"status", "channel", "created_at", "paid_at", "refunded",
	"refund_amount", "region", "attribution_campaign",
}

// ExportCSV streams stored transactions as a CSV attachment, newest first.
func ExportCSV(store *dbpkg.TransactionStore, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		limit := queryInt(ctx, "limit", cfg.ExportMaxRows)
		if limit < 1 {
			limit = 1
		}
		if limit > cfg.ExportMaxRows {
			limit = cfg.ExportMaxRows
		}

		txs, err := store.FetchPage(limit, 0)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to query transactions")
			return
		}
		if len(txs) == 0 {
			ctx.SetBodyString("No transactions to export")
			return
		}

		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write(exportFields)
		for _, tx := range txs {
			_ = w.Write([]string{
				tx.ID, tx.OrderID, tx.UserID, tx.ProductID,
				strconv.FormatFloat(tx.Amount, 'f', -1, 64), tx.Currency,
				tx.Status, tx.Channel, tx.CreatedAt, tx.PaidAt,
				strconv.FormatBool(tx.Refunded),
				strconv.FormatFloat(tx.RefundAmount, 'f', -1, 64),
				tx.Region, tx.AttributionCampaign,
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to encode CSV")
			return
		}

		ctx.SetContentType("text/csv")
		ctx.Response.Header.Set("Content-Disposition", `attachment; filename=transactions_export.csv`)
		ctx.SetBody(buf.Bytes())
	}
}
