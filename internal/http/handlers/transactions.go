package handlers

import (
	"io"
	"strings"

	"github.com/valyala/fasthttp"

	dbpkg "revinsight/internal/db"
	"revinsight/internal/importer"
)

// ImportTransactions accepts a multipart CSV/XLSX upload and batch-imports
// its rows. Per-row problems never fail the request; they come back in the
// result's skip report.
func ImportTransactions(im *importer.Importer) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		fh, err := ctx.FormFile("file")
		if err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "no file provided")
			return
		}

		ext := ""
		if i := strings.LastIndex(fh.Filename, "."); i >= 0 {
			ext = strings.ToLower(fh.Filename[i+1:])
		}
		switch ext {
		case "csv", "xlsx", "xls":
		default:
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid file format, only CSV and Excel files are supported")
			return
		}

		f, err := fh.Open()
		if err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "failed to read uploaded file")
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "failed to read uploaded file")
			return
		}

		res, err := im.ImportFile(content, ext)
		if err != nil {
			importBatches.WithLabelValues("store_error").Inc()
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to persist transactions")
			return
		}

		recordImportMetrics(res)
		jsonResponse(ctx, res)
	}
}

func recordImportMetrics(res *importer.Result) {
	outcome := "accepted"
	if !res.Success {
		outcome = "rejected"
	}
	importBatches.WithLabelValues(outcome).Inc()
	for channel, n := range res.ByChannel {
		transactionsImported.WithLabelValues(channel).Add(float64(n))
	}
	for reason, n := range res.SkipReport {
		rowsSkipped.WithLabelValues(reason).Add(float64(n))
	}
}

// ListTransactions returns a page of stored transactions, newest first.
func ListTransactions(store *dbpkg.TransactionStore) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		limit := queryInt(ctx, "limit", 100)
		if limit < 1 {
			limit = 1
		}
		if limit > 1000 {
			limit = 1000
		}
		offset := queryInt(ctx, "offset", 0)
		if offset < 0 {
			offset = 0
		}

		txs, err := store.FetchPage(limit, offset)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to query transactions")
			return
		}
		total, err := store.Count()
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to count transactions")
			return
		}

		hasMore := int64(offset+limit) < total
		jsonResponse(ctx, map[string]any{"transactions": txs, "total": total, "has_more": hasMore})
	}
}

// TransactionDetail looks up a single transaction by order ID.
func TransactionDetail(store *dbpkg.TransactionStore) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		orderID, _ := ctx.UserValue("order_id").(string)
		if orderID == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "missing order_id")
			return
		}
		tx, err := store.FetchByOrderID(orderID)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to query transaction")
			return
		}
		if tx == nil {
			errResponse(ctx, fasthttp.StatusNotFound, "transaction not found")
			return
		}
		jsonResponse(ctx, tx)
	}
}
