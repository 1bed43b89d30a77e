package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"revinsight/internal/analytics"
	"revinsight/internal/db"
)

// requiredColumns must all be present in an uploaded file's header row.
var requiredColumns = []string{
	"order_id", "user_id", "product_id", "amount",
	"status", "channel", "paid_at", "region",
}

// knownColumns have dedicated Transaction fields; anything else lands in
// the Extra JSON map.
var knownColumns = map[string]bool{
	"order_id": true, "user_id": true, "product_id": true, "amount": true,
	"status": true, "channel": true, "paid_at": true, "region": true,
	"currency": true, "refunded": true, "refund_amount": true,
	"attribution_campaign": true, "created_at": true,
}

var validStatus = map[string]bool{
	db.StatusCompleted: true,
	db.StatusPending:   true,
	db.StatusFailed:    true,
	db.StatusRefunded:  true,
}

var validChannel = map[string]bool{
	db.ChannelWeb:     true,
	db.ChannelMobile:  true,
	db.ChannelAPI:     true,
	db.ChannelPartner: true,
}

// Skip reasons, keyed into the per-batch skip report.
const (
	SkipBadAmount       = "unparseable amount"
	SkipNegativeAmount  = "negative amount"
	SkipInvalidStatus   = "invalid status"
	SkipInvalidChannel  = "invalid channel"
	SkipMissingOrderRow = "blank row"
)

// BatchStore is the write capability the importer needs.
type BatchStore interface {
	InsertBatch(txs []db.Transaction) error
}

// Importer turns uploaded spreadsheet files into stored transactions.
type Importer struct {
	store   BatchStore
	maxRows int
	now     func() time.Time
}

// New creates an Importer writing through store, rejecting files with more
// than maxRows data rows (0 disables the cap).
func New(store BatchStore, maxRows int) *Importer {
	return &Importer{store: store, maxRows: maxRows, now: time.Now}
}

// Result reports the outcome of one import batch. A single bad row never
// fails the batch; it is skipped and tallied in SkipReport by reason.
type Result struct {
	Success         bool           `json:"success"`
	Imported        int            `json:"imported"`
	Skipped         int            `json:"skipped"`
	Total           int            `json:"total"`
	Error           string         `json:"error,omitempty"`
	RequiredColumns []string       `json:"required_columns,omitempty"`
	SkipReport      map[string]int `json:"skip_report,omitempty"`

	// ByChannel counts imported rows per canonical channel.
	ByChannel map[string]int `json:"by_channel,omitempty"`
}

// RowResult is the per-row outcome: either a sanitized transaction or the
// reason the row was skipped.
type RowResult struct {
	Tx         *db.Transaction
	SkipReason string
}

// ImportFile parses content as the given format ("csv", "xlsx" or "xls"),
// sanitizes each row, and batch-inserts the valid transactions. Format and
// validation problems are reported in the Result; only store failures
// surface as an error.
func (im *Importer) ImportFile(content []byte, ext string) (*Result, error) {
	header, rows, err := parseFile(content, ext)
	if err != nil {
		return &Result{Success: false, Error: fmt.Sprintf("failed to process file: %v", err)}, nil
	}

	if missing := missingColumns(header); len(missing) > 0 {
		return &Result{
			Success:         false,
			Error:           fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
			RequiredColumns: requiredColumns,
		}, nil
	}

	if im.maxRows > 0 && len(rows) > im.maxRows {
		return &Result{
			Success: false,
			Total:   len(rows),
			Error:   fmt.Sprintf("file has %d rows, limit is %d", len(rows), im.maxRows),
		}, nil
	}

	ingestedAt := im.now().UTC().Format(time.RFC3339)
	txs := make([]db.Transaction, 0, len(rows))
	skipReport := make(map[string]int)
	byChannel := make(map[string]int)
	for _, row := range rows {
		res := sanitizeRow(header, row, ingestedAt)
		if res.SkipReason != "" {
			skipReport[res.SkipReason]++
			continue
		}
		byChannel[res.Tx.Channel]++
		txs = append(txs, *res.Tx)
	}

	skipped := len(rows) - len(txs)
	if len(txs) == 0 {
		return &Result{
			Success:    false,
			Skipped:    skipped,
			Total:      len(rows),
			Error:      "no valid transactions found in file",
			SkipReport: skipReport,
		}, nil
	}

	if err := im.store.InsertBatch(txs); err != nil {
		return nil, err
	}

	return &Result{
		Success:    true,
		Imported:   len(txs),
		Skipped:    skipped,
		Total:      len(rows),
		SkipReport: skipReport,
		ByChannel:  byChannel,
	}, nil
}

// sanitizeRow maps one spreadsheet row to a canonical transaction, or a
// skip reason. Status and channel pass through the normalization layer
// (lower-casing and legacy alias mapping) before validation, so rows with
// "Cancelled" or "EMAIL" import as failed/partner rather than being lost.
func sanitizeRow(header []string, row []string, ingestedAt string) RowResult {
	cell := func(name string) string {
		for i, h := range header {
			if h == name && i < len(row) {
				return strings.TrimSpace(row[i])
			}
		}
		return ""
	}

	if cell("order_id") == "" && cell("amount") == "" {
		return RowResult{SkipReason: SkipMissingOrderRow}
	}

	amount, err := strconv.ParseFloat(cell("amount"), 64)
	if err != nil {
		return RowResult{SkipReason: SkipBadAmount}
	}
	if amount < 0 {
		return RowResult{SkipReason: SkipNegativeAmount}
	}

	refundAmount, _ := strconv.ParseFloat(cell("refund_amount"), 64)
	if refundAmount < 0 {
		refundAmount = 0
	}

	createdAt := cell("created_at")
	if createdAt == "" {
		createdAt = ingestedAt
	}
	currency := cell("currency")
	if currency == "" {
		currency = "USD"
	}

	tx := db.Transaction{
		ID:                  uuid.NewString(),
		OrderID:             cell("order_id"),
		UserID:              cell("user_id"),
		ProductID:           cell("product_id"),
		Amount:              amount,
		Currency:            currency,
		Status:              cell("status"),
		Channel:             cell("channel"),
		CreatedAt:           createdAt,
		PaidAt:              cell("paid_at"),
		Refunded:            parseBool(cell("refunded")),
		RefundAmount:        refundAmount,
		Region:              cell("region"),
		AttributionCampaign: cell("attribution_campaign"),
	}

	nt := analytics.Normalize(tx)
	if !validStatus[nt.Status] {
		return RowResult{SkipReason: SkipInvalidStatus}
	}
	if !validChannel[nt.Channel] {
		return RowResult{SkipReason: SkipInvalidChannel}
	}

	for i, h := range header {
		if knownColumns[h] || i >= len(row) || strings.TrimSpace(row[i]) == "" {
			continue
		}
		if nt.Extra == nil {
			nt.Extra = datatypes.JSONMap{}
		}
		nt.Extra[h] = strings.TrimSpace(row[i])
	}

	return RowResult{Tx: &nt}
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}

func missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, col := range requiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// parseFile reads the header and data rows from a CSV or Excel payload.
// Header names are lower-cased and trimmed.
func parseFile(content []byte, ext string) (header []string, rows [][]string, err error) {
	switch strings.ToLower(ext) {
	case "csv":
		header, rows, err = parseCSV(content)
	case "xlsx", "xls":
		header, rows, err = parseWorkbook(content)
	default:
		return nil, nil, fmt.Errorf("unsupported file format %q", ext)
	}
	if err != nil {
		return nil, nil, err
	}
	for i, h := range header {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return header, rows, nil
}

func parseCSV(content []byte) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty file")
	}
	return all[0], all[1:], nil
}

func parseWorkbook(content []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	all, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty sheet")
	}
	return all[0], all[1:], nil
}
