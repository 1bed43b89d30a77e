package db

import (
	"gorm.io/datatypes"
)

// Canonical status and channel values. Imported rows are lower-cased and
// alias-mapped before these are enforced; see internal/analytics.Normalize.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
	StatusRefunded  = "refunded"

	ChannelWeb     = "web"
	ChannelMobile  = "mobile"
	ChannelAPI     = "api"
	ChannelPartner = "partner"
)

// Transaction is a single imported e-commerce transaction as stored in
// PostgreSQL. Timestamps are kept as the ISO-8601 strings the source files
// carry; imports are lenient, so consumers must normalize before bucketing.
type Transaction struct {
	ID string `gorm:"primaryKey;size:64" json:"id"`

	OrderID   string `gorm:"index;size:64" json:"order_id"`
	UserID    string `gorm:"size:64" json:"user_id"`
	ProductID string `gorm:"index;size:64" json:"product_id"`

	Amount   float64 `json:"amount"`
	Currency string  `gorm:"size:8;default:USD" json:"currency"`

	Status  string `gorm:"index;size:16" json:"status"`
	Channel string `gorm:"size:16" json:"channel"`

	// CreatedAt is always present; it defaults to the ingestion time
	// when the source row carries no value.
	CreatedAt string `gorm:"size:64" json:"created_at"`

	// PaidAt is empty for unpaid/failed transactions.
	PaidAt string `gorm:"size:64" json:"paid_at"`

	Refunded     bool    `json:"refunded"`
	RefundAmount float64 `json:"refund_amount"`

	Region              string `gorm:"size:64" json:"region"`
	AttributionCampaign string `gorm:"size:128" json:"attribution_campaign"`

	// Extra holds source columns that have no dedicated field, so files
	// with vendor-specific columns survive import without schema changes.
	Extra datatypes.JSONMap `gorm:"type:json" json:"extra,omitempty"`
}
