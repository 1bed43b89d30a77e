package db

import (
	"gorm.io/gorm"
)

// TransactionStore is the accessor over the persisted transaction
// collection. Every consumer receives a store instance explicitly; the
// handle is never a package-level singleton.
type TransactionStore struct {
	db *gorm.DB

	// maxFetchRows bounds FetchAll so a single analytics computation
	// cannot load an unbounded row set.
	maxFetchRows int
}

// NewTransactionStore wraps db with a FetchAll cap of maxFetchRows
// (0 disables the cap).
func NewTransactionStore(db *gorm.DB, maxFetchRows int) *TransactionStore {
	return &TransactionStore{db: db, maxFetchRows: maxFetchRows}
}

// FetchAll returns the full transaction set, up to the configured cap.
// Aggregation paths need the whole set to gap-fill correctly, so there is
// no pagination here.
func (s *TransactionStore) FetchAll() ([]Transaction, error) {
	q := s.db.Model(&Transaction{})
	if s.maxFetchRows > 0 {
		q = q.Limit(s.maxFetchRows)
	}
	var txs []Transaction
	if err := q.Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// FetchByOrderID returns the transaction with the given order ID, or
// (nil, nil) when absent.
func (s *TransactionStore) FetchByOrderID(orderID string) (*Transaction, error) {
	var tx Transaction
	err := s.db.Where("order_id = ?", orderID).First(&tx).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// FetchPage returns a page of transactions ordered by created_at descending.
func (s *TransactionStore) FetchPage(limit, offset int) ([]Transaction, error) {
	var txs []Transaction
	err := s.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// InsertBatch persists imported transactions. Imports are insert-only;
// there are no update or delete paths.
func (s *TransactionStore) InsertBatch(txs []Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return s.db.CreateInBatches(txs, 500).Error
}

// Count returns the total number of stored transactions.
func (s *TransactionStore) Count() (int64, error) {
	var n int64
	err := s.db.Model(&Transaction{}).Count(&n).Error
	return n, err
}
