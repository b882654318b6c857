package db_models

import (
	"gorm.io/datatypes"
)

type TransactionStatus string

const (
	TxnStatusPending TransactionStatus = "pending"
	TxnStatusPaid    TransactionStatus = "paid"
	TxnStatusFailed  TransactionStatus = "failed"
)

// Transaction records one unlock checkout. ProviderTxnID is the checkout
// session id and keeps webhook and verify calls idempotent.
type Transaction struct {
	BaseModel
	TripID      string            `gorm:"index;size:16"`
	AmountMinor int64             // 500 = $5.00
	Currency    string            `gorm:"size:3"`
	Status      TransactionStatus `gorm:"size:16;index"`

	Provider      string `gorm:"index"`
	ProviderTxnID string `gorm:"uniqueIndex"`
	CustomerEmail *string

	PaidAt *int64

	Metadata datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
}
