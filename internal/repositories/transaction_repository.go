package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tripdaddy/internal/models/db_models"
)

type ITransactionRepository interface {
	Create(ctx context.Context, txn *db_models.Transaction) error
	GetByProviderTxnID(ctx context.Context, providerTxnID string) (*db_models.Transaction, error)
	// MarkPaid moves a pending transaction to paid and reports whether this
	// call did the transition.
	MarkPaid(ctx context.Context, providerTxnID string, paidAt int64) (bool, error)
}

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) ITransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *db_models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *TransactionRepository) GetByProviderTxnID(ctx context.Context, providerTxnID string) (*db_models.Transaction, error) {
	var txn db_models.Transaction
	err := r.db.WithContext(ctx).First(&txn, "provider_txn_id = ?", providerTxnID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

func (r *TransactionRepository) MarkPaid(ctx context.Context, providerTxnID string, paidAt int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&db_models.Transaction{}).
		Where("provider_txn_id = ? AND status <> ?", providerTxnID, db_models.TxnStatusPaid).
		Updates(map[string]interface{}{
			"status":  db_models.TxnStatusPaid,
			"paid_at": paidAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
