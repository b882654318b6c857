package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tripdaddy/internal/models/db_models"
)

type transactionDocument struct {
	ID            string                      `bson:"_id"`
	TripID        string                      `bson:"tripId"`
	AmountMinor   int64                       `bson:"amountMinor"`
	Currency      string                      `bson:"currency"`
	Status        db_models.TransactionStatus `bson:"status"`
	Provider      string                      `bson:"provider"`
	ProviderTxnID string                      `bson:"providerTxnId"`
	CustomerEmail *string                     `bson:"customerEmail,omitempty"`
	PaidAt        *int64                      `bson:"paidAt,omitempty"`
	CreatedAt     int64                       `bson:"createdAt"`
	UpdatedAt     int64                       `bson:"updatedAt"`
}

type TransactionMongoRepository struct {
	transactions *mongo.Collection
}

func NewTransactionMongoRepository(db *mongo.Database) ITransactionRepository {
	return &TransactionMongoRepository{transactions: db.Collection("transactions")}
}

func (r *TransactionMongoRepository) Create(ctx context.Context, txn *db_models.Transaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	now := time.Now().Unix()
	txn.CreatedAt = now
	txn.UpdatedAt = now

	_, err := r.transactions.InsertOne(ctx, transactionDocument{
		ID:            txn.ID.String(),
		TripID:        txn.TripID,
		AmountMinor:   txn.AmountMinor,
		Currency:      txn.Currency,
		Status:        txn.Status,
		Provider:      txn.Provider,
		ProviderTxnID: txn.ProviderTxnID,
		CustomerEmail: txn.CustomerEmail,
		PaidAt:        txn.PaidAt,
		CreatedAt:     txn.CreatedAt,
		UpdatedAt:     txn.UpdatedAt,
	})
	return err
}

func (r *TransactionMongoRepository) GetByProviderTxnID(ctx context.Context, providerTxnID string) (*db_models.Transaction, error) {
	var doc transactionDocument
	err := r.transactions.FindOne(ctx, bson.M{"providerTxnId": providerTxnID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, err
	}
	txn := &db_models.Transaction{
		TripID:        doc.TripID,
		AmountMinor:   doc.AmountMinor,
		Currency:      doc.Currency,
		Status:        doc.Status,
		Provider:      doc.Provider,
		ProviderTxnID: doc.ProviderTxnID,
		CustomerEmail: doc.CustomerEmail,
		PaidAt:        doc.PaidAt,
	}
	txn.ID = id
	txn.CreatedAt = doc.CreatedAt
	txn.UpdatedAt = doc.UpdatedAt
	return txn, nil
}

func (r *TransactionMongoRepository) MarkPaid(ctx context.Context, providerTxnID string, paidAt int64) (bool, error) {
	res, err := r.transactions.UpdateOne(ctx,
		bson.M{"providerTxnId": providerTxnID, "status": bson.M{"$ne": db_models.TxnStatusPaid}},
		bson.M{"$set": bson.M{
			"status":    db_models.TxnStatusPaid,
			"paidAt":    paidAt,
			"updatedAt": time.Now().Unix(),
		}},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
