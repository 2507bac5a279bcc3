// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a ledger entry relative to the
// wallet on whose statement it appears.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// TransactionStatus defines the status of a ledger entry.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusPending   TransactionStatus = "PENDING" // reserved for async payment-method credits
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is an immutable ledger entry. A row must never exist
// without its balance effects having been applied in the same database
// transaction, and vice versa.
type Transaction struct {
	ID               int64             `db:"id" json:"id"`
	TransactionID    string            `db:"transaction_id" json:"transaction_id"`
	Type             TransactionType   `db:"type" json:"type"`
	Amount           decimal.Decimal   `db:"amount" json:"amount"`
	Description      *string           `db:"description" json:"description,omitempty"`
	Status           TransactionStatus `db:"status" json:"status"`
	WalletID         int64             `db:"wallet_id" json:"wallet_id"`
	SenderWalletID   *int64            `db:"sender_wallet_id" json:"sender_wallet_id,omitempty"`
	ReceiverWalletID *int64            `db:"receiver_wallet_id" json:"receiver_wallet_id,omitempty"`
	CreatedAt        time.Time         `db:"created_at" json:"created_at"`
}

// NewTransferTransaction builds the single DEBIT row recorded for a
// completed transfer, stamped on the sender's statement.
func NewTransferTransaction(code string, senderWalletID, receiverWalletID int64, amount decimal.Decimal, description *string) *Transaction {
	return &Transaction{
		TransactionID:    code,
		Type:             TransactionTypeDebit,
		Amount:           amount,
		Description:      description,
		Status:           TransactionStatusCompleted,
		WalletID:         senderWalletID,
		SenderWalletID:   &senderWalletID,
		ReceiverWalletID: &receiverWalletID,
		CreatedAt:        time.Now().UTC(),
	}
}

// NewCreditTransaction builds the CREDIT row for a standalone top-up;
// only the receiving wallet is populated.
func NewCreditTransaction(code string, walletID int64, amount decimal.Decimal, description *string) *Transaction {
	return &Transaction{
		TransactionID:    code,
		Type:             TransactionTypeCredit,
		Amount:           amount,
		Description:      description,
		Status:           TransactionStatusCompleted,
		WalletID:         walletID,
		ReceiverWalletID: &walletID,
		CreatedAt:        time.Now().UTC(),
	}
}
