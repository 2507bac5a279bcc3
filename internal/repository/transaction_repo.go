// internal/repository/transaction_repo.go
package repository

import (
	"context"
	"time"

	"orbitpay-wallet/internal/domain"

	"github.com/shopspring/decimal"
)

// TransactionRepository defines the interface for ledger entry operations.
// The ledger is append-only; there is no update or delete.
type TransactionRepository interface {
	// CreateTransaction inserts a new ledger entry.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetRecentCompleted returns the newest completed entries that
	// mention the wallet on either side, capped at limit.
	GetRecentCompleted(ctx context.Context, q DBExecutor, walletID int64, limit int) ([]domain.Transaction, error)
	// GetTotalsSince returns the completed income (wallet as receiver)
	// and expense (wallet as sender) sums since the given instant.
	// An empty history yields zero sums, not an error.
	GetTotalsSince(ctx context.Context, q DBExecutor, walletID int64, since time.Time) (income, expense decimal.Decimal, err error)
}
