// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"orbitpay-wallet/internal/domain"
	"orbitpay-wallet/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new ledger entry using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions (transaction_id, type, amount, description, status,
                                        wallet_id, sender_wallet_id, receiver_wallet_id, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.TransactionID,
		transaction.Type,
		transaction.Amount,
		transaction.Description,
		transaction.Status,
		transaction.WalletID,
		transaction.SenderWalletID,
		transaction.ReceiverWalletID,
		transaction.CreatedAt,
	).Scan(&transaction.ID)

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetRecentCompleted retrieves the newest completed entries that
// mention the wallet on either side, capped at limit.
func (r *TransactionRepository) GetRecentCompleted(ctx context.Context, q repository.DBExecutor, walletID int64, limit int) ([]domain.Transaction, error) {
	transactions := []domain.Transaction{}
	query := `
		SELECT id, transaction_id, type, amount, description, status,
		       wallet_id, sender_wallet_id, receiver_wallet_id, created_at
		FROM transactions
		WHERE status = $1 AND (sender_wallet_id = $2 OR receiver_wallet_id = $2)
		ORDER BY created_at DESC
		LIMIT $3`
	err := q.SelectContext(ctx, &transactions, query, domain.TransactionStatusCompleted, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent transactions for wallet %d: %w", walletID, err)
	}
	return transactions, nil
}

// GetTotalsSince computes the completed income and expense sums for a
// wallet since the given instant. COALESCE keeps an empty history at
// zero rather than NULL.
func (r *TransactionRepository) GetTotalsSince(ctx context.Context, q repository.DBExecutor, walletID int64, since time.Time) (decimal.Decimal, decimal.Decimal, error) {
	var totals struct {
		Income  decimal.Decimal `db:"income"`
		Expense decimal.Decimal `db:"expense"`
	}
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE receiver_wallet_id = $2), 0) AS income,
			COALESCE(SUM(amount) FILTER (WHERE sender_wallet_id = $2), 0) AS expense
		FROM transactions
		WHERE status = $1
		  AND (sender_wallet_id = $2 OR receiver_wallet_id = $2)
		  AND created_at >= $3`
	err := q.GetContext(ctx, &totals, query, domain.TransactionStatusCompleted, walletID, since)
	if err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to compute totals for wallet %d: %w", walletID, err)
	}
	return totals.Income, totals.Expense, nil
}
