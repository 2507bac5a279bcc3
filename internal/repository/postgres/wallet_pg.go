// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"orbitpay-wallet/internal/domain"
	"orbitpay-wallet/internal/repository"
	"orbitpay-wallet/internal/util"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

const walletColumns = `id, user_id, account_number, pin_hash, balance, currency,
       daily_limit, monthly_limit, is_blocked, blocked_until, is_active,
       created_at, updated_at`

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct{}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *sqlx.DB) repository.WalletRepository {
	return &WalletRepository{}
}

// CreateWallet inserts a new wallet using the provided DBExecutor.
// Unique violations are mapped to storage sentinels so the service can
// tell a duplicate wallet from an account-number collision.
func (r *WalletRepository) CreateWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (user_id, account_number, pin_hash, balance, currency,
                                   daily_limit, monthly_limit, is_blocked, is_active, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		wallet.UserID,
		wallet.AccountNumber,
		wallet.PinHash,
		wallet.Balance,
		wallet.Currency,
		wallet.DailyLimit,
		wallet.MonthlyLimit,
		wallet.IsBlocked,
		wallet.IsActive,
		wallet.CreatedAt,
		wallet.UpdatedAt,
	).Scan(&wallet.ID)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if strings.Contains(pqErr.Constraint, "account_number") {
			return util.ErrDuplicateAccountNumber
		}
		return util.ErrDuplicateEntry
	}
	if err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

// GetWalletByID retrieves a wallet by its ID using the provided DBExecutor.
func (r *WalletRepository) GetWalletByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1`
	err := q.GetContext(ctx, &wallet, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by ID %d: %w", id, err)
	}
	return &wallet, nil
}

// GetWalletByUserID retrieves the single wallet owned by a user.
func (r *WalletRepository) GetWalletByUserID(ctx context.Context, q repository.DBExecutor, userID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE user_id = $1`
	err := q.GetContext(ctx, &wallet, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet by user ID %d: %w", userID, err)
	}
	return &wallet, nil
}

// GetWalletByIDForUpdate reads a wallet under FOR UPDATE, holding its
// row lock until the surrounding database transaction ends. Callers
// must lock wallets in ascending ID order to avoid circular waits.
func (r *WalletRepository) GetWalletByIDForUpdate(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT ` + walletColumns + ` FROM wallets WHERE id = $1 FOR UPDATE`
	err := q.GetContext(ctx, &wallet, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet %d: %w", id, err)
	}
	return &wallet, nil
}

// UpdateWalletBalance applies a signed delta to a wallet's balance.
// The balance >= 0 check constraint backstops the service-level check.
func (r *WalletRepository) UpdateWalletBalance(ctx context.Context, q repository.DBExecutor, walletID int64, delta decimal.Decimal) error {
	query := `UPDATE wallets SET balance = balance + $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, delta, time.Now().UTC(), walletID)
	if err != nil {
		return fmt.Errorf("failed to update wallet balance for ID %d: %w", walletID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating wallet balance for ID %d: %w", walletID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected when updating wallet balance for ID %d, wallet might not exist", walletID)
	}
	return nil
}

// UpdateWalletLimits updates whichever of the two limits are provided.
func (r *WalletRepository) UpdateWalletLimits(ctx context.Context, q repository.DBExecutor, walletID int64, dailyLimit, monthlyLimit *decimal.Decimal) error {
	query := `UPDATE wallets
              SET daily_limit = COALESCE($1, daily_limit),
                  monthly_limit = COALESCE($2, monthly_limit),
                  updated_at = $3
              WHERE id = $4`
	result, err := q.ExecContext(ctx, query, dailyLimit, monthlyLimit, time.Now().UTC(), walletID)
	if err != nil {
		return fmt.Errorf("failed to update limits for wallet %d: %w", walletID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating limits for wallet %d: %w", walletID, err)
	}
	if rowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}
