// internal/repository/wallet_repo.go
package repository

import (
	"context"

	"orbitpay-wallet/internal/domain"

	"github.com/shopspring/decimal"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// CreateWallet inserts a new wallet. The unique indexes on user_id
	// and account_number are the final arbiters of duplicates.
	CreateWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByID retrieves a wallet by its ID.
	GetWalletByID(ctx context.Context, q DBExecutor, id int64) (*domain.Wallet, error)
	// GetWalletByUserID retrieves the single wallet owned by a user.
	GetWalletByUserID(ctx context.Context, q DBExecutor, userID int64) (*domain.Wallet, error)
	// GetWalletByIDForUpdate retrieves a wallet and holds a row lock on
	// it for the remainder of the surrounding database transaction.
	GetWalletByIDForUpdate(ctx context.Context, q DBExecutor, id int64) (*domain.Wallet, error)
	// UpdateWalletBalance applies a signed delta to a wallet's balance.
	UpdateWalletBalance(ctx context.Context, q DBExecutor, walletID int64, delta decimal.Decimal) error
	// UpdateWalletLimits updates whichever of the two limits are non-nil.
	UpdateWalletLimits(ctx context.Context, q DBExecutor, walletID int64, dailyLimit, monthlyLimit *decimal.Decimal) error
}
