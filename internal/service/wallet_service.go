// internal/service/wallet_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"orbitpay-wallet/internal/config"
	"orbitpay-wallet/internal/domain"
	"orbitpay-wallet/internal/idgen"
	"orbitpay-wallet/internal/repository"
	"orbitpay-wallet/internal/util"
	"orbitpay-wallet/pkg/db"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// pinPattern is re-checked here even though the boundary validator
// enforces it; the engine never trusts caller-side validation alone.
var pinPattern = regexp.MustCompile(`^[0-9]{4,6}$`)

// accountNumberAttempts bounds regeneration when the store reports an
// account-number collision. The unique index is the final arbiter.
const accountNumberAttempts = 3

// CreateWalletParams are the caller-supplied fields for a new wallet.
// Omitted fields fall back to config.WalletDefaults.
type CreateWalletParams struct {
	PIN          string
	Currency     string
	DailyLimit   *decimal.Decimal
	MonthlyLimit *decimal.Decimal
}

// AddMoneyParams describe a single-wallet credit (top-up).
type AddMoneyParams struct {
	Amount      decimal.Decimal
	Type        string // payment-method tag, e.g. UPI, CARD
	Description *string
}

// UpdateLimitsParams carry a PIN-gated limits change. At least one
// limit must be provided.
type UpdateLimitsParams struct {
	DailyLimit   *decimal.Decimal
	MonthlyLimit *decimal.Decimal
	PIN          string
}

// TransferResult is the post-commit view of a completed transfer.
type TransferResult struct {
	FromWallet  *domain.Wallet
	ToWallet    *domain.Wallet
	Transaction *domain.Transaction
}

// WalletStats is the read-only dashboard view for a wallet.
type WalletStats struct {
	Wallet             *domain.Wallet       `json:"wallet"`
	HolderName         string               `json:"holder_name"`
	KYCStatus          domain.KYCStatus     `json:"kyc_status"`
	RecentTransactions []domain.Transaction `json:"recent_transactions"`
	MonthlyIncome      decimal.Decimal      `json:"monthly_income"`
	MonthlyExpense     decimal.Decimal      `json:"monthly_expense"`
	DailySpent         decimal.Decimal      `json:"daily_spent"`
	QRCode             string               `json:"qr_code"`
}

// WalletService defines the interface for wallet-related business logic.
type WalletService interface {
	CreateWallet(ctx context.Context, userID int64, params CreateWalletParams) (*domain.Wallet, error)
	Transfer(ctx context.Context, fromUserID, toWalletID int64, amount decimal.Decimal, pin string, description *string) (*TransferResult, error)
	AddMoney(ctx context.Context, walletID int64, params AddMoneyParams) (*domain.Wallet, *domain.Transaction, error)
	UpdateLimits(ctx context.Context, walletID int64, params UpdateLimitsParams) (*domain.Wallet, error)
	GetWalletStats(ctx context.Context, userID int64) (*WalletStats, error)
}

// walletService implements the WalletService interface.
type walletService struct {
	dbBeginner      db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor      repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	userRepo        repository.UserRepository
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	defaults        config.WalletDefaults
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	defaults config.WalletDefaults,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) WalletService {
	return &walletService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		defaults:        defaults,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
	}
}

// CreateWallet provisions the single wallet for a user with a zero
// balance. The unique index on user_id is the authority for the
// one-wallet-per-user invariant; the preceding lookup only produces a
// friendlier error for the common case.
func (s *walletService) CreateWallet(ctx context.Context, userID int64, params CreateWalletParams) (*domain.Wallet, error) {
	if !pinPattern.MatchString(params.PIN) {
		return nil, util.E(util.KindValidation, "PIN must be 4 to 6 digits")
	}

	currency := params.Currency
	if currency == "" {
		currency = s.defaults.BaseCurrency
	}
	dailyLimit := s.defaults.DailyLimit
	if params.DailyLimit != nil {
		dailyLimit = *params.DailyLimit
	}
	monthlyLimit := s.defaults.MonthlyLimit
	if params.MonthlyLimit != nil {
		monthlyLimit = *params.MonthlyLimit
	}
	if err := s.checkLimitRanges(&dailyLimit, &monthlyLimit); err != nil {
		return nil, err
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(params.PIN), s.defaults.PinHashCost)
	if err != nil {
		return nil, fmt.Errorf("create wallet: failed to hash PIN: %w", err)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("create wallet: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("create wallet: transaction controller does not implement DBExecutor")
	}

	if _, err := s.userRepo.GetUserByID(ctx, txExecutor, userID); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("create wallet: failed to check user %d: %w", userID, err)
	}

	if _, err := s.walletRepo.GetWalletByUserID(ctx, txExecutor, userID); err == nil {
		return nil, util.ErrDuplicateWallet
	} else if !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("create wallet: failed to check existing wallet for user %d: %w", userID, err)
	}

	var wallet *domain.Wallet
	for attempt := 0; ; attempt++ {
		accountNumber, err := idgen.AccountNumber()
		if err != nil {
			return nil, fmt.Errorf("create wallet: failed to generate account number: %w", err)
		}

		wallet = domain.NewWallet(userID, accountNumber, string(pinHash), currency, dailyLimit, monthlyLimit)
		err = s.walletRepo.CreateWallet(ctx, txExecutor, wallet)
		if err == nil {
			break
		}
		if errors.Is(err, util.ErrDuplicateAccountNumber) && attempt < accountNumberAttempts-1 {
			continue
		}
		if errors.Is(err, util.ErrDuplicateEntry) {
			return nil, util.ErrDuplicateWallet
		}
		return nil, fmt.Errorf("create wallet: failed to insert wallet for user %d: %w", userID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("create wallet: failed to commit transaction: %w", err)
	}

	return wallet, nil
}

// Transfer moves amount from the sender's wallet (resolved by user ID)
// to the receiver's wallet as one atomic unit: both balance mutations
// and the ledger entry commit together or not at all. Both wallet rows
// are locked in ascending ID order before any check that feeds a
// mutation, so two concurrent transfers against the same sender
// serialize and the second one sees the first's debit.
func (s *walletService) Transfer(ctx context.Context, fromUserID, toWalletID int64, amount decimal.Decimal, pin string, description *string) (*TransferResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidAmount
	}
	if amount.LessThan(s.defaults.TransferMin) || amount.GreaterThan(s.defaults.TransferMax) {
		return nil, util.E(util.KindValidation, fmt.Sprintf("Amount must be between %s and %s", s.defaults.TransferMin, s.defaults.TransferMax))
	}
	if description != nil && len(*description) > s.defaults.DescriptionLimit {
		return nil, util.E(util.KindValidation, "Description too long")
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("transfer: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("transfer: transaction controller does not implement DBExecutor")
	}

	// Resolve the sender's wallet ID first; the authoritative locked
	// reads follow in deterministic order.
	sender, err := s.walletRepo.GetWalletByUserID(ctx, txExecutor, fromUserID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrSenderWalletNotFound
		}
		return nil, fmt.Errorf("transfer: failed to resolve sender wallet for user %d: %w", fromUserID, err)
	}

	if sender.ID == toWalletID {
		return nil, util.ErrSameWalletTransfer
	}

	sender, receiver, err := s.lockWalletPair(ctx, txExecutor, sender.ID, toWalletID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if sender.BlockedAt(now) {
		return nil, util.ErrWalletBlocked
	}
	if receiver.BlockedAt(now) {
		return nil, util.ErrWalletBlocked
	}

	if bcrypt.CompareHashAndPassword([]byte(sender.PinHash), []byte(pin)) != nil {
		return nil, util.ErrInvalidPin
	}

	// Balance check against the locked row; a concurrent transfer that
	// committed first is fully visible here.
	if sender.Balance.LessThan(amount) {
		return nil, util.ErrInsufficientBalance
	}

	if err := s.walletRepo.UpdateWalletBalance(ctx, txExecutor, sender.ID, amount.Neg()); err != nil {
		return nil, fmt.Errorf("transfer: failed to debit wallet %d: %w", sender.ID, err)
	}
	if err := s.walletRepo.UpdateWalletBalance(ctx, txExecutor, receiver.ID, amount); err != nil {
		return nil, fmt.Errorf("transfer: failed to credit wallet %d: %w", receiver.ID, err)
	}

	code, err := idgen.TransactionCode()
	if err != nil {
		return nil, fmt.Errorf("transfer: failed to generate transaction code: %w", err)
	}
	transaction := domain.NewTransferTransaction(code, sender.ID, receiver.ID, amount, description)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, fmt.Errorf("transfer: failed to create transaction record: %w", err)
	}

	updatedSender, err := s.walletRepo.GetWalletByID(ctx, txExecutor, sender.ID)
	if err != nil {
		return nil, fmt.Errorf("transfer: failed to re-fetch sender wallet %d: %w", sender.ID, err)
	}
	updatedReceiver, err := s.walletRepo.GetWalletByID(ctx, txExecutor, receiver.ID)
	if err != nil {
		return nil, fmt.Errorf("transfer: failed to re-fetch receiver wallet %d: %w", receiver.ID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("transfer: failed to commit transaction: %w", err)
	}

	return &TransferResult{
		FromWallet:  updatedSender,
		ToWallet:    updatedReceiver,
		Transaction: transaction,
	}, nil
}

// lockWalletPair acquires FOR UPDATE locks on both wallets in ascending
// ID order, preventing circular waits between opposing transfers.
func (s *walletService) lockWalletPair(ctx context.Context, q repository.DBExecutor, senderID, receiverID int64) (*domain.Wallet, *domain.Wallet, error) {
	firstID, secondID := senderID, receiverID
	if receiverID < senderID {
		firstID, secondID = receiverID, senderID
	}

	first, err := s.walletRepo.GetWalletByIDForUpdate(ctx, q, firstID)
	if err != nil {
		return nil, nil, s.mapLockError(err, firstID, senderID)
	}
	second, err := s.walletRepo.GetWalletByIDForUpdate(ctx, q, secondID)
	if err != nil {
		return nil, nil, s.mapLockError(err, secondID, senderID)
	}

	if first.ID == senderID {
		return first, second, nil
	}
	return second, first, nil
}

func (s *walletService) mapLockError(err error, lockedID, senderID int64) error {
	if errors.Is(err, util.ErrNotFound) {
		if lockedID == senderID {
			return util.ErrSenderWalletNotFound
		}
		return util.ErrReceiverWalletNotFound
	}
	return fmt.Errorf("transfer: failed to lock wallet %d: %w", lockedID, err)
}

// AddMoney credits a wallet (top-up). The balance increment and the
// CREDIT ledger entry are one atomic unit.
func (s *walletService) AddMoney(ctx context.Context, walletID int64, params AddMoneyParams) (*domain.Wallet, *domain.Transaction, error) {
	if params.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil, util.ErrInvalidAmount
	}
	if params.Description != nil && len(*params.Description) > s.defaults.DescriptionLimit {
		return nil, nil, util.E(util.KindValidation, "Description too long")
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, nil, fmt.Errorf("add money: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, nil, fmt.Errorf("add money: transaction controller does not implement DBExecutor")
	}

	wallet, err := s.walletRepo.GetWalletByIDForUpdate(ctx, txExecutor, walletID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, nil, util.ErrWalletNotFound
		}
		return nil, nil, fmt.Errorf("add money: failed to lock wallet %d: %w", walletID, err)
	}

	description := params.Description
	if description == nil && params.Type != "" {
		d := "Top-up via " + params.Type
		description = &d
	}

	if err := s.walletRepo.UpdateWalletBalance(ctx, txExecutor, wallet.ID, params.Amount); err != nil {
		return nil, nil, fmt.Errorf("add money: failed to credit wallet %d: %w", wallet.ID, err)
	}

	code, err := idgen.TransactionCode()
	if err != nil {
		return nil, nil, fmt.Errorf("add money: failed to generate transaction code: %w", err)
	}
	transaction := domain.NewCreditTransaction(code, wallet.ID, params.Amount, description)
	if err := s.transactionRepo.CreateTransaction(ctx, txExecutor, transaction); err != nil {
		return nil, nil, fmt.Errorf("add money: failed to create transaction record: %w", err)
	}

	updatedWallet, err := s.walletRepo.GetWalletByID(ctx, txExecutor, wallet.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("add money: failed to re-fetch wallet %d: %w", wallet.ID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, nil, fmt.Errorf("add money: failed to commit transaction: %w", err)
	}

	return updatedWallet, transaction, nil
}

// UpdateLimits applies a PIN-gated change to the spending limits. No
// ledger entry is recorded; this is a plain field update.
func (s *walletService) UpdateLimits(ctx context.Context, walletID int64, params UpdateLimitsParams) (*domain.Wallet, error) {
	if params.DailyLimit == nil && params.MonthlyLimit == nil {
		return nil, util.E(util.KindValidation, "At least one of daily or monthly limit is required")
	}
	if err := s.checkLimitRanges(params.DailyLimit, params.MonthlyLimit); err != nil {
		return nil, err
	}

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("update limits: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("update limits: transaction controller does not implement DBExecutor")
	}

	wallet, err := s.walletRepo.GetWalletByIDForUpdate(ctx, txExecutor, walletID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("update limits: failed to lock wallet %d: %w", walletID, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(wallet.PinHash), []byte(params.PIN)) != nil {
		return nil, util.ErrInvalidPin
	}

	if err := s.walletRepo.UpdateWalletLimits(ctx, txExecutor, wallet.ID, params.DailyLimit, params.MonthlyLimit); err != nil {
		return nil, fmt.Errorf("update limits: failed to update wallet %d: %w", wallet.ID, err)
	}

	updatedWallet, err := s.walletRepo.GetWalletByID(ctx, txExecutor, wallet.ID)
	if err != nil {
		return nil, fmt.Errorf("update limits: failed to re-fetch wallet %d: %w", wallet.ID, err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("update limits: failed to commit transaction: %w", err)
	}

	return updatedWallet, nil
}

// GetWalletStats assembles the read-only dashboard view: wallet,
// holder display fields, recent completed activity, calendar-window
// spend totals, and the payment QR payload. Uses the plain executor;
// no locks, no mutation.
func (s *walletService) GetWalletStats(ctx context.Context, userID int64) (*WalletStats, error) {
	wallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrWalletNotFound
		}
		return nil, fmt.Errorf("wallet stats: failed to get wallet for user %d: %w", userID, err)
	}

	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("wallet stats: failed to get user %d: %w", userID, err)
	}

	recent, err := s.transactionRepo.GetRecentCompleted(ctx, s.dbExecutor, wallet.ID, s.defaults.RecentTxnLimit)
	if err != nil {
		return nil, fmt.Errorf("wallet stats: failed to fetch recent transactions: %w", err)
	}

	// Calendar windows in server-local time, not rolling periods.
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	monthlyIncome, monthlyExpense, err := s.transactionRepo.GetTotalsSince(ctx, s.dbExecutor, wallet.ID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("wallet stats: failed to compute monthly totals: %w", err)
	}
	_, dailySpent, err := s.transactionRepo.GetTotalsSince(ctx, s.dbExecutor, wallet.ID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("wallet stats: failed to compute daily totals: %w", err)
	}

	return &WalletStats{
		Wallet:             wallet,
		HolderName:         user.Name,
		KYCStatus:          user.KYCStatus,
		RecentTransactions: recent,
		MonthlyIncome:      monthlyIncome,
		MonthlyExpense:     monthlyExpense,
		DailySpent:         dailySpent,
		QRCode:             wallet.QRPayload(user.Name),
	}, nil
}

// checkLimitRanges validates whichever limits are provided against the
// configured product bounds.
func (s *walletService) checkLimitRanges(dailyLimit, monthlyLimit *decimal.Decimal) error {
	if dailyLimit != nil {
		if dailyLimit.LessThan(s.defaults.DailyLimitMin) || dailyLimit.GreaterThan(s.defaults.DailyLimitMax) {
			return util.E(util.KindValidation, fmt.Sprintf("Daily limit must be between %s and %s", s.defaults.DailyLimitMin, s.defaults.DailyLimitMax))
		}
	}
	if monthlyLimit != nil {
		if monthlyLimit.LessThan(s.defaults.MonthlyLimitMin) || monthlyLimit.GreaterThan(s.defaults.MonthlyLimitMax) {
			return util.E(util.KindValidation, fmt.Sprintf("Monthly limit must be between %s and %s", s.defaults.MonthlyLimitMin, s.defaults.MonthlyLimitMax))
		}
	}
	return nil
}
