// internal/domain/wallet.go
package domain

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Wallet represents a user's monetary account. One wallet per user,
// enforced by a unique index on user_id.
type Wallet struct {
	ID            int64           `db:"id" json:"id"`
	UserID        int64           `db:"user_id" json:"user_id"`
	AccountNumber string          `db:"account_number" json:"account_number"`
	PinHash       string          `db:"pin_hash" json:"-"` // never serialized or logged
	Balance       decimal.Decimal `db:"balance" json:"balance"`
	Currency      string          `db:"currency" json:"currency"` // immutable after creation
	DailyLimit    decimal.Decimal `db:"daily_limit" json:"daily_limit"`
	MonthlyLimit  decimal.Decimal `db:"monthly_limit" json:"monthly_limit"`
	IsBlocked     bool            `db:"is_blocked" json:"is_blocked"`
	BlockedUntil  *time.Time      `db:"blocked_until" json:"blocked_until,omitempty"`
	IsActive      bool            `db:"is_active" json:"is_active"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet creates a new Wallet with a zero balance.
func NewWallet(userID int64, accountNumber, pinHash, currency string, dailyLimit, monthlyLimit decimal.Decimal) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		UserID:        userID,
		AccountNumber: accountNumber,
		PinHash:       pinHash,
		Balance:       decimal.Zero,
		Currency:      currency,
		DailyLimit:    dailyLimit,
		MonthlyLimit:  monthlyLimit,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// BlockedAt reports whether the wallet rejects outbound mutation at the
// given instant. A set blocked_until in the past lifts the block.
func (w *Wallet) BlockedAt(now time.Time) bool {
	if !w.IsBlocked {
		return false
	}
	if w.BlockedUntil != nil && !w.BlockedUntil.After(now) {
		return false
	}
	return true
}

// qrPayload is the shape encoded into a wallet's payment QR code.
type qrPayload struct {
	WalletID int64  `json:"wallet_id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
}

// QRPayload returns the base64-encoded payment payload for this wallet.
func (w *Wallet) QRPayload(displayName string) string {
	raw, _ := json.Marshal(qrPayload{
		WalletID: w.ID,
		Name:     displayName,
		Type:     "wallet",
	})
	return base64.StdEncoding.EncodeToString(raw)
}
