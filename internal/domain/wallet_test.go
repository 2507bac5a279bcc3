// internal/domain/wallet_test.go
package domain

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWallet(t *testing.T) {
	w := NewWallet(10, "9000000000000001", "hash", "INR",
		decimal.NewFromInt(10_000), decimal.NewFromInt(100_000))

	assert.True(t, w.Balance.IsZero())
	assert.True(t, w.IsActive)
	assert.False(t, w.IsBlocked)
	assert.Equal(t, int64(10), w.UserID)
}

func TestWalletBlockedAt(t *testing.T) {
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name         string
		isBlocked    bool
		blockedUntil *time.Time
		want         bool
	}{
		{"NotBlocked", false, nil, false},
		{"BlockedIndefinitely", true, nil, true},
		{"BlockedUntilFuture", true, &future, true},
		{"BlockExpired", true, &past, false},
		{"UntilSetButNotBlocked", false, &future, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := &Wallet{IsBlocked: tc.isBlocked, BlockedUntil: tc.blockedUntil}
			assert.Equal(t, tc.want, w.BlockedAt(now))
		})
	}
}

func TestWalletQRPayload(t *testing.T) {
	w := &Wallet{ID: 42}
	encoded := w.QRPayload("Asha")

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)

	var payload struct {
		WalletID int64  `json:"wallet_id"`
		Name     string `json:"name"`
		Type     string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, int64(42), payload.WalletID)
	assert.Equal(t, "Asha", payload.Name)
	assert.Equal(t, "wallet", payload.Type)
}

func TestPinHashNeverSerialized(t *testing.T) {
	w := NewWallet(10, "9000000000000001", "secret-hash", "INR",
		decimal.NewFromInt(10_000), decimal.NewFromInt(100_000))

	raw, err := json.Marshal(w)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret-hash")
}
