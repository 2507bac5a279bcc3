// internal/api/handler/wallet.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"orbitpay-wallet/internal/api/types"
	"orbitpay-wallet/internal/idgen"
	"orbitpay-wallet/internal/service"
	"orbitpay-wallet/internal/util"
)

// DefaultTimeout bounds every request, including the time a transfer
// may spend waiting on the store.
const DefaultTimeout = 15 * time.Second

// userIDHeader carries the authenticated user's ID, set by the
// upstream auth layer before requests reach this service.
const userIDHeader = "X-User-ID"

// WalletHandler handles HTTP requests related to wallet operations.
type WalletHandler struct {
	service service.WalletService
	logger  *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		service: svc,
		logger:  logger,
	}
}

func (h *WalletHandler) respondWithJSON(w http.ResponseWriter, code int, payload types.Response) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError translates a service error into the envelope.
// Typed application errors surface their own message and status;
// anything else is logged and hidden behind fallback.
func (h *WalletHandler) respondWithError(w http.ResponseWriter, err error, fallback string) {
	kind := util.KindOf(err)
	if kind == util.KindUnknown || kind == util.KindInfrastructure {
		h.logger.Error("Unhandled service error", "error", err)
		h.respondWithJSON(w, http.StatusInternalServerError, types.Fail(fallback))
		return
	}
	h.respondWithJSON(w, util.HTTPStatus(kind), types.Fail(err.Error()))
}

// userID extracts the authenticated user's ID from the request.
func (h *WalletHandler) userID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.Header.Get(userIDHeader), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// CreateWalletRequest is the request body for wallet creation.
type CreateWalletRequest struct {
	PIN          string           `json:"pin"`
	Currency     string           `json:"currency,omitempty"`
	DailyLimit   *decimal.Decimal `json:"daily_limit,omitempty"`
	MonthlyLimit *decimal.Decimal `json:"monthly_limit,omitempty"`
}

// CreateWallet handles wallet creation.
// POST /wallets
func (h *WalletHandler) CreateWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(r)
	if !ok {
		h.respondWithJSON(w, http.StatusUnauthorized, types.Fail("Missing user identity"))
		return
	}

	var req CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.Fail("Invalid request body"))
		return
	}

	wallet, err := h.service.CreateWallet(r.Context(), userID, service.CreateWalletParams{
		PIN:          req.PIN,
		Currency:     req.Currency,
		DailyLimit:   req.DailyLimit,
		MonthlyLimit: req.MonthlyLimit,
	})
	if err != nil {
		h.respondWithError(w, err, "Error creating wallet")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, types.OK(map[string]interface{}{
		"wallet_id":      wallet.ID,
		"account_number": wallet.AccountNumber,
		"balance":        wallet.Balance,
		"currency":       wallet.Currency,
		"daily_limit":    wallet.DailyLimit,
		"monthly_limit":  wallet.MonthlyLimit,
	}))
}

// GetWalletStats returns the dashboard view for the caller's wallet.
// GET /wallets/stats
func (h *WalletHandler) GetWalletStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(r)
	if !ok {
		h.respondWithJSON(w, http.StatusUnauthorized, types.Fail("Missing user identity"))
		return
	}

	stats, err := h.service.GetWalletStats(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err, "Error fetching wallet stats")
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.OK(stats))
}

// AddMoneyRequest is the request body for a top-up.
type AddMoneyRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Description *string         `json:"description,omitempty"`
}

// AddMoney handles the top-up request.
// POST /wallets/{walletID}/money
func (h *WalletHandler) AddMoney(w http.ResponseWriter, r *http.Request) {
	walletID, err := strconv.ParseInt(chi.URLParam(r, "walletID"), 10, 64)
	if err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.Fail("Invalid wallet ID"))
		return
	}

	var req AddMoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.Fail("Invalid request body"))
		return
	}

	ref := idgen.Ref("topup")
	h.logger.Info("Add money requested", "ref", ref, "wallet_id", walletID)

	wallet, transaction, err := h.service.AddMoney(r.Context(), walletID, service.AddMoneyParams{
		Amount:      req.Amount,
		Type:        req.Type,
		Description: req.Description,
	})
	if err != nil {
		h.logger.Warn("Add money failed", "ref", ref, "wallet_id", walletID, "error", err)
		h.respondWithError(w, err, "Error processing top-up")
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.OK(map[string]interface{}{
		"new_balance":    wallet.Balance,
		"currency":       wallet.Currency,
		"transaction_id": transaction.TransactionID,
	}))
}

// TransferRequest is the request body for a transfer.
type TransferRequest struct {
	ToWalletID  int64           `json:"to_wallet_id"`
	Amount      decimal.Decimal `json:"amount"`
	PIN         string          `json:"pin"`
	Description *string         `json:"description,omitempty"`
}

// Transfer handles the money transfer request.
// POST /transfers
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(r)
	if !ok {
		h.respondWithJSON(w, http.StatusUnauthorized, types.Fail("Missing user identity"))
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.Fail("Invalid request body"))
		return
	}
	if req.ToWalletID == 0 {
		h.respondWithJSON(w, http.StatusBadRequest, types.Fail("Receiver wallet is required"))
		return
	}

	ref := idgen.Ref("txf")
	h.logger.Info("Transfer requested", "ref", ref, "from_user_id", userID, "to_wallet_id", req.ToWalletID)

	result, err := h.service.Transfer(r.Context(), userID, req.ToWalletID, req.Amount, req.PIN, req.Description)
	if err != nil {
		h.logger.Warn("Transfer failed", "ref", ref, "from_user_id", userID, "error", err)
		h.respondWithError(w, err, "Error processing transfer")
		return
	}

	h.logger.Info("Transfer completed", "ref", ref, "transaction_id", result.Transaction.TransactionID)

	h.respondWithJSON(w, http.StatusOK, types.OK(map[string]interface{}{
		"message":        "Transfer successful",
		"transaction_id": result.Transaction.TransactionID,
		"new_balance":    result.FromWallet.Balance,
	}))
}

// UpdateLimitsRequest is the request body for a limits change.
type UpdateLimitsRequest struct {
	DailyLimit   *decimal.Decimal `json:"daily_limit,omitempty"`
	MonthlyLimit *decimal.Decimal `json:"monthly_limit,omitempty"`
	PIN          string           `json:"pin"`
}

// UpdateLimits handles the spending-limits change request.
// PATCH /wallets/{walletID}/limits
func (h *WalletHandler) UpdateLimits(w http.ResponseWriter, r *http.Request) {
	walletID, err := strconv.ParseInt(chi.URLParam(r, "walletID"), 10, 64)
	if err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.Fail("Invalid wallet ID"))
		return
	}

	var req UpdateLimitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithJSON(w, http.StatusBadRequest, types.Fail("Invalid request body"))
		return
	}

	wallet, err := h.service.UpdateLimits(r.Context(), walletID, service.UpdateLimitsParams{
		DailyLimit:   req.DailyLimit,
		MonthlyLimit: req.MonthlyLimit,
		PIN:          req.PIN,
	})
	if err != nil {
		h.respondWithError(w, err, "Error updating limits")
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.OK(map[string]interface{}{
		"daily_limit":   wallet.DailyLimit,
		"monthly_limit": wallet.MonthlyLimit,
	}))
}
