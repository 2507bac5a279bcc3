// internal/util/errors.go
package util

import (
	"errors"
	"net/http"
)

// Kind classifies application errors so every call site can branch on
// the full taxonomy instead of matching individual sentinel values.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindDuplicate
	KindInvalidPin
	KindBlocked
	KindInsufficientFunds
	KindValidation
	KindInfrastructure
)

// AppError is a business-rule violation carrying its classification and
// the exact message the HTTP boundary surfaces to the client.
type AppError struct {
	Kind    Kind
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// E builds an AppError.
func E(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// KindOf extracts the Kind of err, or KindUnknown when err is not an
// AppError (infrastructure failures wrapped with fmt.Errorf stay
// unclassified and surface as a generic 500).
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// HTTPStatus maps an error Kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate, KindInsufficientFunds, KindValidation:
		return http.StatusBadRequest
	case KindInvalidPin:
		return http.StatusUnauthorized
	case KindBlocked:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// Common application errors.
var (
	ErrSenderWalletNotFound   = E(KindNotFound, "Sender wallet not found")
	ErrReceiverWalletNotFound = E(KindNotFound, "Receiver wallet not found")
	ErrWalletNotFound         = E(KindNotFound, "Wallet not found")
	ErrUserNotFound           = E(KindNotFound, "User not found")
	ErrDuplicateWallet        = E(KindDuplicate, "Wallet already exists for this user")
	ErrInvalidPin             = E(KindInvalidPin, "Invalid PIN")
	ErrWalletBlocked          = E(KindBlocked, "Wallet is blocked")
	ErrInsufficientBalance    = E(KindInsufficientFunds, "Insufficient balance")
	ErrInvalidAmount          = E(KindValidation, "Amount must be a positive number")
	ErrSameWalletTransfer     = E(KindValidation, "Cannot transfer to the same wallet")

	// ErrNotFound is the storage-layer sentinel repositories return for
	// sql.ErrNoRows; services translate it into the specific AppError.
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicateEntry is the storage-layer sentinel for unique
	// constraint violations.
	ErrDuplicateEntry = errors.New("duplicate entry")
	// ErrDuplicateAccountNumber distinguishes an account-number
	// collision, which the account manager resolves by regenerating.
	ErrDuplicateAccountNumber = errors.New("duplicate account number")
)
