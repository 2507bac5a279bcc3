// internal/domain/user.go
package domain

import "time"

// KYCStatus is the verification state of a user's identity documents.
// The approval workflow itself lives outside this service; the wallet
// dashboard only reads the flag.
type KYCStatus string

const (
	KYCStatusPending  KYCStatus = "PENDING"
	KYCStatusVerified KYCStatus = "VERIFIED"
	KYCStatusRejected KYCStatus = "REJECTED"
)

// User represents an account holder.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Phone     string    `db:"phone" json:"phone"`
	KYCStatus KYCStatus `db:"kyc_status" json:"kyc_status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
