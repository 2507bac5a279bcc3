// internal/idgen/idgen.go
package idgen

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	accountNumberLen   = 16
	transactionCodeLen = 12

	digits  = "0123456789"
	alnum   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	nonZero = "123456789"
)

// AccountNumber returns a 16-digit numeric account number with a
// non-zero leading digit. The store's unique index on account_number
// remains the final arbiter of collisions.
func AccountNumber() (string, error) {
	head, err := pick(nonZero, 1)
	if err != nil {
		return "", err
	}
	tail, err := pick(digits, accountNumberLen-1)
	if err != nil {
		return "", err
	}
	return head + tail, nil
}

// TransactionCode returns the externally-facing 12-character
// alphanumeric code stamped on a ledger entry.
func TransactionCode() (string, error) {
	return pick(alnum, transactionCodeLen)
}

// Ref returns a prefixed ULID used to correlate a money-moving attempt
// across log lines. Never reused across retries.
func Ref(prefix string) string {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(rand.Reader, 0))
	return prefix + "_" + id.String()
}

// pick draws n characters uniformly from alphabet using crypto/rand.
func pick(alphabet string, n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(out), nil
}
