package utils

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// GenerateID returns a prefixed, structurally unique identifier such as
// "tan-8f14e45f-...". UUIDs replace counter or random-string schemes so ids
// never need a collision check.
func GenerateID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// GenerateAccountNumber returns a 10-digit account number. Uniqueness is not
// guaranteed here; the account store retries on a unique-index conflict.
func GenerateAccountNumber() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9_000_000_000))
	if err != nil {
		// crypto/rand only fails if the OS entropy source is broken.
		panic(err)
	}
	return strconv.FormatInt(1_000_000_000+n.Int64(), 10)
}

// ValidateAccountNumber checks the external account number format.
func ValidateAccountNumber(accountNumber string) bool {
	if len(accountNumber) != 10 {
		return false
	}
	for _, r := range accountNumber {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// HashPassword hashes a password using bcrypt.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPassword checks if a password matches a hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidateUserID validates the user ID format.
func ValidateUserID(userID string) bool {
	return strings.HasPrefix(userID, "usr-")
}

// ValidateTransactionID validates the transaction ID format.
func ValidateTransactionID(transactionID string) bool {
	return strings.HasPrefix(transactionID, "tan-")
}
