package utils

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
)

// memoEncoding avoids padding and lowercase so a memo survives being retyped into a wallet comment.
var memoEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// GenerateDepositMemo returns a random upper-case base32 memo built from lengthInBytes
// random bytes. 8 bytes give a 13-character memo.
func GenerateDepositMemo(lengthInBytes int) (string, error) {
	if lengthInBytes <= 0 {
		return "", fmt.Errorf("lengthInBytes must be positive")
	}
	b := make([]byte, lengthInBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return memoEncoding.EncodeToString(b), nil
}
