package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	codeMin  = 100000
	codeSpan = 900000
)

// GenerateCode returns a uniformly random 6-digit passcode in
// [100000, 999999]. The range excludes leading zeros so the code always
// renders as exactly six digits.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}

	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}
