package otp

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Fingerprinter computes keyed one-way digests of emails and codes so the
// raw values never reach the store or the logs. The same key must be used
// for the lifetime of a deployment or existing records become unreachable.
type Fingerprinter struct {
	key []byte
}

func NewFingerprinter(key []byte) (*Fingerprinter, error) {
	if len(key) < 32 {
		return nil, fmt.Errorf("fingerprint key must be at least 32 bytes, got %d", len(key))
	}
	if len(key) > 64 {
		// blake2b caps keys at 64 bytes
		return nil, fmt.Errorf("fingerprint key must be at most 64 bytes, got %d", len(key))
	}

	return &Fingerprinter{key: key}, nil
}

// Email fingerprints an address after lowercase+trim normalization, so
// "User@Example.com " and "user@example.com" address the same records.
func (f *Fingerprinter) Email(email string) string {
	return f.digest(strings.ToLower(strings.TrimSpace(email)))
}

// Code fingerprints a passcode as entered (minus surrounding whitespace).
func (f *Fingerprinter) Code(code string) string {
	return f.digest(strings.TrimSpace(code))
}

func (f *Fingerprinter) digest(s string) string {
	h, err := blake2b.New256(f.key)
	if err != nil {
		// Key length is validated in the constructor; New256 cannot fail after that.
		panic(fmt.Sprintf("blake2b init: %v", err))
	}
	h.Write([]byte(s))
	return hex.EncodeToString(h.Sum(nil))
}
