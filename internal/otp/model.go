package otp

import (
	"time"

	"github.com/google/uuid"
)

// Verification is the domain view of one issued passcode record.
type Verification struct {
	ID               uuid.UUID
	EmailFingerprint string
	CodeFingerprint  string
	Attempts         int
	Verified         bool
	CreatedAt        time.Time
	ExpiresAt        time.Time
}
