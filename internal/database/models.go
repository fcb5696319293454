package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// OTPVerification is the row backing one issued passcode. Only one-way
// fingerprints of the email and code are stored, never the raw values.
type OTPVerification struct {
	bun.BaseModel `bun:"table:otp_verifications,alias:ov"`

	ID               uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	EmailFingerprint string    `bun:"email_fingerprint,notnull"`
	CodeFingerprint  string    `bun:"code_fingerprint,notnull"`
	Attempts         int       `bun:"attempts,notnull,default:0"`
	Verified         bool      `bun:"verified,notnull,default:false"`
	CreatedAt        time.Time `bun:"created_at,notnull,default:current_timestamp"`
	ExpiresAt        time.Time `bun:"expires_at,notnull"`
}
