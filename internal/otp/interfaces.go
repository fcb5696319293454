package otp

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence operations the service needs.
// The production implementation is the bun-backed PostgresRepository.
type Repository interface {
	Create(ctx context.Context, emailFingerprint, codeFingerprint string, expiresAt time.Time) (*Verification, error)
	GetLatest(ctx context.Context, emailFingerprint string) (*Verification, error)
	GetLatestActive(ctx context.Context, emailFingerprint string) (*Verification, error)
	DeleteByEmailFingerprint(ctx context.Context, emailFingerprint string) error
	DeleteByID(ctx context.Context, id uuid.UUID) error
	IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error
	CleanupExpired(ctx context.Context) (int64, error)
}

// Mailer delivers the raw passcode out-of-band. A delivery failure must be
// surfaced synchronously; the service rolls the record back on failure.
type Mailer interface {
	SendVerificationCode(ctx context.Context, toEmail, code string, expiry time.Duration) error
}

// TicketIssuer mints short-lived proof-of-verification tokens.
// Implementations include TicketService (PASETO v4.local).
type TicketIssuer interface {
	Issue(emailFingerprint string, duration time.Duration) (string, error)
}
