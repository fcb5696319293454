package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/campus-compass/campus-compass-api/internal/logging"
)

var (
	ErrEmailRequired   = errors.New("email is required")
	ErrCodeRequired    = errors.New("verification code is required")
	ErrDeliveryFailed  = errors.New("failed to send verification email")
	ErrNoValidCode     = errors.New("no valid verification code found")
	ErrTooManyAttempts = errors.New("too many failed attempts")
)

// RateLimitedError is returned when a code was issued for the same email
// too recently. RemainingSeconds tells the caller how long to wait.
type RateLimitedError struct {
	RemainingSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("please wait %d seconds before requesting another code", e.RemainingSeconds)
}

// CodeMismatchError is returned on a wrong code while attempts remain.
type CodeMismatchError struct {
	RemainingAttempts int
}

func (e *CodeMismatchError) Error() string {
	return fmt.Sprintf("invalid verification code, %d attempts remaining", e.RemainingAttempts)
}

// VerifyResult is returned on a successful verification.
type VerifyResult struct {
	// Ticket proves the verification to the account-creation step without
	// another store read. Bound to the email fingerprint, short-lived.
	Ticket string
}

// Service gates identity claims behind a short-lived single-use passcode
// delivered by email. Each call is a self-contained read-modify-write
// against the store; no state lives in the process between calls.
type Service struct {
	repo            Repository
	mailer          Mailer
	fingerprints    *Fingerprinter
	tickets         TicketIssuer
	logger          *logging.Logger
	expiry          time.Duration
	rateLimitWindow time.Duration
	maxAttempts     int
	ticketDuration  time.Duration
}

func NewService(
	repo Repository,
	mailer Mailer,
	fingerprints *Fingerprinter,
	tickets TicketIssuer,
	logger *logging.Logger,
	expiry time.Duration,
	rateLimitWindow time.Duration,
	maxAttempts int,
	ticketDuration time.Duration,
) *Service {
	return &Service{
		repo:            repo,
		mailer:          mailer,
		fingerprints:    fingerprints,
		tickets:         tickets,
		logger:          logger,
		expiry:          expiry,
		rateLimitWindow: rateLimitWindow,
		maxAttempts:     maxAttempts,
		ticketDuration:  ticketDuration,
	}
}

// Send issues a fresh passcode for the email and delivers it. Any prior
// records for the email are superseded. Resends go through the same path,
// so the rate limit applies uniformly.
func (s *Service) Send(ctx context.Context, email string) error {
	if email == "" {
		return ErrEmailRequired
	}

	emailFP := s.fingerprints.Email(email)

	// Rate limit against the newest record regardless of its state
	latest, err := s.repo.GetLatest(ctx, emailFP)
	if err != nil && !errors.Is(err, ErrRecordNotFound) {
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	if latest != nil {
		elapsed := time.Since(latest.CreatedAt)
		if elapsed < s.rateLimitWindow {
			remaining := int(math.Ceil((s.rateLimitWindow - elapsed).Seconds()))
			if remaining > 0 {
				return &RateLimitedError{RemainingSeconds: remaining}
			}
		}
	}

	// Supersede: at most one active record per email fingerprint
	if err := s.repo.DeleteByEmailFingerprint(ctx, emailFP); err != nil {
		return fmt.Errorf("failed to supersede prior codes: %w", err)
	}

	code, err := GenerateCode()
	if err != nil {
		return err
	}

	record, err := s.repo.Create(ctx, emailFP, s.fingerprints.Code(code), time.Now().Add(s.expiry))
	if err != nil {
		return fmt.Errorf("failed to store verification record: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code, s.expiry); err != nil {
		// Roll the record back so a failed delivery doesn't burn the
		// rate-limit window with a code the user never received.
		if delErr := s.repo.DeleteByID(ctx, record.ID); delErr != nil {
			s.logger.Error("failed to roll back undelivered code",
				"email_fp", shortFP(emailFP), "error", delErr.Error())
		}
		s.logger.Warn("verification email delivery failed",
			"email_fp", shortFP(emailFP), "error", err.Error())
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	s.logger.Info("verification code sent", "email_fp", shortFP(emailFP))
	return nil
}

// Resend is Send under another name; resending is not a rate-limit bypass.
func (s *Service) Resend(ctx context.Context, email string) error {
	return s.Send(ctx, email)
}

// Verify checks a submitted code against the active record for the email.
// On success the record is consumed (verified, never reusable) and a
// proof-of-verification ticket is returned.
func (s *Service) Verify(ctx context.Context, email, code string) (*VerifyResult, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if code == "" {
		return nil, ErrCodeRequired
	}

	emailFP := s.fingerprints.Email(email)

	record, err := s.repo.GetLatestActive(ctx, emailFP)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			// Covers never requested, expired, already verified, or
			// deleted after exhaustion.
			return nil, ErrNoValidCode
		}
		return nil, fmt.Errorf("failed to look up verification record: %w", err)
	}

	// Unreachable through Send's supersede path, but a record can hit the
	// bound between issuances.
	if record.Attempts >= s.maxAttempts {
		if err := s.repo.DeleteByID(ctx, record.ID); err != nil {
			return nil, fmt.Errorf("failed to delete exhausted record: %w", err)
		}
		return nil, ErrTooManyAttempts
	}

	codeFP := s.fingerprints.Code(code)
	if subtle.ConstantTimeCompare([]byte(codeFP), []byte(record.CodeFingerprint)) != 1 {
		attempts, err := s.repo.IncrementAttempts(ctx, record.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to record attempt: %w", err)
		}
		s.logger.Warn("verification code mismatch",
			"email_fp", shortFP(emailFP), "attempts", attempts)
		return nil, &CodeMismatchError{RemainingAttempts: s.maxAttempts - attempts}
	}

	if err := s.repo.MarkVerified(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("failed to mark record verified: %w", err)
	}

	result := &VerifyResult{}
	if s.tickets != nil {
		ticket, err := s.tickets.Issue(emailFP, s.ticketDuration)
		if err != nil {
			return nil, fmt.Errorf("failed to issue verification ticket: %w", err)
		}
		result.Ticket = ticket
	}

	s.logger.Info("email verified", "email_fp", shortFP(emailFP))
	return result, nil
}

// CleanupExpired removes expired records; exposed for the maintenance ticker.
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	return s.repo.CleanupExpired(ctx)
}

// shortFP truncates a fingerprint for log lines. The full fingerprint is a
// lookup key, so even it stays out of the logs.
func shortFP(fp string) string {
	if len(fp) <= 8 {
		return fp
	}
	return fp[:8]
}
