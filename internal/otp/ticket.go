package otp

import (
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
)

var ErrInvalidTicket = errors.New("invalid verification ticket")

// TicketClaims represents the claims stored in a verification ticket
type TicketClaims struct {
	EmailFingerprint string    `json:"email_fp"`
	IssuedAt         time.Time `json:"iat"`
	ExpiresAt        time.Time `json:"exp"`
}

// TicketService mints and validates proof-of-verification tickets.
// Uses PASETO v4.local (symmetric encryption with XChaCha20-Poly1305), so
// the ticket is opaque to the client and tamper-evident to us.
type TicketService struct {
	symmetricKey paseto.V4SymmetricKey
}

func NewTicketService(symmetricKey []byte) (*TicketService, error) {
	if len(symmetricKey) != 32 {
		return nil, fmt.Errorf("symmetric key must be exactly 32 bytes, got %d", len(symmetricKey))
	}

	key, err := paseto.V4SymmetricKeyFromBytes(symmetricKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create symmetric key: %w", err)
	}

	return &TicketService{
		symmetricKey: key,
	}, nil
}

// Issue generates a ticket bound to an email fingerprint. The raw email is
// deliberately not a claim; downstream consumers compare fingerprints.
func (s *TicketService) Issue(emailFingerprint string, duration time.Duration) (string, error) {
	now := time.Now()

	token := paseto.NewToken()
	token.SetIssuedAt(now)
	token.SetExpiration(now.Add(duration))
	token.SetString("email_fp", emailFingerprint)

	return token.V4Encrypt(s.symmetricKey, nil), nil
}

// Verify validates a ticket and returns its claims
func (s *TicketService) Verify(ticketStr string) (*TicketClaims, error) {
	parser := paseto.NewParser()

	token, err := parser.ParseV4Local(s.symmetricKey, ticketStr, nil)
	if err != nil {
		return nil, ErrInvalidTicket
	}

	emailFP, err := token.GetString("email_fp")
	if err != nil {
		return nil, ErrInvalidTicket
	}

	issuedAt, err := token.GetIssuedAt()
	if err != nil {
		return nil, ErrInvalidTicket
	}

	expiresAt, err := token.GetExpiration()
	if err != nil {
		return nil, ErrInvalidTicket
	}

	return &TicketClaims{
		EmailFingerprint: emailFP,
		IssuedAt:         issuedAt,
		ExpiresAt:        expiresAt,
	}, nil
}
