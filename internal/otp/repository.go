package otp

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/campus-compass/campus-compass-api/internal/database"
)

var ErrRecordNotFound = errors.New("verification record not found")

// PostgresRepository handles verification record persistence
type PostgresRepository struct {
	db *bun.DB
}

func NewPostgresRepository(db *bun.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new verification record with attempts=0, verified=false
func (r *PostgresRepository) Create(ctx context.Context, emailFingerprint, codeFingerprint string, expiresAt time.Time) (*Verification, error) {
	dbRec := &database.OTPVerification{
		EmailFingerprint: emailFingerprint,
		CodeFingerprint:  codeFingerprint,
		ExpiresAt:        expiresAt,
	}

	_, err := r.db.NewInsert().
		Model(dbRec).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create verification record: %w", err)
	}

	return mapDBVerificationToModel(dbRec), nil
}

// GetLatest retrieves the newest record for an email fingerprint regardless
// of state. Used for the issuance rate-limit check.
func (r *PostgresRepository) GetLatest(ctx context.Context, emailFingerprint string) (*Verification, error) {
	dbRec := new(database.OTPVerification)
	err := r.db.NewSelect().
		Model(dbRec).
		Where("email_fingerprint = ?", emailFingerprint).
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get latest verification record: %w", err)
	}

	return mapDBVerificationToModel(dbRec), nil
}

// GetLatestActive retrieves the newest unverified, unexpired record for an
// email fingerprint.
func (r *PostgresRepository) GetLatestActive(ctx context.Context, emailFingerprint string) (*Verification, error) {
	dbRec := new(database.OTPVerification)
	err := r.db.NewSelect().
		Model(dbRec).
		Where("email_fingerprint = ?", emailFingerprint).
		Where("verified = ?", false).
		Where("expires_at > NOW()").
		Order("created_at DESC").
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get active verification record: %w", err)
	}

	return mapDBVerificationToModel(dbRec), nil
}

// DeleteByEmailFingerprint removes all records for an email fingerprint.
// Called before each issuance so at most one active record exists.
func (r *PostgresRepository) DeleteByEmailFingerprint(ctx context.Context, emailFingerprint string) error {
	_, err := r.db.NewDelete().
		Model((*database.OTPVerification)(nil)).
		Where("email_fingerprint = ?", emailFingerprint).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete verification records: %w", err)
	}

	return nil
}

// DeleteByID removes a single record
func (r *PostgresRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewDelete().
		Model((*database.OTPVerification)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete verification record: %w", err)
	}

	return nil
}

// IncrementAttempts bumps the failed-attempt counter in a single UPDATE and
// returns the new count. Concurrent wrong guesses therefore cannot
// under-count each other.
func (r *PostgresRepository) IncrementAttempts(ctx context.Context, id uuid.UUID) (int, error) {
	var attempts int
	err := r.db.NewUpdate().
		Model((*database.OTPVerification)(nil)).
		Set("attempts = attempts + 1").
		Where("id = ?", id).
		Returning("attempts").
		Scan(ctx, &attempts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrRecordNotFound
		}
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}

	return attempts, nil
}

// MarkVerified flips the record to verified
func (r *PostgresRepository) MarkVerified(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.NewUpdate().
		Model((*database.OTPVerification)(nil)).
		Set("verified = ?", true).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark record verified: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

// CleanupExpired removes records past their expiry
// Should be run periodically (e.g., via the ticker in main)
func (r *PostgresRepository) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := r.db.NewDelete().
		Model((*database.OTPVerification)(nil)).
		Where("expires_at < NOW()").
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired records: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected: %w", err)
	}

	return rowsAffected, nil
}

// mapDBVerificationToModel converts database model to domain model
func mapDBVerificationToModel(dbr *database.OTPVerification) *Verification {
	return &Verification{
		ID:               dbr.ID,
		EmailFingerprint: dbr.EmailFingerprint,
		CodeFingerprint:  dbr.CodeFingerprint,
		Attempts:         dbr.Attempts,
		Verified:         dbr.Verified,
		CreatedAt:        dbr.CreatedAt,
		ExpiresAt:        dbr.ExpiresAt,
	}
}
