package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskmanager/internal/models"
)

// PasswordResetRepository keeps single-use reset grants keyed by token hash.
type PasswordResetRepository interface {
	Create(ctx context.Context, pr *models.PasswordReset) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error)
	// MarkUsed succeeds once; a second call reports models.ErrResetTokenInvalid.
	MarkUsed(ctx context.Context, id string, at time.Time) error
}

type pgPasswordResetRepository struct {
	DB *sql.DB
}

func NewPostgresPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &pgPasswordResetRepository{DB: db}
}

func (r *pgPasswordResetRepository) Create(ctx context.Context, pr *models.PasswordReset) error {
	pr.ID = uuid.NewString()
	pr.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	const q = `
		INSERT INTO password_resets (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.DB.ExecContext(ctx, q, pr.ID, pr.UserID, pr.TokenHash, pr.ExpiresAt, pr.CreatedAt); err != nil {
		return fmt.Errorf("insert password reset: %w", err)
	}
	return nil
}

func (r *pgPasswordResetRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.PasswordReset, error) {
	const q = `
		SELECT id, user_id, token_hash, expires_at, used_at, created_at
		FROM password_resets
		WHERE token_hash = $1`
	pr := &models.PasswordReset{}
	var usedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, q, tokenHash).
		Scan(&pr.ID, &pr.UserID, &pr.TokenHash, &pr.ExpiresAt, &usedAt, &pr.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrResetTokenInvalid
		}
		return nil, fmt.Errorf("select password reset: %w", err)
	}
	if usedAt.Valid {
		pr.UsedAt = &usedAt.Time
	}
	return pr, nil
}

func (r *pgPasswordResetRepository) MarkUsed(ctx context.Context, id string, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE password_resets SET used_at = $1 WHERE id = $2 AND used_at IS NULL`, at, id)
	if err != nil {
		return fmt.Errorf("mark password reset used: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrResetTokenInvalid
	}
	return nil
}
