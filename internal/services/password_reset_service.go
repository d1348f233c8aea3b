package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"taskmanager/internal/models"
	"taskmanager/internal/repositories"
	"taskmanager/internal/utils"
	"taskmanager/internal/validation"
)

// DefaultResetTTL is how long a reset token stays usable.
const DefaultResetTTL = time.Hour

type PasswordResetService interface {
	RequestReset(ctx context.Context, req models.ForgotPasswordRequest) error
	ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error
}

type passwordResetService struct {
	userRepo repositories.UserRepository
	repo     repositories.PasswordResetRepository
	emails   EmailService
	auth     AuthService
	ttl      time.Duration
	now      func() time.Time
}

// NewPasswordResetService wires the reset flow. emails may be nil, in which
// case tokens are issued but never delivered.
func NewPasswordResetService(userRepo repositories.UserRepository, repo repositories.PasswordResetRepository, emails EmailService, auth AuthService, ttl time.Duration) PasswordResetService {
	if ttl <= 0 {
		ttl = DefaultResetTTL
	}
	return &passwordResetService{
		userRepo: userRepo,
		repo:     repo,
		emails:   emails,
		auth:     auth,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *passwordResetService) RequestReset(ctx context.Context, req models.ForgotPasswordRequest) error {
	req, err := validation.ForgotPassword(req)
	if err != nil {
		return err
	}
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			// don't leak existence
			log.Printf("[password-reset] request for %q: user not found", req.Email)
			return nil
		}
		return fmt.Errorf("password reset: %w", err)
	}

	token, err := utils.NewToken(32)
	if err != nil {
		return fmt.Errorf("password reset token: %w", err)
	}
	pr := &models.PasswordReset{
		UserID:    user.ID,
		TokenHash: utils.HashToken(token),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.repo.Create(ctx, pr); err != nil {
		return fmt.Errorf("password reset: %w", err)
	}

	if s.emails == nil {
		log.Printf("[password-reset] warning: email not configured, token for userID=%s not delivered", user.ID)
		return nil
	}
	if err := s.emails.SendPasswordResetEmail(user.Email, token); err != nil {
		log.Printf("[password-reset] failed to send email to %s: %v", user.Email, err)
	}
	return nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	req, err := validation.ResetPassword(req)
	if err != nil {
		return err
	}
	invalid := validation.Errors{{Field: "token", Message: "Invalid or expired token"}}

	pr, err := s.repo.GetByTokenHash(ctx, utils.HashToken(req.Token))
	if err != nil {
		if errors.Is(err, models.ErrResetTokenInvalid) {
			return invalid
		}
		return fmt.Errorf("password reset: %w", err)
	}
	now := s.now()
	if pr.UsedAt != nil || !now.Before(pr.ExpiresAt) {
		return invalid
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	// claim the token first so two concurrent resets cannot both win
	if err := s.repo.MarkUsed(ctx, pr.ID, now); err != nil {
		if errors.Is(err, models.ErrResetTokenInvalid) {
			return invalid
		}
		return fmt.Errorf("password reset: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, pr.UserID, hash); err != nil {
		return fmt.Errorf("password reset: %w", err)
	}
	log.Printf("[password-reset] password changed userID=%s", pr.UserID)
	return nil
}
