package models

import (
	"errors"
	"time"
)

var ErrResetTokenInvalid = errors.New("invalid or expired reset token")

// PasswordReset is a single-use reset grant. Only the token hash is stored.
type PasswordReset struct {
	ID        string     `json:"id" bson:"_id"`
	UserID    string     `json:"userId" bson:"userId"`
	TokenHash string     `json:"-" bson:"tokenHash"`
	ExpiresAt time.Time  `json:"expiresAt" bson:"expiresAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty" bson:"usedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}
