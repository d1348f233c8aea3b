package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/models"
	"taskmanager/internal/repositories"
	"taskmanager/internal/validation"
)

type fakeEmail struct {
	sent   []string
	tokens []string
	err    error
}

func (f *fakeEmail) SendWelcomeEmail(email, _ string) error {
	f.sent = append(f.sent, email)
	return f.err
}

func (f *fakeEmail) SendPasswordResetEmail(email, token string) error {
	f.sent = append(f.sent, email)
	f.tokens = append(f.tokens, token)
	return f.err
}

func newUserService(t *testing.T, email EmailService) (UserService, AuthService) {
	t.Helper()
	auth := NewAuthService("secret", time.Hour)
	return NewUserService(repositories.NewMemoryStore().Users(), email, auth), auth
}

func TestUserService_Register(t *testing.T) {
	mail := &fakeEmail{}
	svc, auth := newUserService(t, mail)

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "alice", Email: "Alice@Example.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.User.ID)
	assert.NotEqual(t, "secret1", resp.User.PasswordHash)
	assert.Equal(t, []string{"alice@example.com"}, mail.sent)

	claims, err := auth.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestUserService_RegisterDuplicateEmail(t *testing.T) {
	svc, _ := newUserService(t, nil)
	ctx := context.Background()
	req := models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"}

	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	req.Email = " ALICE@example.com"
	_, err = svc.Register(ctx, req)
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, validation.Errors{{Field: "email", Message: "User already exists with this email"}}, verrs)
}

func TestUserService_RegisterSurvivesMailFailure(t *testing.T) {
	svc, _ := newUserService(t, &fakeEmail{err: errors.New("smtp down")})

	resp, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "bob", Email: "bob@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestUserService_Login(t *testing.T) {
	svc, _ := newUserService(t, nil)
	ctx := context.Background()
	reg, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, models.LoginRequest{Email: "ALICE@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "alice@example.com", Password: "wrong!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, models.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_GetUserByID(t *testing.T) {
	svc, _ := newUserService(t, nil)
	_, err := svc.GetUserByID(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
