package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"taskmanager/internal/models"
	"taskmanager/internal/repositories"
	"taskmanager/internal/validation"
)

// ErrInvalidCredentials covers both an unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

type UserService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type userService struct {
	repo         repositories.UserRepository
	emailService EmailService
	authService  AuthService
}

// NewUserService wires accounts. emailService may be nil.
func NewUserService(repo repositories.UserRepository, emailService EmailService, authService AuthService) UserService {
	return &userService{
		repo:         repo,
		emailService: emailService,
		authService:  authService,
	}
}

func (s *userService) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	req, err := validation.Registration(req)
	if err != nil {
		return nil, err
	}

	hash, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, models.ErrEmailTaken) {
			return nil, validation.Errors{{Field: "email", Message: "User already exists with this email"}}
		}
		return nil, fmt.Errorf("register: %w", err)
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.Username); err != nil {
			// warn but do not fail registration
			log.Printf("[auth][register] warning: welcome email to %s: %v", user.Email, err)
		}
	}

	return s.respond(user)
}

func (s *userService) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	req, err := validation.Login(req)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !s.authService.CheckPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.respond(user)
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.authService.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}
