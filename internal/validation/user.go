package validation

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"taskmanager/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// messages by "<field>.<tag>"
var userMessages = map[string]string{
	"username.required": "Username is required",
	"username.min":      "Username must be between 3 and 30 characters",
	"username.max":      "Username must be between 3 and 30 characters",
	"email.required":    "Please provide a valid email",
	"email.email":       "Please provide a valid email",
	"password.required": "Password is required",
	"password.min":      "Password must be at least 6 characters long",
	"token.required":    "Token is required",
}

type registration struct {
	Username string `validate:"required,min=3,max=30"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type login struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type forgotPassword struct {
	Email string `validate:"required,email"`
}

type resetPassword struct {
	Token    string `validate:"required"`
	Password string `validate:"required,min=6"`
}

// NormalizeEmail trims and lower-cases an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Registration validates a sign-up body and returns it normalized.
func Registration(req models.RegisterRequest) (models.RegisterRequest, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = NormalizeEmail(req.Email)
	err := validate.Struct(registration{Username: req.Username, Email: req.Email, Password: req.Password})
	return req, fieldErrors(err, userMessages)
}

// Login checks that both credentials are present and well formed.
func Login(req models.LoginRequest) (models.LoginRequest, error) {
	req.Email = NormalizeEmail(req.Email)
	err := validate.Struct(login{Email: req.Email, Password: req.Password})
	return req, fieldErrors(err, userMessages)
}

func ForgotPassword(req models.ForgotPasswordRequest) (models.ForgotPasswordRequest, error) {
	req.Email = NormalizeEmail(req.Email)
	return req, fieldErrors(validate.Struct(forgotPassword{Email: req.Email}), userMessages)
}

func ResetPassword(req models.ResetPasswordRequest) (models.ResetPasswordRequest, error) {
	req.Token = strings.TrimSpace(req.Token)
	return req, fieldErrors(validate.Struct(resetPassword{Token: req.Token, Password: req.Password}), userMessages)
}

// fieldErrors converts validator failures into Errors, one per field. The
// first map holding "<field>.<tag>" wins.
func fieldErrors(err error, messages ...map[string]string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return translate(verrs, messages...).Err()
}

func translate(verrs validator.ValidationErrors, messages ...map[string]string) Errors {
	var errs Errors
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		if errs.Has(field) {
			continue
		}
		msg := "Invalid value"
		for _, m := range messages {
			if text, ok := m[field+"."+fe.Tag()]; ok {
				msg = text
				break
			}
		}
		errs.Add(field, msg)
	}
	return errs
}
