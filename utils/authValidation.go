package utils

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

// Validation errors
var (
	ErrPasswordMismatch = errors.New("Las contraseñas no coinciden")
	ErrPasswordTooShort = errors.New("La contraseña debe tener al menos 6 caracteres")
	ErrNameRequired     = errors.New("El nombre y apellidos son obligatorios")
	ErrInvalidEmail     = errors.New("El correo electrónico no es válido")
	ErrInvalidResetCode = errors.New("Código de recuperación no válido")
)

// SignUpForm is the registration form.
type SignUpForm struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Nombre          string `json:"nombre"`
	Apellidos       string `json:"apellidos"`
	Telefono        string `json:"telefono"`
	Rol             string `json:"rol"`
}

// ValidateSignUp checks the form before any request is issued. Checks run in
// a fixed order and the first failure wins, so the user sees one message.
func ValidateSignUp(form SignUpForm) error {
	if form.Password != form.ConfirmPassword {
		return ErrPasswordMismatch
	}
	if err := validatePassword(form.Password); err != nil {
		return err
	}
	if strings.TrimSpace(form.Nombre) == "" || strings.TrimSpace(form.Apellidos) == "" {
		return ErrNameRequired
	}
	if err := validation.Validate(form.Email, validation.Required, is.EmailFormat); err != nil {
		return ErrInvalidEmail
	}
	return nil
}

// ValidatePasswordReset validates the reset code and new password.
func ValidatePasswordReset(resetCode, newPassword string) error {
	if err := validation.Validate(resetCode, validation.Required, validation.Length(6, 6), is.Digit); err != nil {
		return ErrInvalidResetCode
	}
	return validatePassword(newPassword)
}

func validatePassword(password string) error {
	if len([]rune(password)) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
