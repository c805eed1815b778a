package validation

import (
	"errors"
	"strings"
)

const (
	MinPasswordLength = 8
	// bcrypt silently truncates anything longer
	MaxPasswordLength = 72
)

var (
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must not exceed 72 characters")
	ErrPasswordCommon   = errors.New("password is too common, please choose a stronger one")
)

var commonPasswords = map[string]bool{
	"password": true, "password1": true, "12345678": true, "123456789": true,
	"qwertyuiop": true, "iloveyou": true, "letmein1": true, "welcome1": true,
	"sunshine": true, "football": true, "baseball": true, "princess": true,
}

// ValidatePassword checks length limits and rejects the most common passwords.
func ValidatePassword(password string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if commonPasswords[strings.ToLower(password)] {
		return ErrPasswordCommon
	}
	return nil
}
