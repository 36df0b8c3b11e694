package utils

import (
	"fmt"
	"regexp"
	"strings"
)

// FieldValidationError represents a validation error for a specific field
type FieldValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldValidationErrors represents multiple field validation errors
type FieldValidationErrors []FieldValidationError

// Error implements the error interface
func (e FieldValidationErrors) Error() string {
	var messages []string
	for _, err := range e {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return strings.Join(messages, "; ")
}

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	currencyRegex = regexp.MustCompile(`^[A-Z]{3}$`)
)

// ValidateUsername checks username format
func ValidateUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// ValidateEmail checks email format
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidatePhone checks phone number format
func ValidatePhone(phone string) bool {
	return phoneRegex.MatchString(phone)
}

// ValidateCurrency checks an ISO 4217 style currency code
func ValidateCurrency(code string) bool {
	return currencyRegex.MatchString(code)
}

// ValidatePassword enforces the password policy: at least 8 characters
// with an upper-case letter, a lower-case letter and a digit.
func ValidatePassword(password string) []string {
	var problems []string

	if len(password) < 8 {
		problems = append(problems, "Password must be at least 8 characters long")
	}
	if !strings.ContainsAny(password, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		problems = append(problems, "Password must contain an uppercase letter")
	}
	if !strings.ContainsAny(password, "abcdefghijklmnopqrstuvwxyz") {
		problems = append(problems, "Password must contain a lowercase letter")
	}
	if !strings.ContainsAny(password, "0123456789") {
		problems = append(problems, "Password must contain a digit")
	}

	return problems
}
