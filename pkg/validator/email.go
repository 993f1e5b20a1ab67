package validator

import (
	"fmt"
	"regexp"
	"strings"
)

// EmailValidator validates and normalizes the contact e-mail required on
// every hold request.
type EmailValidator struct {
	pattern *regexp.Regexp
}

// NewEmailValidator creates a new EmailValidator
func NewEmailValidator() *EmailValidator {
	return &EmailValidator{
		pattern: regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`),
	}
}

// Normalize lowercases and trims an address without validating it.
func (v *EmailValidator) Normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Validate returns the normalized address or an error describing what is
// wrong with it.
func (v *EmailValidator) Validate(email string) (string, error) {
	normalized := v.Normalize(email)
	if normalized == "" {
		return "", fmt.Errorf("contact email is required")
	}
	if len(normalized) > 254 {
		return "", fmt.Errorf("contact email is too long")
	}
	if !v.pattern.MatchString(normalized) {
		return "", fmt.Errorf("contact email %q is not a valid address", normalized)
	}
	return normalized, nil
}
