// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLength = 8
	// bcrypt only hashes the first 72 bytes and refuses longer input.
	maxPasswordBytes = 72
	maxEmailLength    = 254
	maxLocalPart      = 64
	maxSlugLength     = 200
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	slugRegex  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// NormalizeSlug trims and lowercases a URL name before it is validated.
func NormalizeSlug(slug string) string {
	return strings.ToLower(strings.TrimSpace(slug))
}

// NormalizeEmail trims and lowercases an address before it is validated or stored.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks an already normalized address.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("email must not exceed %d characters", maxEmailLength)
	}
	if strings.Count(email, "@") != 1 {
		return fmt.Errorf("email must contain exactly one @")
	}
	local, domain, _ := strings.Cut(email, "@")
	if local == "" || len(local) > maxLocalPart {
		return fmt.Errorf("the part before @ must be between 1 and %d characters", maxLocalPart)
	}
	if !strings.Contains(domain, ".") {
		return fmt.Errorf("email domain must contain a dot")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword checks the password length rules.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("password must not exceed %d bytes", maxPasswordBytes)
	}
	return nil
}

// ValidateSlug checks a post URL name: lowercase words of letters and digits
// joined by single hyphens.
func ValidateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("URL name is required")
	}
	if len(slug) > maxSlugLength {
		return fmt.Errorf("URL name must not exceed %d characters", maxSlugLength)
	}
	if !slugRegex.MatchString(slug) {
		return fmt.Errorf("URL name may only contain lowercase letters, numbers and single hyphens")
	}
	return nil
}
