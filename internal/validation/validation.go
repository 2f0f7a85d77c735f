// Package validation checks and normalizes lead submissions.
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/insurang/lead-funnel/internal/models"
)

// FieldErrors maps a field name to its first validation failure.
type FieldErrors map[string]string

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9_-]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	nonDigits    = regexp.MustCompile(`\D`)
)

// ValidateLead normalizes the input and returns it together with any
// field-level errors. It never panics; an empty FieldErrors means the
// returned input is safe to persist.
func ValidateLead(input models.LeadInput) (models.LeadInput, FieldErrors) {
	errs := FieldErrors{}

	input.OfferSlug = strings.TrimSpace(input.OfferSlug)
	if input.OfferSlug == "" {
		errs["offer_slug"] = "is required"
	} else if !slugPattern.MatchString(input.OfferSlug) {
		errs["offer_slug"] = "must contain only lowercase letters, digits, hyphens and underscores"
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		errs["name"] = "is required"
	} else if utf8.RuneCountInString(input.Name) > 100 {
		errs["name"] = "must not exceed 100 characters"
	}

	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" {
		errs["email"] = "is required"
	} else if len(input.Email) > 255 {
		errs["email"] = "must not exceed 255 characters"
	} else if !emailPattern.MatchString(input.Email) {
		errs["email"] = "is invalid"
	}

	input.Phone = NormalizePhone(input.Phone)
	if input.Phone == "" {
		errs["phone"] = "is required"
	} else if len(input.Phone) < 10 || len(input.Phone) > 11 {
		errs["phone"] = "must contain 10 or 11 digits"
	}

	if !input.ConsentPrivacy {
		errs["consent_privacy"] = "must be accepted"
	}

	input.Organization = strings.TrimSpace(input.Organization)
	if utf8.RuneCountInString(input.Organization) > 200 {
		errs["organization"] = "must not exceed 200 characters"
	}

	return input, errs
}

// NormalizePhone strips every non-digit character. Idempotent.
func NormalizePhone(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}
