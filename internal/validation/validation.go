package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field limits for the lead capture form.
const (
	MinNameLength  = 2
	MaxNameLength  = 200
	MaxEmailLength = 254
	MinPhoneDigits = 10
	MaxPhoneLength = 32
	MaxNotesLength = 2000
)

// EmailPattern is a pragmatic address check: something@domain.tld with no spaces.
var EmailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// InterestSet reports whether an interest is offered. *config.Catalog implements it.
type InterestSet interface {
	HasInterest(interest string) bool
}

// LeadForm is a lead capture submission.
type LeadForm struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Interest string `json:"interest"`
	Notes    string `json:"notes"`
}

// FieldErrors maps a form field to its error message.
type FieldErrors map[string]string

// Normalize trims every field and lowercases the email.
func (f *LeadForm) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	f.Phone = strings.TrimSpace(f.Phone)
	f.Interest = strings.TrimSpace(f.Interest)
	f.Notes = strings.TrimSpace(f.Notes)
}

// ValidateLeadForm checks every field and returns one message per invalid field, or
// nil when the form is valid.
func ValidateLeadForm(f LeadForm, interests InterestSet) FieldErrors {
	errs := FieldErrors{}
	if ok, msg := ValidateName(f.Name); !ok {
		errs["name"] = msg
	}
	if ok, msg := ValidateEmail(f.Email); !ok {
		errs["email"] = msg
	}
	if ok, msg := ValidatePhone(f.Phone); !ok {
		errs["phone"] = msg
	}
	if ok, msg := ValidateInterest(f.Interest, interests); !ok {
		errs["interest"] = msg
	}
	if utf8.RuneCountInString(f.Notes) > MaxNotesLength {
		errs["notes"] = "Notes must be at most 2000 characters"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateName checks the display name length.
func ValidateName(name string) (bool, string) {
	n := utf8.RuneCountInString(name)
	if n < MinNameLength {
		return false, "Name must be at least 2 characters"
	}
	if n > MaxNameLength {
		return false, "Name must be at most 200 characters"
	}
	return true, ""
}

// ValidateEmail checks the address shape.
func ValidateEmail(email string) (bool, string) {
	if email == "" || len(email) > MaxEmailLength || !EmailPattern.MatchString(email) {
		return false, "Invalid email address"
	}
	return true, ""
}

// ValidatePhone requires at least ten digits. Spaces, dashes, dots, parentheses and a
// leading plus are allowed as separators.
func ValidatePhone(phone string) (bool, string) {
	if len(phone) > MaxPhoneLength {
		return false, "Phone number is too long"
	}
	for i, r := range phone {
		switch {
		case unicode.IsDigit(r), r == ' ', r == '-', r == '.', r == '(', r == ')':
		case r == '+' && i == 0:
		default:
			return false, "Phone number contains invalid characters"
		}
	}
	if CountDigits(phone) < MinPhoneDigits {
		return false, "Phone number must be at least 10 digits"
	}
	return true, ""
}

// ValidateInterest checks the interest is one the catalog offers.
func ValidateInterest(interest string, interests InterestSet) (bool, string) {
	if interest == "" {
		return false, "Please specify your interest"
	}
	if interests != nil && !interests.HasInterest(interest) {
		return false, "Please choose one of the listed interests"
	}
	return true, ""
}

// CountDigits returns the number of decimal digits in s.
func CountDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
