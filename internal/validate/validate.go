package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"soundwars/internal/apperr"

	"github.com/microcosm-cc/bluemonday"
)

const maxTextLen = 1000

var (
	emailRe    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	txRefRe    = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	upperRe    = regexp.MustCompile(`[A-Z]`)
	lowerRe    = regexp.MustCompile(`[a-z]`)
	digitRe    = regexp.MustCompile(`[0-9]`)
	specialRe  = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)

	stripPolicy = bluemonday.StrictPolicy()
)

// Sanitize strips all markup, trims and caps free text at 1000 characters.
func Sanitize(s string) string {
	cleaned := stripPolicy.Sanitize(s)
	if utf8.RuneCountInString(cleaned) > maxTextLen {
		cleaned = string([]rune(cleaned)[:maxTextLen])
	}
	return strings.TrimSpace(cleaned)
}

func Email(email string) error {
	if !emailRe.MatchString(email) {
		return apperr.Validation("invalid email format")
	}
	return nil
}

func Password(pw string) error {
	switch {
	case pw == "":
		return apperr.Validation("password is required")
	case len(pw) < 8:
		return apperr.Validation("password must be at least 8 characters")
	case !upperRe.MatchString(pw):
		return apperr.Validation("password must contain an uppercase letter")
	case !lowerRe.MatchString(pw):
		return apperr.Validation("password must contain a lowercase letter")
	case !digitRe.MatchString(pw):
		return apperr.Validation("password must contain a number")
	case !specialRe.MatchString(pw):
		return apperr.Validation("password must contain a special character")
	}
	return nil
}

func Username(name string) error {
	switch {
	case name == "":
		return apperr.Validation("username is required")
	case len(name) < 3:
		return apperr.Validation("username must be at least 3 characters")
	case len(name) > 30:
		return apperr.Validation("username must be at most 30 characters")
	case !usernameRe.MatchString(name):
		return apperr.Validation("username can only contain letters, numbers, and underscores")
	}
	return nil
}

// TxRef checks a client-generated payment reference.
func TxRef(ref string) error {
	if len(ref) < 10 || len(ref) > 100 || !txRefRe.MatchString(ref) {
		return apperr.Validation("invalid transaction reference")
	}
	return nil
}
