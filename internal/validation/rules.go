// Package validation holds the jellydator/validation rules shared by DTOs and use cases.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/warden/internal/errors"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// WrapValidationError turns a rule failure into ErrInvalidInput so the HTTP layer answers 422.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// Email accepts addresses of the form local@domain.tld.
var Email = validation.NewStringRuleWithError(
	emailPattern.MatchString,
	validation.NewError("validation_email_format", "must be a valid email address"),
)

// NotBlank rejects strings made only of whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool { return strings.TrimSpace(s) != "" },
	validation.NewError("validation_not_blank", "must not be blank"),
)

type charClass struct {
	code    string
	message string
	match   func(rune) bool
}

var (
	upperClass   = charClass{"validation_password_uppercase", "an uppercase letter", unicode.IsUpper}
	lowerClass   = charClass{"validation_password_lowercase", "a lowercase letter", unicode.IsLower}
	numberClass  = charClass{"validation_password_number", "a number", unicode.IsNumber}
	specialClass = charClass{
		"validation_password_special",
		"a special character",
		func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) },
	}
)

// PasswordStrength is the password policy for accounts. MinLength counts characters, not bytes.
type PasswordStrength struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumber  bool
	RequireSpecial bool
}

// DefaultPasswordStrength is applied on registration, profile updates and create-user.
var DefaultPasswordStrength = PasswordStrength{
	MinLength:     8,
	RequireUpper:  true,
	RequireLower:  true,
	RequireNumber: true,
}

// Validate implements validation.Rule. It reports the first unmet requirement.
func (p PasswordStrength) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_password_type", "password must be a string")
	}

	if utf8.RuneCountInString(s) < p.MinLength {
		return validation.NewError(
			"validation_password_min_length",
			fmt.Sprintf("password must be at least %d characters", p.MinLength),
		)
	}

	for _, class := range p.required() {
		if !strings.ContainsFunc(s, class.match) {
			return validation.NewError(class.code, "password must contain at least "+class.message)
		}
	}
	return nil
}

func (p PasswordStrength) required() []charClass {
	var classes []charClass
	if p.RequireUpper {
		classes = append(classes, upperClass)
	}
	if p.RequireLower {
		classes = append(classes, lowerClass)
	}
	if p.RequireNumber {
		classes = append(classes, numberClass)
	}
	if p.RequireSpecial {
		classes = append(classes, specialClass)
	}
	return classes
}
