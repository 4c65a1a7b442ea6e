// internal/validate/validate.go
//
// Contact-field predicates shared by the HTTP endpoints and the client
// form state machines.
//
// Context
// -------
// The landing page accepts Moldovan mobile numbers only: an international
// +373 prefix or a national leading zero, one of the operator prefixes
// 67, 68, 69, 78, or 79, then six digits.  Email syntax is checked
// permissively: one “@”, no whitespace, and a dot somewhere in the domain.
//
// Register exposes the same predicates as go-playground/validator tags so
// request structs can say `validate:"required,mdphone"` instead of
// repeating the patterns.
//
// Notes
// -----
//   - Both predicates are total.  They never panic and never touch the
//     network.
//   - Oxford commas, two spaces after periods.
package validate

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var (
	phoneRE = regexp.MustCompile(`^(?:\+373|0)(?:6[789]|7[89])\d{6}$`)
	emailRE = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Validator tag names installed by Register.
const (
	TagPhone  = "mdphone"
	TagEmail  = "basicemail"
	TagCourse = "course"
)

// Phone reports whether s is a valid Moldovan mobile number.
func Phone(s string) bool { return phoneRE.MatchString(s) }

// Email reports whether s has the shape local@domain.tld.
func Email(s string) bool { return emailRE.MatchString(s) }

// Register installs the mdphone, basicemail, and course tags on v.  The
// course tag accepts any value for which known returns true.
func Register(v *validator.Validate, known func(string) bool) error {
	if err := v.RegisterValidation(TagPhone, func(fl validator.FieldLevel) bool {
		return Phone(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation(TagEmail, func(fl validator.FieldLevel) bool {
		return Email(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation(TagCourse, func(fl validator.FieldLevel) bool {
		return known != nil && known(fl.Field().String())
	})
}
