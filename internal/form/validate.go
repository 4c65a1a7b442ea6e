// internal/form/validate.go
//
// Server-side validation of lead payloads.
//
// Context
//   The browser forms validate before posting, but the endpoint cannot trust
//   them.  This file re-checks every payload against the same rules (phone
//   pattern, email shape, course catalog, teacher experience) and converts
//   an accepted payload into its lead.Submission variant.
//
// Workflow
//   •  Request structs mirror the JSON contract and carry validator tags.
//   •  Values are trimmed before validation so “ Ion ” and “Ion” are equal.
//   •  Tag failures become []ErrorField keyed by JSON field name.
//   •  Callers test failures with IsValidationError and answer 400.
//
// Style
//   Two-space sentence spacing, Oxford comma, concise inline notes.
//
//------------------------------------------------------------------------------

package form

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/easybac/landing/internal/lead"
	"github.com/easybac/landing/internal/validate"
)

// -----------------------------------------------------------------------------
// Request payloads
// -----------------------------------------------------------------------------

// SubmitRequest is the body of POST /api/submit-form.
type SubmitRequest struct {
	Name          string `json:"name"          validate:"required,max=200"`
	Phone         string `json:"phone"         validate:"required,mdphone"`
	Course        string `json:"course"        validate:"required,course"`
	IsTeacherForm bool   `json:"isTeacherForm"`
	Experience    string `json:"experience"    validate:"required_if=IsTeacherForm true,max=2000"`
}

// SubscribeRequest is the body of POST /api/subscribe.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required,max=254,basicemail"`
}

// -----------------------------------------------------------------------------
// Error types
// -----------------------------------------------------------------------------

// ErrorField describes a single validation failure.
type ErrorField struct {
	Name    string `json:"name"`    // JSON field name, empty for body-level errors
	Message string `json:"message"` // user-facing message
}

// ValidationError wraps []ErrorField and satisfies the error interface.
type ValidationError struct{ Fields []ErrorField }

func (ve *ValidationError) Error() string { return "form validation failed" }

// IsValidationError reports whether err came from payload validation.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// -----------------------------------------------------------------------------
// Validator
// -----------------------------------------------------------------------------

// Validator checks payloads against the course catalog.  Safe for
// concurrent use.
type Validator struct {
	v       *validator.Validate
	catalog lead.Catalog
}

// NewValidator builds a Validator for catalog.
func NewValidator(catalog lead.Catalog) (*Validator, error) {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.Register(v, catalog.Contains); err != nil {
		return nil, err
	}
	return &Validator{v: v, catalog: catalog}, nil
}

// Catalog returns the courses this validator accepts.
func (val *Validator) Catalog() lead.Catalog { return val.catalog }

// Submission validates req and returns the student or teacher variant.
// The phone is checked exactly as received.
func (val *Validator) Submission(req SubmitRequest) (lead.Submission, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Course = strings.TrimSpace(req.Course)
	req.Experience = strings.TrimSpace(req.Experience)

	if err := val.check(req); err != nil {
		return nil, err
	}

	if req.IsTeacherForm {
		return lead.TeacherSubmission{
			Name:       req.Name,
			Phone:      req.Phone,
			Course:     lead.Course(req.Course),
			Experience: req.Experience,
		}, nil
	}
	return lead.StudentSubmission{
		Name:   req.Name,
		Phone:  req.Phone,
		Course: lead.Course(req.Course),
	}, nil
}

// Subscription validates req and returns the newsletter variant.
func (val *Validator) Subscription(req SubscribeRequest) (lead.Subscription, error) {
	if err := val.check(req); err != nil {
		return lead.Subscription{}, err
	}
	return lead.Subscription{Email: req.Email}, nil
}

func (val *Validator) check(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, ErrorField{Name: fe.Field(), Message: message(fe)})
	}
	return out
}

// message maps a failed tag to a user-friendly default.
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "This field is required."
	case "max":
		return "Value is too long."
	case validate.TagPhone:
		return "Enter a valid Moldovan mobile number."
	case validate.TagEmail:
		return "Enter a valid email address."
	case validate.TagCourse:
		return "Unknown course."
	default:
		return "Invalid input."
	}
}
