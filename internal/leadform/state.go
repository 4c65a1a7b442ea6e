package leadform

import (
	"errors"
	"sort"
	"strings"
)

// Status is the lifecycle position of a form.
type Status int

const (
	Idle Status = iota
	Submitting
	Success
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Success:
		return "success"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// Messages shown to the visitor.
const (
	MsgPhone    = "Vă rugăm să introduceți un număr de telefon valid din Moldova"
	MsgEmail    = "Vă rugăm să introduceți o adresă de email validă"
	MsgRequired = "Acest câmp este obligatoriu"
	MsgCourse   = "Vă rugăm să alegeți un curs"
	MsgRetry    = "A apărut o eroare. Vă rugăm să încercați din nou."
)

// ErrInFlight is returned by Submit while a previous Submit is running.
// No request is sent.
var ErrInFlight = errors.New("leadform: submission already in flight")

// ValidationError lists local field failures keyed by JSON field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for n := range e.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return "leadform: invalid " + strings.Join(names, ", ")
}

// IsValidationError reports whether err is a local validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
