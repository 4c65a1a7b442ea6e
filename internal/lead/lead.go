// internal/lead/lead.go
//
// Lead domain types: the course catalog, the submission variants, and the
// append-only Row written to the spreadsheet.
//
// Context
// -------
// A submission is exactly one of StudentSubmission, TeacherSubmission, or
// Subscription.  The set is sealed by an unexported method so a switch over
// Submission is exhaustive within this module.  Each variant knows the
// Destination sheet it belongs to and the payload columns it contributes.
//
// NewRow stamps a submission with the server clock.  The timestamp is
// always the first cell, followed by the variant's columns in a fixed order:
//
//	student     timestamp, name, phone, course
//	teacher     timestamp, name, phone, course, experience
//	newsletter  timestamp, email
//
// Rows are never updated or deleted.
package lead

import "time"

// TimestampLayout is the ISO-8601 layout of the first cell of every row.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Destination selects the target sheet for a row.
type Destination int

const (
	Students Destination = iota
	Teachers
	Newsletter
)

func (d Destination) String() string {
	switch d {
	case Students:
		return "students"
	case Teachers:
		return "teachers"
	case Newsletter:
		return "newsletter"
	default:
		return "unknown"
	}
}

// Submission is the sealed union of accepted payloads.
type Submission interface {
	Destination() Destination
	Columns() []any
	sealed()
}

// StudentSubmission is a course registration from a student or parent.
type StudentSubmission struct {
	Name   string
	Phone  string
	Course Course
}

// TeacherSubmission is an application from a teacher.  Experience is
// always present.
type TeacherSubmission struct {
	Name       string
	Phone      string
	Course     Course
	Experience string
}

// Subscription is a newsletter sign-up.
type Subscription struct {
	Email string
}

func (StudentSubmission) Destination() Destination { return Students }
func (TeacherSubmission) Destination() Destination { return Teachers }
func (Subscription) Destination() Destination      { return Newsletter }

func (s StudentSubmission) Columns() []any {
	return []any{s.Name, s.Phone, string(s.Course)}
}

func (s TeacherSubmission) Columns() []any {
	return []any{s.Name, s.Phone, string(s.Course), s.Experience}
}

func (s Subscription) Columns() []any { return []any{s.Email} }

func (StudentSubmission) sealed() {}
func (TeacherSubmission) sealed() {}
func (Subscription) sealed()      {}

// Row is one appended spreadsheet line.
type Row struct {
	Timestamp   time.Time
	Destination Destination
	Values      []any // payload columns, timestamp excluded
}

// NewRow stamps s with now (converted to UTC).
func NewRow(s Submission, now time.Time) Row {
	return Row{
		Timestamp:   now.UTC(),
		Destination: s.Destination(),
		Values:      s.Columns(),
	}
}

// Cells returns the full row in column order, timestamp first.
func (r Row) Cells() []any {
	out := make([]any, 0, len(r.Values)+1)
	out = append(out, r.Timestamp.Format(TimestampLayout))
	return append(out, r.Values...)
}
