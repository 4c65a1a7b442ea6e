// internal/leadform/submission.go
//
// Course registration / teacher application form.
//
// Context
//   SubmissionForm is the headless model behind the registration modal.  It
//   owns the field values, the lifecycle status, and the message shown to
//   the visitor.  The UI (or leadctl) calls the setters as the visitor types
//   and Submit when the button is pressed.
//
// Workflow
//   •  Submit validates locally.  A bad phone (or a missing required field)
//      leaves the form Idle with a field message and sends nothing.
//   •  Otherwise the form goes Submitting and posts exactly once.
//   •  2xx: Success, fields reset (keeping the preselected course), and
//      after ResetAfter the form returns to Idle and OnClose fires.
//   •  Failure: Failed with MsgRetry, fields kept for a manual retry.
//
// Notes
//   •  The in-flight guard is a weighted semaphore of size one.  A Submit
//      that cannot acquire it returns ErrInFlight without side effects.
//   •  A reset timer from an earlier success is cancelled only by a newer
//      Submit that actually posts.  A rejected Submit during the success
//      window leaves it running, so OnClose still fires.
//   •  Phone is validated exactly as typed.  Surrounding spaces fail the
//      pattern, as they do in the browser.
//
//------------------------------------------------------------------------------

package leadform

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/easybac/landing/internal/validate"
)

// DefaultResetAfter is how long Success is shown before returning to Idle.
const DefaultResetAfter = 3 * time.Second

// Fields are the editable values of a SubmissionForm.
type Fields struct {
	Name       string
	Phone      string
	Course     string
	Experience string
}

// Snapshot is a consistent copy of a form's state.
type Snapshot struct {
	Status  Status
	Fields  Fields
	Errors  map[string]string // field name → message
	Message string            // form-level message, empty when none
}

// Option configures a form.
type Option func(*options)

type options struct {
	teacher    bool
	resetAfter time.Duration
	onClose    func()
	known      func(string) bool
}

// AsTeacher turns the form into the teacher application variant.
func AsTeacher() Option { return func(o *options) { o.teacher = true } }

// WithResetAfter overrides DefaultResetAfter.
func WithResetAfter(d time.Duration) Option { return func(o *options) { o.resetAfter = d } }

// WithOnClose registers a callback fired when the success window ends.
func WithOnClose(fn func()) Option { return func(o *options) { o.onClose = fn } }

// WithCatalog makes Submit reject courses for which known is false.
func WithCatalog(known func(string) bool) Option { return func(o *options) { o.known = known } }

func buildOptions(opts []Option) options {
	o := options{resetAfter: DefaultResetAfter}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// submitBody is the JSON contract of POST /api/submit-form.
type submitBody struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Course        string `json:"course"`
	IsTeacherForm bool   `json:"isTeacherForm,omitempty"`
	Experience    string `json:"experience,omitempty"`
}

// SubmissionForm is safe for concurrent use.
type SubmissionForm struct {
	poster Poster
	opts   options
	flight *semaphore.Weighted

	mu          sync.Mutex
	status      Status
	fields      Fields
	preselected string
	errs        map[string]string
	message     string
	reset       resetTimer
}

// NewSubmissionForm returns an Idle form posting through p.
func NewSubmissionForm(p Poster, opts ...Option) *SubmissionForm {
	return &SubmissionForm{
		poster: p,
		opts:   buildOptions(opts),
		flight: semaphore.NewWeighted(1),
	}
}

// SetPreselectedCourse records the course chosen on a pricing card and
// copies it into the course field.
func (f *SubmissionForm) SetPreselectedCourse(c string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preselected = c
	f.fields.Course = c
}

func (f *SubmissionForm) SetName(v string)       { f.set(func(x *Fields) { x.Name = v }) }
func (f *SubmissionForm) SetPhone(v string)      { f.set(func(x *Fields) { x.Phone = v }) }
func (f *SubmissionForm) SetCourse(v string)     { f.set(func(x *Fields) { x.Course = v }) }
func (f *SubmissionForm) SetExperience(v string) { f.set(func(x *Fields) { x.Experience = v }) }

func (f *SubmissionForm) set(fn func(*Fields)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(&f.fields)
}

// SubmitEnabled is false while a submission is in flight.
func (f *SubmissionForm) SubmitEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status != Submitting
}

// Snapshot returns a copy of the current state.
func (f *SubmissionForm) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := Snapshot{Status: f.status, Fields: f.fields, Message: f.message}
	if len(f.errs) > 0 {
		s.Errors = make(map[string]string, len(f.errs))
		for k, v := range f.errs {
			s.Errors[k] = v
		}
	}
	return s
}

// Submit validates and posts the form.  It returns ErrInFlight, a
// *ValidationError, the Poster's error, or nil on success.
func (f *SubmissionForm) Submit(ctx context.Context) error {
	if !f.flight.TryAcquire(1) {
		return ErrInFlight
	}
	defer f.flight.Release(1)

	f.mu.Lock()
	body := submitBody{
		Name:   strings.TrimSpace(f.fields.Name),
		Phone:  f.fields.Phone,
		Course: strings.TrimSpace(f.fields.Course),
	}
	if f.opts.teacher {
		body.IsTeacherForm = true
		body.Experience = strings.TrimSpace(f.fields.Experience)
	}
	if errs := f.check(body); len(errs) > 0 {
		f.status = Idle
		f.errs = errs
		f.message = firstMessage(errs)
		f.mu.Unlock()
		return &ValidationError{Fields: errs}
	}
	f.reset.cancel()
	f.status = Submitting
	f.errs = nil
	f.message = ""
	f.mu.Unlock()

	err := f.poster.Post(ctx, PathSubmit, body)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.status = Failed
		f.message = MsgRetry
		return err
	}
	f.status = Success
	f.fields = Fields{Course: f.preselected}
	f.reset.schedule(f.opts.resetAfter, &f.mu, f.expireLocked, f.opts.onClose)
	return nil
}

// check applies the same rules as the server.  Phone is checked first so
// its message wins when several fields fail.
func (f *SubmissionForm) check(b submitBody) map[string]string {
	errs := map[string]string{}
	if !validate.Phone(b.Phone) {
		errs["phone"] = MsgPhone
	}
	if b.Name == "" {
		errs["name"] = MsgRequired
	}
	switch {
	case b.Course == "":
		errs["course"] = MsgCourse
	case f.opts.known != nil && !f.opts.known(b.Course):
		errs["course"] = MsgCourse
	}
	if f.opts.teacher && b.Experience == "" {
		errs["experience"] = MsgRequired
	}
	return errs
}

func firstMessage(errs map[string]string) string {
	for _, k := range []string{"phone", "name", "course", "experience", "email"} {
		if m, ok := errs[k]; ok {
			return m
		}
	}
	return ""
}

// expireLocked ends the success window.  A rejected Submit may already
// have moved the form back to Idle.
func (f *SubmissionForm) expireLocked() {
	if f.status == Success {
		f.status = Idle
	}
}

// Close stops a pending reset timer.
func (f *SubmissionForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset.cancel()
}

// IsTransport reports whether err came from the Poster rather than local
// validation or the in-flight guard.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
