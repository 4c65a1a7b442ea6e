package leadform

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/easybac/landing/internal/validate"
)

// NewsletterForm is the single-field subscription box.  It follows the same
// lifecycle as SubmissionForm: Idle, Submitting (shown as "loading"),
// Success, and Failed.
type NewsletterForm struct {
	poster Poster
	opts   options
	flight *semaphore.Weighted

	mu      sync.Mutex
	status  Status
	email   string
	message string
	reset   resetTimer
}

// NewNewsletterForm returns an Idle form.  Only WithResetAfter and
// WithOnClose apply.
func NewNewsletterForm(p Poster, opts ...Option) *NewsletterForm {
	return &NewsletterForm{poster: p, opts: buildOptions(opts), flight: semaphore.NewWeighted(1)}
}

// SetEmail updates the field.
func (f *NewsletterForm) SetEmail(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = v
}

// SubmitEnabled is false while loading.
func (f *NewsletterForm) SubmitEnabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status != Submitting
}

// Snapshot returns the status, the email field, and the message.
func (f *NewsletterForm) Snapshot() (Status, string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status, f.email, f.message
}

// Submit validates and posts the email.
func (f *NewsletterForm) Submit(ctx context.Context) error {
	if !f.flight.TryAcquire(1) {
		return ErrInFlight
	}
	defer f.flight.Release(1)

	f.mu.Lock()
	email := f.email
	if !validate.Email(email) {
		f.message = MsgEmail
		f.mu.Unlock()
		return &ValidationError{Fields: map[string]string{"email": MsgEmail}}
	}
	f.reset.cancel()
	f.status = Submitting
	f.message = ""
	f.mu.Unlock()

	err := f.poster.Post(ctx, PathSubscribe, struct {
		Email string `json:"email"`
	}{email})

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.status = Failed
		f.message = MsgRetry
		return err
	}
	f.status = Success
	f.email = ""
	f.reset.schedule(f.opts.resetAfter, &f.mu, func() {
		if f.status == Success {
			f.status = Idle
		}
	}, f.opts.onClose)
	return nil
}

// Close stops a pending reset timer.
func (f *NewsletterForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset.cancel()
}
