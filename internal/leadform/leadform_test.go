package leadform

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// fakePoster records every call.  When block is non-nil each Post waits
// for a value before returning it.
type fakePoster struct {
	mu      sync.Mutex
	calls   []call
	err     error
	block   chan error
	entered chan struct{}
}

type call struct {
	path string
	body any
}

func (p *fakePoster) Post(ctx context.Context, path string, body any) error {
	p.mu.Lock()
	p.calls = append(p.calls, call{path, body})
	p.mu.Unlock()
	if p.block != nil {
		if p.entered != nil {
			p.entered <- struct{}{}
		}
		return <-p.block
	}
	return p.err
}

func (p *fakePoster) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSubmit_InvalidPhoneSendsNothing(t *testing.T) {
	p := &fakePoster{}
	f := NewSubmissionForm(p)
	f.SetName("Ion")
	f.SetPhone("12345")
	f.SetCourse("BAC la Chimie")

	err := f.Submit(context.Background())
	if !IsValidationError(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if p.count() != 0 {
		t.Fatalf("poster called %d times", p.count())
	}
	s := f.Snapshot()
	if s.Status != Idle || s.Errors["phone"] != MsgPhone || s.Message != MsgPhone {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
}

func TestSubmit_SuccessResetsAndCloses(t *testing.T) {
	p := &fakePoster{}
	closed := make(chan struct{}, 1)
	f := NewSubmissionForm(p,
		WithResetAfter(20*time.Millisecond),
		WithOnClose(func() { closed <- struct{}{} }),
	)
	defer f.Close()

	f.SetPreselectedCourse("BAC la Matematică")
	f.SetName("Ion")
	f.SetPhone("+37378123456")

	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if p.count() != 1 {
		t.Fatalf("poster called %d times, want 1", p.count())
	}
	want := call{PathSubmit, submitBody{Name: "Ion", Phone: "+37378123456", Course: "BAC la Matematică"}}
	if diff := cmp.Diff(want, p.calls[0], cmp.AllowUnexported(call{})); diff != "" {
		t.Fatalf("request mismatch (-want +got):\n%s", diff)
	}

	s := f.Snapshot()
	if s.Status != Success {
		t.Fatalf("status = %v, want success", s.Status)
	}
	if diff := cmp.Diff(Fields{Course: "BAC la Matematică"}, s.Fields); diff != "" {
		t.Fatalf("fields not reset (-want +got):\n%s", diff)
	}

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("OnClose not called")
	}
	if got := f.Snapshot().Status; got != Idle {
		t.Fatalf("status after window = %v, want idle", got)
	}
}

func TestSubmit_FailureKeepsFields(t *testing.T) {
	p := &fakePoster{err: &TransportError{StatusCode: 500, Err: errors.New("Failed to submit form")}}
	f := NewSubmissionForm(p)
	f.SetName("Ion")
	f.SetPhone("069123456")
	f.SetCourse("BAC la Chimie")

	err := f.Submit(context.Background())
	if !IsTransport(err) {
		t.Fatalf("want TransportError, got %v", err)
	}
	s := f.Snapshot()
	if s.Status != Failed || s.Message != MsgRetry {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
	if s.Fields.Name != "Ion" || s.Fields.Phone != "069123456" {
		t.Fatalf("fields lost: %+v", s.Fields)
	}
	if !f.SubmitEnabled() {
		t.Fatal("submit disabled after failure")
	}

	p.err = nil
	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if p.count() != 2 {
		t.Fatalf("poster called %d times, want 2", p.count())
	}
	f.Close()
}

func TestSubmit_SecondSubmitWhileInFlight(t *testing.T) {
	p := &fakePoster{block: make(chan error), entered: make(chan struct{})}
	f := NewSubmissionForm(p)
	defer f.Close()
	f.SetName("Ion")
	f.SetPhone("069123456")
	f.SetCourse("BAC la Chimie")

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()
	<-p.entered

	if f.SubmitEnabled() {
		t.Fatal("submit enabled while in flight")
	}
	if err := f.Submit(context.Background()); !errors.Is(err, ErrInFlight) {
		t.Fatalf("second Submit = %v, want ErrInFlight", err)
	}

	p.block <- nil
	if err := <-done; err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if p.count() != 1 {
		t.Fatalf("poster called %d times, want 1", p.count())
	}
}

func TestSubmit_TeacherRequiresExperience(t *testing.T) {
	p := &fakePoster{}
	f := NewSubmissionForm(p, AsTeacher(), WithCatalog(func(c string) bool { return c == "BAC la Chimie" }))
	defer f.Close()
	f.SetName("Ana")
	f.SetPhone("067123456")
	f.SetCourse("BAC la Chimie")

	if err := f.Submit(context.Background()); !IsValidationError(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if p.count() != 0 {
		t.Fatal("request sent without experience")
	}

	f.SetExperience("7 ani")
	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	body := p.calls[0].body.(submitBody)
	if !body.IsTeacherForm || body.Experience != "7 ani" {
		t.Fatalf("teacher body = %+v", body)
	}
}

func TestNewsletter(t *testing.T) {
	p := &fakePoster{}
	f := NewNewsletterForm(p, WithResetAfter(10*time.Millisecond))
	defer f.Close()

	f.SetEmail("bad@")
	if err := f.Submit(context.Background()); !IsValidationError(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if _, _, msg := f.Snapshot(); msg != MsgEmail {
		t.Fatalf("message = %q", msg)
	}
	if p.count() != 0 {
		t.Fatal("request sent for invalid email")
	}

	f.SetEmail("elev@bac.md")
	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	status, email, _ := f.Snapshot()
	if status != Success || email != "" {
		t.Fatalf("after success: %v %q", status, email)
	}
	waitFor(t, func() bool { s, _, _ := f.Snapshot(); return s == Idle })

	p.err = &TransportError{Err: errors.New("dial tcp: refused")}
	f.SetEmail("elev@bac.md")
	if err := f.Submit(context.Background()); !IsTransport(err) {
		t.Fatalf("want TransportError, got %v", err)
	}
	status, email, msg := f.Snapshot()
	if status != Failed || email != "elev@bac.md" || msg != MsgRetry {
		t.Fatalf("after failure: %v %q %q", status, email, msg)
	}
}

func TestHTTPPoster(t *testing.T) {
	bodies := make(chan map[string]any, 2)
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathSubscribe || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %s", r.URL.Path, r.Header.Get("Content-Type"))
		}
		b, _ := io.ReadAll(r.Body)
		var got map[string]any
		_ = json.Unmarshal(b, &got)
		bodies <- got
		w.WriteHeader(int(status.Load()))
		if status.Load() != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":"Failed to subscribe"}`))
		}
	}))
	defer srv.Close()

	p := NewHTTPPoster(srv.URL + "/")
	if err := p.Post(context.Background(), PathSubscribe, map[string]string{"email": "a@b.md"}); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if got := <-bodies; got["email"] != "a@b.md" {
		t.Fatalf("server saw %v", got)
	}

	status.Store(http.StatusInternalServerError)
	err := p.Post(context.Background(), PathSubscribe, map[string]string{"email": "a@b.md"})
	var te *TransportError
	if !errors.As(err, &te) || te.StatusCode != 500 || te.Err.Error() != "Failed to subscribe" {
		t.Fatalf("want 500 TransportError, got %v", err)
	}
}

func TestNewsletter_SecondSubmitWhileLoading(t *testing.T) {
	p := &fakePoster{block: make(chan error), entered: make(chan struct{})}
	f := NewNewsletterForm(p)
	defer f.Close()
	f.SetEmail("elev@bac.md")

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()
	<-p.entered

	if f.SubmitEnabled() {
		t.Fatal("submit enabled while loading")
	}
	if status, _, _ := f.Snapshot(); status != Submitting {
		t.Fatalf("status = %v, want submitting", status)
	}
	if err := f.Submit(context.Background()); !errors.Is(err, ErrInFlight) {
		t.Fatalf("second Submit = %v, want ErrInFlight", err)
	}

	p.block <- nil
	if err := <-done; err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	if p.count() != 1 {
		t.Fatalf("poster called %d times, want 1", p.count())
	}
	if !f.SubmitEnabled() {
		t.Fatal("submit still disabled after the request finished")
	}
}

func TestSubmit_PhoneCheckedAsTyped(t *testing.T) {
	p := &fakePoster{}
	f := NewSubmissionForm(p)
	defer f.Close()
	f.SetName("Ion")
	f.SetPhone(" 069123456 ")
	f.SetCourse("BAC la Chimie")

	if err := f.Submit(context.Background()); !IsValidationError(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if p.count() != 0 {
		t.Fatal("request sent for a padded phone number")
	}
	if got := f.Snapshot().Errors["phone"]; got != MsgPhone {
		t.Fatalf("phone message = %q", got)
	}
}

func TestSubmit_RejectedSubmitKeepsCloseTimer(t *testing.T) {
	p := &fakePoster{}
	closed := make(chan struct{}, 1)
	f := NewSubmissionForm(p,
		WithResetAfter(30*time.Millisecond),
		WithOnClose(func() { closed <- struct{}{} }),
	)
	defer f.Close()
	f.SetName("Ion")
	f.SetPhone("069123456")
	f.SetCourse("BAC la Chimie")

	if err := f.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// fields were reset, so this one fails locally inside the window
	if err := f.Submit(context.Background()); !IsValidationError(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("OnClose not called after a rejected Submit")
	}
	if got := f.Snapshot().Status; got != Idle {
		t.Fatalf("status = %v, want idle", got)
	}
	if p.count() != 1 {
		t.Fatalf("poster called %d times, want 1", p.count())
	}
}
