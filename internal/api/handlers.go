// internal/api/handlers.go
//
// Lead endpoints.
//
// Context
//   Each POST handler does the same three things: decode and validate the
//   body (400 on failure), record the accepted lead (500 on failure), and
//   answer {"success":true}.  The 500 body is a fixed generic string.  The
//   underlying error, including any Google API detail, goes only to the log.
//
// Notes
//   •  One request appends at most one row.
//   •  The append runs under the request context plus AppendTimeout, so a
//      client that disconnects abandons its own append and nothing else.
//
//------------------------------------------------------------------------------

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/easybac/landing/internal/form"
	"github.com/easybac/landing/internal/lead"
	"github.com/easybac/landing/internal/logger"
	"github.com/easybac/landing/internal/metrics"
	"github.com/easybac/landing/internal/requestinfo"
)

// AppendTimeout bounds one spreadsheet append.  It stays below the server
// WriteTimeout so the handler can still answer 500.
const AppendTimeout = 20 * time.Second

// Client-facing error strings.
const (
	msgSubmitFailed    = "Failed to submit form"
	msgSubscribeFailed = "Failed to subscribe"
	msgInvalid         = "Invalid submission"
)

// Form label values for metrics.
const (
	formStudent    = "student"
	formTeacher    = "teacher"
	formNewsletter = "newsletter"
)

// Recorder persists an accepted lead.  *form.Recorder satisfies it.
type Recorder interface {
	Record(ctx context.Context, s lead.Submission) (lead.Row, error)
}

// Handlers bundles the dependencies shared by every endpoint.
type Handlers struct {
	Validator *form.Validator
	Recorder  Recorder
}

// SubmitForm handles POST /api/submit-form.
func (h *Handlers) SubmitForm(w http.ResponseWriter, r *http.Request) {
	l := logger.FromContext(r.Context())

	req, err := form.DecodeSubmit(w, r)
	label := formStudent
	if req.IsTeacherForm {
		label = formTeacher
	}
	if err != nil {
		h.rejected(w, r, label, err, msgSubmitFailed)
		return
	}
	sub, err := h.Validator.Submission(req)
	if err != nil {
		h.rejected(w, r, label, err, msgSubmitFailed)
		return
	}

	if err := h.record(r, sub); err != nil {
		metrics.SubmissionsTotal.WithLabelValues(label, metrics.OutcomeUpstream).Inc()
		l.Errorw("submit-form append failed", "form", label, "error", err.Error())
		writeError(w, http.StatusInternalServerError, msgSubmitFailed)
		return
	}

	metrics.SubmissionsTotal.WithLabelValues(label, metrics.OutcomeOK).Inc()
	l.Infow("lead recorded", append([]any{"form", label}, visitorFields(r)...)...)
	writeJSON(w, http.StatusOK, successBody)
}

// Subscribe handles POST /api/subscribe.
func (h *Handlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	l := logger.FromContext(r.Context())

	sub, err := form.HandleSubscribe(h.Validator, w, r)
	if err != nil {
		h.rejected(w, r, formNewsletter, err, msgSubscribeFailed)
		return
	}

	if err := h.record(r, sub); err != nil {
		metrics.SubmissionsTotal.WithLabelValues(formNewsletter, metrics.OutcomeUpstream).Inc()
		l.Errorw("subscribe append failed", "error", err.Error())
		writeError(w, http.StatusInternalServerError, msgSubscribeFailed)
		return
	}

	metrics.SubmissionsTotal.WithLabelValues(formNewsletter, metrics.OutcomeOK).Inc()
	l.Infow("subscriber recorded", visitorFields(r)...)
	writeJSON(w, http.StatusOK, successBody)
}

// Courses handles GET /api/courses.
func (h *Handlers) Courses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, coursesBody{Courses: h.Validator.Catalog().Labels()})
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) record(r *http.Request, s lead.Submission) error {
	ctx, cancel := context.WithTimeout(r.Context(), AppendTimeout)
	defer cancel()
	_, err := h.Recorder.Record(ctx, s)
	return err
}

// rejected answers a decode or validation failure.  Anything that is not a
// ValidationError is unexpected and answered like an upstream failure.
func (h *Handlers) rejected(w http.ResponseWriter, r *http.Request, label string, err error, generic string) {
	l := logger.FromContext(r.Context())
	if ve, ok := asValidation(err); ok {
		metrics.SubmissionsTotal.WithLabelValues(label, metrics.OutcomeInvalid).Inc()
		l.Infow("lead rejected", "form", label, "fields", len(ve.Fields))
		writeJSON(w, http.StatusBadRequest, invalidBody{Error: msgInvalid, Fields: ve.Fields})
		return
	}
	l.Errorw("decode failed", "form", label, "error", err.Error())
	writeError(w, http.StatusInternalServerError, generic)
}

// visitorFields returns log key/value pairs from requestinfo, if present.
func visitorFields(r *http.Request) []any {
	info := requestinfo.FromContext(r.Context())
	if info == nil {
		return nil
	}
	return []any{
		"device", info.UA.Device,
		"browser", info.UA.Browser,
		"bot", info.UA.IsBot,
		"country", info.Geo.CountryISO,
		"lang", info.UA.PrimaryLang,
	}
}
