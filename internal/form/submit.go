// internal/form/submit.go
//
// Consolidated decode + validate helpers.
//
// Context
//   The submit handler decodes first and validates separately, because it
//   labels even rejected requests by form variant.  HandleSubscribe does both in one
//   call.
//
//------------------------------------------------------------------------------

package form

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/easybac/landing/internal/lead"
)

// MaxBodyBytes caps request bodies.  A lead payload is a few hundred bytes.
const MaxBodyBytes = 16 << 10

// DecodeSubmit reads a SubmitRequest from r without validating it.
func DecodeSubmit(w http.ResponseWriter, r *http.Request) (SubmitRequest, error) {
	var req SubmitRequest
	err := decodeJSON(w, r, &req)
	return req, err
}

// HandleSubscribe decodes a SubscribeRequest from r and validates it.
func HandleSubscribe(val *Validator, w http.ResponseWriter, r *http.Request) (lead.Subscription, error) {
	var req SubscribeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return lead.Subscription{}, err
	}
	return val.Subscription(req)
}

// decodeJSON reads one JSON object from the body.  Syntax errors, an empty
// body, and oversize bodies are reported as ValidationError so the caller
// answers 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	err := json.NewDecoder(body).Decode(dst)
	if err == nil {
		return nil
	}

	var (
		syntax  *json.SyntaxError
		typeErr *json.UnmarshalTypeError
		tooBig  *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return bodyError("Request body is empty.")
	case errors.As(err, &syntax), errors.Is(err, io.ErrUnexpectedEOF):
		return bodyError("Malformed JSON body.")
	case errors.As(err, &typeErr):
		return &ValidationError{Fields: []ErrorField{{Name: typeErr.Field, Message: "Wrong value type."}}}
	case errors.As(err, &tooBig):
		return bodyError("Request body is too large.")
	default:
		return err
	}
}

func bodyError(msg string) error {
	return &ValidationError{Fields: []ErrorField{{Message: msg}}}
}
