// internal/leadform/poster.go
//
// Transport for the lead forms.
//
// Context
//   A form issues exactly one POST per accepted Submit.  Poster abstracts
//   that call so tests can count requests and hold them open.  HTTPPoster is
//   the production implementation: JSON body, any 2xx is success, anything
//   else (including a network error) is a *TransportError.  It never
//   retries; the visitor decides whether to submit again.
//
//------------------------------------------------------------------------------

package leadform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Endpoint paths.
const (
	PathSubmit    = "/api/submit-form"
	PathSubscribe = "/api/subscribe"
)

// Poster sends one JSON request.
type Poster interface {
	Post(ctx context.Context, path string, body any) error
}

// TransportError reports a failed POST.  StatusCode is zero when no
// response arrived.
type TransportError struct {
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("leadform: server answered %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("leadform: request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPPoster posts JSON to BaseURL + path.
type HTTPPoster struct {
	BaseURL string
	Client  *http.Client // nil means a client with a 30 s timeout
}

// NewHTTPPoster returns a poster for the site at baseURL.
func NewHTTPPoster(baseURL string) *HTTPPoster {
	return &HTTPPoster{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Post implements Poster.
func (p *HTTPPoster) Post(ctx context.Context, path string, body any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+path, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	cli := p.Client
	if cli == nil {
		cli = &http.Client{Timeout: 30 * time.Second}
	}
	res, err := cli.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	var eb struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(res.Body, 4<<10)).Decode(&eb)
	if eb.Error == "" {
		eb.Error = http.StatusText(res.StatusCode)
	}
	return &TransportError{StatusCode: res.StatusCode, Err: errors.New(eb.Error)}
}
