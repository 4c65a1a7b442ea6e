// internal/sheets/sheets.go
//
// Spreadsheet append client.
//
// Context
// -------
// Google Sheets is the system of record for every lead.  The service never
// reads a sheet back; it only appends rows with
// spreadsheets.values.append, so there is no read-modify-write to guard.
//
// Open builds one authenticated client per process from the service-account
// email and private key (JWT flow, scope spreadsheets).  The token source is
// shared and refreshed by oauth2, and each Append runs under the caller's
// context so a slow or failed call only affects that request.
//
// Every failure coming out of the Google stack is wrapped in *UpstreamError.
// Callers log it and answer the client with a generic message.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Scope grants read/write access to spreadsheets.
const Scope = gsheets.SpreadsheetsScope

// Appender writes one row to an A1 range.  Implementations must be safe for
// concurrent use.
type Appender interface {
	Append(ctx context.Context, rng string, cells []any) error
}

// Credentials identify the service account and target document.
type Credentials struct {
	ClientEmail   string
	PrivateKey    string
	SpreadsheetID string
}

// UpstreamError reports an authentication or append failure.
type UpstreamError struct {
	Op    string // "auth" or "append"
	Range string
	Err   error
}

func (e *UpstreamError) Error() string {
	if e.Range == "" {
		return fmt.Sprintf("sheets %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("sheets %s %s: %v", e.Op, e.Range, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsUpstream reports whether err came from the spreadsheet service.
func IsUpstream(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}

// Client appends rows to one spreadsheet.
type Client struct {
	svc              *gsheets.Service
	spreadsheetID    string
	valueInputOption string
}

// Option customises Open.
type Option func(*openConfig)

type openConfig struct {
	valueInputOption string
	clientOpts       []option.ClientOption
}

// WithValueInputOption sets USER_ENTERED (default) or RAW.
func WithValueInputOption(v string) Option {
	return func(c *openConfig) { c.valueInputOption = v }
}

// WithClientOptions passes raw Google API options, e.g. option.WithEndpoint
// in tests.  When present they replace the JWT HTTP client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(c *openConfig) { c.clientOpts = append(c.clientOpts, opts...) }
}

// Open authenticates with the service account and returns a ready Client.
func Open(ctx context.Context, cred Credentials, opts ...Option) (*Client, error) {
	if cred.SpreadsheetID == "" {
		return nil, &UpstreamError{Op: "auth", Err: errors.New("spreadsheet id is empty")}
	}

	oc := openConfig{valueInputOption: "USER_ENTERED"}
	for _, o := range opts {
		o(&oc)
	}

	clientOpts := oc.clientOpts
	if len(clientOpts) == 0 {
		hc, err := jwtClient(ctx, cred)
		if err != nil {
			return nil, &UpstreamError{Op: "auth", Err: err}
		}
		clientOpts = []option.ClientOption{option.WithHTTPClient(hc)}
	}

	svc, err := gsheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, &UpstreamError{Op: "auth", Err: err}
	}

	return &Client{
		svc:              svc,
		spreadsheetID:    cred.SpreadsheetID,
		valueInputOption: oc.valueInputOption,
	}, nil
}

// jwtClient builds an HTTP client that signs requests as the service account.
func jwtClient(ctx context.Context, cred Credentials) (*http.Client, error) {
	if cred.ClientEmail == "" || cred.PrivateKey == "" {
		return nil, errors.New("service account email and private key are required")
	}
	cfg := &jwt.Config{
		Email:      cred.ClientEmail,
		PrivateKey: []byte(cred.PrivateKey),
		Scopes:     []string{Scope},
		TokenURL:   google.JWTTokenURL,
	}
	return cfg.Client(ctx), nil
}

// Append adds cells as one new row after the last row of rng.
func (c *Client) Append(ctx context.Context, rng string, cells []any) error {
	vr := &gsheets.ValueRange{Values: [][]any{cells}}

	_, err := c.svc.Spreadsheets.Values.
		Append(c.spreadsheetID, rng, vr).
		ValueInputOption(c.valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return &UpstreamError{Op: "append", Range: rng, Err: err}
	}
	return nil
}

// Close releases the client.  It is currently a no-op.
func (c *Client) Close() error { return nil }
