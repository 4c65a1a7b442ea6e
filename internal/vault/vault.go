// internal/vault/vault.go
//
// Vault client wrapper used to resolve `vault:` configuration references.
//
// Context
// -------
// The Google service-account private key must never live in conf/global.yaml
// or in git history.  Operators may instead write
//
//	sheets:
//	  private_key: "vault:secret/easybac/google#private_key"
//
// and the config loader hands the reference to Resolve before unmarshalling.
// A reference is `vault:<mount>/<path>#<key>` against a KV-v2 engine.
//
// Public workflow
// ---------------
//  1. cli, err := vault.New(zap.S().Debugf)   // only when a ref is present.
//  2. val, err := cli.Resolve(ctx, ref)
//
// Environment expectations
// ------------------------
// • VAULT_ADDR   – scheme and host of the Vault server.
// • VAULT_TOKEN  – token with read access to the referenced secrets.
package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// Prefix marks a configuration value as a Vault reference.
const Prefix = "vault:"

// ErrBadRef is returned for references that do not match
// vault:<mount>/<path>#<key>.
var ErrBadRef = errors.New("vault: malformed reference")

// Client is safe for concurrent use.  Zero value is invalid.
type Client struct {
	api   *vault.Client
	logFn func(string, ...any)
	ttl   time.Duration

	mu    sync.RWMutex
	cache map[string]cached // ref → value + expiry
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a client from the VAULT_* environment.  Resolved values are
// cached for five minutes so a reload does not hammer Vault.
func New(logFn func(string, ...any)) (*Client, error) {
	if logFn == nil {
		logFn = func(string, ...any) {}
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	api, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		api.SetToken(tok)
	}

	return &Client{
		api:   api,
		logFn: logFn,
		ttl:   5 * time.Minute,
		cache: make(map[string]cached),
	}, nil
}

// IsRef reports whether s is a Vault reference.
func IsRef(s string) bool { return strings.HasPrefix(s, Prefix) }

// ParseRef splits vault:<mount>/<path>#<key> into its parts.
func ParseRef(ref string) (mount, path, key string, err error) {
	if !IsRef(ref) {
		return "", "", "", ErrBadRef
	}
	body := strings.TrimPrefix(ref, Prefix)

	loc, key, ok := strings.Cut(body, "#")
	if !ok || key == "" {
		return "", "", "", fmt.Errorf("%w: %q has no #key", ErrBadRef, ref)
	}
	mount, path, ok = strings.Cut(loc, "/")
	if !ok || mount == "" || path == "" {
		return "", "", "", fmt.Errorf("%w: %q needs mount/path", ErrBadRef, ref)
	}
	return mount, path, key, nil
}

// Resolve fetches the string value behind ref.
func (c *Client) Resolve(ctx context.Context, ref string) (string, error) {
	mount, path, key, err := ParseRef(ref)
	if err != nil {
		return "", err
	}

	c.mu.RLock()
	if cv, ok := c.cache[ref]; ok && time.Now().Before(cv.exp) {
		c.mu.RUnlock()
		return cv.val, nil
	}
	c.mu.RUnlock()

	sec, err := c.api.KVv2(mount).Get(ctx, path)
	if err != nil {
		return "", fmt.Errorf("vault get %s/%s: %w", mount, path, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %s/%s", key, mount, path)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s/%s#%s is not a string", mount, path, key)
	}

	c.mu.Lock()
	c.cache[ref] = cached{val: val, exp: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	c.logFn("vault: resolved %s/%s#%s", mount, path, key)
	return val, nil
}
