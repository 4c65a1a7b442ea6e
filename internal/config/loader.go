// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from four layers (highest
precedence last):

  1. Built-in defaults (sheet ranges, listen address, mirror table).
  2. Optional `<root>/conf/.env` file, read with godotenv.
  3. `<root>/conf/global.yaml`.
  4. Environment variables prefixed `EASYBAC_`, where `__` maps to “.”
     (e.g., `EASYBAC_SHEETS__SPREADSHEET_ID → sheets.spreadsheet_id`).

After merging, every string value starting with `vault:` is replaced by
the secret it points at, the tree is unmarshalled into typed structs,
validated, and enriched with the runtime root path.  With the memory
sheet driver the `sheets.*` references are cleared instead of resolved,
so a dev setup never needs Vault.

Instrumentation
---------------
  • DEBUG spans: root discovery, YAML read, Vault resolution.
  • ERROR spans: YAML parse, env overlay, unmarshal, validation failures.
  • INFO  span:  final “config loaded” with key highlights.
  • Logs use the global sugared logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed.

Notes
-----
  • `RootDir()` climbs the cwd tree until it finds `conf/global.yaml`;
    this lets `go run ./cmd/web` work from any sub-directory.
  • The private key is stored with real newlines even when the source
    used literal `\n` escapes.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/easybac/landing/internal/vault"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "EASYBAC_"

// SecretResolver turns a `vault:` reference into its value.  *vault.Client
// satisfies it.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// Options tweak Load.  The zero value discovers the root and dials Vault
// lazily.
type Options struct {
	Root     string
	Resolver SecretResolver
}

/*──────────────────────────── root discovery ───────────────────────────────*/

// RootDir resolves EASYBAC_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to the executable heuristic for production layout.
func RootDir() string {
	if r := os.Getenv("EASYBAC_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads all layers with default options.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, Options{})
}

// LoadWith is Load with explicit options.  Tests pass a temp root and a fake
// resolver.
func LoadWith(ctx context.Context, opts Options) (*Config, error) {
	root := opts.Root
	if root == "" {
		root = RootDir()
	}
	zap.S().Debugw("config root resolved", "root", root)

	// .env is optional.
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, err
	}

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, EnvPrefix), "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, k, opts.Resolver); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	cfg.Sheets.PrivateKey = strings.ReplaceAll(cfg.Sheets.PrivateKey, `\n`, "\n")

	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"sheets_driver", cfg.Sheets.Driver,
		"mirror", cfg.Mirror.DSN != "",
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

// resolveSecrets swaps every `vault:` string for its secret value.  Vault is
// only dialled when at least one reference remains after the memory driver
// has dropped the sheet credentials.
func resolveSecrets(ctx context.Context, k *koanf.Koanf, r SecretResolver) error {
	memory := k.String("sheets.driver") == DriverMemory

	var refs []string
	for key, val := range k.All() {
		s, ok := val.(string)
		if !ok || !vault.IsRef(s) {
			continue
		}
		if memory && strings.HasPrefix(key, "sheets.") {
			if err := k.Set(key, ""); err != nil {
				return err
			}
			zap.S().Debugw("config secret skipped", "key", key, "driver", DriverMemory)
			continue
		}
		refs = append(refs, key)
	}
	if len(refs) == 0 {
		return nil
	}

	if r == nil {
		cli, err := vault.New(zap.S().Debugf)
		if err != nil {
			return err
		}
		r = cli
	}

	for _, key := range refs {
		val, err := r.Resolve(ctx, k.String(key))
		if err != nil {
			return fmt.Errorf("resolve %s: %w", key, err)
		}
		if err := k.Set(key, val); err != nil {
			return err
		}
		zap.S().Debugw("config secret resolved", "key", key)
	}
	return nil
}
