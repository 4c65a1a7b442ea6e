package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type fakeResolver map[string]string

func (f fakeResolver) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := f[ref]
	if !ok {
		return "", errors.New("unknown ref " + ref)
	}
	return v, nil
}

func writeConf(t *testing.T, yaml string) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "conf"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "conf", "global.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return root
}

const baseYAML = `
http:
  listen_addr: "127.0.0.1:9090"
sheets:
  client_email: "leads@easybac.iam.gserviceaccount.com"
  private_key: "vault:secret/easybac/google#private_key"
  spreadsheet_id: "sheet-123"
courses:
  - "BAC la Chimie"
  - "BAC la Biologie"
`

func TestLoad_LayersAndSecrets(t *testing.T) {
	root := writeConf(t, baseYAML)
	t.Setenv("EASYBAC_SHEETS__NEWSLETTER_RANGE", "Abonati!A:B")

	res := fakeResolver{"vault:secret/easybac/google#private_key": `-----BEGIN-----\nabc\n-----END-----`}
	cfg, err := LoadWith(context.Background(), Options{Root: root, Resolver: res})
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}

	if cfg.HTTP.ListenAddr != "127.0.0.1:9090" {
		t.Errorf("listen_addr = %q", cfg.HTTP.ListenAddr)
	}
	if cfg.Sheets.PrivateKey != "-----BEGIN-----\nabc\n-----END-----" {
		t.Errorf("private key not resolved and unescaped: %q", cfg.Sheets.PrivateKey)
	}
	if cfg.Sheets.StudentRange != "Sheet1!A:D" || cfg.Sheets.TeacherRange != "Teachers!A:E" {
		t.Errorf("defaults not applied: %+v", cfg.Sheets)
	}
	if cfg.Sheets.NewsletterRange != "Abonati!A:B" {
		t.Errorf("env override ignored: %q", cfg.Sheets.NewsletterRange)
	}
	if cfg.Sheets.ValueInputOption != "USER_ENTERED" || cfg.Sheets.Driver != DriverGoogle {
		t.Errorf("defaults not applied: %+v", cfg.Sheets)
	}
	if len(cfg.Courses) != 2 {
		t.Errorf("courses = %v", cfg.Courses)
	}
	if cfg.Paths.Root != root {
		t.Errorf("root = %q", cfg.Paths.Root)
	}
}

func TestLoad_UnresolvableSecret(t *testing.T) {
	root := writeConf(t, baseYAML)
	if _, err := LoadWith(context.Background(), Options{Root: root, Resolver: fakeResolver{}}); err == nil {
		t.Fatal("expected error for unresolvable vault reference")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	root := writeConf(t, `
sheets:
  driver: google
  student_range: "not a range"
`)
	if _, err := LoadWith(context.Background(), Options{Root: root}); err == nil {
		t.Fatal("expected validation error for missing credentials and bad range")
	}
}

func TestLoad_MemoryDriverNeedsNoCredentials(t *testing.T) {
	root := writeConf(t, `
sheets:
  driver: memory
`)
	cfg, err := LoadWith(context.Background(), Options{Root: root})
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if cfg.Sheets.Driver != DriverMemory {
		t.Fatalf("driver = %q", cfg.Sheets.Driver)
	}
}

func TestLoad_MemoryDriverSkipsShippedSecrets(t *testing.T) {
	shipped, err := os.ReadFile(filepath.Join("..", "..", "conf", "global.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	root := writeConf(t, string(shipped))
	t.Setenv("EASYBAC_SHEETS__DRIVER", DriverMemory)
	t.Setenv("VAULT_ADDR", "http://127.0.0.1:1")
	t.Setenv("VAULT_TOKEN", "")

	cfg, err := LoadWith(context.Background(), Options{Root: root})
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if cfg.Sheets.Driver != DriverMemory {
		t.Fatalf("driver = %q", cfg.Sheets.Driver)
	}
	if cfg.Sheets.ClientEmail != "" || cfg.Sheets.PrivateKey != "" || cfg.Sheets.SpreadsheetID != "" {
		t.Fatalf("sheet credentials not cleared: %+v", cfg.Sheets)
	}
}
