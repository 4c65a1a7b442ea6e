// internal/config/model.go
//
// Typed configuration model for the lead service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `conf/.env`                      – dotenv values,
//   • `conf/global.yaml`                        – primary static file,
//   • `EASYBAC_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with `vault:` is resolved through the
// Vault client *before* unmarshalling, so the model never stores Vault
// URIs, only plain strings.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

// Sheet drivers.
const (
	DriverGoogle = "google"
	DriverMemory = "memory"
)

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

// Sheets describes the spreadsheet that receives every lead.
//
// ClientEmail and PrivateKey are the service-account credentials.  The key
// is usually a `vault:` reference.  Literal `\n` sequences (common when the
// PEM is pasted into a single-line env var) are expanded by Load.
type Sheets struct {
	Driver           string `koanf:"driver"             validate:"oneof=google memory"`
	ClientEmail      string `koanf:"client_email"       validate:"required_if=Driver google"`
	PrivateKey       string `koanf:"private_key"        validate:"required_if=Driver google"`
	SpreadsheetID    string `koanf:"spreadsheet_id"     validate:"required_if=Driver google"`
	StudentRange     string `koanf:"student_range"      validate:"required,a1range"`
	TeacherRange     string `koanf:"teacher_range"      validate:"required,a1range"`
	NewsletterRange  string `koanf:"newsletter_range"   validate:"required,a1range"`
	ValueInputOption string `koanf:"value_input_option" validate:"oneof=USER_ENTERED RAW"`
}

// Mirror configures the optional MySQL copy of appended rows.  An empty DSN
// disables it.
type Mirror struct {
	DSN   string `koanf:"dsn"`
	Table string `koanf:"table" validate:"required"`
}

// Geo points at an optional GeoLite2-City database.
type Geo struct {
	Database string `koanf:"database"`
}

// Paths is resolved at runtime, never set in YAML or env.
type Paths struct {
	Root string // EASYBAC_ROOT or discovered parent
}

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP    HTTP     `koanf:"http"`
	Sheets  Sheets   `koanf:"sheets"`
	Mirror  Mirror   `koanf:"mirror"`
	Geo     Geo      `koanf:"geo"`
	Courses []string `koanf:"courses"`
	Paths   Paths    `koanf:"-"`
}

// defaults are loaded into koanf before the YAML layer.
var defaults = map[string]any{
	"http.listen_addr":          ":8080",
	"sheets.driver":             DriverGoogle,
	"sheets.student_range":      "Sheet1!A:D",
	"sheets.teacher_range":      "Teachers!A:E",
	"sheets.newsletter_range":   "Newsletter!A:B",
	"sheets.value_input_option": "USER_ENTERED",
	"mirror.table":              "lead_row",
}
