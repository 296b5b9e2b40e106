package config

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vango-dev/storefront/internal/errors"
)

const (
	// TOMLFileName is the preferred configuration file name.
	TOMLFileName = "storefront.toml"

	// JSONFileName is the alternative configuration file name.
	JSONFileName = "storefront.json"

	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultCartKey is the storage key of the persisted cart.
	DefaultCartKey = "shopping_cart"

	// DefaultSQLTable is the table used by the SQL storage backend.
	DefaultSQLTable = "storefront_storage"

	// DefaultMetricsPath is where Prometheus metrics are served.
	DefaultMetricsPath = "/metrics"
)

// Storage backend names.
const (
	BackendMemory = "memory"
	BackendSQL    = "sql"
	BackendS3     = "s3"
)

// Config is the complete storefront configuration.
type Config struct {
	Server  ServerConfig  `json:"server" toml:"server"`
	Catalog CatalogConfig `json:"catalog" toml:"catalog"`
	Storage StorageConfig `json:"storage" toml:"storage"`
	Metrics MetricsConfig `json:"metrics" toml:"metrics"`
	Log     LogConfig     `json:"log" toml:"log"`

	configPath string
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	// Addr is the listen address (e.g. ":8080").
	Addr string `json:"addr,omitempty" toml:"addr,omitempty"`

	// Base is the path prefix every page is served under.
	Base string `json:"base,omitempty" toml:"base,omitempty"`

	// Static is a directory served under /static/.
	Static string `json:"static,omitempty" toml:"static,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g. "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" toml:"shutdownTimeout,omitempty"`

	// ToastDuration is how long toasts stay visible (e.g. "3s").
	ToastDuration string `json:"toastDuration,omitempty" toml:"toastDuration,omitempty"`
}

// CatalogConfig selects the product data source. At most one of Fixture
// and APIURL may be set; with neither, the built-in fixture is used.
type CatalogConfig struct {
	// Fixture is a JSON or YAML product file.
	Fixture string `json:"fixture,omitempty" toml:"fixture,omitempty"`

	// APIURL is the base URL of a remote product API.
	APIURL string `json:"apiUrl,omitempty" toml:"apiUrl,omitempty"`

	// Watch reloads Fixture when it changes.
	Watch bool `json:"watch,omitempty" toml:"watch,omitempty"`

	// Timeout bounds remote API requests (e.g. "5s").
	Timeout string `json:"timeout,omitempty" toml:"timeout,omitempty"`
}

// StorageConfig selects where carts are persisted.
type StorageConfig struct {
	// Backend is one of memory, sql or s3.
	Backend string `json:"backend,omitempty" toml:"backend,omitempty"`

	// CartKey is the key the cart is stored under.
	CartKey string `json:"cartKey,omitempty" toml:"cartKey,omitempty"`

	SQL SQLConfig `json:"sql,omitempty" toml:"sql,omitempty"`
	S3  S3Config  `json:"s3,omitempty" toml:"s3,omitempty"`
}

// SQLConfig configures the SQL storage backend.
type SQLConfig struct {
	// Driver is a registered database/sql driver name (e.g. "sqlite3").
	Driver string `json:"driver,omitempty" toml:"driver,omitempty"`

	DSN string `json:"dsn,omitempty" toml:"dsn,omitempty"`

	// Dialect is postgres, mysql or sqlite. Defaults from Driver.
	Dialect string `json:"dialect,omitempty" toml:"dialect,omitempty"`

	Table string `json:"table,omitempty" toml:"table,omitempty"`
}

// S3Config configures the S3 storage backend. Credentials are read from
// the standard AWS environment variables.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty" toml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" toml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" toml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" toml:"endpoint,omitempty"`

	// PathStyle forces path-style addressing, as S3-compatible stores need.
	PathStyle bool `json:"pathStyle,omitempty" toml:"pathStyle,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled" toml:"enabled"`
	Path    string `json:"path,omitempty" toml:"path,omitempty"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" toml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" toml:"format,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ShutdownTimeout: "10s",
			ToastDuration:   "3s",
		},
		Catalog: CatalogConfig{
			Timeout: "5s",
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
			CartKey: DefaultCartKey,
			SQL: SQLConfig{
				Table: DefaultSQLTable,
			},
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    DefaultMetricsPath,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads storefront.toml or storefront.json from dir. Missing files
// yield the defaults.
func Load(dir string) (*Config, error) {
	for _, name := range []string{TOMLFileName, JSONFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile reads the configuration file at path. The format follows the
// file extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("SF001").
				WithDetailf("%s does not exist", path).
				Wrap(err)
		}
		return nil, errors.New("SF001").Wrap(err)
	}

	cfg := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			e := errors.New("SF001").
				WithDetail("Failed to parse " + filepath.Base(path)).
				WithSuggestion("Check that the file is valid TOML").
				Wrap(err)
			var perr toml.ParseError
			if stderrors.As(err, &perr) {
				e.WithLocation(path, perr.Position.Line, 0)
			}
			return nil, e
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("SF001").
				WithDetail("Failed to parse " + filepath.Base(path)).
				WithSuggestion("Check that the file is valid JSON").
				Wrap(err)
		}
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// SaveTo writes the configuration to path, as TOML or JSON by extension.
func (c *Config) SaveTo(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.New("SF001").Wrap(err)
	}
	defer f.Close()

	if strings.ToLower(filepath.Ext(path)) == ".toml" {
		err = toml.NewEncoder(f).Encode(c)
	} else {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		err = enc.Encode(c)
	}
	if err != nil {
		return errors.New("SF001").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory of the configuration file, or "".
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

func (c *Config) applyDefaults() {
	d := New()

	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Server.ToastDuration == "" {
		c.Server.ToastDuration = d.Server.ToastDuration
	}
	c.Server.Base = strings.TrimSuffix(c.Server.Base, "/")

	if c.Catalog.Timeout == "" {
		c.Catalog.Timeout = d.Catalog.Timeout
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = BackendMemory
	}
	if c.Storage.CartKey == "" {
		c.Storage.CartKey = DefaultCartKey
	}
	if c.Storage.SQL.Table == "" {
		c.Storage.SQL.Table = DefaultSQLTable
	}
	if c.Storage.SQL.Dialect == "" {
		c.Storage.SQL.Dialect = dialectForDriver(c.Storage.SQL.Driver)
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// dialectForDriver guesses the SQL dialect of common drivers.
func dialectForDriver(driver string) string {
	switch driver {
	case "sqlite3", "sqlite":
		return "sqlite"
	case "mysql":
		return "mysql"
	case "":
		return ""
	default:
		return "postgres"
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Server.Addr); err != nil {
		return errors.New("SF002").
			WithDetailf("%q is not a host:port address", c.Server.Addr).
			Wrap(err)
	}
	if c.Server.Base != "" && !strings.HasPrefix(c.Server.Base, "/") {
		return errors.New("SF002").
			WithDetailf("base path %q must start with /", c.Server.Base)
	}
	for name, value := range map[string]string{
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
		"server.toastDuration":   c.Server.ToastDuration,
		"catalog.timeout":        c.Catalog.Timeout,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return errors.New("SF002").
				WithDetailf("%s: %q is not a duration", name, value).
				Wrap(err)
		}
	}

	if c.Catalog.Fixture != "" && c.Catalog.APIURL != "" {
		return errors.New("SF005").
			WithDetail("catalog.fixture and catalog.apiUrl are mutually exclusive")
	}
	if c.Catalog.Watch && c.Catalog.Fixture == "" {
		return errors.New("SF005").
			WithDetail("catalog.watch needs catalog.fixture")
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendSQL:
		if c.Storage.SQL.Driver == "" || c.Storage.SQL.DSN == "" {
			return errors.New("SF004").
				WithDetail("storage.sql needs driver and dsn")
		}
	case BackendS3:
		if c.Storage.S3.Bucket == "" {
			return errors.New("SF004").
				WithDetail("storage.s3 needs bucket")
		}
	default:
		return errors.New("SF003").
			WithDetailf("%q is not a storage backend", c.Storage.Backend)
	}

	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New("SF006").
			WithDetailf("%q is not a log level", c.Log.Level)
	}
	return nil
}

// ShutdownTimeout returns the parsed server shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return parseDuration(c.Server.ShutdownTimeout, 10*time.Second)
}

// ToastDuration returns the parsed toast display duration.
func (c *Config) ToastDuration() time.Duration {
	return parseDuration(c.Server.ToastDuration, 3*time.Second)
}

// CatalogTimeout returns the parsed remote catalog timeout.
func (c *Config) CatalogTimeout() time.Duration {
	return parseDuration(c.Catalog.Timeout, 5*time.Second)
}

// FixturePath returns the fixture path resolved against the config file.
func (c *Config) FixturePath() string {
	if c.Catalog.Fixture == "" || filepath.IsAbs(c.Catalog.Fixture) {
		return c.Catalog.Fixture
	}
	return filepath.Join(c.Dir(), c.Catalog.Fixture)
}

// StaticPath returns the static directory resolved against the config file.
func (c *Config) StaticPath() string {
	if c.Server.Static == "" || filepath.IsAbs(c.Server.Static) {
		return c.Server.Static
	}
	return filepath.Join(c.Dir(), c.Server.Static)
}

// Logger builds the process logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	opts := &slog.HandlerOptions{Level: level}

	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
