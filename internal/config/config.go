package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/remote"
	"github.com/vango-dev/vtree/pkg/runtime"
)

// ConfigFileNames are the files Load looks for, in order.
var ConfigFileNames = []string{"vtree.yaml", "vtree.yml", "vtree.json"}

const (
	// DefaultAddr is the default listen address for serve.
	DefaultAddr = ":8080"

	// DefaultHistorySize is the default number of batches kept for replay.
	DefaultHistorySize = 100
)

// Config is the complete vtree configuration.
type Config struct {
	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`
	Server  ServerConfig  `json:"server" yaml:"server"`
	Archive ArchiveConfig `json:"archive" yaml:"archive"`
	Log     LogConfig     `json:"log" yaml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RuntimeConfig configures the scheduler.
type RuntimeConfig struct {
	// TickInterval is the flush cadence for renders not caused by events.
	TickInterval Duration `json:"tickInterval" yaml:"tickInterval"`

	// MaxScopesPerTick bounds the renders per tick. 0 means unlimited.
	MaxScopesPerTick int `json:"maxScopesPerTick" yaml:"maxScopesPerTick"`

	// QueueLimit sizes the event and post queues.
	QueueLimit int `json:"queueLimit" yaml:"queueLimit"`

	// HistorySize is the number of delivered batches kept for replay.
	HistorySize int `json:"historySize" yaml:"historySize"`

	// Debug turns on verification mode.
	Debug bool `json:"debug,omitempty" yaml:"debug,omitempty"`
}

// ServerConfig configures the remote backend.
type ServerConfig struct {
	Addr           string   `json:"addr" yaml:"addr"`
	Path           string   `json:"path" yaml:"path"`
	ReadTimeout    Duration `json:"readTimeout" yaml:"readTimeout"`
	WriteTimeout   Duration `json:"writeTimeout" yaml:"writeTimeout"`
	Heartbeat      Duration `json:"heartbeat" yaml:"heartbeat"`
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// ArchiveConfig configures S3 archiving of delivered batches.
// Archiving is off when Bucket is empty.
type ArchiveConfig struct {
	Bucket   string   `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string   `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string   `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string   `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Interval Duration `json:"interval" yaml:"interval"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`   // debug, info, warn, error
	Format string `json:"format" yaml:"format"` // text or json
}

// New creates a Config with default values.
func New() *Config {
	rc := runtime.DefaultConfig()
	sc := remote.DefaultConfig()
	return &Config{
		Runtime: RuntimeConfig{
			TickInterval:     Duration(rc.TickInterval),
			MaxScopesPerTick: rc.MaxScopesPerTick,
			QueueLimit:       rc.QueueLimit,
			HistorySize:      DefaultHistorySize,
		},
		Server: ServerConfig{
			Addr:         DefaultAddr,
			Path:         sc.Path,
			ReadTimeout:  Duration(sc.ReadTimeout),
			WriteTimeout: Duration(sc.WriteTimeout),
			Heartbeat:    Duration(sc.HeartbeatInterval),
		},
		Archive: ArchiveConfig{
			Prefix:   "vtree/",
			Interval: Duration(time.Minute),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the first configuration file found in dir.
func Load(dir string) (*Config, error) {
	for _, name := range ConfigFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E020").
		WithDetail("No vtree.yaml or vtree.json found in " + dir).
		WithSuggestion("Create vtree.yaml, or run without --config to use defaults")
}

// LoadFile reads configuration from path. The format follows the extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E020").WithDetail("No configuration file at " + path)
		}
		return nil, errors.New("E021").Wrap(err)
	}

	cfg, err := Parse(data, isYAML(path))
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes configuration over the defaults and validates it.
func Parse(data []byte, asYAML bool) (*Config, error) {
	cfg := New()
	var err error
	if asYAML {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
		if err == io.EOF {
			err = nil
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	}
	if err != nil {
		var verr *errors.Error
		if stderrors.As(err, &verr) {
			return nil, verr
		}
		return nil, errors.New("E021").
			WithDetail("Failed to parse configuration: " + err.Error()).
			WithSuggestion("Check the file for syntax errors and misspelled keys")
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path, as YAML or JSON by extension.
func (c *Config) SaveTo(path string) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E021").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E021").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	def := New()
	if c.Runtime.TickInterval == 0 {
		c.Runtime.TickInterval = def.Runtime.TickInterval
	}
	if c.Runtime.QueueLimit == 0 {
		c.Runtime.QueueLimit = def.Runtime.QueueLimit
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.Path == "" {
		c.Server.Path = def.Server.Path
	}
	if c.Archive.Interval == 0 {
		c.Archive.Interval = def.Archive.Interval
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	invalid := func(detail string) *errors.Error {
		return errors.New("E021").WithDetail(detail)
	}
	switch {
	case c.Runtime.TickInterval <= 0:
		return invalid("runtime.tickInterval must be positive")
	case c.Runtime.MaxScopesPerTick < 0:
		return invalid("runtime.maxScopesPerTick must not be negative")
	case c.Runtime.QueueLimit < 0:
		return invalid("runtime.queueLimit must not be negative")
	case c.Runtime.HistorySize < 0:
		return invalid("runtime.historySize must not be negative")
	case !strings.HasPrefix(c.Server.Path, "/"):
		return invalid("server.path must start with /")
	case c.Server.Heartbeat > 0 && c.Server.ReadTimeout > 0 && c.Server.Heartbeat >= c.Server.ReadTimeout:
		return invalid("server.heartbeat must be shorter than server.readTimeout")
	case c.Archive.Interval <= 0:
		return invalid("archive.interval must be positive")
	}
	if _, ok := levels[strings.ToLower(c.Log.Level)]; !ok {
		return invalid("log.level must be one of debug, info, warn, error").
			WithSuggestion(`Use "info" unless you are debugging`)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid(`log.format must be "text" or "json"`)
	}
	return nil
}

// RuntimeConfig converts the runtime section.
func (c *Config) RuntimeConfig() runtime.Config {
	return runtime.Config{
		TickInterval:     c.Runtime.TickInterval.Std(),
		MaxScopesPerTick: c.Runtime.MaxScopesPerTick,
		QueueLimit:       c.Runtime.QueueLimit,
		Verify:           c.Runtime.Debug,
	}
}

// RemoteConfig converts the server section.
func (c *Config) RemoteConfig() remote.Config {
	rc := remote.DefaultConfig()
	rc.Path = c.Server.Path
	rc.ReadTimeout = c.Server.ReadTimeout.Std()
	rc.WriteTimeout = c.Server.WriteTimeout.Std()
	rc.HeartbeatInterval = c.Server.Heartbeat.Std()
	if len(c.Server.AllowedOrigins) > 0 {
		allowed := make(map[string]bool, len(c.Server.AllowedOrigins))
		for _, o := range c.Server.AllowedOrigins {
			allowed[o] = true
		}
		rc.CheckOrigin = func(r *http.Request) bool {
			return allowed[r.Header.Get("Origin")]
		}
	}
	return rc
}

// ArchiveEnabled reports whether batches should be archived.
func (c *Config) ArchiveEnabled() bool {
	return c.Archive.Bucket != ""
}

var levels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Logger builds the process logger described by the log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: levels[strings.ToLower(c.Log.Level)]}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	for _, name := range ConfigFileNames {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing a config file, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("E020").
				WithDetail("No vtree.yaml or vtree.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}
