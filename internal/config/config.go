package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "THREADBOARD_"

// Defaults.
const (
	DefaultDBPath       = "threadboard.db"
	DefaultCommentsKey  = "discussionComments"
	DefaultDraftKey     = "discussionFormData"
	DefaultPollInterval = 5 * time.Second
	DefaultStaleness    = "count"
	DefaultLogLevel     = "info"
)

// Config is the resolved configuration.
type Config struct {
	DBPath       string        `yaml:"db_path"`
	CommentsKey  string        `yaml:"comments_key"`
	DraftKey     string        `yaml:"draft_key"`
	PollInterval time.Duration `yaml:"poll_interval"`
	QuotaBytes   int           `yaml:"quota_bytes"`
	Staleness    string        `yaml:"staleness"`
	SeedWelcome  bool          `yaml:"seed_welcome"`
	WatchFile    bool          `yaml:"watch_file"`
	LogLevel     string        `yaml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBPath:       DefaultDBPath,
		CommentsKey:  DefaultCommentsKey,
		DraftKey:     DefaultDraftKey,
		PollInterval: DefaultPollInterval,
		Staleness:    DefaultStaleness,
		SeedWelcome:  true,
		WatchFile:    true,
		LogLevel:     DefaultLogLevel,
	}
}

// Error reports which source produced an invalid setting.
type Error struct {
	Source  string // file path, environment variable or "schema"
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Source, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// LoadOptions selects the sources Load reads.
type LoadOptions struct {
	// File is a YAML file. Empty means none; a named file must exist.
	File string

	// EnvFile is a .env file. A missing file is ignored.
	EnvFile string

	// LookupEnv reads the process environment (default os.LookupEnv).
	LookupEnv func(string) (string, bool)
}

// Load merges defaults, File, EnvFile and the environment, then validates.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.File != "" {
		data, err := os.ReadFile(opts.File)
		if err != nil {
			return nil, &Error{Source: opts.File, Message: "cannot read file", Err: err}
		}
		if err := cfg.decodeYAML(data); err != nil {
			return nil, &Error{Source: opts.File, Message: "invalid YAML", Err: err}
		}
	}

	dotenv := map[string]string{}
	if opts.EnvFile != "" {
		m, err := godotenv.Read(opts.EnvFile)
		switch {
		case err == nil:
			dotenv = m
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, &Error{Source: opts.EnvFile, Message: "invalid env file", Err: err}
		}
	}

	lookup := opts.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := cfg.applyEnv(func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeYAML overlays data onto c, rejecting unknown keys.
func (c *Config) decodeYAML(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	str("DB_PATH", &c.DBPath)
	str("COMMENTS_KEY", &c.CommentsKey)
	str("DRAFT_KEY", &c.DraftKey)
	str("STALENESS", &c.Staleness)
	str("LOG_LEVEL", &c.LogLevel)

	if v, ok := lookup(EnvPrefix + "POLL_INTERVAL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &Error{Source: EnvPrefix + "POLL_INTERVAL", Message: "not a duration", Err: err}
		}
		c.PollInterval = d
	}
	if v, ok := lookup(EnvPrefix + "QUOTA_BYTES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &Error{Source: EnvPrefix + "QUOTA_BYTES", Message: "not an integer", Err: err}
		}
		c.QuotaBytes = n
	}
	for name, dst := range map[string]*bool{"SEED_WELCOME": &c.SeedWelcome, "WATCH_FILE": &c.WatchFile} {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return &Error{Source: EnvPrefix + name, Message: "not a boolean", Err: err}
			}
			*dst = b
		}
	}
	return nil
}

// Validate checks c against the embedded schema.
func (c *Config) Validate() error {
	cctx := cuecontext.New()
	schema := cctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return &Error{Source: "schema", Message: "embedded schema does not compile", Err: err}
	}

	doc := map[string]any{
		"db_path":       c.DBPath,
		"comments_key":  c.CommentsKey,
		"draft_key":     c.DraftKey,
		"poll_interval": c.PollInterval.Milliseconds(),
		"quota_bytes":   c.QuotaBytes,
		"staleness":     c.Staleness,
		"seed_welcome":  c.SeedWelcome,
		"watch_file":    c.WatchFile,
		"log_level":     strings.ToLower(c.LogLevel),
	}
	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(cctx.Encode(doc))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return &Error{Source: "schema", Message: strings.TrimSpace(cueerrors.Details(err, nil))}
	}
	return nil
}

// Level maps LogLevel to a slog level.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
