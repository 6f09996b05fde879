package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/opd-ai/audiosocket/limits"
	"github.com/opd-ai/audiosocket/session"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "AUDIOSOCKET_"

// ErrInvalid indicates a configuration value is out of range.
var ErrInvalid = errors.New("invalid configuration")

// Config holds AudioSocket settings
type Config struct {
	// Client settings
	Destination    string        `yaml:"destination"`     // host:port
	ConnectTimeout time.Duration `yaml:"connect_timeout"` // per resolved address
	SessionID      string        `yaml:"session_id"`      // UUID or 16-byte token, random when empty

	// Server settings
	Listen      string `yaml:"listen"`       // e.g. ":9092"
	MaxSessions int    `yaml:"max_sessions"` // concurrent sessions

	// Observability
	MetricsAddr string `yaml:"metrics_addr"` // empty disables the exporter
	LogLevel    string `yaml:"log_level"`    // logrus level name
	LogFormat   string `yaml:"log_format"`   // "text" or "json"

	// Audio framing
	FrameBytes    int           `yaml:"frame_bytes"`    // bytes per frame
	FrameInterval time.Duration `yaml:"frame_interval"` // time per frame
}

// Default returns a config with sensible defaults
func Default() *Config {
	return &Config{
		ConnectTimeout: limits.DefaultConnectTimeout,
		Listen:         ":9092",
		MaxSessions:    64,
		LogLevel:       "info",
		LogFormat:      "text",
		FrameBytes:     limits.DefaultFrameBytes,
		FrameInterval:  limits.DefaultFrameInterval,
	}
}

// Load builds a config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.UnmarshalYAMLBytes(data); err != nil {
			return nil, err
		}
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UnmarshalYAMLBytes overlays YAML data onto c and expands environment
// references in string values.
func (c *Config) UnmarshalYAMLBytes(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	c.Destination = os.ExpandEnv(c.Destination)
	c.SessionID = os.ExpandEnv(c.SessionID)
	c.Listen = os.ExpandEnv(c.Listen)
	c.MetricsAddr = os.ExpandEnv(c.MetricsAddr)
	return nil
}

// durationKeys are YAML keys decoded as time.Duration.
var durationKeys = map[string]bool{
	"connect_timeout": true,
	"frame_interval":  true,
}

// UnmarshalYAML decodes a YAML mapping into c. Duration fields accept Go
// duration strings and bare integers in milliseconds, as ApplyEnv does.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(value.Content); i += 2 {
			k, v := value.Content[i], value.Content[i+1]
			if durationKeys[k.Value] && v.Kind == yaml.ScalarNode && v.ShortTag() == "!!int" {
				v.Value += "ms"
				v.Tag = "!!str"
			}
		}
	}

	type plain Config
	return value.Decode((*plain)(c))
}

// LoadEnvFile loads .env style files into the process environment without
// overriding variables already set. With no paths it loads ./.env if it
// exists.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
		paths = []string{".env"}
	}
	if err := godotenv.Load(paths...); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from AUDIOSOCKET_* variables looked up with
// getenv. Unset or empty variables leave the field alone.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}
	str("DESTINATION", &c.Destination)
	str("SESSION_ID", &c.SessionID)
	str("LISTEN", &c.Listen)
	str("METRICS_ADDR", &c.MetricsAddr)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)

	for name, dst := range map[string]*int{
		"MAX_SESSIONS": &c.MaxSessions,
		"FRAME_BYTES":  &c.FrameBytes,
	} {
		v := getenv(EnvPrefix + name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalid, EnvPrefix, name, v)
		}
		*dst = n
	}

	for name, dst := range map[string]*time.Duration{
		"CONNECT_TIMEOUT": &c.ConnectTimeout,
		"FRAME_INTERVAL":  &c.FrameInterval,
	} {
		v := getenv(EnvPrefix + name)
		if v == "" {
			continue
		}
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s%s=%q: %v", ErrInvalid, EnvPrefix, name, v, err)
		}
		*dst = d
	}
	return nil
}

// parseDuration accepts Go duration strings and bare milliseconds.
func parseDuration(v string) (time.Duration, error) {
	if ms, err := strconv.Atoi(v); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(v)
}

// Validate checks every field is usable.
func (c *Config) Validate() error {
	if c.ConnectTimeout <= 0 {
		return fmt.Errorf("%w: connect_timeout must be positive", ErrInvalid)
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("%w: max_sessions must be positive", ErrInvalid)
	}
	if err := limits.ValidateFrameBytes(c.FrameBytes); err != nil {
		return fmt.Errorf("%w: frame_bytes: %v", ErrInvalid, err)
	}
	if c.FrameInterval < 0 {
		return fmt.Errorf("%w: frame_interval must not be negative", ErrInvalid)
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalid, c.LogFormat)
	}
	return nil
}

// ResolveSessionID turns the configured session id into a token. A textual
// UUID is parsed to its 16 binary bytes; any other string keeps its first
// 16 bytes. An empty value yields a random id.
func (c *Config) ResolveSessionID() (session.ID, error) {
	if c.SessionID == "" {
		return session.NewID(), nil
	}
	if id, err := session.ParseUUID(c.SessionID); err == nil {
		return id, nil
	}
	return session.IDFromString(c.SessionID)
}

// ApplyLogging configures the standard logrus logger.
func (c *Config) ApplyLogging() error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: log_level: %v", ErrInvalid, err)
	}
	logrus.SetLevel(level)

	switch c.LogFormat {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
