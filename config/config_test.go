package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2000*time.Millisecond, cfg.ConnectTimeout)
	assert.Equal(t, 320, cfg.FrameBytes)
	assert.Equal(t, 20*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, 64, cfg.MaxSessions)
	assert.Equal(t, ":9092", cfg.Listen)
}

func TestUnmarshalYAML(t *testing.T) {
	t.Setenv("TEST_AUDIOSOCKET_HOST", "media.example.com")

	cfg := Default()
	err := cfg.UnmarshalYAMLBytes([]byte(`
destination: ${TEST_AUDIOSOCKET_HOST}:9092
connect_timeout: 500ms
max_sessions: 8
frame_bytes: 640
frame_interval: 40ms
log_format: json
`))
	require.NoError(t, err)

	assert.Equal(t, "media.example.com:9092", cfg.Destination)
	assert.Equal(t, 500*time.Millisecond, cfg.ConnectTimeout)
	assert.Equal(t, 8, cfg.MaxSessions)
	assert.Equal(t, 640, cfg.FrameBytes)
	assert.Equal(t, 40*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestUnmarshalYAMLMillisecondDurations(t *testing.T) {
	cfg := Default()
	err := cfg.UnmarshalYAMLBytes([]byte(`
connect_timeout: 2000
frame_interval: 30
`))
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.ConnectTimeout)
	assert.Equal(t, 30*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, 64, cfg.MaxSessions)
}

func TestUnmarshalYAMLInvalid(t *testing.T) {
	err := Default().UnmarshalYAMLBytes([]byte("max_sessions: [1, 2"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"AUDIOSOCKET_DESTINATION":     "127.0.0.1:9000",
		"AUDIOSOCKET_CONNECT_TIMEOUT": "750",
		"AUDIOSOCKET_FRAME_INTERVAL":  "10ms",
		"AUDIOSOCKET_MAX_SESSIONS":    "4",
		"AUDIOSOCKET_LOG_LEVEL":       "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Destination)
	assert.Equal(t, 750*time.Millisecond, cfg.ConnectTimeout)
	assert.Equal(t, 10*time.Millisecond, cfg.FrameInterval)
	assert.Equal(t, 4, cfg.MaxSessions)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 320, cfg.FrameBytes)
}

func TestApplyEnvInvalid(t *testing.T) {
	tests := map[string]string{
		"AUDIOSOCKET_MAX_SESSIONS":    "many",
		"AUDIOSOCKET_CONNECT_TIMEOUT": "soon",
	}
	for k, v := range tests {
		t.Run(k, func(t *testing.T) {
			err := Default().ApplyEnv(envMap(map[string]string{k: v}))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.ConnectTimeout = 0 }},
		{"zero sessions", func(c *Config) { c.MaxSessions = 0 }},
		{"odd frame", func(c *Config) { c.FrameBytes = 321 }},
		{"huge frame", func(c *Config) { c.FrameBytes = 70000 }},
		{"negative interval", func(c *Config) { c.FrameInterval = -time.Millisecond }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audiosocket.yaml")
	require.NoError(t, os.WriteFile(path, []byte("destination: file.example.com:9092\nmax_sessions: 2\n"), 0o600))
	t.Setenv("AUDIOSOCKET_MAX_SESSIONS", "3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file.example.com:9092", cfg.Destination)
	assert.Equal(t, 3, cfg.MaxSessions)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("AUDIOSOCKET_FRAME_BYTES", "3")
	_, err := Load("")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("AUDIOSOCKET_TEST_ENVFILE=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("AUDIOSOCKET_TEST_ENVFILE") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("AUDIOSOCKET_TEST_ENVFILE"))

	assert.Error(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestResolveSessionID(t *testing.T) {
	cfg := Default()

	cfg.SessionID = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
	id, err := cfg.ResolveSessionID()
	require.NoError(t, err)
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", id.String())

	cfg.SessionID = "0123456789ABCDEF"
	id, err = cfg.ResolveSessionID()
	require.NoError(t, err)
	assert.Equal(t, "0123456789ABCDEF", string(id[:]))

	cfg.SessionID = ""
	id, err = cfg.ResolveSessionID()
	require.NoError(t, err)
	assert.False(t, id.IsZero())
}

func TestApplyLogging(t *testing.T) {
	prevLevel, prevFormatter := logrus.GetLevel(), logrus.StandardLogger().Formatter
	t.Cleanup(func() {
		logrus.SetLevel(prevLevel)
		logrus.SetFormatter(prevFormatter)
	})

	cfg := Default()
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"
	require.NoError(t, cfg.ApplyLogging())
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logrus.StandardLogger().Formatter)
}
