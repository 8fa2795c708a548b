package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glimte/hedwig-go/contracts"
)

const sampleConfig = `
schema_file: schema.yaml
message_routing:
  - type: user.created
    major: 1
    topic: users
  - type: trip_created
    major: 2
log:
  level: debug
  format: json
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("reads yaml config file", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "hedwig.yaml", sampleConfig))
		require.NoError(t, err)

		assert.Equal(t, "schema.yaml", cfg.SchemaFile)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, ":8080", cfg.Server.Addr)

		table, err := cfg.RouteTable()
		require.NoError(t, err)
		assert.Equal(t, contracts.RouteTable{
			{MessageType: "user.created", MajorVersion: 1, Topic: "users"},
			{MessageType: "trip_created", MajorVersion: 2},
		}, table)
	})

	t.Run("environment overrides file values", func(t *testing.T) {
		t.Setenv("HEDWIG_SCHEMA_FILE", "/etc/hedwig/schema.json")
		t.Setenv("HEDWIG_LOG_LEVEL", "warn")
		t.Setenv("HEDWIG_ROUTES", "vehicle.moved:3=vehicles")

		cfg, err := Load(writeConfig(t, "hedwig.yaml", sampleConfig))
		require.NoError(t, err)

		assert.Equal(t, "/etc/hedwig/schema.json", cfg.SchemaFile)
		assert.Equal(t, "warn", cfg.Log.Level)

		table, err := cfg.RouteTable()
		require.NoError(t, err)
		require.Len(t, table, 3)
		assert.Equal(t, contracts.MessageRoute{MessageType: "vehicle.moved", MajorVersion: 3, Topic: "vehicles"}, table[2])
	})

	t.Run("defaults without a config file", func(t *testing.T) {
		wd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(t.TempDir()))
		t.Cleanup(func() { _ = os.Chdir(wd) })

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, DefaultConfig().Log, cfg.Log)
		assert.Empty(t, cfg.SchemaFile)
		assert.Empty(t, cfg.MessageRouting)
	})

	t.Run("missing explicit file is an error", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorContains(t, err, "failed to read config file")
	})

	t.Run("rejects invalid settings", func(t *testing.T) {
		tests := []struct {
			name    string
			content string
			wantErr string
		}{
			{"bad level", "log:\n  level: loud\n", "invalid log.level"},
			{"bad format", "log:\n  format: xml\n", "invalid log.format"},
			{"empty route type", "message_routing:\n  - major: 1\n", "message type cannot be empty"},
			{"bad extra route", "routes: [\"nomajor\"]\n", "invalid routes"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := Load(writeConfig(t, "hedwig.yaml", tt.content))
				assert.ErrorContains(t, err, tt.wantErr)
			})
		}
	})
}

func TestLogConfig_NewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "info", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("schema loaded", "root", "https://hedwig.example/schema#")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "schema loaded")
	assert.Contains(t, buf.String(), "https://hedwig.example/schema#")
}
