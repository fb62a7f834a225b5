// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "data", cfg.DataPath)
	assert.Equal(t, runtime.NumCPU(), cfg.Proc)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, 27017, cfg.DB.Port)
	assert.Equal(t, "virtool", cfg.DB.Name)
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_path: /srv/data
proc: 4
db:
  host: db.internal
  name: pathoscope
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/data", cfg.DataPath)
	assert.Equal(t, 4, cfg.Proc)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	// Unset YAML fields keep their defaults.
	assert.Equal(t, 27017, cfg.DB.Port)
	assert.Equal(t, "pathoscope", cfg.DB.Name)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("data_path: /from/yaml\n"), 0o644))

	t.Setenv("PATHOSCOPE_DATA_PATH", "/from/env")
	t.Setenv("PATHOSCOPE_PROC", "2")
	t.Setenv("PATHOSCOPE_DB_PORT", "27018")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.DataPath)
	assert.Equal(t, 2, cfg.Proc)
	assert.Equal(t, 27018, cfg.DB.Port)
}

func TestLoadBadEnv(t *testing.T) {
	t.Setenv("PATHOSCOPE_PROC", "lots")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default ok", func(*Config) {}, false},
		{"empty data path", func(c *Config) { c.DataPath = "" }, true},
		{"zero proc", func(c *Config) { c.Proc = 0 }, true},
		{"bad port", func(c *Config) { c.DB.Port = 70000 }, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMongoURI(t *testing.T) {
	cfg := Default()
	cfg.DB.Host = "mongo"
	cfg.DB.Port = 27018

	assert.Equal(t, "mongodb://mongo:27018", cfg.MongoURI())
}
