package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func projectConfigPath(t *testing.T) string {
	t.Helper()

	projectRoot, err := filepath.Abs("../../")
	require.NoError(t, err, "failed to get project root")

	return filepath.Join(projectRoot, "etc") + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Title)
	assert.NotZero(t, cfg.Webserver.Port)
	assert.Equal(t, "127.0.0.1", cfg.Webserver.Host)
	assert.NotEmpty(t, cfg.DB.Path)
	assert.NotEmpty(t, cfg.DB.BackupDir)
	assert.Equal(t, "WAL", cfg.DB.JournalMode)
	assert.True(t, cfg.DB.ForeignKeys)
	assert.Equal(t, "@every 1h", cfg.Reminder.Schedule)
	assert.Equal(t, []string{"npm", "run", "build"}, cfg.Build.WebBundle)
	assert.Equal(t, "info", cfg.Log.LogLevel)
	assert.True(t, cfg.Log.Console.Enabled)
	assert.Equal(t, "access.log", cfg.Log.File.Access.Name)
}

func TestReadConfigMissingFile(t *testing.T) {
	_, err := ReadConfig(t.TempDir())
	require.Error(t, err)
}

func TestReadConfigWithJSONOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, `{"Title":"Test Override","Webserver":{"Port":9090},"DB":{"Path":"/tmp/x/books.db"}}`)

	cfg, err := ReadConfig(projectConfigPath(t))
	require.NoError(t, err)

	assert.Equal(t, "Test Override", cfg.Title)
	assert.Equal(t, 9090, cfg.Webserver.Port)
	assert.Equal(t, "/tmp/x/books.db", cfg.DB.Path)
	// host from the file survives a partial override
	assert.Equal(t, "127.0.0.1", cfg.Webserver.Host)
}

func TestReadConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	content := "[Webserver]\nPort = 1234\n\n[DB]\nPath = \"/srv/ledger/books.db\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "main.toml"), []byte(content), 0o600))

	cfg, err := ReadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, defaultShutDownTime, cfg.Webserver.ShutDownTime)
	assert.Equal(t, "127.0.0.1", cfg.Webserver.Host)
	assert.Equal(t, "/srv/ledger", cfg.DB.DataDir)
	assert.Equal(t, filepath.Join("/srv/ledger", "backups"), cfg.DB.BackupDir)
	assert.Equal(t, defaultIntervalDays, cfg.Reminder.IntervalDays)
	assert.Equal(t, defaultBusyTimeoutMS, cfg.DB.BusyTimeoutMS)
}

func TestConfigValidation(t *testing.T) {
	valid := func() Config {
		c := Config{
			Webserver: Webserver{Port: 8080},
			DB:        DB{Path: "books.db"},
		}
		applyDefaults(&c)

		return c
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{
			name:    "missing port",
			mutate:  func(c *Config) { c.Webserver.Port = 0 },
			wantErr: ErrWebServerPortCanNotBeZero,
		},
		{
			name:    "missing db path",
			mutate:  func(c *Config) { c.DB.Path = "" },
			wantErr: ErrEmptyDBPath,
		},
		{
			name: "bad schedule",
			mutate: func(c *Config) {
				c.Reminder.Enabled = true
				c.Reminder.Schedule = "every tuesday"
			},
			wantErr: ErrInvalidSchedule,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Webserver.Port = 70000 },
			wantErr: ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)

			err := validate(&c)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDumpConfig(t *testing.T) {
	cfg := Config{
		Title:     "Test",
		DevMode:   true,
		Webserver: Webserver{Port: 8080, Host: "127.0.0.1"},
	}

	out, err := DumpConfig(&cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "Test")
	assert.Contains(t, out, "8080")
}

func TestDumpConfigJSON(t *testing.T) {
	cfg := Config{
		Title:     "Test",
		Webserver: Webserver{Port: 8080},
	}

	out, err := DumpConfigJSON(&cfg)
	require.NoError(t, err)
	assert.Contains(t, out, `"Title": "Test"`)
}
