package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/takak2166/notion2csv/internal/rows"
)

var envKeys = []string{
	"NOTION_API_KEY",
	"NOTION_DATABASE_ID",
	"NOTION_PROPERTY_NAME",
	"LOG_LEVEL",
	"OUTPUT_DIR",
	"NOTION2CSV_TOKEN",
	"NOTION2CSV_PROBE",
	"NOTION2CSV_MAX_CELL_LENGTH",
	"NOTION2CSV_RETRY_ATTEMPTS",
	"NOTION2CSV_RETRY_INITIAL_INTERVAL",
	"NOTION2CSV_CHECKPOINT_PATH",
}

// isolate runs the test in an empty directory with none of the config
// variables set; values loaded from .env are undone on cleanup.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range envKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "Kurzus", cfg.PropertyName)
	assert.Equal(t, 32000, cfg.MaxCellLength)
	assert.Equal(t, "union", cfg.Probe)
	assert.Equal(t, 3, cfg.Retry.Attempts)
	assert.Equal(t, time.Second, cfg.Retry.InitialInterval)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, filepath.Join("output", "notion2csv.db"), cfg.CheckpointPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "Milyen vállalkozást indíts", cfg.AliasMap()["Üzleti Modellek"])
	assert.Len(t, cfg.AliasMap(), 2)

	assert.ErrorIs(t, cfg.Validate(), ErrMissingToken)
}

func TestLoadEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("NOTION_API_KEY", "secret")
	t.Setenv("NOTION_DATABASE_ID", "db")
	t.Setenv("NOTION_PROPERTY_NAME", "Course")
	t.Setenv("OUTPUT_DIR", "out")
	t.Setenv("NOTION2CSV_PROBE", "first")
	t.Setenv("NOTION2CSV_RETRY_ATTEMPTS", "5")
	t.Setenv("NOTION2CSV_RETRY_INITIAL_INTERVAL", "250ms")

	cfg, err := Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, "db", cfg.DatabaseID)
	assert.Equal(t, "Course", cfg.PropertyName)
	assert.Equal(t, filepath.Join("out", "notion2csv.db"), cfg.CheckpointPath)

	p := cfg.RetryPolicy()
	assert.Equal(t, 5, p.Attempts)
	assert.Equal(t, 250*time.Millisecond, p.InitialInterval)
	assert.Equal(t, rows.ProbeFirst, cfg.RowOptions().Probe)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("NOTION_API_KEY=from-dotenv\nNOTION_DATABASE_ID=db\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Token)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)
	yaml := `database_id: from-file
property_name: Tanfolyam
title_fallback: Név
max_cell_length: 1000
checkpoint_path: state/runs.db
aliases:
  - from: Régi Név
    to: Új Név
retry:
  attempts: 2
  initial_interval: 3s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notion2csv.yaml"), []byte(yaml), 0o600))
	t.Setenv("NOTION_DATABASE_ID", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.DatabaseID, "environment wins over the file")
	assert.Equal(t, "Tanfolyam", cfg.PropertyName)
	assert.Equal(t, "Név", cfg.TitleFallback)
	assert.Equal(t, 1000, cfg.MaxCellLength)
	assert.Equal(t, "state/runs.db", cfg.CheckpointPath)
	assert.Equal(t, map[string]string{"Régi Név": "Új Név"}, map[string]string(cfg.AliasMap()))
	assert.Equal(t, 2, cfg.Retry.Attempts)
	assert.Equal(t, 3*time.Second, cfg.Retry.InitialInterval)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{Token: "t", DatabaseID: "db", Probe: "union", Retry: Retry{Attempts: 1}}

	tests := []struct {
		name   string
		modify func(c *Config)
		want   error
	}{
		{name: "valid", modify: func(c *Config) {}},
		{name: "missing token", modify: func(c *Config) { c.Token = "" }, want: ErrMissingToken},
		{name: "missing database", modify: func(c *Config) { c.DatabaseID = "" }, want: ErrMissingDatabase},
		{name: "bad probe", modify: func(c *Config) { c.Probe = "all" }, want: ErrInvalidProbe},
		{name: "no attempts", modify: func(c *Config) { c.Retry.Attempts = 0 }, want: ErrInvalidRetry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.modify(&c)
			err := c.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
		})
	}
}
