package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sammcj/mcp-sheets/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_MissingOptionalFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, &config.Config{}, cfg)
}

func TestLoad_MissingRequiredFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	assert.Error(t, err)
}

func TestLoad_ParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
credentials_file: /etc/sheets/sa.json
disabled_tools:
  - create_spreadsheet
  - update_range
requests_per_minute: 120
request_timeout: 30s
log_tool_errors: true
`)

	cfg, err := config.Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, "/etc/sheets/sa.json", cfg.CredentialsFile)
	assert.Equal(t, []string{"create_spreadsheet", "update_range"}, cfg.DisabledTools)
	assert.Equal(t, 120, cfg.RequestsPerMinute)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.LogToolErrors)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "credentials_file: [unclosed")
	_, err := config.Load(path, true)
	assert.Error(t, err)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeFile(t, home, "config.yaml", "credentials_file: ~/keys/sa.json\n")
	cfg, err := config.Load("~/config.yaml", true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "keys", "sa.json"), cfg.CredentialsFile)
	assert.FileExists(t, path)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	creds := writeFile(t, dir, "sa.json", "{}")

	err := (&config.Config{}).Validate()
	assert.ErrorIs(t, err, config.ErrMissingCredentials)

	assert.Error(t, (&config.Config{CredentialsFile: filepath.Join(dir, "nope.json")}).Validate())
	assert.Error(t, (&config.Config{CredentialsFile: dir}).Validate())
	assert.Error(t, (&config.Config{CredentialsFile: creds, RequestsPerMinute: -1}).Validate())
	assert.NoError(t, (&config.Config{CredentialsFile: creds}).Validate())
}

func TestDirs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir, err := config.Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".mcp-sheets"), dir)

	logDir, err := config.LogDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".mcp-sheets", "logs"), logDir)

	path, err := config.DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".mcp-sheets", "config.yaml"), path)
}
