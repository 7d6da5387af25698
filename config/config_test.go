package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
server:
  uploadDir: "`+filepath.ToSlash(filepath.Join(dir, "uploads"))+`"
  staticDir: "`+filepath.ToSlash(filepath.Join(dir, "web"))+`"
  registryFile: "`+filepath.ToSlash(filepath.Join(dir, "registry.json"))+`"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "server.log", cfg.Logging.File)

	// Configured directories are created during validation.
	assert.DirExists(t, filepath.Join(dir, "uploads"))
	assert.DirExists(t, filepath.Join(dir, "web"))
}

func TestLoadConfig_ExplicitValues(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
server:
  port: "9090"
  uploadDir: "`+filepath.ToSlash(filepath.Join(dir, "u"))+`"
  staticDir: "`+filepath.ToSlash(filepath.Join(dir, "s"))+`"
  registryFile: "`+filepath.ToSlash(filepath.Join(dir, "reg.json"))+`"
security:
  enableCORS: true
  corsOrigins:
    - "https://drop.example.com"
logging:
  level: "debug"
  file: "drop.log"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Security.EnableCORS)
	assert.Equal(t, []string{"https://drop.example.com"}, cfg.Security.CORSOrigins)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "drop.log", cfg.Logging.File)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not: valid")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
