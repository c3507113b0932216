package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebox/internal/quantity"
	"recipebox/internal/scraper"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// chdir moves into an empty directory so no stray config file is picked up.
func chdir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, []string{"http://localhost:8081"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, quantity.DefaultFormatter, cfg.Formatter())
	assert.Equal(t, scraper.Options{
		Timeout:      scraper.DefaultTimeout,
		UserAgent:    scraper.DefaultUserAgent,
		MaxBodyBytes: scraper.DefaultMaxBodyBytes,
	}, cfg.ScraperOptions())
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "recipebox.yaml", `
server:
  port: 9090
  allowed_origins: ["https://app.example.com"]
database:
  url: postgres://localhost/recipes
scraper:
  timeout: 5s
quantity:
  max_denominator: 8
log:
  format: console
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "postgres://localhost/recipes", cfg.Database.URL)
	assert.Equal(t, 5*time.Second, cfg.Scraper.Timeout)
	assert.Equal(t, scraper.DefaultUserAgent, cfg.Scraper.UserAgent)
	assert.Equal(t, 8, cfg.Formatter().MaxDenominator)
	assert.Equal(t, quantity.DefaultTolerance, cfg.Formatter().Tolerance)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t)
	t.Setenv("RECIPEBOX_DATABASE_URL", "postgres://db/recipes")
	t.Setenv("RECIPEBOX_SERVER_PORT", "7000")
	t.Setenv("RECIPEBOX_LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://db/recipes", cfg.Database.URL)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"port":        "server:\n  port: 70000\n",
		"tolerance":   "quantity:\n  tolerance: 0.9\n",
		"denominator": "quantity:\n  max_denominator: 1\n",
		"format":      "log:\n  format: xml\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yaml", body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
