package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, "catalog.json", cfg.Catalog.Source)
	assert.Equal(t, 1000, cfg.Catalog.ArticleLimit)
	assert.Equal(t, 500*time.Millisecond, cfg.Site.ScrollDelay())
	assert.Equal(t, 500*time.Millisecond, cfg.Site.OpenDelay())
	assert.Equal(t, 150, cfg.Site.DescriptionLimit)
	assert.Equal(t, "https://www.stone-technology.info", cfg.Scraper.BaseURL)
	assert.Equal(t, 0, cfg.Scraper.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.Scraper.ProductDelay())
	assert.Equal(t, 3*time.Second, cfg.Scraper.CategoryDelay())
	assert.Equal(t, 50, cfg.Scraper.MaxProductsPerCategory)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadReadsYAMLAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9090
catalog:
  source: https://example.com/catalog.json
scraper:
  product_delay_ms: 10
  proxies:
    - http://127.0.0.1:3128
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))
	t.Setenv("SCRAPER_OUTPUT_FILE", "/tmp/out.json")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://example.com/catalog.json", cfg.Catalog.Source)
	assert.Equal(t, 10*time.Millisecond, cfg.Scraper.ProductDelay())
	assert.Equal(t, []string{"http://127.0.0.1:3128"}, cfg.Scraper.Proxies)
	assert.Equal(t, "/tmp/out.json", cfg.Scraper.OutputFile)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: ["), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLogConfigApply(t *testing.T) {
	defer log.SetLevel(log.GetLevel())
	defer log.SetFormatter(log.StandardLogger().Formatter)

	require.NoError(t, LogConfig{Level: "debug", Format: "json"}.Apply())
	assert.Equal(t, log.DebugLevel, log.GetLevel())
	assert.IsType(t, &log.JSONFormatter{}, log.StandardLogger().Formatter)

	require.NoError(t, LogConfig{Level: "warn", Format: "text"}.Apply())
	assert.Equal(t, log.WarnLevel, log.GetLevel())

	assert.Error(t, LogConfig{Level: "loud"}.Apply())
	assert.Error(t, LogConfig{Level: "info", Format: "xml"}.Apply())
}
