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

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STEGO_TEMP_DIR", "")
	t.Setenv("STEGO_LOG_LEVEL", "")

	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, c.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, c.AllowedOrigins)
	assert.Equal(t, DefaultTempDir, c.TempDir)
	assert.Equal(t, int64(16<<20), c.MaxUploadBytes)
	assert.Equal(t, 4, c.MinPasswordLength)
	assert.Equal(t, 89478485, c.MaxPixels)
	assert.Equal(t, 40.0, c.MinPSNR)
	assert.Equal(t, time.Hour, c.OutputTTL())
	assert.Equal(t, logrus.InfoLevel, c.Level())
}

func TestLoadFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: 9000
allowed_origins: ["https://example.org"]
temp_dir: /var/tmp/stego
min_password_length: 8
max_pixels: 1000000
min_psnr: 55.5
output_ttl_minutes: 5
log_level: debug
`), 0o644))

	t.Setenv("PORT", "")
	t.Setenv("STEGO_TEMP_DIR", "")
	t.Setenv("STEGO_LOG_LEVEL", "")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, c.Port)
	assert.Equal(t, []string{"https://example.org"}, c.AllowedOrigins)
	assert.Equal(t, "/var/tmp/stego", c.TempDir)
	assert.Equal(t, 8, c.MinPasswordLength)
	assert.Equal(t, 1000000, c.MaxPixels)
	assert.Equal(t, 55.5, c.MinPSNR)
	assert.Equal(t, 5*time.Minute, c.OutputTTL())
	assert.Equal(t, logrus.DebugLevel, c.Level())

	t.Setenv("PORT", "8081")
	t.Setenv("STEGO_LOG_LEVEL", "warn")
	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8081, c.Port)
	assert.Equal(t, logrus.WarnLevel, c.Level())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("STEGO_TEMP_DIR", "")
	t.Setenv("STEGO_LOG_LEVEL", "")

	t.Setenv("PORT", "http")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("PORT", "")
	t.Setenv("STEGO_LOG_LEVEL", "loud")
	_, err = Load("")
	assert.Error(t, err)

	t.Setenv("STEGO_LOG_LEVEL", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_ttl_minutes: -1"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("port: [nope"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
