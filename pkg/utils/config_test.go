package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9090")
	t.Setenv("CODE_LENGTH", "8")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8")
	t.Setenv("CORS_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, 8, cfg.Code.Length)
	assert.Equal(t, 30, cfg.Code.ExpiryMinutes)
	assert.Equal(t, "@hourly", cfg.Jobs.CleanupSchedule)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
	assert.Equal(t, []string{"10.0.0.0/8"}, cfg.RateLimit.TrustedProxies)
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}
