package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "task_manager.db", cfg.DatabaseURL)
	assert.Equal(t, ":8001", cfg.ListenAddr)
	assert.Equal(t, "HS256", cfg.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, int64(5<<20), cfg.MaxUploadBytes)
	assert.Equal(t, 24*time.Hour, cfg.SweepInterval)
	assert.Len(t, cfg.CORSOrigins, 3)
	assert.Error(t, cfg.RequireSecret())
}

func TestLoadFromEnv(t *testing.T) {
	cfg, err := load(envMap(map[string]string{
		"SECRET_KEY":                  "s3cret",
		"ALGORITHM":                   "HS512",
		"ACCESS_TOKEN_EXPIRE_MINUTES": "90",
		"BCRYPT_COST":                 "4",
		"MAX_UPLOAD_MB":               "2",
		"CORS_ORIGINS":                "https://a.example, https://b.example",
		"SWEEP_AT":                    "03:30",
	}))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.SecretKey)
	assert.Equal(t, "HS512", cfg.Algorithm)
	assert.Equal(t, 90*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, int64(2<<20), cfg.MaxUploadBytes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "03:30", cfg.SweepAt)
	assert.NoError(t, cfg.RequireSecret())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "database_url: data/app.db\n" +
		"secret_key: ${APP_SECRET}\n" +
		"access_token_expire_minutes: 15\n" +
		"sweep_interval_hours: 0\n" +
		"listen_addr: \":9000\"\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := load(envMap(map[string]string{
		"CONFIG_FILE": path,
		"APP_SECRET":  "from-file",
		"LISTEN_ADDR": ":7000",
	}))
	require.NoError(t, err)

	assert.Equal(t, "data/app.db", cfg.DatabaseURL)
	assert.Equal(t, "from-file", cfg.SecretKey)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, time.Duration(0), cfg.SweepInterval)
	assert.Equal(t, ":7000", cfg.ListenAddr)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"algorithm":    {"ALGORITHM": "RS256"},
		"ttl":          {"ACCESS_TOKEN_EXPIRE_MINUTES": "soon"},
		"zero ttl":     {"ACCESS_TOKEN_EXPIRE_MINUTES": "0"},
		"cost":         {"BCRYPT_COST": "40"},
		"sweep at":     {"SWEEP_AT": "25:00"},
		"sweep format": {"SWEEP_AT": "0330"},
		"missing file": {"CONFIG_FILE": filepath.Join(t.TempDir(), "absent.yaml")},
		"upload limit": {"MAX_UPLOAD_MB": "-1"},
		"sweep hours":  {"SWEEP_INTERVAL_HOURS": "x"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := load(envMap(env))
			assert.Error(t, err)
		})
	}
}
