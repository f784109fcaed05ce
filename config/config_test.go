package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"JWT_SECRET": "s",
		"DB_USER":    "u",
		"DB_NAME":    "surveys",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 60*time.Minute, cfg.JWTTTL)
	assert.False(t, cfg.StrictAnswers)
	assert.Equal(t, 30, cfg.SubmitRatePerMin)
	assert.Equal(t, 10, cfg.LoginRatePerMin)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Contains(t, cfg.DatabaseURL, "user=u")
	assert.Contains(t, cfg.DatabaseURL, "dbname=surveys")
	assert.Contains(t, cfg.DatabaseURL, "port=5432")
	assert.False(t, cfg.SupabaseEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(env(map[string]string{
		"JWT_SECRET":      "s",
		"DB_DRIVER":       "SQLite",
		"SQLITE_PATH":     "/tmp/x.db",
		"JWT_TTL":         "15m",
		"STRICT_ANSWERS":  "true",
		"CORS_ORIGINS":    "https://a.example, https://b.example,",
		"TRUSTED_PROXIES": "10.0.0.1",
		"SUPABASE_URL":    "https://proj.supabase.co",
		"SUPABASE_KEY":    "key",
		"PUBLIC_BASE_URL": "https://surveys.example/",
	}))
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.True(t, cfg.StrictAnswers)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"10.0.0.1"}, cfg.TrustedProxies)
	assert.True(t, cfg.SupabaseEnabled())
	assert.Equal(t, "https://surveys.example", cfg.PublicBaseURL)
}

func TestFromEnvErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":  {},
		"unknown driver":  {"JWT_SECRET": "s", "DB_DRIVER": "mysql"},
		"bad ttl":         {"JWT_SECRET": "s", "JWT_TTL": "soon"},
		"negative rate":   {"JWT_SECRET": "s", "SUBMIT_RATE_PER_MIN": "-1"},
		"bad bool":        {"JWT_SECRET": "s", "STRICT_ANSWERS": "maybe"},
		"bad cors origin": {"JWT_SECRET": "s", "CORS_ORIGINS": "localhost:4200"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(env(vars))
			assert.Error(t, err)
		})
	}
}
