package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"APP_PORT", "GIN_MODE", "GIN_PATH", "DB_DRIVER", "DATABASE_URI", "DB_PATH",
	"DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"REDIS_HOST", "REDIS_PORT", "REDIS_DB", "REDIS_PASSWORD",
	"SESSION_SECRET", "SESSION_STORE", "SESSION_COOKIE", "SESSION_TTL_HOURS", "SESSION_COOKIE_SECURE",
	"LOG_LEVEL", "LOG_PATH", "LOG_MAX_SIZE_MB", "LOG_MAX_BACKUPS", "LOG_MAX_AGE_DAYS", "LOG_COMPRESS",
	"CORS_ALLOWED_ORIGINS",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func missingPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.json")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "s3cret")

	cfg, err := LoadFrom(missingPath(t))
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.AppPort)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, "release", cfg.GinMode)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "social.db", cfg.DBPath)
	assert.Equal(t, SessionStoreMemory, cfg.SessionStore)
	assert.Equal(t, "session", cfg.SessionCookie)
	assert.Equal(t, 720, cfg.SessionTTLHours)
	assert.Equal(t, 6379, cfg.RedisPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.SessionCookieSecure)
}

func TestLoadRequiresSecret(t *testing.T) {
	clearEnv(t)
	_, err := LoadFrom(missingPath(t))
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("SESSION_STORE", "redis")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("SESSION_TTL_HOURS", "24")
	t.Setenv("SESSION_COOKIE_SECURE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := LoadFrom(missingPath(t))
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, SessionStoreRedis, cfg.SessionStore)
	assert.Equal(t, 6380, cfg.RedisPort)
	assert.Equal(t, 24, cfg.SessionTTLHours)
	assert.True(t, cfg.SessionCookieSecure)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoadBlankOriginsKeepDefault(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", " , ")

	cfg, err := LoadFrom(missingPath(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoadJSONFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{
		"app": {"AppPort": "7000", "AllowedOrigins": ["https://app.example"]},
		"database": {"Driver": "mysql", "DBHost": "db", "DBName": "feed"},
		"session": {"Secret": "from-file", "TTLHours": 2},
		"log": {"Level": "debug", "Compress": true}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.AppPort)
	assert.Equal(t, []string{"https://app.example"}, cfg.AllowedOrigins)
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, "feed", cfg.DBName)
	assert.Equal(t, "root", cfg.DBUser)
	assert.Equal(t, "from-file", cfg.SessionSecret)
	assert.Equal(t, 2, cfg.SessionTTLHours)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.LogCompress)

	t.Setenv("APP_PORT", "9000")
	cfg, err = LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.AppPort)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]string{
		"bad integer":  {"REDIS_PORT": "sixty"},
		"bad driver":   {"DB_DRIVER": "oracle"},
		"bad store":    {"SESSION_STORE": "memcached"},
		"negative ttl": {"SESSION_TTL_HOURS": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("SESSION_SECRET", "s3cret")
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadFrom(missingPath(t))
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	clearEnv(t)
	t.Setenv("SESSION_SECRET", "s3cret")
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestOpenDialector(t *testing.T) {
	for _, driver := range []string{DriverSQLite, DriverMySQL, DriverPostgres} {
		d, err := openDialector(AppConfig{DBDriver: driver, DBPath: "x.db"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}
	_, err := openDialector(AppConfig{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestInitDatabaseMigrates(t *testing.T) {
	type widget struct {
		ID   uint
		Name string
	}
	cfg := AppConfig{DBDriver: DriverSQLite, DatabaseURI: "file:config_migrate?mode=memory&cache=shared", LogLevel: "silent"}
	db, err := InitDatabase(cfg, nil, &widget{})
	require.NoError(t, err)
	defer CloseDatabase(db)

	assert.True(t, db.Migrator().HasTable(&widget{}))
	require.NoError(t, db.Create(&widget{Name: "a"}).Error)
}
