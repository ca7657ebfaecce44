package config

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	prev := AppFs
	AppFs = afero.NewMemMapFs()
	t.Cleanup(func() { AppFs = prev })
	return AppFs
}

// clearEnv registers cleanup for keys Load may set and unsets them.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	useMemFs(t)
	clearEnv(t, "DATABASE_URL", "SECRET_KEY", "JOBLY_DATABASE_URL", "JOBLY_SECRET_KEY")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":3001", cfg.Addr)
	assert.Equal(t, "postgres:///jobly?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, DefaultSecretKey, cfg.SecretKey)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.Debug)
	assert.Empty(t, cfg.File)
}

func TestLoadFileAndEnv(t *testing.T) {
	fs := useMemFs(t)
	clearEnv(t, "DATABASE_URL", "SECRET_KEY", "JOBLY_DATABASE_URL", "JOBLY_SECRET_KEY")
	t.Setenv("JOBLY_ADDR", ":8080")

	require.NoError(t, afero.WriteFile(fs, "/etc/jobly.yaml", []byte(`
addr: ":9000"
database_url: postgres://file/jobly
bcrypt_cost: 4
token_ttl: 1h
debug: true
`), 0o644))

	cfg, err := Load("/etc/jobly.yaml")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr, "environment wins over file")
	assert.Equal(t, "postgres://file/jobly", cfg.DatabaseURL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "/etc/jobly.yaml", cfg.File)
}

func TestLoadUnprefixedEnv(t *testing.T) {
	useMemFs(t)
	clearEnv(t, "JOBLY_DATABASE_URL", "JOBLY_SECRET_KEY")
	t.Setenv("DATABASE_URL", "postgres://env/jobly")
	t.Setenv("SECRET_KEY", "s3cret")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/jobly", cfg.DatabaseURL)
	assert.Equal(t, "s3cret", cfg.SecretKey)
}

func TestLoadDotEnv(t *testing.T) {
	fs := useMemFs(t)
	clearEnv(t, "DATABASE_URL", "JOBLY_DATABASE_URL", "JOBLY_SECRET_KEY")
	t.Setenv("SECRET_KEY", "from-env")

	require.NoError(t, afero.WriteFile(fs, ".env", []byte("DATABASE_URL=postgres://dotenv/jobly\nSECRET_KEY=from-dotenv\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, ".env.local", []byte("DATABASE_URL=postgres://local/jobly\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://local/jobly", cfg.DatabaseURL)
	assert.Equal(t, "from-env", cfg.SecretKey, ".env does not override the environment")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	useMemFs(t)

	_, err := Load("/nope/jobly.yaml")
	require.Error(t, err)
}
