package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

var AppFs = afero.NewOsFs()

// Config holds the server configuration
type Config struct {
	Addr            string
	DatabaseURL     string
	SecretKey       string
	BcryptCost      int
	TokenTTL        time.Duration
	ShutdownTimeout time.Duration
	Debug           bool
	LogFormat       string

	// File is the config file that was read, if any.
	File string
}

const DefaultSecretKey = "secret-dev"

// Load reads configuration from, in increasing priority: defaults, the
// config file, .env and .env.local, and the environment. An explicit path
// must exist; otherwise .jobly.yaml is looked up in the working directory
// and the home directory.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(".jobly")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "jobly"))
	}

	v.SetEnvPrefix("JOBLY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	// The unprefixed names are the conventional ones for these two.
	_ = v.BindEnv("database_url", "JOBLY_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("secret_key", "JOBLY_SECRET_KEY", "SECRET_KEY")

	v.SetDefault("addr", ":3001")
	v.SetDefault("database_url", "postgres:///jobly?sslmode=disable")
	v.SetDefault("secret_key", DefaultSecretKey)
	v.SetDefault("bcrypt_cost", 12)
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("debug", false)
	v.SetDefault("log_format", "text")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Addr:            v.GetString("addr"),
		DatabaseURL:     v.GetString("database_url"),
		SecretKey:       v.GetString("secret_key"),
		BcryptCost:      v.GetInt("bcrypt_cost"),
		TokenTTL:        v.GetDuration("token_ttl"),
		ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		Debug:           v.GetBool("debug"),
		LogFormat:       v.GetString("log_format"),
		File:            v.ConfigFileUsed(),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database_url must not be empty")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("secret_key must not be empty")
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	return cfg, nil
}

// loadDotEnv applies .env without overriding non-empty environment
// variables, then .env.local over both.
func loadDotEnv() error {
	env, err := readEnvFile(".env")
	if err != nil {
		return err
	}
	for k, val := range env {
		if os.Getenv(k) == "" {
			os.Setenv(k, val)
		}
	}

	local, err := readEnvFile(".env.local")
	if err != nil {
		return err
	}
	for k, val := range local {
		os.Setenv(k, val)
	}
	return nil
}

func readEnvFile(name string) (map[string]string, error) {
	if _, err := AppFs.Stat(name); err != nil {
		return nil, nil
	}
	data, err := afero.ReadFile(AppFs, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	env, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return env, nil
}
