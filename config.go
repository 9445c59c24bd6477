package main

import (
	"errors"

	"github.com/spf13/viper"
)

// Config holds runtime settings, read from an optional config.yaml with
// environment variable overrides (e.g. DB_DSN, JWT_SECRET).
type Config struct {
	ListenAddr  string `mapstructure:"listen_addr"`
	Mode        string `mapstructure:"mode"` // gin mode: debug/release/test
	DBDSN       string `mapstructure:"db_dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	JWTSecret   string `mapstructure:"jwt_secret"`
}

func loadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("listen_addr", ":8081")
	v.SetDefault("mode", "")
	v.SetDefault("auto_migrate", true)
	v.SetDefault("jwt_secret", "dev-insecure-secret-change")

	// env overrides: DB_DSN, JWT_SECRET, LISTEN_ADDR, AUTO_MIGRATE, MODE
	v.AutomaticEnv()
	for _, key := range []string{"listen_addr", "mode", "db_dsn", "auto_migrate", "jwt_secret"} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		// no config file is fine, env and defaults carry it
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
