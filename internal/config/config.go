// Package config содержит логику чтения конфигурации клиента garioush.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config содержит параметры конфигурации клиентского слоя доступа к данным.
type Config struct {
	APIAddress     string        `env:"GARIOUSH_API_ADDRESS"`
	Locale         string        `env:"GARIOUSH_LOCALE"`
	StatePath      string        `env:"GARIOUSH_STATE_PATH"`
	RequestTimeout time.Duration `env:"GARIOUSH_REQUEST_TIMEOUT"`
}

// Load считывает конфигурацию клиента из переменных окружения и
// подставляет значения по умолчанию для незаданных параметров.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.APIAddress == "" {
		cfg.APIAddress = "https://yousab-tech.com/groshy/public"
	}
	if cfg.Locale == "" {
		cfg.Locale = "en"
	}
	if cfg.StatePath == "" {
		cfg.StatePath = "garioush.db"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	return cfg, nil
}

// ServerConfig содержит параметры конфигурации локального мок-сервера API.
type ServerConfig struct {
	RunAddress string `env:"RUN_ADDRESS"`
	AuthSecret string `env:"AUTH_SECRET"`
}

// ParseServer считывает конфигурацию мок-сервера из флагов командной строки
// и переменных окружения. Переменные окружения имеют приоритет над флагами.
func ParseServer() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envRunAddress := cfg.RunAddress
	envAuthSecret := cfg.AuthSecret

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	flag.StringVar(&cfg.AuthSecret, "s", "", "secret key for signing auth tokens")

	flag.Parse()

	if envRunAddress != "" {
		cfg.RunAddress = envRunAddress
	}
	if envAuthSecret != "" {
		cfg.AuthSecret = envAuthSecret
	}

	return cfg, nil
}
