// Package config loads runtime configuration from a .env file plus the
// process environment. Flags set on the CLI override everything here.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the environment-driven configuration.
type Config struct {
	// RenderURL is the base URL of the external DANFE rendering service.
	RenderURL string
	// CNPJURL is the base URL of the company registry.
	CNPJURL string
	// ProductURL and ProductToken configure the product catalog.
	ProductURL   string
	ProductToken string
	// IBPTURL is the base URL of the IBPT tax table CSV mirror.
	IBPTURL string
	// ListenAddr is the HTTP API bind address.
	ListenAddr string
	// LogDir is where the append-only event logs live.
	LogDir string
	// Workers bounds conversion parallelism. Zero means the default.
	Workers int
	// Debug switches development logging on.
	Debug bool
}

// Load reads .env if present, then the environment. A missing .env is
// not an error; running off plain environment variables is the normal
// deployment mode.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	cfg := &Config{
		RenderURL:    getenv("NFE_RENDER_URL", "http://localhost:3001"),
		CNPJURL:      getenv("NFE_CNPJ_URL", "https://publica.cnpj.ws/cnpj"),
		ProductURL:   getenv("NFE_PRODUCT_URL", "https://api.cosmos.bluesoft.com.br"),
		ProductToken: os.Getenv("NFE_PRODUCT_TOKEN"),
		IBPTURL:      getenv("NFE_IBPT_URL", "https://www.concity.com.br/ibpt-csv"),
		ListenAddr:   getenv("NFE_LISTEN_ADDR", ":8080"),
		LogDir:       getenv("NFE_LOG_DIR", "logs"),
		Debug:        boolenv("NFE_DEBUG"),
	}

	if raw := os.Getenv("NFE_WORKERS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, errors.New("NFE_WORKERS must be a positive integer")
		}
		cfg.Workers = n
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolenv(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}
