package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	envBaseURL   = "EXPENSES_API_BASE_URL"
	envPort      = "EXPENSES_PORT"
	envRedisAddr = "EXPENSES_REDIS_ADDR"
)

var (
	errConfigFileIsDir = errors.New("config file is dir")
	errUnknownStore    = errors.New("unknown session store")
	errInvalidPort     = errors.New("invalid port")
)

// loadYAML overlays the file at name onto cfg. A missing file leaves the
// defaults in place.
func loadYAML(name string, cfg *Config) error {
	if name == "" {
		return nil
	}

	filename, err := filepath.Abs(name)
	if err != nil {
		return err
	}

	finfo, err := os.Stat(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if finfo.IsDir() {
		return errConfigFileIsDir
	}

	yamlFile, err := os.ReadFile(filename)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", filename, err)
	}
	return nil
}

// loadEnv reads an optional .env file and applies EXPENSES_* overrides.
func loadEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	if v, ok := os.LookupEnv(envBaseURL); ok {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(envPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", envPort, errInvalidPort)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv(envRedisAddr); v != "" {
		cfg.Session.Redis.Addr = v
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errInvalidPort
	}
	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("%w: %q", errUnknownStore, c.Session.Store)
	}
	return nil
}
