package config

import (
	"time"
)

type Config struct {
	Server  Server  `yaml:"server"`
	API     API     `yaml:"api"`
	Session Session `yaml:"session"`
	Metrics Metrics `yaml:"metrics"`
	Log     Log     `yaml:"log"`
}

type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// API describes the expenses backend. An empty BaseURL selects the local
// JSON file backend at FilePath.
type API struct {
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	FilePath string        `yaml:"file_path"`
}

type Session struct {
	Lifetime time.Duration `yaml:"lifetime"`
	Store    string        `yaml:"store"`
	Redis    Redis         `yaml:"redis"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type Metrics struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

type Log struct {
	Production bool `yaml:"production"`
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Path is the location of the YAML config file. It is provided by main from
// the -config flag.
type Path string

func Default() *Config {
	return &Config{
		Server: Server{
			Host: "localhost",
			Port: 8123,
		},
		API: API{
			BaseURL:  "https://finance-tracker-backend-imyy.onrender.com",
			Timeout:  15 * time.Second,
			FilePath: "./data/expenses.json",
		},
		Session: Session{
			Lifetime: 24 * time.Hour,
			Store:    StoreMemory,
			Redis: Redis{
				Addr:   "localhost:6379",
				Prefix: "scs:session:",
			},
		},
		Metrics: Metrics{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

func New(path Path) (*Config, error) {
	cfg := Default()

	if err := loadYAML(string(path), cfg); err != nil {
		return nil, err
	}
	if err := loadEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
