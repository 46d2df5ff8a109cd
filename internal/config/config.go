package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the server runtime configuration. All fields have usable
// defaults; a YAML file and SIGN_HOST/SIGN_PORT environment variables can
// override them.
type Config struct {
	Listen       string `yaml:"listen"`
	Seed         int64  `yaml:"seed"`
	DataDir      string `yaml:"data_dir"`
	StaticDir    string `yaml:"static_dir"`
	DisableDB    bool   `yaml:"disable_db"`
	HistoryLimit int    `yaml:"history_limit"`
}

func Defaults() Config {
	return Config{
		Listen:       "127.0.0.1:8000",
		Seed:         0,
		DataDir:      "./data",
		StaticDir:    "./dist",
		HistoryLimit: 50,
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (Config, error) {
	c := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = Defaults().HistoryLimit
	}
	return c, nil
}

// ApplyEnv overrides the listen address from SIGN_HOST / SIGN_PORT.
func (c *Config) ApplyEnv() {
	host, port, err := net.SplitHostPort(c.Listen)
	if err != nil {
		host, port = "127.0.0.1", "8000"
	}
	if v := strings.TrimSpace(os.Getenv("SIGN_HOST")); v != "" {
		host = v
	}
	if v := strings.TrimSpace(os.Getenv("SIGN_PORT")); v != "" {
		port = v
	}
	c.Listen = net.JoinHostPort(host, port)
}
