package core

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

const (
	EnvBackendURL = "GREETFORM_BACKEND_URL"
	EnvPort       = "GREETFORM_PORT"
	EnvLogLevel   = "GREETFORM_LOG_LEVEL"
)

var DefaultConfigFiles = []string{"greetform.config.yml", "greetform.config.toml"}

type Config struct {
	OutputDir    string        `yaml:"outputDir" toml:"outputDir"`
	RoutesDir    string        `yaml:"routesDir" toml:"routesDir"`
	PublicDir    string        `yaml:"publicDir" toml:"publicDir"`
	CacheEnabled bool          `yaml:"cache" toml:"cache"`
	DebugHeaders bool          `yaml:"debugHeaders" toml:"debugHeaders"`
	DebugLogs    bool          `yaml:"debugLogs" toml:"debugLogs"`
	GreetFormat  string        `yaml:"greetFormat" toml:"greetFormat"`
	BackendURL   string        `yaml:"backendURL" toml:"backendURL"`
	GreetTimeout time.Duration `yaml:"greetTimeout" toml:"greetTimeout"`
	Port         int           `yaml:"port" toml:"port"`
}

func DefaultConfig() Config {
	return Config{
		OutputDir:    "./cache",
		RoutesDir:    "web/routes",
		PublicDir:    "web/public",
		CacheEnabled: false,
		DebugHeaders: false,
		DebugLogs:    false,
		GreetTimeout: 10 * time.Second,
		Port:         8080,
	}
}

// LoadConfig reads the first config file in paths that exists. A missing or
// malformed file yields the defaults, the latter with a warning logged;
// environment overrides apply either way.
func LoadConfig(paths ...string) Config {
	if len(paths) == 0 {
		paths = DefaultConfigFiles
	}

	_ = godotenv.Load()

	cfg := DefaultConfig()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := decodeConfig(path, data, &cfg); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("config_decode_failed")
			cfg = DefaultConfig()
		}
		break
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return cfg
}

func decodeConfig(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	default:
		return yaml.Unmarshal(data, cfg)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.BackendURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Port = port
		}
	}
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}
	if cfg.RoutesDir == "" {
		cfg.RoutesDir = def.RoutesDir
	}
	if cfg.PublicDir == "" {
		cfg.PublicDir = def.PublicDir
	}
	if cfg.Port <= 0 {
		cfg.Port = def.Port
	}
}
