// Package config loads server settings from a YAML file with environment
// overrides.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Log      Log      `yaml:"log"`
	HTTP     HTTP     `yaml:"http"`
	Protocol Protocol `yaml:"protocol"`
	Suggest  Suggest  `yaml:"suggest"`
}

type Log struct {
	Level  string `yaml:"level" env:"BG_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"BG_LOG_FORMAT" env-default:"console"` // console or json
	Caller bool   `yaml:"caller" env:"BG_LOG_CALLER" env-default:"false"`
}

type HTTP struct {
	Enabled        bool          `yaml:"enabled" env:"BG_HTTP_ENABLED" env-default:"true"`
	Host           string        `yaml:"host" env:"BG_HTTP_HOST" env-default:"localhost"`
	Port           int           `yaml:"port" env:"BG_HTTP_PORT" env-default:"8080"`
	ReadTimeout    time.Duration `yaml:"read-timeout" env-default:"30s"`
	WriteTimeout   time.Duration `yaml:"write-timeout" env-default:"30s"`
	IdleTimeout    time.Duration `yaml:"idle-timeout" env-default:"60s"`
	ShutdownGrace  time.Duration `yaml:"shutdown-grace" env-default:"10s"`
	MaxFastWorkers int           `yaml:"max-fast-workers" env-default:"100"`
	MaxSlowWorkers int           `yaml:"max-slow-workers" env-default:"4"`
}

type Protocol struct {
	Enabled bool `yaml:"enabled" env:"BG_PROTOCOL_ENABLED" env-default:"false"`
	Port    int  `yaml:"port" env:"BG_PROTOCOL_PORT" env-default:"1234"`
	Prompt  bool `yaml:"prompt" env-default:"true"`
}

// Suggest configures the move-suggestion service. An empty URL disables it.
type Suggest struct {
	URL             string        `yaml:"url" env:"BG_SUGGEST_URL" env-default:""`
	Timeout         time.Duration `yaml:"timeout" env:"BG_SUGGEST_TIMEOUT" env-default:"5s"`
	Retry           int           `yaml:"retry" env-default:"3"`
	MaxConnsPerHost int           `yaml:"max-conns-per-host" env-default:"16"`
}

// Load reads the file at path, or only the environment when path is empty.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	var err error
	if path == "" {
		err = cleanenv.ReadEnv(cfg)
	} else {
		err = cleanenv.ReadConfig(path, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate checks value ranges cleanenv cannot express.
func (c *Config) Validate() error {
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http port %d out of range", c.HTTP.Port)
	}
	if c.Protocol.Port < 0 || c.Protocol.Port > 65535 {
		return fmt.Errorf("protocol port %d out of range", c.Protocol.Port)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if !c.HTTP.Enabled && !c.Protocol.Enabled {
		return fmt.Errorf("no server enabled")
	}
	return nil
}

func (that *HTTP) Addr() string {
	return net.JoinHostPort(that.Host, strconv.Itoa(that.Port))
}

// Usage describes the environment variables.
func Usage() string {
	desc, err := cleanenv.GetDescription(&Config{}, nil)
	if err != nil {
		return err.Error()
	}
	return desc
}
