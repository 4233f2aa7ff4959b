package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"ctchen222/Tikki-Tacca/internal/game"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPAddr  string    `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080"`
	Decider   Decider   `yaml:"decider"`
	Game      Game      `yaml:"game"`
	Session   Session   `yaml:"session"`
	Redis     Redis     `yaml:"redis"`
	Telemetry Telemetry `yaml:"telemetry"`
}

type Decider struct {
	// URL of a remote move service. Empty means the in-process bot.
	URL     string        `yaml:"url" env:"DECIDER_URL"`
	Timeout time.Duration `yaml:"timeout" env:"DECIDER_TIMEOUT" env-default:"10s"`
}

type Game struct {
	DefaultDifficulty string `yaml:"default-difficulty" env:"GAME_DEFAULT_DIFFICULTY" env-default:"high"`
}

type Session struct {
	IdleTTL time.Duration `yaml:"idle-ttl" env:"SESSION_IDLE_TTL" env-default:"30m"`
}

type Redis struct {
	// Empty keeps live updates in process.
	Addr string `yaml:"addr" env:"REDIS_CONNSTRING"`
}

type Telemetry struct {
	Enabled     bool   `yaml:"enabled" env:"OTEL_ENABLED" env-default:"false"`
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`
	ServiceName string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"tikki-tacca"`
	// Stdout also prints spans to the console.
	Stdout bool `yaml:"stdout" env:"OTEL_TRACES_STDOUT" env-default:"false"`
}

// Load reads the YAML file at path, then applies environment overrides.
// A missing file is not an error: defaults and environment are used alone.
func Load(path string) (*Config, error) {
	config := &Config{}

	_, statErr := os.Stat(path)
	switch {
	case path == "" || errors.Is(statErr, fs.ErrNotExist):
		if err := cleanenv.ReadEnv(config); err != nil {
			return nil, fmt.Errorf("unable to read environment: %w", err)
		}
	case statErr != nil:
		return nil, fmt.Errorf("unable to stat config file: %w", statErr)
	default:
		if err := cleanenv.ReadConfig(path, config); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// MustLoad - load all configurations, panicking on failure.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}
	return config
}

// Validate checks the values cleanenv cannot check by itself.
func (that *Config) Validate() error {
	if _, err := game.ParseDifficulty(that.Game.DefaultDifficulty); err != nil {
		return fmt.Errorf("game.default-difficulty: %w", err)
	}
	if that.Decider.Timeout <= 0 {
		return fmt.Errorf("decider.timeout must be positive, got %s", that.Decider.Timeout)
	}
	if that.Session.IdleTTL <= 0 {
		return fmt.Errorf("session.idle-ttl must be positive, got %s", that.Session.IdleTTL)
	}
	return nil
}

// Difficulty returns the parsed game.default-difficulty.
func (that *Game) Difficulty() game.Difficulty {
	d, err := game.ParseDifficulty(that.DefaultDifficulty)
	if err != nil {
		return game.DefaultDifficulty
	}
	return d
}
