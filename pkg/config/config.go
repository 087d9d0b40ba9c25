package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Feed struct {
		PushURL          string        `yaml:"push_url" validate:"required"`
		SnapshotURL      string        `yaml:"snapshot_url" validate:"required"`
		ReconnectDelay   time.Duration `yaml:"reconnect_delay" default:"5s"`
		HandshakeTimeout time.Duration `yaml:"handshake_timeout" default:"10s"`
	} `yaml:"feed"`
	Poll struct {
		Enabled  bool          `yaml:"enabled" default:"true"`
		Interval time.Duration `yaml:"interval" default:"1s"`
		Timeout  time.Duration `yaml:"timeout" default:"5s"`
	} `yaml:"poll"`
	Alerts struct {
		Sink  string `yaml:"sink" default:"log" validate:"oneof=log redis kafka"`
		Redis struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Channel  string `yaml:"channel" default:"tickboard:alerts"`
		} `yaml:"redis"`
		Kafka struct {
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic" default:"tickboard.alerts"`
			Compression  string        `yaml:"compression" default:"gzip"`
			RequiredAcks int           `yaml:"required_acks" default:"-1"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		} `yaml:"kafka"`
	} `yaml:"alerts"`
	Replay struct {
		CSVPath   string        `yaml:"csv_path" default:"data/extracted_stocks.csv"`
		Interval  time.Duration `yaml:"interval" default:"1s"`
		Symbols   []string      `yaml:"symbols"`
		EMAShort  int           `yaml:"ema_short" default:"38" validate:"gt=0"`
		EMALong   int           `yaml:"ema_long" default:"100" validate:"gt=0"`
		RateLimit struct {
			Capacity  float64 `yaml:"capacity" default:"5"`
			RefillSec float64 `yaml:"refill_per_sec" default:"1"`
		} `yaml:"rate_limit"`
	} `yaml:"replay"`
}

// Load applies struct defaults, overlays the YAML file, and validates
// the result. Defaults go first: applying them after unmarshalling would
// overwrite explicit zero values from the file, notably booleans set to
// false.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides deployment knobs with
// environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FEED_PUSH_URL"); v != "" {
		c.Feed.PushURL = v
	}
	if v := os.Getenv("FEED_SNAPSHOT_URL"); v != "" {
		c.Feed.SnapshotURL = v
	}
	if v := os.Getenv("ALERT_SINK"); v != "" {
		c.Alerts.Sink = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Alerts.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Alerts.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REPLAY_CSV"); v != "" {
		c.Replay.CSVPath = v
	}

	return c, nil
}
