package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	ShiprocketBaseURL       string `env:"SHIPROCKET_BASE_URL" envDefault:"https://apiv2.shiprocket.in/v1/external" validate:"required,url"`
	ShiprocketAPIToken      string `env:"SHIPROCKET_API_TOKEN"`
	ShiprocketWebhookSecret string `env:"SHIPROCKET_WEBHOOK_SECRET,required" validate:"required"`

	EmailProvider string `env:"EMAIL_PROVIDER" envDefault:"resend" validate:"omitempty,oneof=resend mailgun postmark"`
	EmailAPIKey   string `env:"EMAIL_API_KEY"`
	EmailFrom     string `env:"EMAIL_FROM" envDefault:"Jenii <orders@jenii.in>"`
	MailgunDomain string `env:"MAILGUN_DOMAIN" validate:"required_if=EmailProvider mailgun"`

	StoreName string `env:"STORE_NAME" envDefault:"Jenii"`
	StoreURL  string `env:"STORE_URL" envDefault:"https://jenii.in" validate:"omitempty,url"`

	CacheProvider         string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisConnectionString string `env:"REDIS_CONNECTION_STRING" envDefault:"redis://localhost:6379/0" validate:"required_if=CacheProvider redis"`

	AdminJWTSecret string `env:"ADMIN_JWT_SECRET,required" validate:"required,min=32"`

	LifecyclePolicyFile   string `env:"LIFECYCLE_POLICY_FILE"`
	AllowTerminalOverride bool   `env:"LIFECYCLE_ALLOW_TERMINAL_OVERRIDE" envDefault:"false"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	Port      string     `env:"PORT" envDefault:"8080"`

	Lifecycle LifecyclePolicy `env:"-"`
}

// LifecyclePolicy controls how carrier events interact with orders that are
// already in a terminal state. The flags can come from env or from an
// optional YAML file, the file winning when present.
type LifecyclePolicy struct {
	// AllowTerminalOverride lets shipment_delivered / shipment_cancelled /
	// shipment_returned overwrite CANCELLED, DELIVERED and RETURNED orders,
	// matching the carrier's view of the world over ours.
	AllowTerminalOverride bool `yaml:"allow_terminal_override"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Lifecycle = LifecyclePolicy{AllowTerminalOverride: cfg.AllowTerminalOverride}
	if file := strings.TrimSpace(cfg.LifecyclePolicyFile); file != "" {
		policy, err := LoadLifecyclePolicy(file)
		if err != nil {
			return nil, err
		}
		cfg.Lifecycle = *policy
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	// An empty EMAIL_API_KEY disables sending rather than failing startup;
	// email is best-effort throughout.
	return configValidator.Struct(c)
}

// LoadLifecyclePolicy reads a policy file like:
//
//	allow_terminal_override: true
func LoadLifecyclePolicy(path string) (*LifecyclePolicy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lifecycle policy file: %w", err)
	}

	var policy LifecyclePolicy
	decoder := yaml.NewDecoder(strings.NewReader(string(raw)))
	decoder.KnownFields(true)
	if err := decoder.Decode(&policy); err != nil {
		return nil, fmt.Errorf("failed to parse lifecycle policy file %s: %w", path, err)
	}
	return &policy, nil
}
