package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config carries everything the engine needs at construction time. API
// keys come from the environment in a fixed preference order; model names
// and limits may be overridden by an optional yaml file.
type Config struct {
	Provider ProviderConfig `yaml:"provider" validate:"required"`
	Limits   Limits         `yaml:"limits" validate:"required"`
	AppURL   string         `yaml:"app_url"`
}

type ProviderConfig struct {
	Keys           []string `yaml:"-" validate:"min=1"`
	ProModel       string   `yaml:"pro_model" validate:"required"`
	FlashModel     string   `yaml:"flash_model" validate:"required"`
	FlashLiteModel string   `yaml:"flash_lite_model" validate:"required"`
	ImageModel     string   `yaml:"image_model" validate:"required"`
}

type Limits struct {
	SafetyTimeoutSeconds int `yaml:"safety_timeout_seconds" validate:"min=10,max=290"`
	MaxKeyCycles         int `yaml:"max_key_cycles" validate:"min=1,max=5"`
	CycleDelaySeconds    int `yaml:"cycle_delay_seconds" validate:"min=0,max=120"`
	MaxBeatAttempts      int `yaml:"max_beat_attempts" validate:"min=1,max=10"`
	RequestsPerMinute    int `yaml:"requests_per_minute" validate:"min=1"`
	BurstSize            int `yaml:"burst_size" validate:"min=1"`
}

// DefaultLimits mirrors the runtime constraints the host imposes: the
// process is killed near 300s, so every provider call is capped at 240s.
func DefaultLimits() Limits {
	return Limits{
		SafetyTimeoutSeconds: 240,
		MaxKeyCycles:         2,
		CycleDelaySeconds:    15,
		MaxBeatAttempts:      3,
		RequestsPerMinute:    60,
		BurstSize:            10,
	}
}

// keyEnvVars is the fixed preference order for credentials.
var keyEnvVars = []string{
	"GENERATION_PROVIDER_KEY",
	"GENERATION_PROVIDER_KEY_BACKUP_1",
	"GENERATION_PROVIDER_KEY_BACKUP_2",
	"GENERATION_PROVIDER_KEY_BACKUP_3",
}

// Load reads .env (if present), the optional BOOKFORGE_CONFIG yaml file,
// and the credential environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Provider: ProviderConfig{
			ProModel:       "gemini-2.5-pro",
			FlashModel:     "gemini-2.5-flash",
			FlashLiteModel: "gemini-2.5-flash-lite",
			ImageModel:     "gemini-2.5-flash-image",
		},
		Limits: DefaultLimits(),
		AppURL: os.Getenv("APP_URL"),
	}

	if path := os.Getenv("BOOKFORGE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.Provider.Keys = keysFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func keysFromEnv() []string {
	var keys []string
	for _, name := range keyEnvVars {
		if v := os.Getenv(name); v != "" {
			keys = append(keys, v)
		}
	}
	return keys
}

func (c *Config) validate() error {
	if len(c.Provider.Keys) == 0 {
		return fmt.Errorf("no generation keys configured (set %s)", keyEnvVars[0])
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}
