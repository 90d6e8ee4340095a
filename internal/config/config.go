package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// configFileEnv names an optional YAML file loaded before environment overrides.
const configFileEnv = "CONFIG_FILE"

type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	CORSOrigins string `yaml:"cors_origins"`

	// Storage. An empty DatabaseURL runs the server on the in-memory store.
	DatabaseURL string `yaml:"database_url"`
	AutoMigrate bool   `yaml:"auto_migrate"`

	// Identity (Firebase Authentication)
	FirebaseProjectID string `yaml:"firebase_project_id"`
	FirebaseAPIKey    string `yaml:"firebase_api_key"`
	AuthJWKSURL       string `yaml:"auth_jwks_url"`
	IdentityBaseURL   string `yaml:"identity_base_url"`

	// LLM Configuration
	OpenAIAPIKey     string `yaml:"openai_api_key"`
	OpenAIBaseURL    string `yaml:"openai_base_url"`
	OpenRouterAPIKey string `yaml:"openrouter_api_key"`
	AnthropicAPIKey  string `yaml:"anthropic_api_key"`
	DefaultModel     string `yaml:"default_model"`
	HumanizeModel    string `yaml:"humanize_model"`
	PersonaModel     string `yaml:"persona_model"`

	GenerationStageTimeout time.Duration `yaml:"generation_stage_timeout"`
	GenerationStaleAfter   time.Duration `yaml:"generation_stale_after"`

	// WordPress publishing
	WordPressRateLimit float64       `yaml:"wordpress_rate_limit"`
	WordPressBurst     int           `yaml:"wordpress_burst"`
	WordPressTimeout   time.Duration `yaml:"wordpress_timeout"`

	// Event bus. Events are only logged when RabbitMQURL is empty.
	RabbitMQURL        string `yaml:"rabbitmq_url"`
	RabbitMQExchange   string `yaml:"rabbitmq_exchange"`
	RabbitMQQueue      string `yaml:"rabbitmq_queue"`
	RabbitMQRoutingKey string `yaml:"rabbitmq_routing_key"`

	LogDir      string `yaml:"log_dir"`
	LogMaxFiles int    `yaml:"log_max_files"`

	Debug bool `yaml:"debug"`
}

// Load builds the configuration from defaults, the optional CONFIG_FILE and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	cfg := defaultConfig(getEnv("ENVIRONMENT", "dev"))

	if path := os.Getenv(configFileEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if cfg.AuthJWKSURL == "" {
		cfg.AuthJWKSURL = defaultJWKSURL
	}
	return cfg, nil
}

const (
	defaultJWKSURL         = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
	defaultIdentityBaseURL = "https://identitytoolkit.googleapis.com/v1"
)

func defaultConfig(env string) *Config {
	return &Config{
		Port:                   "8080",
		Environment:            env,
		CORSOrigins:            "http://localhost:5173",
		IdentityBaseURL:        defaultIdentityBaseURL,
		OpenAIBaseURL:          "https://api.openai.com/v1",
		DefaultModel:           "openai/gpt-4o",
		HumanizeModel:          "openai/gpt-4o",
		PersonaModel:           "openai/gpt-4",
		GenerationStageTimeout: 3 * time.Minute,
		GenerationStaleAfter:   15 * time.Minute,
		WordPressRateLimit:     2,
		WordPressBurst:         4,
		WordPressTimeout:       30 * time.Second,
		RabbitMQExchange:       "contentpilot.events",
		RabbitMQQueue:          "contentpilot.articles",
		RabbitMQRoutingKey:     "articles",
		LogMaxFiles:            10,
		// Debug defaults to true outside production
		Debug: env != "prod",
	}
}

func (c *Config) applyEnvOverrides() error {
	c.Port = getEnv("PORT", c.Port)
	c.CORSOrigins = getEnv("CORS_ORIGINS", c.CORSOrigins)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.FirebaseProjectID = getEnv("FIREBASE_PROJECT_ID", c.FirebaseProjectID)
	c.FirebaseAPIKey = getEnv("FIREBASE_API_KEY", c.FirebaseAPIKey)
	c.AuthJWKSURL = getEnv("AUTH_JWKS_URL", c.AuthJWKSURL)
	c.IdentityBaseURL = getEnv("IDENTITY_BASE_URL", c.IdentityBaseURL)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.OpenRouterAPIKey = getEnv("OPENROUTER_API_KEY", c.OpenRouterAPIKey)
	c.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", c.AnthropicAPIKey)
	c.DefaultModel = getEnv("DEFAULT_MODEL", c.DefaultModel)
	c.HumanizeModel = getEnv("HUMANIZE_MODEL", c.HumanizeModel)
	c.PersonaModel = getEnv("PERSONA_MODEL", c.PersonaModel)
	c.RabbitMQURL = getEnv("RABBITMQ_URL", c.RabbitMQURL)
	c.RabbitMQExchange = getEnv("RABBITMQ_EXCHANGE", c.RabbitMQExchange)
	c.RabbitMQQueue = getEnv("RABBITMQ_QUEUE", c.RabbitMQQueue)
	c.RabbitMQRoutingKey = getEnv("RABBITMQ_ROUTING_KEY", c.RabbitMQRoutingKey)
	c.LogDir = getEnv("LOG_DIR", c.LogDir)

	var err error
	if c.AutoMigrate, err = getEnvBool("AUTO_MIGRATE", c.AutoMigrate); err != nil {
		return err
	}
	if c.Debug, err = getEnvBool("DEBUG", c.Debug); err != nil {
		return err
	}
	if c.LogMaxFiles, err = getEnvInt("LOG_MAX_FILES", c.LogMaxFiles); err != nil {
		return err
	}
	if c.WordPressBurst, err = getEnvInt("WORDPRESS_BURST", c.WordPressBurst); err != nil {
		return err
	}
	if c.WordPressRateLimit, err = getEnvFloat("WORDPRESS_RATE_LIMIT", c.WordPressRateLimit); err != nil {
		return err
	}
	if c.WordPressTimeout, err = getEnvDuration("WORDPRESS_TIMEOUT", c.WordPressTimeout); err != nil {
		return err
	}
	if c.GenerationStageTimeout, err = getEnvDuration("GENERATION_STAGE_TIMEOUT", c.GenerationStageTimeout); err != nil {
		return err
	}
	if c.GenerationStaleAfter, err = getEnvDuration("GENERATION_STALE_AFTER", c.GenerationStaleAfter); err != nil {
		return err
	}
	return nil
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.FirebaseProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	if c.Environment == "prod" && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required in prod")
	}
	if c.GenerationStageTimeout <= 0 {
		return fmt.Errorf("GENERATION_STAGE_TIMEOUT must be positive")
	}
	if c.WordPressRateLimit <= 0 || c.WordPressBurst <= 0 {
		return fmt.Errorf("WORDPRESS_RATE_LIMIT and WORDPRESS_BURST must be positive")
	}
	return nil
}

// IsDev reports whether the server runs in the development environment.
func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
