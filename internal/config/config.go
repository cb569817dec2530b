package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	GenerationBackend string `mapstructure:"GENERATION_BACKEND"`

	OpenAIAPIKey  string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel   string `mapstructure:"OPENAI_MODEL"`
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"`

	AzureEndpoint     string `mapstructure:"AZURE_OPENAI_ENDPOINT"`
	AzureDeployment   string `mapstructure:"AZURE_OPENAI_DEPLOYMENT"`
	AzureAPIVersion   string `mapstructure:"AZURE_OPENAI_API_VERSION"`
	AzureTenantID     string `mapstructure:"AZURE_TENANT_ID"`
	AzureClientID     string `mapstructure:"AZURE_CLIENT_ID"`
	AzureClientSecret string `mapstructure:"AZURE_CLIENT_SECRET"`

	GenerationTimeout     time.Duration `mapstructure:"GENERATION_TIMEOUT"`
	GenerationTemperature float64       `mapstructure:"GENERATION_TEMPERATURE"`
	GenerationMaxTokens   int           `mapstructure:"GENERATION_MAX_TOKENS"`

	SchemaPath   string `mapstructure:"SCHEMA_PATH"`
	TemplatePath string `mapstructure:"TEMPLATE_PATH"`

	CORSOrigins    []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("GENERATION_BACKEND", "openai")
	v.SetDefault("OPENAI_MODEL", "gpt-4o")
	v.SetDefault("AZURE_OPENAI_API_VERSION", "2024-06-01")
	v.SetDefault("GENERATION_TIMEOUT", "90s")
	v.SetDefault("GENERATION_TEMPERATURE", 0.2)
	v.SetDefault("GENERATION_MAX_TOKENS", 4096)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("REQUEST_TIMEOUT", "120s")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("GENERATION_BACKEND")
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("OPENAI_MODEL")
	v.BindEnv("OPENAI_BASE_URL")
	v.BindEnv("AZURE_OPENAI_ENDPOINT")
	v.BindEnv("AZURE_OPENAI_DEPLOYMENT")
	v.BindEnv("AZURE_OPENAI_API_VERSION")
	v.BindEnv("AZURE_TENANT_ID")
	v.BindEnv("AZURE_CLIENT_ID")
	v.BindEnv("AZURE_CLIENT_SECRET")
	v.BindEnv("GENERATION_TIMEOUT")
	v.BindEnv("GENERATION_TEMPERATURE")
	v.BindEnv("GENERATION_MAX_TOKENS")
	v.BindEnv("SCHEMA_PATH")
	v.BindEnv("TEMPLATE_PATH")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")
	v.BindEnv("BODY_LIMIT")
	v.BindEnv("REQUEST_TIMEOUT")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run. Every missing or
// invalid setting is reported, not just the first, so the operator can fix
// the environment in one pass.
func (c *Config) Validate() error {
	var problems []string

	switch c.GenerationBackend {
	case "openai":
		if c.OpenAIAPIKey == "" {
			problems = append(problems, "OPENAI_API_KEY is required for the openai backend")
		}
		if c.OpenAIModel == "" {
			problems = append(problems, "OPENAI_MODEL is required for the openai backend")
		}
	case "azure":
		required := map[string]string{
			"AZURE_OPENAI_ENDPOINT":    c.AzureEndpoint,
			"AZURE_OPENAI_DEPLOYMENT":  c.AzureDeployment,
			"AZURE_OPENAI_API_VERSION": c.AzureAPIVersion,
			"AZURE_TENANT_ID":          c.AzureTenantID,
			"AZURE_CLIENT_ID":          c.AzureClientID,
			"AZURE_CLIENT_SECRET":      c.AzureClientSecret,
		}
		for _, name := range []string{
			"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT", "AZURE_OPENAI_API_VERSION",
			"AZURE_TENANT_ID", "AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET",
		} {
			if required[name] == "" {
				problems = append(problems, name+" is required for the azure backend")
			}
		}
	default:
		problems = append(problems,
			fmt.Sprintf("GENERATION_BACKEND must be \"openai\" or \"azure\", got %q", c.GenerationBackend))
	}

	if c.GenerationTimeout <= 0 {
		problems = append(problems, "GENERATION_TIMEOUT must be positive")
	}
	if c.GenerationTemperature < 0 || c.GenerationTemperature > 2 {
		problems = append(problems, "GENERATION_TEMPERATURE must be between 0 and 2")
	}
	if c.GenerationMaxTokens <= 0 {
		problems = append(problems, "GENERATION_MAX_TOKENS must be positive")
	}
	if c.RequestTimeout <= 0 {
		problems = append(problems, "REQUEST_TIMEOUT must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}
