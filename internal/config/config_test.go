package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("GENERATION_BACKEND")
	os.Unsetenv("PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %s", cfg.Port)
	}
	if cfg.GenerationBackend != "openai" {
		t.Errorf("expected default backend openai, got %s", cfg.GenerationBackend)
	}
	if cfg.GenerationTimeout != 90*time.Second {
		t.Errorf("expected default generation timeout 90s, got %s", cfg.GenerationTimeout)
	}
	if cfg.GenerationMaxTokens != 4096 {
		t.Errorf("expected default max tokens 4096, got %d", cfg.GenerationMaxTokens)
	}
	if cfg.BodyLimit != "1M" {
		t.Errorf("expected default body limit 1M, got %s", cfg.BodyLimit)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Setenv("GENERATION_BACKEND", "azure")
	os.Setenv("AZURE_OPENAI_DEPLOYMENT", "notes-gpt4")
	defer os.Unsetenv("GENERATION_BACKEND")
	defer os.Unsetenv("AZURE_OPENAI_DEPLOYMENT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GenerationBackend != "azure" {
		t.Errorf("expected backend azure, got %s", cfg.GenerationBackend)
	}
	if cfg.AzureDeployment != "notes-gpt4" {
		t.Errorf("expected deployment notes-gpt4, got %s", cfg.AzureDeployment)
	}
	if cfg.AzureAPIVersion != "2024-06-01" {
		t.Errorf("expected default api version, got %s", cfg.AzureAPIVersion)
	}
}

func validOpenAI() *Config {
	return &Config{
		Env:                   "production",
		GenerationBackend:     "openai",
		OpenAIAPIKey:          "sk-test",
		OpenAIModel:           "gpt-4o",
		GenerationTimeout:     90 * time.Second,
		GenerationTemperature: 0.2,
		GenerationMaxTokens:   4096,
		RequestTimeout:        2 * time.Minute,
	}
}

func TestValidate_OpenAIBackend(t *testing.T) {
	if err := validOpenAI().Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	c := validOpenAI()
	c.OpenAIAPIKey = ""
	err := c.Validate()
	if err == nil {
		t.Fatal("expected error when OPENAI_API_KEY is missing")
	}
	if !strings.Contains(err.Error(), "OPENAI_API_KEY") {
		t.Errorf("error should name OPENAI_API_KEY: %v", err)
	}
}

func TestValidate_AzureBackendReportsAllMissing(t *testing.T) {
	c := validOpenAI()
	c.GenerationBackend = "azure"

	err := c.Validate()
	if err == nil {
		t.Fatal("expected error for unconfigured azure backend")
	}
	for _, name := range []string{
		"AZURE_OPENAI_ENDPOINT", "AZURE_OPENAI_DEPLOYMENT",
		"AZURE_TENANT_ID", "AZURE_CLIENT_ID", "AZURE_CLIENT_SECRET",
	} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error should name %s: %v", name, err)
		}
	}
}

func TestValidate_UnknownBackend(t *testing.T) {
	c := validOpenAI()
	c.GenerationBackend = "bedrock"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestValidate_Knobs(t *testing.T) {
	c := validOpenAI()
	c.GenerationTemperature = 3.5
	if err := c.Validate(); err == nil {
		t.Error("expected error for out-of-range temperature")
	}

	c = validOpenAI()
	c.GenerationTimeout = 0
	if err := c.Validate(); err == nil {
		t.Error("expected error for zero generation timeout")
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}
