package llm

import (
	"context"
	"net/http"
	"strings"
	"time"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIConfig carries the settings for the key-authenticated OpenAI backend.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// OpenAIClient generates via the OpenAI chat-completions API using a static
// bearer key.
type OpenAIClient struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// NewOpenAIClient validates the configuration and builds the client. All
// missing settings are reported together.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	var missing []string
	if cfg.APIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		missing = append(missing, "OPENAI_MODEL")
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Backend: "openai", Missing: missing}
	}

	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenAIBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &OpenAIClient{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
		url:    strings.TrimRight(base, "/") + "/chat/completions",
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt PromptPair, params Params) (string, error) {
	payload := chatRequest{
		Model:          c.model,
		Messages:       buildMessages(prompt),
		Temperature:    params.Temperature,
		MaxTokens:      params.MaxTokens,
		ResponseFormat: &formatSpec{Type: "json_object"},
	}
	auth := func(_ context.Context, req *http.Request) error {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		return nil
	}
	return postChat(ctx, c.client, c.url, auth, payload)
}
