package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const azureCognitiveScope = "https://cognitiveservices.azure.com/.default"

// AzureConfig carries the settings for the token-authenticated Azure OpenAI
// backend. Credentials are exchanged for short-lived bearer tokens via the
// tenant's client-credentials flow.
type AzureConfig struct {
	Endpoint     string
	Deployment   string
	APIVersion   string
	TenantID     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// AzureClient generates via an Azure OpenAI deployment. Token acquisition and
// refresh are handled by the token source; callers never see credential
// lifecycle.
type AzureClient struct {
	url    string
	tokens oauth2.TokenSource
	client *http.Client
}

// NewAzureClient validates the configuration and builds the client. All
// missing settings are reported together. No token is fetched here; the
// first Generate call acquires one.
func NewAzureClient(cfg AzureConfig) (*AzureClient, error) {
	var missing []string
	if cfg.Endpoint == "" {
		missing = append(missing, "AZURE_OPENAI_ENDPOINT")
	}
	if cfg.Deployment == "" {
		missing = append(missing, "AZURE_OPENAI_DEPLOYMENT")
	}
	if cfg.APIVersion == "" {
		missing = append(missing, "AZURE_OPENAI_API_VERSION")
	}
	if cfg.TenantID == "" {
		missing = append(missing, "AZURE_TENANT_ID")
	}
	if cfg.ClientID == "" {
		missing = append(missing, "AZURE_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		missing = append(missing, "AZURE_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Backend: "azure", Missing: missing}
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", cfg.TenantID),
		Scopes:       []string{azureCognitiveScope},
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(cfg.Endpoint, "/"), cfg.Deployment, cfg.APIVersion)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &AzureClient{
		url:    url,
		tokens: creds.TokenSource(context.Background()),
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (c *AzureClient) Generate(ctx context.Context, prompt PromptPair, params Params) (string, error) {
	// Azure routes by deployment, so the payload carries no model name.
	payload := chatRequest{
		Messages:       buildMessages(prompt),
		Temperature:    params.Temperature,
		MaxTokens:      params.MaxTokens,
		ResponseFormat: &formatSpec{Type: "json_object"},
	}
	auth := func(_ context.Context, req *http.Request) error {
		tok, err := c.tokens.Token()
		if err != nil {
			return err
		}
		tok.SetAuthHeader(req)
		return nil
	}
	return postChat(ctx, c.client, c.url, auth, payload)
}
