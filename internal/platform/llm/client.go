package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultHTTPTimeout = 120 * time.Second

// chatRequest is the chat-completions payload shared by both backends. The
// response_format constraint asks the provider for a JSON object, but the
// pipeline still decodes and validates the reply itself; the hint only
// improves the odds of a clean first pass.
type chatRequest struct {
	Model          string        `json:"model,omitempty"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *formatSpec   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type formatSpec struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type providerErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// authFunc sets backend-specific credentials on an outgoing request. It may
// fail, for backends whose credentials are fetched rather than static.
type authFunc func(ctx context.Context, req *http.Request) error

// postChat performs one chat-completions round trip and returns the first
// choice's content. All failure modes map onto this package's error types.
func postChat(ctx context.Context, client *http.Client, url string, auth authFunc, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if err := auth(ctx, req); err != nil {
		return "", &TransportError{Err: fmt.Errorf("acquire credentials: %w", err)}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		perr := &ProviderError{StatusCode: resp.StatusCode, Message: string(data)}
		var parsed providerErrorBody
		if json.Unmarshal(data, &parsed) == nil && parsed.Error.Message != "" {
			perr.Code = parsed.Error.Code
			perr.Message = parsed.Error.Message
		}
		return "", perr
	}

	var out chatResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", &TransportError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrEmptyGeneration
	}
	return out.Choices[0].Message.Content, nil
}

func buildMessages(prompt PromptPair) []chatMessage {
	return []chatMessage{
		{Role: "system", Content: prompt.System},
		{Role: "user", Content: prompt.User},
	}
}
