// Package openai implements the summarizer capability against the OpenAI
// chat completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/koscakluka/callflow-core/core/summarize"
	"github.com/koscakluka/callflow-core/internal/utils"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultAPIBase = "https://api.openai.com"
	defaultModel   = "gpt-4-turbo"

	tokenEnvVar = "OPENAI_API_KEY"

	defaultPrompt = "Create a summary of the voice message I just received. " +
		"The summary will be sent over text messages, so keep it short and focus on the main information. " +
		"Only respond with the summary. Here it is: "
)

// Summarizer condenses transcripts through the chat completions endpoint.
type Summarizer struct {
	apiKey  string
	apiBase string
	options summarize.Options

	httpClient *http.Client
}

type SummarizerOption func(*Summarizer)

// WithAPIKey overrides the key read from OPENAI_API_KEY.
func WithAPIKey(apiKey string) SummarizerOption {
	return func(s *Summarizer) { s.apiKey = apiKey }
}

// WithAPIBase overrides the API base URL. Used by tests.
func WithAPIBase(apiBase string) SummarizerOption {
	return func(s *Summarizer) { s.apiBase = apiBase }
}

func WithHTTPClient(httpClient *http.Client) SummarizerOption {
	return func(s *Summarizer) { s.httpClient = httpClient }
}

// WithOptions applies shared summarization options.
func WithOptions(opts ...summarize.Option) SummarizerOption {
	return func(s *Summarizer) {
		for _, opt := range opts {
			opt(&s.options)
		}
	}
}

func NewSummarizer(opts ...SummarizerOption) (*Summarizer, error) {
	summarizer := &Summarizer{
		apiBase: defaultAPIBase,
		options: summarize.Options{Model: defaultModel, Prompt: defaultPrompt},
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   60 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(summarizer)
	}

	if summarizer.apiKey == "" {
		apiKey, ok := os.LookupEnv(tokenEnvVar)
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("openai api key not found")
		}
		summarizer.apiKey = apiKey
	}

	return summarizer, nil
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type requestBody struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type responseBody struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Summarize condenses the passed transcript into a short message body.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	reqBody := requestBody{
		Model: s.options.Model,
		Messages: []message{{
			Role:    "user",
			Content: s.options.Prompt + "\n" + text,
		}},
		MaxTokens: s.options.MaxTokens,
	}
	if s.options.Temperature != 0 {
		reqBody.Temperature = utils.Ptr(s.options.Temperature)
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiBase+"/v1/chat/completions", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	var response responseBody
	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		return "", fmt.Errorf("error unmarshalling response body: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	summary := strings.TrimSpace(response.Choices[0].Message.Content)
	logger.InfoContext(ctx, "Summary generated", "length", len(summary))
	return summary, nil
}
