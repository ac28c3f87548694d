// Package anthropic implements the summarizer capability against the
// Anthropic messages API.
package anthropic

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
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultAPIBase = "https://api.anthropic.com"
	defaultModel   = "claude-3-haiku-20240307"

	apiVersion  = "2023-06-01"
	tokenEnvVar = "ANTHROPIC_API_KEY"

	defaultMaxTokens   = 150
	defaultTemperature = 0.7

	defaultPromptFormat = `You are an assistant that summarizes voice messages in French.
Here is the transcription of a voice message:

%s

Create a concise and clear summary of this message in French, in a maximum of 2-3 sentences.
Focus on the key points and the intent of the message.
Do not mention that it is a transcription or a summary.`
)

// Summarizer condenses transcripts through the messages endpoint.
type Summarizer struct {
	apiKey  string
	apiBase string
	options summarize.Options

	httpClient *http.Client
}

type SummarizerOption func(*Summarizer)

// WithAPIKey overrides the key read from ANTHROPIC_API_KEY.
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
		options: summarize.Options{
			Model:       defaultModel,
			MaxTokens:   defaultMaxTokens,
			Temperature: defaultTemperature,
		},
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
			return nil, fmt.Errorf("anthropic api key not found")
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
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature,omitempty"`
	Messages    []message `json:"messages"`
}

type responseBody struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Summarize condenses the passed transcript into a short message body.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	prompt := s.options.Prompt
	if prompt == "" {
		prompt = fmt.Sprintf(defaultPromptFormat, text)
	} else {
		prompt = prompt + "\n" + text
	}

	reqBody := requestBody{
		Model:       s.options.Model,
		MaxTokens:   s.options.MaxTokens,
		Temperature: s.options.Temperature,
		Messages:    []message{{Role: "user", Content: prompt}},
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiBase+"/v1/messages", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("non-OK HTTP status: %s: %s", resp.Status, errorBody)
	}

	var response responseBody
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("error unmarshalling response body: %w", err)
	}

	var summary strings.Builder
	for _, content := range response.Content {
		if content.Type == "text" {
			summary.WriteString(content.Text)
		}
	}
	if summary.Len() == 0 {
		return "", fmt.Errorf("no text content in response")
	}

	result := strings.TrimSpace(summary.String())
	logger.InfoContext(ctx, "Summary generated", "length", len(result))
	return result, nil
}
