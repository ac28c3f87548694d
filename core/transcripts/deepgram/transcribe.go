// Package deepgram implements a fallback transcript source against the
// Deepgram prerecorded transcription API.
package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	api "github.com/deepgram/deepgram-go-sdk/pkg/api/listen/v1/rest/interfaces"
	"github.com/koscakluka/callflow-core/core/transcripts"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	listenURL = "https://api.deepgram.com/v1/listen"

	tokenEnvVar = "DEEPGRAM_API_KEY"

	defaultModel       = "nova-3"
	defaultLanguage    = "fr"
	defaultContentType = "audio/mpeg"
)

// Transcriber produces utterance text from recording audio through the
// prerecorded endpoint.
type Transcriber struct {
	apiKey    string
	listenURL string
	options   transcripts.Options

	httpClient *http.Client
}

type TranscriberOption func(*Transcriber)

// WithAPIKey overrides the key read from DEEPGRAM_API_KEY.
func WithAPIKey(apiKey string) TranscriberOption {
	return func(t *Transcriber) { t.apiKey = apiKey }
}

// WithListenURL overrides the listen endpoint. Used by tests.
func WithListenURL(listenURL string) TranscriberOption {
	return func(t *Transcriber) { t.listenURL = listenURL }
}

func WithHTTPClient(httpClient *http.Client) TranscriberOption {
	return func(t *Transcriber) { t.httpClient = httpClient }
}

// WithOptions applies shared transcript source options.
func WithOptions(opts ...transcripts.Option) TranscriberOption {
	return func(t *Transcriber) {
		for _, opt := range opts {
			opt(&t.options)
		}
	}
}

func NewTranscriber(opts ...TranscriberOption) (*Transcriber, error) {
	transcriber := &Transcriber{
		listenURL: listenURL,
		options: transcripts.Options{
			Model:       defaultModel,
			Language:    defaultLanguage,
			ContentType: defaultContentType,
		},
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   2 * time.Minute,
		},
	}

	for _, opt := range opts {
		opt(transcriber)
	}

	if transcriber.apiKey == "" {
		apiKey, ok := os.LookupEnv(tokenEnvVar)
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("deepgram api key not found")
		}
		transcriber.apiKey = apiKey
	}

	return transcriber, nil
}

// TranscribeRecording sends the recording audio through the prerecorded
// endpoint and returns the first channel's best transcript.
func (t *Transcriber) TranscribeRecording(ctx context.Context, audio []byte) (string, error) {
	ctx, span := tracer.Start(ctx, "transcribe recording")
	defer span.End()

	endpoint, err := url.Parse(t.listenURL)
	if err != nil {
		return "", fmt.Errorf("invalid listen url: %w", err)
	}
	queryParams := endpoint.Query()
	queryParams.Set("model", t.options.Model)
	queryParams.Set("language", t.options.Language)
	queryParams.Set("smart_format", "true")
	endpoint.RawQuery = queryParams.Encode()

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint.String(), bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", t.options.ContentType)
	req.Header.Set("Authorization", "Token "+t.apiKey)

	resp, err := t.httpClient.Do(req)
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

	var response api.PreRecordedResponse
	if err := json.Unmarshal(bodyBytes, &response); err != nil {
		return "", fmt.Errorf("error unmarshalling response body: %w", err)
	}

	if response.Results == nil || len(response.Results.Channels) == 0 {
		return "", fmt.Errorf("no channels in transcription response")
	}
	channel := response.Results.Channels[0]
	if len(channel.Alternatives) == 0 {
		return "", fmt.Errorf("no alternatives in transcription response")
	}

	transcript := strings.TrimSpace(channel.Alternatives[0].Transcript)
	logger.InfoContext(ctx, "Recording transcribed", "length", len(transcript))
	return transcript, nil
}
