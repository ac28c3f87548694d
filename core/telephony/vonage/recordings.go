package vonage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/koscakluka/callflow-core/core/telephony"
)

// FetchRecording downloads the recording bytes from the provider-hosted
// location delivered in the recording-ready webhook.
func (c *Client) FetchRecording(ctx context.Context, recordingURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", recordingURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading recording body: %w", err)
	}

	return audio, nil
}

// FetchTranscript retrieves and parses the transcription payload from the
// provider-hosted location delivered in the transcription-ready webhook.
func (c *Client) FetchTranscript(ctx context.Context, transcriptURL string) (*telephony.Transcript, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", transcriptURL, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if len(bodyBytes) == 0 {
		return nil, fmt.Errorf("empty transcription response")
	}

	var transcript telephony.Transcript
	if err := json.Unmarshal(bodyBytes, &transcript); err != nil {
		return nil, fmt.Errorf("error unmarshalling response body: %w", err)
	}
	if len(transcript.Channels) == 0 {
		return nil, fmt.Errorf("invalid transcription format: no channels found")
	}

	return &transcript, nil
}
