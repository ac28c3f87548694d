package vonage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type sendMessageRequest struct {
	MessageType string `json:"message_type"`
	Channel     string `json:"channel"`
	To          string `json:"to"`
	From        string `json:"from"`
	Text        string `json:"text"`
}

type sendMessageResponse struct {
	MessageUUID string `json:"message_uuid"`
}

// SendSMS delivers a text message through the Vonage Messages API.
func (c *Client) SendSMS(ctx context.Context, from, to, text string) error {
	reqBody := sendMessageRequest{
		MessageType: "text",
		Channel:     "sms",
		To:          to,
		From:        from,
		Text:        text,
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiBase+"/v1/messages", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	var responseBody sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&responseBody); err != nil {
		return fmt.Errorf("error unmarshalling response body: %w", err)
	}

	logger.InfoContext(ctx, "SMS sent", "message_id", responseBody.MessageUUID, "to", to)
	return nil
}
