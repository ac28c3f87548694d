package vonage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/koscakluka/callflow-core/core/telephony"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type phoneEndpoint struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type talkNCCO struct {
	Action   string `json:"action"`
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
	Style    int    `json:"style,omitempty"`
}

type recordNCCO struct {
	Action        string                `json:"action"`
	EventURL      []string              `json:"eventUrl"`
	EndOnSilence  string                `json:"endOnSilence,omitempty"`
	BeepStart     bool                  `json:"beepStart,omitempty"`
	Transcription *transcriptionSetting `json:"transcription,omitempty"`
}

type transcriptionSetting struct {
	EventURL []string `json:"eventUrl"`
	Language string   `json:"language,omitempty"`
}

type createCallRequest struct {
	To   []phoneEndpoint   `json:"to"`
	From phoneEndpoint     `json:"from"`
	NCCO []json.RawMessage `json:"ncco"`
}

type createCallResponse struct {
	UUID             string `json:"uuid"`
	Status           string `json:"status"`
	ConversationUUID string `json:"conversation_uuid"`
}

// PlaceCall starts an outbound call from the caller number to the
// destination, driven by the passed plan.
func (c *Client) PlaceCall(ctx context.Context, destination, from string, plan telephony.CallPlan) (*telephony.CallInfo, error) {
	ctx, span := tracer.Start(ctx, "place call")
	defer span.End()
	span.SetAttributes(attribute.String("call.destination", destination))

	ncco, err := toNCCO(plan)
	if err != nil {
		return nil, fmt.Errorf("error building ncco: %w", err)
	}

	reqBody := createCallRequest{
		To:   []phoneEndpoint{{Type: "phone", Number: destination}},
		From: phoneEndpoint{Type: "phone", Number: from},
		NCCO: ncco,
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiBase+"/v1/calls", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	var responseBody createCallResponse
	if err := json.NewDecoder(resp.Body).Decode(&responseBody); err != nil {
		return nil, fmt.Errorf("error unmarshalling response body: %w", err)
	}

	logger.InfoContext(ctx, "Call initiated", "call_id", responseBody.UUID, "status", responseBody.Status)
	return &telephony.CallInfo{ID: responseBody.UUID, Status: responseBody.Status}, nil
}

func toNCCO(plan telephony.CallPlan) ([]json.RawMessage, error) {
	talk, err := json.Marshal(talkNCCO{
		Action:   "talk",
		Text:     plan.Talk.Text,
		Language: plan.Talk.Language,
		Style:    plan.Talk.Style,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshalling talk action: %w", err)
	}

	record := recordNCCO{
		Action:    "record",
		EventURL:  []string{plan.Record.EventURL},
		BeepStart: plan.Record.BeepStart,
	}
	if plan.Record.EndOnSilenceSeconds > 0 {
		record.EndOnSilence = strconv.Itoa(plan.Record.EndOnSilenceSeconds)
	}
	if plan.Record.TranscriptionEventURL != "" {
		record.Transcription = &transcriptionSetting{
			EventURL: []string{plan.Record.TranscriptionEventURL},
			Language: plan.Record.TranscriptionLanguage,
		}
	}
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("error marshalling record action: %w", err)
	}

	return []json.RawMessage{talk, recordBytes}, nil
}

type searchCallsResponse struct {
	Embedded struct {
		Calls []callRecord `json:"calls"`
	} `json:"_embedded"`
}

type callRecord struct {
	UUID string `json:"uuid"`
	To   struct {
		Number string `json:"number"`
	} `json:"to"`
	// Duration is reported by the API as a string of seconds.
	Duration string `json:"duration"`
}

// FindCallMetadata searches finished calls by call identifier and returns
// the first match, or nil when the provider knows no such call.
func (c *Client) FindCallMetadata(ctx context.Context, callID string) (*telephony.CallMetadata, error) {
	query := url.Values{}
	query.Set("conversation_uuid", callID)

	req, err := http.NewRequestWithContext(ctx, "GET", c.apiBase+"/v1/calls?"+query.Encode(), nil)
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

	var responseBody searchCallsResponse
	if err := json.NewDecoder(resp.Body).Decode(&responseBody); err != nil {
		return nil, fmt.Errorf("error unmarshalling response body: %w", err)
	}

	if len(responseBody.Embedded.Calls) == 0 {
		return nil, nil
	}

	call := responseBody.Embedded.Calls[0]
	duration, err := strconv.Atoi(call.Duration)
	if err != nil {
		logger.WarnContext(ctx, "Unparsable call duration", "call_id", callID, "duration", call.Duration)
		duration = 0
	}

	return &telephony.CallMetadata{
		Destination:     call.To.Number,
		DurationSeconds: duration,
	}, nil
}
