package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/invopop/jsonschema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// structuredSummary is the schema the model is constrained to when the
// structured variant is used.
type structuredSummary struct {
	Summary string `json:"summary" jsonschema:"title=Summary,description=Short summary of the voice message suitable for an SMS"`
}

type schemaRequestBody struct {
	Model          string              `json:"model"`
	Messages       []message           `json:"messages"`
	ResponseFormat *chatResponseFormat `json:"response_format,omitempty"`
}

type chatResponseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string            `json:"name"`
	Schema jsonschema.Schema `json:"schema"`
	Strict bool              `json:"strict"`
}

// SummarizeStructured condenses the transcript through a schema-constrained
// completion, so the summary text comes back as a clean JSON field instead
// of free-form prose.
func (s *Summarizer) SummarizeStructured(ctx context.Context, text string) (string, error) {
	ctx, span := tracer.Start(ctx, "summarize structured")
	defer span.End()
	span.SetAttributes(attribute.String("request.model", s.options.Model))

	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(structuredSummary{})

	reqBody := schemaRequestBody{
		Model: s.options.Model,
		Messages: []message{{
			Role:    "user",
			Content: s.options.Prompt + "\n" + text,
		}},
		ResponseFormat: &chatResponseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   "structured_summary",
				Schema: *schema,
				Strict: true,
			},
		},
	}

	requestBodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		err = fmt.Errorf("error marshalling JSON: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.apiBase+"/v1/chat/completions", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		err = fmt.Errorf("error creating HTTP request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("error sending request: %w", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
	if resp.StatusCode != http.StatusOK {
		if errorBody, readErr := io.ReadAll(resp.Body); readErr == nil {
			span.SetAttributes(attribute.String("response.error", string(errorBody)))
		}
		err := fmt.Errorf("non-OK HTTP status: %s", resp.Status)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	var response responseBody
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("error unmarshalling response body: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	var structured structuredSummary
	if err := json.Unmarshal([]byte(response.Choices[0].Message.Content), &structured); err != nil {
		return "", fmt.Errorf("error unmarshalling structured summary: %w", err)
	}

	return strings.TrimSpace(structured.Summary), nil
}
