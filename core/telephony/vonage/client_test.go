package vonage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/koscakluka/callflow-core/core/telephony"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(WithToken("test-token"), WithAPIBase(server.URL))
	if err != nil {
		t.Fatalf("expected client construction to succeed, got %v", err)
	}
	return client
}

func TestPlaceCallSendsPlanDirectives(t *testing.T) {
	var captured struct {
		To   []map[string]string `json:"to"`
		From map[string]string   `json:"from"`
		NCCO []map[string]any    `json:"ncco"`
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/calls" {
			t.Fatalf("expected call creation path, got %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Fatalf("expected bearer auth, got %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("expected decodable request body, got %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"uuid": "call-1", "status": "started"})
	})

	plan := telephony.CallPlan{
		Talk: telephony.TalkAction{Text: "Bonjour", Language: "fr-FR", Style: 1},
		Record: telephony.RecordAction{
			EventURL:              "https://example.com/call/recorded",
			TranscriptionEventURL: "https://example.com/call/transcribed",
			TranscriptionLanguage: "fr-FR",
			EndOnSilenceSeconds:   3,
			BeepStart:             true,
		},
	}

	info, err := client.PlaceCall(context.Background(), "+33123456789", "+33699999999", plan)
	if err != nil {
		t.Fatalf("expected place call to succeed, got %v", err)
	}
	if info.ID != "call-1" || info.Status != "started" {
		t.Fatalf("expected call info from response, got %+v", info)
	}

	if len(captured.To) != 1 || captured.To[0]["number"] != "+33123456789" {
		t.Fatalf("expected destination endpoint, got %v", captured.To)
	}
	if captured.From["number"] != "+33699999999" {
		t.Fatalf("expected caller endpoint, got %v", captured.From)
	}
	if len(captured.NCCO) != 2 {
		t.Fatalf("expected talk and record actions, got %v", captured.NCCO)
	}
	if captured.NCCO[0]["action"] != "talk" || captured.NCCO[0]["text"] != "Bonjour" {
		t.Fatalf("expected talk action first, got %v", captured.NCCO[0])
	}
	if captured.NCCO[1]["action"] != "record" {
		t.Fatalf("expected record action second, got %v", captured.NCCO[1])
	}
	if captured.NCCO[1]["endOnSilence"] != "3" {
		t.Fatalf("expected end-on-silence carried as string, got %v", captured.NCCO[1]["endOnSilence"])
	}
	transcription, ok := captured.NCCO[1]["transcription"].(map[string]any)
	if !ok {
		t.Fatalf("expected transcription settings, got %v", captured.NCCO[1]["transcription"])
	}
	eventURLs, ok := transcription["eventUrl"].([]any)
	if !ok || len(eventURLs) != 1 || eventURLs[0] != "https://example.com/call/transcribed" {
		t.Fatalf("expected transcription webhook url, got %v", transcription["eventUrl"])
	}
}

func TestFindCallMetadataParsesFirstMatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("conversation_uuid"); got != "call-1" {
			t.Fatalf("expected search by call id, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"_embedded": map[string]any{
				"calls": []map[string]any{
					{"uuid": "leg-1", "to": map[string]string{"number": "+33123456789"}, "duration": "42"},
					{"uuid": "leg-2", "to": map[string]string{"number": "+33100000000"}, "duration": "7"},
				},
			},
		})
	})

	metadata, err := client.FindCallMetadata(context.Background(), "call-1")
	if err != nil {
		t.Fatalf("expected search to succeed, got %v", err)
	}
	if metadata == nil {
		t.Fatalf("expected metadata for known call")
	}
	if metadata.Destination != "+33123456789" || metadata.DurationSeconds != 42 {
		t.Fatalf("expected first match metadata, got %+v", metadata)
	}
}

func TestFindCallMetadataReturnsNilWhenUnknown(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"_embedded": map[string]any{"calls": []any{}}})
	})

	metadata, err := client.FindCallMetadata(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected search to succeed, got %v", err)
	}
	if metadata != nil {
		t.Fatalf("expected no metadata for unknown call, got %+v", metadata)
	}
}

func TestFetchTranscriptRejectsEmptyChannels(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"ver": "1", "request_id": "req-1", "channels": []any{}})
	})

	if _, err := client.FetchTranscript(context.Background(), client.apiBase+"/transcriptions/rec-1"); err == nil {
		t.Fatalf("expected channel-less payload to be rejected")
	}
}

func TestFetchTranscriptParsesSentences(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ver":        "1",
			"request_id": "req-1",
			"channels": []map[string]any{{
				"duration": 4,
				"transcript": []map[string]any{
					{"sentence": "Hello.", "raw_sentence": "hello", "duration": 2, "timestamp": 0},
					{"sentence": "How are you?", "raw_sentence": "how are you", "duration": 2, "timestamp": 2},
				},
			}},
		})
	})

	transcript, err := client.FetchTranscript(context.Background(), client.apiBase+"/transcriptions/rec-1")
	if err != nil {
		t.Fatalf("expected transcript fetch to succeed, got %v", err)
	}
	if got := transcript.Text(); got != "Hello.\nHow are you?\n" {
		t.Fatalf("expected extracted utterance text, got %q", got)
	}
}

func TestSendSMSPostsMessage(t *testing.T) {
	var captured sendMessageRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Fatalf("expected messages path, got %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("expected decodable request body, got %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"message_uuid": "msg-1"})
	})

	if err := client.SendSMS(context.Background(), "+33699999999", "+33123456789", "hello"); err != nil {
		t.Fatalf("expected sms send to succeed, got %v", err)
	}
	if captured.Channel != "sms" || captured.MessageType != "text" {
		t.Fatalf("expected sms text message, got %+v", captured)
	}
	if captured.To != "+33123456789" || captured.From != "+33699999999" || captured.Text != "hello" {
		t.Fatalf("expected addressed message, got %+v", captured)
	}
}

func TestNewClientRequiresToken(t *testing.T) {
	t.Setenv(tokenEnvVar, "")
	if _, err := NewClient(); err == nil {
		t.Fatalf("expected construction to fail without token")
	}
}
