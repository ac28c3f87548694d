package callflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/koscakluka/callflow-core/core/events"
	"github.com/koscakluka/callflow-core/core/telephony"
)

func transcriptionWorkflow(tel *stubTelephony, store *stubStorage, opts ...WorkflowOption) *Workflow {
	base := []WorkflowOption{
		WithTelephonyClient(tel),
		WithStorageClient(store),
		WithCallerNumber("+33600000000"),
	}
	return NewWorkflow(append(base, opts...)...)
}

func TestHandleTranscriptionReadyUploadsArtifactsAndNotifies(t *testing.T) {
	tel := &stubTelephony{
		metadata:   &telephony.CallMetadata{Destination: "+33123456789", DurationSeconds: 42},
		transcript: singleChannelTranscript("Bonjour.", "Rappelez-moi."),
	}
	store := &stubStorage{}
	messenger := &stubMessenger{}
	summarizer := &stubSummarizer{summary: "Demande de rappel."}
	workflow := transcriptionWorkflow(tel, store, WithMessenger(messenger), WithSummarizer(summarizer))

	workflow.store.Put(CallRecord{ID: "call-1"})

	event := events.NewTranscriptionReady("call-1", "rec-1", "https://provider.example.com/transcripts/rec-1")
	if err := workflow.HandleTranscriptionReady(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.uploads) != 2 {
		t.Fatalf("expected transcript and summary uploads, got %d", len(store.uploads))
	}
	if store.uploads[0].Name != "Transcript_rec-1.txt" || store.uploads[0].ContentType != "text/plain" {
		t.Fatalf("unexpected transcript upload %+v", store.uploads[0])
	}
	if store.uploads[0].Content != "Bonjour.\nRappelez-moi.\n" {
		t.Fatalf("unexpected transcript content %q", store.uploads[0].Content)
	}
	if store.uploads[1].Name != "Summary_rec-1.txt" || store.uploads[1].Content != "Demande de rappel." {
		t.Fatalf("unexpected summary upload %+v", store.uploads[1])
	}

	record, _ := workflow.Record("call-1")
	if !record.TranscriptionDone || record.TranscriptionInProgress {
		t.Fatalf("expected finished transcription state, got %+v", record)
	}
	if record.TranscriptURL == "" || record.SummaryURL == "" {
		t.Fatalf("expected artifact URLs on the record, got %+v", record)
	}

	if messenger.sent != 1 {
		t.Fatalf("expected one notification, got %d", messenger.sent)
	}
	if messenger.from != "+33600000000" || messenger.to != "+33123456789" {
		t.Fatalf("notification misaddressed: from %q to %q", messenger.from, messenger.to)
	}
	expectedBody := "From: #hidden\nDuration: 42s\nSummary: Demande de rappel.\nFiles: https://drive.example.com/folder-1\n"
	if messenger.body != expectedBody {
		t.Fatalf("unexpected notification body:\n%q\nexpected:\n%q", messenger.body, expectedBody)
	}
}

func TestHandleTranscriptionReadyUnknownCall(t *testing.T) {
	workflow := transcriptionWorkflow(&stubTelephony{}, &stubStorage{})

	event := events.NewTranscriptionReady("missing", "rec-1", "https://provider.example.com/t")
	if err := workflow.HandleTranscriptionReady(context.Background(), event); !errors.Is(err, ErrUnknownCall) {
		t.Fatalf("expected ErrUnknownCall, got %v", err)
	}
}

func TestHandleTranscriptionReadyRedeliveryIsNoOp(t *testing.T) {
	tel := &stubTelephony{
		metadata:   &telephony.CallMetadata{Destination: "+33123456789", DurationSeconds: 10},
		transcript: singleChannelTranscript("Bonjour."),
	}
	store := &stubStorage{}
	workflow := transcriptionWorkflow(tel, store)

	workflow.store.Put(CallRecord{ID: "call-1"})

	event := events.NewTranscriptionReady("call-1", "rec-1", "https://provider.example.com/t")
	if err := workflow.HandleTranscriptionReady(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := workflow.HandleTranscriptionReady(context.Background(), event); err != nil {
		t.Fatalf("expected redelivery to be a no-op, got %v", err)
	}

	if len(store.uploads) != 2 {
		t.Fatalf("expected the artifacts to be uploaded once, got %d uploads", len(store.uploads))
	}
}

func TestHandleTranscriptionReadyInProgressIsNoOp(t *testing.T) {
	store := &stubStorage{}
	workflow := transcriptionWorkflow(&stubTelephony{}, store)

	workflow.store.Put(CallRecord{ID: "call-1", TranscriptionInProgress: true})

	event := events.NewTranscriptionReady("call-1", "rec-1", "https://provider.example.com/t")
	if err := workflow.HandleTranscriptionReady(context.Background(), event); err != nil {
		t.Fatalf("expected concurrent delivery to be a no-op, got %v", err)
	}
	if len(store.uploads) != 0 {
		t.Fatalf("expected no uploads while another delivery is in flight")
	}
}

func TestHandleTranscriptionReadyReleasesClaimOnFailure(t *testing.T) {
	tel := &stubTelephony{
		metadata:   &telephony.CallMetadata{Destination: "+33123456789", DurationSeconds: 10},
		transcript: singleChannelTranscript("Bonjour."),
	}
	store := &stubStorage{
		uploadErr: func(name string) error {
			if strings.HasPrefix(name, "Transcript_") {
				return errors.New("upload refused")
			}
			return nil
		},
	}
	workflow := transcriptionWorkflow(tel, store)

	workflow.store.Put(CallRecord{ID: "call-1"})

	event := events.NewTranscriptionReady("call-1", "rec-1", "https://provider.example.com/t")
	if err := workflow.HandleTranscriptionReady(context.Background(), event); err == nil {
		t.Fatalf("expected the upload failure to propagate")
	}

	record, _ := workflow.Record("call-1")
	if record.TranscriptionInProgress || record.TranscriptionDone {
		t.Fatalf("expected the claim to be rolled back, got %+v", record)
	}

	store.uploadErr = nil
	if err := workflow.HandleTranscriptionReady(context.Background(), event); err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if record, _ := workflow.Record("call-1"); !record.TranscriptionDone {
		t.Fatalf("expected the retry to finish, got %+v", record)
	}
}

func TestHandleTranscriptionReadyCallMetadataMissing(t *testing.T) {
	tel := &stubTelephony{metadata: nil}
	workflow := transcriptionWorkflow(tel, &stubStorage{})

	workflow.store.Put(CallRecord{ID: "call-1"})

	event := events.NewTranscriptionReady("call-1", "rec-1", "https://provider.example.com/t")
	if err := workflow.HandleTranscriptionReady(context.Background(), event); !errors.Is(err, ErrCallNotFound) {
		t.Fatalf("expected ErrCallNotFound, got %v", err)
	}

	if record, _ := workflow.Record("call-1"); record.TranscriptionInProgress {
		t.Fatalf("expected the claim to be rolled back")
	}
}

func TestHandleTranscriptionReadyFallsBackToTranscriptSource(t *testing.T) {
	tel := &stubTelephony{
		metadata:      &telephony.CallMetadata{Destination: "+33123456789", DurationSeconds: 10},
		transcriptErr: errors.New("transcript expired"),
	}
	store := &stubStorage{}
	source := &stubTranscriptSource{text: "Bonjour, rappelez-moi."}
	workflow := transcriptionWorkflow(tel, store, WithTranscriptSource(source))

	workflow.store.Put(CallRecord{
		ID:                 "call-1",
		SourceRecordingURL: "https://provider.example.com/rec-1",
		RecordingDone:      true,
	})

	event := events.NewTranscriptionReady("call-1", "rec-1", "https://provider.example.com/t")
	if err := workflow.HandleTranscriptionReady(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(source.got) != 1 {
		t.Fatalf("expected the fallback source to receive the audio once, got %d", len(source.got))
	}
	if store.uploads[0].Content != "Bonjour, rappelez-moi." {
		t.Fatalf("expected the fallback transcript to be uploaded, got %q", store.uploads[0].Content)
	}
	if len(tel.fetchedAudio) != 1 || tel.fetchedAudio[0] != "https://provider.example.com/rec-1" {
		t.Fatalf("expected the stored recording to be re-fetched, got %v", tel.fetchedAudio)
	}
}

func TestHandleTranscriptionReadyFallbackUnavailable(t *testing.T) {
	tel := &stubTelephony{
		metadata:      &telephony.CallMetadata{Destination: "+33123456789", DurationSeconds: 10},
		transcriptErr: errors.New("transcript expired"),
	}
	workflow := transcriptionWorkflow(tel, &stubStorage{})

	workflow.store.Put(CallRecord{ID: "call-1"})

	event := events.NewTranscriptionReady("call-1", "rec-1", "https://provider.example.com/t")
	if err := workflow.HandleTranscriptionReady(context.Background(), event); err == nil {
		t.Fatalf("expected failure when no fallback is configured")
	}
}

func TestHandleTranscriptionReadyEmptyTranscriptNotice(t *testing.T) {
	tel := &stubTelephony{
		metadata:   &telephony.CallMetadata{Destination: "+33123456789", DurationSeconds: 3},
		transcript: &telephony.Transcript{},
	}
	store := &stubStorage{}
	messenger := &stubMessenger{}
	workflow := transcriptionWorkflow(tel, store, WithMessenger(messenger))

	workflow.store.Put(CallRecord{ID: "call-1"})

	event := events.NewTranscriptionReady("call-1", "rec-1", "https://provider.example.com/t")
	if err := workflow.HandleTranscriptionReady(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.uploads[1].Content != "Aucune transcription disponible." {
		t.Fatalf("expected the empty-transcript notice, got %q", store.uploads[1].Content)
	}
	if !strings.Contains(messenger.body, "Aucune transcription disponible.") {
		t.Fatalf("expected the notice in the notification, got %q", messenger.body)
	}
}

func TestHandleTranscriptionReadyConcurrentDeliveries(t *testing.T) {
	tel := &stubTelephony{
		metadata:   &telephony.CallMetadata{Destination: "+33123456789", DurationSeconds: 10},
		transcript: singleChannelTranscript("Bonjour."),
	}
	store := &stubStorage{}
	messenger := &stubMessenger{}
	workflow := transcriptionWorkflow(tel, store, WithMessenger(messenger))

	workflow.store.Put(CallRecord{ID: "call-1"})

	event := events.NewTranscriptionReady("call-1", "rec-1", "https://provider.example.com/t")
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := workflow.HandleTranscriptionReady(context.Background(), event); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if len(store.uploads) != 2 {
		t.Fatalf("expected exactly one delivery to process, got %d uploads", len(store.uploads))
	}
	if messenger.sent != 1 {
		t.Fatalf("expected exactly one notification, got %d", messenger.sent)
	}
}
