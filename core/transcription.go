package callflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/koscakluka/callflow-core/core/events"
)

// HandleTranscriptionReady processes the transcription-ready webhook. It
// claims the record so concurrent redeliveries become no-ops, gathers the
// transcript (falling back to transcribing the raw audio when the provider's
// transcript cannot be fetched), summarizes it, uploads both artifacts and
// notifies the callee's counterpart by SMS. The claim is rolled back when
// processing fails, so the webhook can be retried.
func (w *Workflow) HandleTranscriptionReady(ctx context.Context, event events.TranscriptionReady) (err error) {
	ctx, span := tracer.Start(ctx, "HandleTranscriptionReady")
	defer span.End()

	if w.telephony == nil || w.storage == nil {
		return fmt.Errorf("%w: telephony and storage clients required", ErrMissingConfiguration)
	}

	var (
		claimed  bool
		done     bool
		busy     bool
		notFound bool
		snapshot CallRecord
	)
	w.store.Update(event.CallID, func(record *CallRecord, exists bool) bool {
		if !exists {
			notFound = true
			return false
		}
		if record.TranscriptionDone {
			done = true
			return false
		}
		if record.TranscriptionInProgress {
			busy = true
			return false
		}
		record.TranscriptionInProgress = true
		claimed = true
		snapshot = *record
		return true
	})
	switch {
	case notFound:
		err := fmt.Errorf("%w: %q", ErrUnknownCall, event.CallID)
		span.RecordError(err)
		span.SetStatus(codes.Error, "transcription for unknown call")
		return err
	case done:
		logger.InfoContext(ctx, "Transcription already processed", "callID", event.CallID)
		return nil
	case busy:
		logger.InfoContext(ctx, "Transcription already in progress", "callID", event.CallID)
		return nil
	}

	defer func() {
		if err != nil && claimed {
			w.store.Update(event.CallID, func(record *CallRecord, exists bool) bool {
				if !exists {
					return false
				}
				record.TranscriptionInProgress = false
				return true
			})
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()

	metadata, err := w.telephony.FindCallMetadata(ctx, event.CallID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to look up call metadata")
		return fmt.Errorf("transcription processing failed: %w", err)
	}
	if metadata == nil {
		err = fmt.Errorf("%w: %q", ErrCallNotFound, event.CallID)
		span.RecordError(err)
		return err
	}

	text, err := w.gatherTranscript(ctx, event, snapshot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to gather transcript")
		return fmt.Errorf("transcription processing failed: %w", err)
	}

	summary := w.summarizeTranscript(ctx, text)

	folderID, folderURL := snapshot.FolderID, snapshot.FolderURL
	if folderID == "" {
		folder, err := w.storage.CreateFolder(ctx, folderLabel(event.CallID))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to create folder")
			return fmt.Errorf("transcription processing failed: %w", err)
		}
		folderID, folderURL = folder.ID, folder.URL
	}

	recordingID := event.RecordingID
	if recordingID == "" {
		recordingID = uuid.NewString()
	}

	transcriptName := fmt.Sprintf("Transcript_%s.txt", recordingID)
	transcriptURL, err := w.storage.Upload(ctx, folderID, transcriptName, "text/plain", []byte(text))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upload transcript")
		return fmt.Errorf("transcription processing failed: %w", err)
	}

	summaryName := fmt.Sprintf("Summary_%s.txt", recordingID)
	summaryURL, err := w.storage.Upload(ctx, folderID, summaryName, "text/plain", []byte(summary))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upload summary")
		return fmt.Errorf("transcription processing failed: %w", err)
	}

	w.store.Update(event.CallID, func(record *CallRecord, _ bool) bool {
		record.FolderID = folderID
		record.FolderURL = folderURL
		record.TranscriptURL = transcriptURL
		record.SummaryURL = summaryURL
		record.TranscriptionInProgress = false
		record.TranscriptionDone = true
		record.Artifacts = append(record.Artifacts,
			Artifact{Name: transcriptName, URL: transcriptURL},
			Artifact{Name: summaryName, URL: summaryURL},
		)
		return true
	})
	claimed = false

	w.emitEvent(event)
	logger.InfoContext(ctx, "Transcription stored", "callID", event.CallID, "transcriptURL", transcriptURL)

	if w.messenger != nil {
		body := ComposeNotification(metadata.DurationSeconds, summary, folderURL)
		if err := w.messenger.SendSMS(ctx, w.callerNumber, metadata.Destination, body); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to send notification")
			return fmt.Errorf("failed to send notification: %w", err)
		}
	}

	return nil
}

// gatherTranscript fetches the provider's transcript, falling back to
// transcribing the stored recording when the provider fails and a fallback
// transcript source is configured.
func (w *Workflow) gatherTranscript(ctx context.Context, event events.TranscriptionReady, snapshot CallRecord) (string, error) {
	transcript, err := w.telephony.FetchTranscript(ctx, event.TranscriptURL)
	if err == nil {
		return transcript.Text(), nil
	}

	if w.transcriptSource == nil || snapshot.SourceRecordingURL == "" {
		return "", err
	}

	logger.WarnContext(ctx, "Provider transcript unavailable, transcribing recording",
		"callID", event.CallID, "error", err)

	audio, fetchErr := w.telephony.FetchRecording(ctx, snapshot.SourceRecordingURL)
	if fetchErr != nil {
		return "", fmt.Errorf("failed to fetch recording for fallback transcription: %w", fetchErr)
	}

	text, transcribeErr := w.transcriptSource.TranscribeRecording(ctx, audio)
	if transcribeErr != nil {
		return "", fmt.Errorf("fallback transcription failed: %w", transcribeErr)
	}
	return text, nil
}
