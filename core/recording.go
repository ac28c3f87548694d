package callflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/codes"

	"github.com/koscakluka/callflow-core/core/events"
)

// recordingBuffer holds fetched call audio for the duration of a single
// webhook. Release drops the backing slice so large recordings do not
// outlive their upload.
type recordingBuffer struct {
	id   string
	data []byte
}

func (b *recordingBuffer) Bytes() []byte { return b.data }

func (b *recordingBuffer) Release() { b.data = nil }

// HandleRecordingReady processes the recording-ready webhook. It claims the
// record so concurrent redeliveries become no-ops, fetches the audio from
// the provider, uploads it into the call's storage folder (creating the
// folder when this webhook arrives first) and marks the record accordingly.
// The claim is rolled back when processing fails, so the webhook can be
// retried; redelivery of an already processed recording is a no-op.
func (w *Workflow) HandleRecordingReady(ctx context.Context, event events.RecordingReady) (err error) {
	ctx, span := tracer.Start(ctx, "HandleRecordingReady")
	defer span.End()

	if w.telephony == nil || w.storage == nil {
		return fmt.Errorf("%w: telephony and storage clients required", ErrMissingConfiguration)
	}

	var (
		claimed bool
		done    bool
		busy    bool
		prior   CallRecord
	)
	w.store.Update(event.CallID, func(record *CallRecord, _ bool) bool {
		if record.RecordingDone {
			done = true
			return false
		}
		if record.RecordingInProgress {
			busy = true
			return false
		}
		record.RecordingInProgress = true
		claimed = true
		prior = *record
		return true
	})
	switch {
	case done:
		logger.InfoContext(ctx, "Recording already processed", "callID", event.CallID)
		return nil
	case busy:
		logger.InfoContext(ctx, "Recording already being processed", "callID", event.CallID)
		return nil
	}

	defer func() {
		if err != nil && claimed {
			w.store.Update(event.CallID, func(record *CallRecord, exists bool) bool {
				if !exists {
					return false
				}
				record.RecordingInProgress = false
				return true
			})
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()

	recordingID := event.RecordingID
	if recordingID == "" {
		recordingID = uuid.NewString()
	}

	audio, err := w.telephony.FetchRecording(ctx, event.RecordingURL)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch recording")
		return fmt.Errorf("recording processing failed: %w", err)
	}
	buffer := recordingBuffer{id: recordingID, data: audio}
	defer buffer.Release()

	folderID, folderURL := prior.FolderID, prior.FolderURL
	if folderID == "" {
		folder, err := w.storage.CreateFolder(ctx, folderLabel(event.CallID))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to create folder")
			return fmt.Errorf("recording processing failed: %w", err)
		}
		folderID, folderURL = folder.ID, folder.URL
	}

	name := fmt.Sprintf("Recording_%s.mp3", buffer.id)
	recordingURL, err := w.storage.Upload(ctx, folderID, name, "audio/mpeg", buffer.Bytes())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upload recording")
		return fmt.Errorf("recording processing failed: %w", err)
	}

	w.store.Update(event.CallID, func(record *CallRecord, _ bool) bool {
		record.FolderID = folderID
		record.FolderURL = folderURL
		record.SourceRecordingURL = event.RecordingURL
		record.RecordingURL = recordingURL
		record.RecordingInProgress = false
		record.RecordingDone = true
		record.Artifacts = append(record.Artifacts, Artifact{Name: name, URL: recordingURL})
		return true
	})
	claimed = false

	w.emitEvent(event)
	logger.InfoContext(ctx, "Recording stored", "callID", event.CallID, "recordingURL", recordingURL)

	return nil
}
