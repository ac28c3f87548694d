package callflow

import (
	"context"
	"time"

	"github.com/koscakluka/callflow-core/core/events"
	"github.com/koscakluka/callflow-core/core/storage"
	"github.com/koscakluka/callflow-core/core/telephony"
)

type WorkflowOption func(*Workflow)

type TelephonyClient interface {
	PlaceCall(ctx context.Context, destination, from string, plan telephony.CallPlan) (*telephony.CallInfo, error)
	FindCallMetadata(ctx context.Context, callID string) (*telephony.CallMetadata, error)
	FetchRecording(ctx context.Context, recordingURL string) ([]byte, error)
	FetchTranscript(ctx context.Context, transcriptURL string) (*telephony.Transcript, error)
}

func WithTelephonyClient(client TelephonyClient) WorkflowOption {
	return func(w *Workflow) {
		w.telephony = client
	}
}

type StorageClient interface {
	CreateFolder(ctx context.Context, label string) (*storage.Folder, error)
	Upload(ctx context.Context, folderID, name, contentType string, content []byte) (string, error)
}

func WithStorageClient(client StorageClient) WorkflowOption {
	return func(w *Workflow) {
		w.storage = client
	}
}

type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

func WithSummarizer(client Summarizer) WorkflowOption {
	return func(w *Workflow) {
		w.summarizer = client
	}
}

type Messenger interface {
	SendSMS(ctx context.Context, from, to, text string) error
}

func WithMessenger(client Messenger) WorkflowOption {
	return func(w *Workflow) {
		w.messenger = client
	}
}

// TranscriptSource produces a transcript directly from audio. It is used as
// a fallback when the telephony provider's transcript cannot be fetched.
type TranscriptSource interface {
	TranscribeRecording(ctx context.Context, audio []byte) (string, error)
}

func WithTranscriptSource(client TranscriptSource) WorkflowOption {
	return func(w *Workflow) {
		w.transcriptSource = client
	}
}

// WithCallerNumber sets the number outgoing calls and notifications are
// placed from.
func WithCallerNumber(number string) WorkflowOption {
	return func(w *Workflow) {
		w.callerNumber = number
	}
}

// WithPublicURL sets the externally reachable base URL the telephony
// provider delivers its webhooks to.
func WithPublicURL(url string) WorkflowOption {
	return func(w *Workflow) {
		w.publicURL = url
	}
}

// WithCallTimeout bounds how long a single webhook is processed before its
// outbound requests are cancelled.
func WithCallTimeout(timeout time.Duration) WorkflowOption {
	return func(w *Workflow) {
		w.callTimeout = timeout
	}
}

// WithEventListener registers a callback invoked for every lifecycle event
// the workflow emits.
func WithEventListener(listener func(events.Event)) WorkflowOption {
	return func(w *Workflow) {
		w.emitEvent = listener
	}
}
