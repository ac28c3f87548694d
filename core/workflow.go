package callflow

import (
	"fmt"
	"time"

	"github.com/koscakluka/callflow-core/core/events"
)

const defaultCallTimeout = 2 * time.Minute

// Workflow drives a call from initiation through recording, transcription,
// summarization and the final notification. The recording and transcription
// steps are triggered by independent webhooks and may arrive in any order;
// the workflow keeps per-call state in its store and reconciles the two.
type Workflow struct {
	store *CallStateStore

	telephony        TelephonyClient
	storage          StorageClient
	summarizer       Summarizer
	messenger        Messenger
	transcriptSource TranscriptSource

	callerNumber string
	publicURL    string
	callTimeout  time.Duration

	emitEvent func(events.Event)
}

func NewWorkflow(opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		store:       NewCallStateStore(),
		callTimeout: defaultCallTimeout,
		emitEvent:   func(events.Event) {},
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// folderLabel names the storage folder holding one call's artifacts.
func folderLabel(callID string) string {
	return fmt.Sprintf("Call_%s_%s", callID, time.Now().Format("20060102_150405"))
}

// Record returns a snapshot of the lifecycle record for the given call.
func (w *Workflow) Record(id string) (CallRecord, bool) {
	return w.store.Get(id)
}

// Remove drops the lifecycle record for the given call. The workflow never
// removes records on its own; retention is the embedder's policy.
func (w *Workflow) Remove(id string) {
	w.store.Remove(id)
}

// ActiveCalls reports how many calls currently have a lifecycle record.
func (w *Workflow) ActiveCalls() int {
	return w.store.Count()
}

// ActiveCallIDs returns the identifiers of all calls currently tracked.
func (w *Workflow) ActiveCallIDs() []string {
	return w.store.IDs()
}
