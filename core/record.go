package callflow

// CallRecord accumulates the state of a single call as the recording and
// transcription webhooks arrive in arbitrary order. Records are keyed by the
// provider's call (conversation) identifier.
type CallRecord struct {
	ID string

	// FolderID and FolderURL identify the storage folder shared by all
	// artifacts of this call. The folder is created by whichever webhook
	// arrives first.
	FolderID  string
	FolderURL string

	// SourceRecordingURL is the provider-side location of the raw audio,
	// kept so the transcription path can re-fetch it when the provider's
	// transcript is unavailable.
	SourceRecordingURL string

	RecordingURL  string
	TranscriptURL string
	SummaryURL    string

	RecordingInProgress     bool
	RecordingDone           bool
	TranscriptionInProgress bool
	TranscriptionDone       bool

	Artifacts []Artifact
}

// Artifact is a single file uploaded on behalf of a call.
type Artifact struct {
	Name string
	URL  string
}
