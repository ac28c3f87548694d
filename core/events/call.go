package events

import "time"

const (
	// KindCallInitiated identifies an outbound call request.
	KindCallInitiated Kind = "call.initiated"
	// KindRecordingReady identifies a finished provider-side recording.
	KindRecordingReady Kind = "call.recording_ready"
	// KindTranscriptionReady identifies a finished provider-side transcription.
	KindTranscriptionReady Kind = "call.transcription_ready"
)

// CallInitiated marks that an outbound call to a destination was requested.
type CallInitiated struct {
	Base
	To string
}

// NewCallInitiated creates a call initiated event.
func NewCallInitiated(to string) CallInitiated {
	return CallInitiated{Base: NewBase(KindCallInitiated), To: to}
}

// RecordingReady carries the provider webhook delivered once a call
// recording has been produced and hosted.
type RecordingReady struct {
	Base
	CallID       string
	RecordingID  string
	RecordingURL string

	StartedAt time.Time
	EndedAt   time.Time
	Size      int
}

// NewRecordingReady creates a recording ready event.
func NewRecordingReady(callID, recordingID, recordingURL string) RecordingReady {
	return RecordingReady{
		Base:         NewBase(KindRecordingReady),
		CallID:       callID,
		RecordingID:  recordingID,
		RecordingURL: recordingURL,
	}
}

// TranscriptionReady carries the provider webhook delivered once a
// recording's transcription has been produced and hosted.
type TranscriptionReady struct {
	Base
	CallID        string
	RecordingID   string
	TranscriptURL string
	Status        string
}

// NewTranscriptionReady creates a transcription ready event.
func NewTranscriptionReady(callID, recordingID, transcriptURL string) TranscriptionReady {
	return TranscriptionReady{
		Base:          NewBase(KindTranscriptionReady),
		CallID:        callID,
		RecordingID:   recordingID,
		TranscriptURL: transcriptURL,
	}
}
