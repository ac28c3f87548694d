// Package telephony holds the provider-neutral types exchanged with a
// call-control backend: the directives used to drive an outbound call and
// the metadata returned when searching finished calls.
package telephony

// CallPlan describes the provider directives for an outbound call: a spoken
// prompt followed by a recording whose completion and transcription webhooks
// point back at the caller's endpoints.
type CallPlan struct {
	Talk   TalkAction
	Record RecordAction
}

// TalkAction is the spoken prompt played to the callee.
type TalkAction struct {
	Text     string
	Language string
	Style    int
}

// RecordAction records the callee after the prompt. EventURL receives the
// recording-ready webhook, TranscriptionEventURL the transcription-ready
// webhook.
type RecordAction struct {
	EventURL              string
	TranscriptionEventURL string
	TranscriptionLanguage string

	// EndOnSilenceSeconds stops the recording after this many seconds of
	// silence.
	EndOnSilenceSeconds int
	BeepStart           bool
}

// CallInfo is the provider's acknowledgement of a placed call.
type CallInfo struct {
	ID     string
	Status string
}

// CallMetadata is the searchable record of a finished call.
type CallMetadata struct {
	// Destination is the callee number in canonical dial format.
	Destination     string
	DurationSeconds int
}
