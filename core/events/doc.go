// Package events defines the typed call-lifecycle event contract.
//
// Event kinds are grouped by lifecycle phase:
//
//   - call.*
//
// Semantics used across the package:
//
//   - Initiated: an outbound call was requested by this system.
//   - Ready: the provider finished producing an artifact and delivered a
//     webhook pointing at it. Ready events may be retried or duplicated by
//     the provider and may arrive in any order relative to each other.
//
// call events
//
//   - CallInitiated (call.initiated): an outbound call to a destination
//     number was requested.
//   - RecordingReady (call.recording_ready): the provider finished a call
//     recording and it can be fetched from RecordingURL.
//   - TranscriptionReady (call.transcription_ready): the provider finished
//     transcribing a recording and the payload can be fetched from
//     TranscriptURL.
package events
