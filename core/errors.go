package callflow

import "errors"

var (
	// ErrInvalidDestination reports that the destination number could not
	// be normalized into a dialable format.
	ErrInvalidDestination = errors.New("invalid destination number")

	// ErrMissingConfiguration reports that the workflow lacks a required
	// collaborator or setting (public URL, caller number, clients).
	ErrMissingConfiguration = errors.New("missing configuration")

	// ErrUnknownCall reports a transcription event for a call identifier
	// with no lifecycle record. The call was never initiated through this
	// workflow; this is a precondition violation, not a retryable condition.
	ErrUnknownCall = errors.New("unknown call")

	// ErrCallNotFound reports that the telephony provider has no call
	// record for an identifier the workflow is processing.
	ErrCallNotFound = errors.New("call record not found")
)
