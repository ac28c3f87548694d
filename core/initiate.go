package callflow

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/codes"

	"github.com/koscakluka/callflow-core/core/events"
	"github.com/koscakluka/callflow-core/core/telephony"
)

const voicemailPrompt = "Bonjour, veuillez laisser un message après le bip svp."

// InitiateCall normalizes the destination, places the call through the
// telephony backend and registers a fresh record for it. The returned ID is
// the provider's call identifier, which the recording and transcription
// webhooks later carry.
func (w *Workflow) InitiateCall(ctx context.Context, destination string) (string, error) {
	ctx, span := tracer.Start(ctx, "InitiateCall")
	defer span.End()

	if w.telephony == nil {
		return "", fmt.Errorf("%w: telephony client not configured", ErrMissingConfiguration)
	}
	if w.callerNumber == "" {
		return "", fmt.Errorf("%w: caller number not configured", ErrMissingConfiguration)
	}
	if w.publicURL == "" {
		return "", fmt.Errorf("%w: public url not configured", ErrMissingConfiguration)
	}

	normalized, ok := NormalizePhoneNumber(destination)
	if !ok {
		err := fmt.Errorf("%w: %q", ErrInvalidDestination, destination)
		span.RecordError(err)
		span.SetStatus(codes.Error, "destination rejected")
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, w.callTimeout)
	defer cancel()

	info, err := w.telephony.PlaceCall(ctx, normalized, w.callerNumber, w.defaultCallPlan())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to place call")
		return "", fmt.Errorf("failed to place call: %w", err)
	}

	w.store.Put(CallRecord{ID: info.ID})
	w.emitEvent(events.NewCallInitiated(normalized))
	logger.InfoContext(ctx, "Call placed", "callID", info.ID, "status", info.Status)

	return info.ID, nil
}

func (w *Workflow) defaultCallPlan() telephony.CallPlan {
	base := strings.TrimSuffix(w.publicURL, "/")
	return telephony.CallPlan{
		Talk: telephony.TalkAction{
			Text:     voicemailPrompt,
			Language: "fr-FR",
			Style:    1,
		},
		Record: telephony.RecordAction{
			EventURL:              base + "/call/recorded",
			TranscriptionEventURL: base + "/call/transcribed",
			TranscriptionLanguage: "fr-FR",
			EndOnSilenceSeconds:   3,
			BeepStart:             true,
		},
	}
}
