package callflow

import (
	"context"
	"strings"
)

const (
	emptyTranscriptNotice = "Aucune transcription disponible."
	truncatedSummaryRunes = 200
)

// summarizeTranscript produces the summary included in the notification.
// Summarization is best effort: an empty transcript yields a fixed notice,
// and a failing (or missing) summarizer falls back to a truncated excerpt of
// the transcript itself.
func (w *Workflow) summarizeTranscript(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return emptyTranscriptNotice
	}

	if w.summarizer != nil {
		summary, err := w.summarizer.Summarize(ctx, text)
		if err == nil && strings.TrimSpace(summary) != "" {
			return summary
		}
		if err != nil {
			logger.WarnContext(ctx, "Summarization failed, truncating transcript", "error", err)
		}
	}

	return truncateText(text, truncatedSummaryRunes)
}

func truncateText(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
