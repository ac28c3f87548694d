package callflow

import "fmt"

// ComposeNotification builds the SMS body sent once a call has been fully
// processed. The caller's number is deliberately withheld from the body; the
// destination is only used for addressing the message.
func ComposeNotification(durationSeconds int, summary string, folderURL string) string {
	return fmt.Sprintf("From: #hidden\nDuration: %ds\nSummary: %s\nFiles: %s\n",
		durationSeconds, summary, folderURL)
}
