package telephony

import "strings"

// Transcript is the provider's transcription payload for one recording.
type Transcript struct {
	Version   string    `json:"ver"`
	RequestID string    `json:"request_id"`
	Channels  []Channel `json:"channels"`
}

// Channel holds the transcribed sentences for one audio channel.
type Channel struct {
	Sentences []Sentence `json:"transcript"`
	Duration  int        `json:"duration"`
}

// Sentence is one transcribed utterance fragment.
type Sentence struct {
	Sentence    string `json:"sentence"`
	RawSentence string `json:"raw_sentence"`
	Duration    int    `json:"duration"`
	Timestamp   int    `json:"timestamp"`
	Words       []Word `json:"words"`
}

// Word is one recognized word with its timing and confidence.
type Word struct {
	Word       string  `json:"word"`
	StartTime  int     `json:"start_time"`
	EndTime    int     `json:"end_time"`
	Confidence float64 `json:"confidence"`
}

// Text extracts the full utterance text of the channel: every sentence in
// the order returned by the provider, each on its own line.
func (c Channel) Text() string {
	var text strings.Builder
	for _, sentence := range c.Sentences {
		text.WriteString(sentence.Sentence)
		text.WriteString("\n")
	}
	return text.String()
}

// Text extracts the utterance text of the first channel. It returns an
// empty string when the payload carries no channels.
func (t Transcript) Text() string {
	if len(t.Channels) == 0 {
		return ""
	}
	return t.Channels[0].Text()
}
