// Package transcripts holds the shared configuration surface for fallback
// transcript sources: backends that can produce the utterance text straight
// from recording audio when the telephony provider's transcription payload
// is unavailable.
package transcripts

// Options are the knobs a transcript source honors. Zero values fall back
// to backend defaults.
type Options struct {
	Model    string
	Language string

	// ContentType describes the recording audio handed to the backend.
	ContentType string
}

type Option func(*Options)

func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

func WithLanguage(language string) Option {
	return func(o *Options) { o.Language = language }
}

func WithContentType(contentType string) Option {
	return func(o *Options) { o.ContentType = contentType }
}
