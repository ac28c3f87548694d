// Package summarize holds the shared configuration surface for the
// interchangeable summarization backends.
package summarize

// Options are the knobs a summarization backend honors. Zero values fall
// back to backend defaults.
type Options struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

type Option func(*Options)

// WithModel overrides the backend's default model.
func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

// WithPrompt overrides the instruction prepended to the transcript.
func WithPrompt(prompt string) Option {
	return func(o *Options) { o.Prompt = prompt }
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) { o.MaxTokens = maxTokens }
}

func WithTemperature(temperature float64) Option {
	return func(o *Options) { o.Temperature = temperature }
}
