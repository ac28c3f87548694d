package events

import "time"

// Kind names an event type within the call.* namespace.
type Kind string

// Event is implemented by every call lifecycle event. The kind discriminates
// the concrete type; the timestamp records when the event entered this
// process, not when the provider produced it.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the fields shared by all lifecycle events. Embed it and
// construct it through NewBase so the timestamp is always stamped.
type Base struct {
	kind      Kind
	timestamp time.Time
}

func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

func (b Base) Timestamp() time.Time {
	return b.timestamp
}
