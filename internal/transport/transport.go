package transport

// Push is the send capability handed to upper layers. Push consumes the
// payload; a nil element is a flush signal and is forwarded by decorators
// but sends nothing.
type Push[T any] interface {
	Push(element *T) error
}

// Pull is the receive capability handed to upper layers. Pull never blocks:
// it returns the next pending element, or nil when nothing is queued. The
// returned pointer stays valid until the next Pull on the same endpoint.
type Pull[T any] interface {
	Pull() (*T, error)
}

// EventKind distinguishes send-side from receive-side progress.
type EventKind uint8

const (
	// EventPushed records messages sent into a channel.
	EventPushed EventKind = iota
	// EventPulled records messages taken out of a channel.
	EventPulled
)

func (k EventKind) String() string {
	switch k {
	case EventPushed:
		return "pushed"
	case EventPulled:
		return "pulled"
	default:
		return "unknown"
	}
}

// Event records channel activity: Count messages moved on Channel.
type Event struct {
	Channel uint64
	Kind    EventKind
	Count   int
}

// WorkerEvent pairs an event with the worker that produced it. Worker event
// queues carry these; the owning worker drains them to decide what to poll.
type WorkerEvent struct {
	Worker int
	Event  Event
}
