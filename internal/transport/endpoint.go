package transport

// Pusher is the push half of a queue-backed channel. Pushers are cheap to
// copy; copies share the same underlying queue.
type Pusher[T any] struct {
	target *Queue[T]
}

// NewPusher creates a push endpoint feeding target.
func NewPusher[T any](target *Queue[T]) Pusher[T] {
	return Pusher[T]{target: target}
}

// Push forwards the payload into the queue. A nil element is a flush
// signal and sends nothing.
func (p Pusher[T]) Push(element *T) error {
	if element == nil {
		return nil
	}
	return p.target.Send(*element)
}

// Puller is the pull half of a queue-backed channel. It holds the most
// recently pulled element so Pull can hand out a stable pointer. A Puller
// is exclusively owned by its consumer.
type Puller[T any] struct {
	source  *Queue[T]
	current T
	has     bool
}

// NewPuller creates the pull endpoint draining source.
func NewPuller[T any](source *Queue[T]) *Puller[T] {
	return &Puller[T]{source: source}
}

// Pull attempts a non-blocking receive. It returns a pointer to the held
// element, or nil when nothing is pending. The pointer is invalidated by
// the next Pull.
func (p *Puller[T]) Pull() (*T, error) {
	v, ok := p.source.TryRecv()
	if !ok {
		var zero T
		p.current = zero
		p.has = false
		return nil, nil
	}
	p.current = v
	p.has = true
	return &p.current, nil
}

// Close marks the consumer gone; subsequent peer sends fail.
func (p *Puller[T]) Close() {
	p.source.Close()
}
