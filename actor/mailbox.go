package actor

import "github.com/gammazero/deque"

// Mailbox is the scheduler's local, single-consumer message queue (spec.md
// §3). Producers are (i) the scheduler itself, via self-sends made while
// dispatching a message, and (ii) the scheduler's own HostService-drain
// step, which runs on the same goroutine. Because producer and consumer are
// always the same goroutine, the Mailbox needs no locking at all — this is
// the one place the teacher's channel-pair design (built for a *different*
// goroutine to produce) is deliberately not carried over; what is kept is
// the teacher's queue shape: a growable double-ended buffer with a
// configurable starting capacity, backed by the same gammazero/deque
// dependency the teacher's own queue type wrapped.
type Mailbox struct {
	q deque.Deque[Message]
}

// Option configures a Mailbox at construction, mirroring the functional
// options pattern used throughout the pack's service constructors.
type Option func(*mailboxOptions)

type mailboxOptions struct {
	capacity    int
	minCapacity int
}

const (
	defaultCapacity    = 64
	defaultMinCapacity = 16
)

func newOptions(opt []Option) mailboxOptions {
	o := mailboxOptions{capacity: defaultCapacity, minCapacity: defaultMinCapacity}
	for _, fn := range opt {
		fn(&o)
	}
	return o
}

// WithCapacity sets the deque's initial capacity hint.
func WithCapacity(n int) Option {
	return func(o *mailboxOptions) { o.capacity = n }
}

// WithMinCapacity sets the deque's floor capacity, below which it will not
// shrink back after draining a burst.
func WithMinCapacity(n int) Option {
	return func(o *mailboxOptions) { o.minCapacity = n }
}

// NewMailbox returns an empty Mailbox.
func NewMailbox(opt ...Option) *Mailbox {
	opts := newOptions(opt)

	mbx := &Mailbox{}
	mbx.q.SetMinCapacity(log2Ceil(opts.minCapacity))
	mbx.q.Grow(opts.capacity)

	return mbx
}

// log2Ceil returns the smallest n such that 1<<n >= v, the power-of-two
// exponent deque.SetMinCapacity expects.
func log2Ceil(v int) uint {
	var n uint
	for (1 << n) < v {
		n++
	}
	return n
}

// NewMailboxes returns count independent Mailbox instances, one per
// scheduler the Host constructs.
func NewMailboxes(count int, opt ...Option) []*Mailbox {
	mm := make([]*Mailbox, count)
	for i := range mm {
		mm[i] = NewMailbox(opt...)
	}
	return mm
}

// Push enqueues a message at the back of the mailbox.
func (m *Mailbox) Push(msg Message) {
	m.q.PushBack(msg)
}

// Pop removes and returns the message at the front of the mailbox. ok is
// false if the mailbox is empty.
func (m *Mailbox) Pop() (msg Message, ok bool) {
	if m.q.Len() == 0 {
		return Message{}, false
	}
	return m.q.PopFront(), true
}

// Len reports the number of queued messages.
func (m *Mailbox) Len() int {
	return m.q.Len()
}

// IsEmpty reports whether the mailbox holds no messages.
func (m *Mailbox) IsEmpty() bool {
	return m.q.Len() == 0
}
