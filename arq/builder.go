package arq

import (
	"github.com/sarchlab/arqsim/sim"
)

// DefaultTimeout is the retransmission timeout used when none is set.
const DefaultTimeout sim.VTime = 20

// Builder can build senders and receivers.
type Builder struct {
	variant   Variant
	window    int
	timeout   sim.VTime
	maxRetx   int
	link      Link
	timer     Timer
	clock     sim.TimeTeller
	onFailure FailureHandler
}

// MakeBuilder creates a Builder for the alternating-bit protocol.
func MakeBuilder() Builder {
	return Builder{
		variant: AlternatingBit,
		window:  1,
		timeout: DefaultTimeout,
	}
}

// WithVariant sets the protocol. The alternating-bit protocol always uses a
// window of one.
func (b Builder) WithVariant(v Variant) Builder {
	b.variant = v
	return b
}

// WithWindowSize sets the number of packets the sender may have in flight.
func (b Builder) WithWindowSize(n int) Builder {
	b.window = n
	return b
}

// WithTimeout sets the retransmission timeout.
func (b Builder) WithTimeout(t sim.VTime) Builder {
	b.timeout = t
	return b
}

// WithMaxRetransmissions sets how many consecutive timeouts the sender
// tolerates for the same oldest packet before giving up. Zero means never
// give up.
func (b Builder) WithMaxRetransmissions(n int) Builder {
	b.maxRetx = n
	return b
}

// WithLink sets the channel the entities send through.
func (b Builder) WithLink(l Link) Builder {
	b.link = l
	return b
}

// WithTimer sets the timer service.
func (b Builder) WithTimer(t Timer) Builder {
	b.timer = t
	return b
}

// WithTimeTeller sets the clock used to stamp hook invocations.
func (b Builder) WithTimeTeller(c sim.TimeTeller) Builder {
	b.clock = c
	return b
}

// WithFailureHandler sets who learns about abandoned messages.
func (b Builder) WithFailureHandler(h FailureHandler) Builder {
	b.onFailure = h
	return b
}

func (b Builder) windowSize() int {
	if b.variant == AlternatingBit {
		return 1
	}

	return b.window
}

func (b Builder) parametersMustBeValid() {
	if b.link == nil {
		panic("link is not set")
	}

	if b.clock == nil {
		panic("time teller is not set")
	}

	if b.windowSize() < 1 {
		panic("window size must be at least 1")
	}
}

// BuildSender builds a sender for entity id.
func (b Builder) BuildSender(id sim.EntityID) *Sender {
	b.parametersMustBeValid()

	if b.timer == nil {
		panic("timer is not set")
	}

	s := &Sender{
		variant:   b.variant,
		window:    b.windowSize(),
		space:     NewSeqSpace(b.windowSize()),
		timeout:   b.timeout,
		maxRetx:   b.maxRetx,
		timer:     b.timer,
		onFailure: b.onFailure,
	}
	s.id = id
	s.link = b.link
	s.clock = b.clock
	s.Init()

	return s
}

// BuildReceiver builds a receiver for entity id.
func (b Builder) BuildReceiver(id sim.EntityID) *Receiver {
	b.parametersMustBeValid()

	r := &Receiver{
		space: NewSeqSpace(b.windowSize()),
	}
	r.id = id
	r.link = b.link
	r.clock = b.clock
	r.Init()

	return r
}
