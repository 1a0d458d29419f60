// Package arq implements the sender and receiver state machines of the
// alternating-bit and Go-Back-N protocols.
package arq

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/arqsim/packet"
	"github.com/sarchlab/arqsim/sim"
)

// ErrWindowFull is returned when the upper layer offers a message while the
// send window has no room.
var ErrWindowFull = errors.New("arq: send window is full")

// ErrLinkFailed is returned when the sender has given up on the link.
var ErrLinkFailed = errors.New("arq: link failed")

// ErrNoOutput is returned when the upper layer offers a message to an entity
// that never sends data.
var ErrNoOutput = errors.New("arq: entity does not send data")

// A Link is the channel as seen by an entity.
type Link interface {
	Send(from sim.EntityID, pkt packet.Packet)
	DeliverUp(entity sim.EntityID, msg packet.Message)
}

// A Timer is the timer service as seen by an entity.
type Timer interface {
	Start(entity sim.EntityID, duration sim.VTime)
	Stop(entity sim.EntityID)
}

// A FailureHandler learns about the messages a sender gave up on.
type FailureHandler interface {
	Abandoned(now sim.VTime, entity sim.EntityID, msgs []packet.Message)
}

// An Entity is a protocol endpoint driven by the simulation.
type Entity interface {
	sim.Hookable

	ID() sim.EntityID
	Init()
	OnMessageFromAbove(msg packet.Message) error
	OnPacketFromChannel(pkt packet.Packet)
	OnTimerInterrupt()
}

// Variant selects the protocol.
type Variant int

// Supported protocols.
const (
	AlternatingBit Variant = iota
	GoBackN
)

// ParseVariant converts "abp" or "gbn" into a Variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "", "abp", "alternating-bit":
		return AlternatingBit, nil
	case "gbn", "go-back-n":
		return GoBackN, nil
	default:
		return AlternatingBit, fmt.Errorf("unknown protocol %q", s)
	}
}

func (v Variant) String() string {
	if v == GoBackN {
		return "gbn"
	}

	return "abp"
}

// SeqSpace is the cyclic space of sequence numbers 1..Size.
type SeqSpace struct {
	Size int32
}

// NewSeqSpace returns the smallest space that is safe for window
// outstanding packets on a FIFO channel.
func NewSeqSpace(window int) SeqSpace {
	return SeqSpace{Size: int32(window) + 1}
}

// First is the first sequence number a sender uses.
func (s SeqSpace) First() int32 {
	return 1
}

// Next returns the sequence number after seq. Next(0) is First.
func (s SeqSpace) Next(seq int32) int32 {
	return seq%s.Size + 1
}

// Hook positions of the protocol entities.
var (
	// HookPosDataSent triggers when the sender transmits a new packet.
	HookPosDataSent = &sim.HookPos{Name: "DataSent"}

	// HookPosRetransmit triggers for every retransmitted packet.
	HookPosRetransmit = &sim.HookPos{Name: "Retransmit"}

	// HookPosAckAccepted triggers when an ACK slides the send window.
	HookPosAckAccepted = &sim.HookPos{Name: "AckAccepted"}

	// HookPosIgnored triggers when an entity drops an arriving packet. The
	// item is an Ignored.
	HookPosIgnored = &sim.HookPos{Name: "PacketIgnored"}

	// HookPosAbandoned triggers when the sender gives up. The item is the
	// slice of abandoned messages.
	HookPosAbandoned = &sim.HookPos{Name: "Abandoned"}

	// HookPosAccepted triggers when the receiver accepts new data.
	HookPosAccepted = &sim.HookPos{Name: "Accepted"}

	// HookPosDuplicate triggers when the receiver re-acknowledges instead of
	// accepting.
	HookPosDuplicate = &sim.HookPos{Name: "Duplicate"}

	// HookPosNakSent triggers when the receiver rejects a corrupted packet.
	HookPosNakSent = &sim.HookPos{Name: "NakSent"}

	// HookPosTimerIgnored triggers when an entity without a timer gets a
	// timer interrupt.
	HookPosTimerIgnored = &sim.HookPos{Name: "TimerIgnored"}
)

// An Ignored tells why an entity dropped a packet.
type Ignored struct {
	Packet packet.Packet
	Reason string
}

type entityBase struct {
	sim.HookableBase

	id    sim.EntityID
	link  Link
	clock sim.TimeTeller
}

// ID returns the entity identity.
func (e *entityBase) ID() sim.EntityID {
	return e.id
}

func (e *entityBase) invoke(self sim.Hookable, pos *sim.HookPos, item any) {
	if e.NumHooks() == 0 {
		return
	}

	e.InvokeHook(sim.HookCtx{
		Domain: self,
		Now:    e.clock.Now(),
		Pos:    pos,
		Item:   item,
	})
}
