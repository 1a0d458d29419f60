package arq

import (
	"fmt"

	"github.com/sarchlab/arqsim/packet"
	"github.com/sarchlab/arqsim/sim"
)

// SenderState is the state of a Sender.
type SenderState int

// Sender states.
const (
	Idle SenderState = iota
	AwaitingAck
	Failed
)

func (s SenderState) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case AwaitingAck:
		return "AWAITING_ACK"
	case Failed:
		return "FAILED"
	default:
		return fmt.Sprintf("SenderState(%d)", int(s))
	}
}

type inFlight struct {
	pkt packet.Packet
	msg packet.Message
}

// A Sender is the transmit side of the protocol. It keeps up to window
// unacknowledged packets and runs one timer for the oldest of them.
type Sender struct {
	entityBase

	variant   Variant
	window    int
	space     SeqSpace
	timeout   sim.VTime
	maxRetx   int
	timer     Timer
	onFailure FailureHandler

	state    SenderState
	nextSeq  int32
	inFlight []inFlight
	timeouts int

	retransmissions int
}

// Init resets the sender to an empty window.
func (s *Sender) Init() {
	s.state = Idle
	s.nextSeq = s.space.First()
	s.inFlight = nil
	s.timeouts = 0
	s.retransmissions = 0
}

// State returns the current state.
func (s *Sender) State() SenderState {
	return s.state
}

// WindowSize returns the maximum number of packets in flight.
func (s *Sender) WindowSize() int {
	return s.window
}

// NextSeq returns the sequence number the next new packet will carry.
func (s *Sender) NextSeq() int32 {
	return s.nextSeq
}

// Outstanding returns copies of the unacknowledged packets, oldest first.
func (s *Sender) Outstanding() []packet.Packet {
	pkts := make([]packet.Packet, 0, len(s.inFlight))
	for _, f := range s.inFlight {
		pkts = append(pkts, f.pkt)
	}

	return pkts
}

// Retransmissions returns how many packets the sender has sent again.
func (s *Sender) Retransmissions() int {
	return s.retransmissions
}

// CanAccept tells if the sender would take a message now.
func (s *Sender) CanAccept() bool {
	return s.state != Failed && len(s.inFlight) < s.window
}

// OnMessageFromAbove sends msg in a new packet. It fails with ErrWindowFull
// if the window has no room and with ErrLinkFailed after the sender gave up.
func (s *Sender) OnMessageFromAbove(msg packet.Message) error {
	if s.state == Failed {
		return ErrLinkFailed
	}

	if len(s.inFlight) >= s.window {
		return ErrWindowFull
	}

	pkt := packet.NewData(s.nextSeq, msg)
	s.nextSeq = s.space.Next(s.nextSeq)
	s.inFlight = append(s.inFlight, inFlight{pkt: pkt, msg: msg})

	s.link.Send(s.id, pkt)
	s.invoke(s, HookPosDataSent, pkt)

	if len(s.inFlight) == 1 {
		s.timer.Start(s.id, s.timeout)
	}

	s.state = AwaitingAck

	return nil
}

// OnPacketFromChannel handles an acknowledgement. Corrupted packets,
// negative acknowledgements and acknowledgements that name no packet in
// flight are ignored. The retransmission timer deals with them.
func (s *Sender) OnPacketFromChannel(pkt packet.Packet) {
	if !packet.Verify(pkt) {
		s.ignore(pkt, "corrupted")
		return
	}

	if !pkt.IsAck() {
		s.ignore(pkt, "not an acknowledgement")
		return
	}

	idx := s.indexOf(pkt.Acknum)
	if idx < 0 {
		s.ignore(pkt, "acknowledges nothing in flight")
		return
	}

	s.timer.Stop(s.id)

	remaining := make([]inFlight, len(s.inFlight)-idx-1)
	copy(remaining, s.inFlight[idx+1:])
	s.inFlight = remaining
	s.timeouts = 0

	s.invoke(s, HookPosAckAccepted, pkt)

	if len(s.inFlight) == 0 {
		s.state = Idle
		return
	}

	s.timer.Start(s.id, s.timeout)
}

// indexOf finds the packet in flight with seq. Acknowledging it also
// acknowledges every older packet.
func (s *Sender) indexOf(seq int32) int {
	for i, f := range s.inFlight {
		if f.pkt.Seqnum == seq {
			return i
		}
	}

	return -1
}

// OnTimerInterrupt retransmits and restarts the timer. The alternating-bit
// sender resends its single packet. The Go-Back-N sender resends every
// packet in flight, oldest first.
func (s *Sender) OnTimerInterrupt() {
	if len(s.inFlight) == 0 {
		return
	}

	s.timeouts++
	if s.maxRetx > 0 && s.timeouts > s.maxRetx {
		s.abandon()
		return
	}

	resend := s.inFlight
	if s.variant == AlternatingBit {
		resend = s.inFlight[:1]
	}

	for _, f := range resend {
		s.retransmissions++
		s.link.Send(s.id, f.pkt)
		s.invoke(s, HookPosRetransmit, f.pkt)
	}

	s.timer.Start(s.id, s.timeout)
}

func (s *Sender) abandon() {
	msgs := make([]packet.Message, 0, len(s.inFlight))
	for _, f := range s.inFlight {
		msgs = append(msgs, f.msg)
	}

	s.inFlight = nil
	s.state = Failed

	s.invoke(s, HookPosAbandoned, msgs)

	if s.onFailure != nil {
		s.onFailure.Abandoned(s.clock.Now(), s.id, msgs)
	}
}

func (s *Sender) ignore(pkt packet.Packet, reason string) {
	s.invoke(s, HookPosIgnored, Ignored{Packet: pkt, Reason: reason})
}
