package arq

import (
	"github.com/sarchlab/arqsim/packet"
)

// A Receiver is the receive side of the protocol. It delivers each sequence
// number once, in order, and acknowledges cumulatively.
type Receiver struct {
	entityBase

	space    SeqSpace
	expected int32

	delivered  int
	duplicates int
	naks       int
}

// Init resets the receiver. Nothing has been accepted, so the last accepted
// sequence number is one less than the sender's first.
func (r *Receiver) Init() {
	r.expected = r.space.First() - 1
	r.delivered = 0
	r.duplicates = 0
	r.naks = 0
}

// LastAccepted returns the sequence number of the last accepted packet.
func (r *Receiver) LastAccepted() int32 {
	return r.expected
}

// Delivered returns how many payloads the receiver handed up.
func (r *Receiver) Delivered() int {
	return r.delivered
}

// Duplicates returns how many valid packets were re-acknowledged instead of
// accepted.
func (r *Receiver) Duplicates() int {
	return r.duplicates
}

// Naks returns how many negative acknowledgements were sent.
func (r *Receiver) Naks() int {
	return r.naks
}

// OnMessageFromAbove always fails. Data flows from the sender only.
func (r *Receiver) OnMessageFromAbove(_ packet.Message) error {
	return ErrNoOutput
}

// OnPacketFromChannel accepts the next in-order packet, re-acknowledges
// anything else that arrives intact and rejects corrupted packets.
func (r *Receiver) OnPacketFromChannel(pkt packet.Packet) {
	if !packet.Verify(pkt) {
		r.naks++
		r.link.Send(r.id, packet.NewNak(pkt.Seqnum))
		r.invoke(r, HookPosNakSent, pkt)

		return
	}

	if pkt.Seqnum != r.space.Next(r.expected) {
		r.duplicates++
		r.link.Send(r.id, packet.NewAck(r.expected))
		r.invoke(r, HookPosDuplicate, pkt)

		return
	}

	r.delivered++
	r.link.DeliverUp(r.id, pkt.Message())
	r.link.Send(r.id, packet.NewAck(pkt.Seqnum))
	r.expected = pkt.Seqnum
	r.invoke(r, HookPosAccepted, pkt)
}

// OnTimerInterrupt is ignored. The receiver never starts a timer.
func (r *Receiver) OnTimerInterrupt() {
	r.invoke(r, HookPosTimerIgnored, r.id)
}
