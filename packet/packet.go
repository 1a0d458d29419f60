// Package packet defines the data units exchanged between the application
// layer, the protocol entities and the channel.
package packet

import (
	"fmt"
	"strings"
)

// PayloadSize is the number of bytes carried by every message and packet.
const PayloadSize = 20

// InvalidSeq is the sentinel written into a header field by the channel when
// it corrupts that field. It is never a valid sequence number.
const InvalidSeq int32 = 999999

// Markers that fill the payload of control packets sent by a receiver.
const (
	AckMarker byte = 6  // ASCII ACK
	NakMarker byte = 21 // ASCII NAK
)

// NoAck is the acknum carried by a negative acknowledgement. Sequence
// numbers start at 1, so 0 never acknowledges anything.
const NoAck int32 = 0

// A Message is the data unit handed from the application layer to a sender.
type Message struct {
	Data [PayloadSize]byte
}

// MessageFromString builds a message from s, truncated or zero-padded to
// PayloadSize bytes.
func MessageFromString(s string) Message {
	var m Message
	copy(m.Data[:], s)

	return m
}

// String renders the message data, stopping at the first zero byte.
func (m Message) String() string {
	return printable(m.Data)
}

// A Packet is the data unit handed from a protocol entity to the channel.
// Packets are values. Every assignment is a deep copy.
type Packet struct {
	Seqnum   int32
	Acknum   int32
	Checksum int32
	Payload  [PayloadSize]byte
}

// NewData builds a sealed data packet carrying msg.
func NewData(seq int32, msg Message) Packet {
	p := Packet{
		Seqnum:  seq,
		Acknum:  0,
		Payload: msg.Data,
	}
	Seal(&p)

	return p
}

// NewAck builds a sealed acknowledgement for seq.
func NewAck(seq int32) Packet {
	p := Packet{
		Seqnum:  seq,
		Acknum:  seq,
		Payload: filled(AckMarker),
	}
	Seal(&p)

	return p
}

// NewNak builds a sealed negative acknowledgement that echoes seq.
func NewNak(seq int32) Packet {
	p := Packet{
		Seqnum:  seq,
		Acknum:  NoAck,
		Payload: filled(NakMarker),
	}
	Seal(&p)

	return p
}

// IsAck tells if the payload carries the acknowledgement marker.
func (p Packet) IsAck() bool {
	return p.Payload == filled(AckMarker)
}

// IsNak tells if the payload carries the negative acknowledgement marker.
func (p Packet) IsNak() bool {
	return p.Payload == filled(NakMarker)
}

// Message extracts the payload as a message.
func (p Packet) Message() Message {
	return Message{Data: p.Payload}
}

func (p Packet) String() string {
	return fmt.Sprintf("seq: %d, ack %d, check: %d %s",
		p.Seqnum, p.Acknum, p.Checksum, printable(p.Payload))
}

func filled(b byte) [PayloadSize]byte {
	var data [PayloadSize]byte
	for i := range data {
		data[i] = b
	}

	return data
}

func printable(data [PayloadSize]byte) string {
	var sb strings.Builder

	for _, b := range data {
		if b == 0 {
			break
		}

		if b < 0x20 || b > 0x7e {
			fmt.Fprintf(&sb, "\\x%02x", b)
			continue
		}

		sb.WriteByte(b)
	}

	return sb.String()
}
