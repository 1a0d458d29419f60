// Package sim provides the discrete event simulation core: the virtual
// clock, the time-ordered event queue and the scheduler that owns it.
package sim

import (
	"fmt"

	"github.com/sarchlab/arqsim/packet"
)

// VTime defines the time in the simulated space, in abstract time units.
type VTime float64

// EntityID names one of the two protocol entities.
type EntityID int

// The two entities of a conversation. A sends data, B receives it.
const (
	EntityA EntityID = iota
	EntityB
)

// Peer returns the entity at the other end of the channel.
func (e EntityID) Peer() EntityID {
	if e == EntityA {
		return EntityB
	}

	return EntityA
}

func (e EntityID) String() string {
	switch e {
	case EntityA:
		return "A"
	case EntityB:
		return "B"
	default:
		return fmt.Sprintf("Entity(%d)", int(e))
	}
}

// EventKind tells what happens when an event fires.
type EventKind int

// Event kinds understood by the driver.
const (
	TimerInterrupt EventKind = iota
	FromAbove
	FromChannel
)

func (k EventKind) String() string {
	switch k {
	case TimerInterrupt:
		return "timerinterrupt"
	case FromAbove:
		return "fromlayer5"
	case FromChannel:
		return "fromlayer3"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// An Event is something going to happen in the future.
//
// Events are values. Once inserted into a queue an event is never modified,
// it is only removed. FromChannel events own their packet until the event is
// consumed.
type Event struct {
	ID     string
	Time   VTime
	Kind   EventKind
	Entity EntityID
	Packet *packet.Packet

	seq uint64
}

// IsTimerOf tells if the event is the pending timer of entity e.
func (evt Event) IsTimerOf(e EntityID) bool {
	return evt.Kind == TimerInterrupt && evt.Entity == e
}

// IsArrivalAt tells if the event is a packet arriving at entity e.
func (evt Event) IsArrivalAt(e EntityID) bool {
	return evt.Kind == FromChannel && evt.Entity == e
}

func (evt Event) String() string {
	return fmt.Sprintf("%.6f %s -> %s", evt.Time, evt.Kind, evt.Entity)
}
