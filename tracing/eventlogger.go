package tracing

import (
	"log"

	"github.com/sarchlab/arqsim/arq"
	"github.com/sarchlab/arqsim/channel"
	"github.com/sarchlab/arqsim/packet"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/sim/timer"
	"github.com/sarchlab/arqsim/simulation"
)

// Trace levels.
const (
	// TraceFaults logs lost and corrupted packets.
	TraceFaults = 1
	// TraceEvents also logs every processed event.
	TraceEvents = 2
	// TraceDetail also logs timers, channel hand-offs and deliveries.
	TraceDetail = 3
)

// EventLogger is a hook that prints what happens in a simulation. Which
// lines are printed depends on the trace level. Warnings are always printed.
type EventLogger struct {
	LogHookBase

	level int
}

// NewEventLogger returns a new EventLogger which will write into the logger.
func NewEventLogger(logger *log.Logger, level int) *EventLogger {
	h := new(EventLogger)
	h.Logger = logger
	h.level = level

	return h
}

// Func writes the information of the hook site into the logger.
func (h *EventLogger) Func(ctx sim.HookCtx) {
	if ctx.Pos == sim.HookPosWarning {
		h.Println(ctx.Item.(sim.Warning).String())
		return
	}

	if h.level >= TraceFaults && h.logFault(ctx) {
		return
	}

	if h.level >= TraceEvents && ctx.Pos == sim.HookPosBeforeEvent {
		evt := ctx.Item.(sim.Event)
		h.Printf("EVENT time: %f, type: %s, entity: %s",
			evt.Time, evt.Kind, evt.Entity)

		return
	}

	if h.level >= TraceDetail {
		h.logDetail(ctx)
	}
}

func (h *EventLogger) logFault(ctx sim.HookCtx) bool {
	switch ctx.Pos {
	case channel.HookPosLost:
		h.Println("TOLAYER3: packet being lost")
	case channel.HookPosCorrupted:
		tx := ctx.Item.(channel.Transmission)
		h.Printf("TOLAYER3: packet being corrupted (%s)", tx.Corruption)
	case simulation.HookPosLinkFailed:
		msgs := ctx.Item.([]packet.Message)
		h.Printf("A: giving up, %d messages abandoned", len(msgs))
	default:
		return false
	}

	return true
}

func (h *EventLogger) logDetail(ctx sim.HookCtx) {
	switch ctx.Pos {
	case sim.HookPosEventInserted:
		evt := ctx.Item.(sim.Event)
		h.Printf("INSERTEVENT: time is %f, future time will be %f",
			ctx.Now, evt.Time)
	case timer.HookPosTimerStarted:
		h.Printf("START TIMER: starting timer at %f", ctx.Now)
	case timer.HookPosTimerStopped:
		h.Printf("STOP TIMER: stopping timer at %f", ctx.Now)
	case channel.HookPosSend:
		tx := ctx.Item.(channel.Transmission)
		h.Printf("TOLAYER3: %s", tx.Packet)
	case channel.HookPosScheduled:
		h.Println("TOLAYER3: scheduling arrival on other side")
	case channel.HookPosDeliverUp:
		d := ctx.Item.(channel.Delivery)
		h.Printf("TOLAYER5: data received: %s", d.Message)
	case simulation.HookPosMessageGenerated:
		h.Printf("MAINLOOP: data given to A: %s", ctx.Item.(packet.Message))
	case simulation.HookPosBacklogged:
		h.Println("MAINLOOP: window full, message held back")
	default:
		h.logEntity(ctx)
	}
}

type identified interface {
	ID() sim.EntityID
}

func (h *EventLogger) logEntity(ctx sim.HookCtx) {
	entity, ok := ctx.Domain.(identified)
	if !ok {
		return
	}

	id := entity.ID()

	switch ctx.Pos {
	case arq.HookPosAckAccepted:
		h.Printf("%s: packet acknowledged: %s", id, ctx.Item.(packet.Packet))
	case arq.HookPosRetransmit:
		h.Printf("%s: retransmitting: %s", id, ctx.Item.(packet.Packet))
	case arq.HookPosIgnored:
		ignored := ctx.Item.(arq.Ignored)
		h.Printf("%s: ignoring packet %d, %s",
			id, ignored.Packet.Seqnum, ignored.Reason)
	case arq.HookPosAccepted:
		h.Printf("%s: accepted packet %d", id, ctx.Item.(packet.Packet).Seqnum)
	case arq.HookPosDuplicate:
		h.Printf("%s: re-acknowledging, packet %d is not the next one",
			id, ctx.Item.(packet.Packet).Seqnum)
	case arq.HookPosNakSent:
		h.Printf("%s: packet %d is corrupted",
			id, ctx.Item.(packet.Packet).Seqnum)
	case arq.HookPosTimerIgnored:
		h.Printf("%s doesn't have a timer. ignore.", id)
	}
}
