// Package simulation wires the scheduler, the channel, the timers and the two
// protocol entities into one run and pumps events until the queue drains.
package simulation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sarchlab/arqsim/arq"
	"github.com/sarchlab/arqsim/channel"
	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/packet"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/sim/timer"
)

// ErrAlreadyRun is returned when Run is called a second time.
var ErrAlreadyRun = errors.New("simulation: already run")

// HookPosMessageGenerated triggers when the application layer produces a
// message. The item is the packet.Message.
var HookPosMessageGenerated = &sim.HookPos{Name: "MessageGenerated"}

// HookPosBacklogged triggers when the sender cannot take a message yet. The
// item is the packet.Message.
var HookPosBacklogged = &sim.HookPos{Name: "Backlogged"}

// HookPosLinkFailed triggers when the sender gives up. The item is the slice
// of abandoned messages.
var HookPosLinkFailed = &sim.HookPos{Name: "LinkFailed"}

// HookPosRunEnd triggers once when Run returns normally. The item is the
// Result.
var HookPosRunEnd = &sim.HookPos{Name: "RunEnd"}

// A Delivery is one payload handed to the application layer.
type Delivery struct {
	Time    sim.VTime
	Entity  sim.EntityID
	Message packet.Message
}

// A Simulation is one sender/receiver conversation over one channel.
type Simulation struct {
	sim.HookableBase

	id  string
	cfg config.Config
	rng sim.RandomSource

	ctx       *sim.Context
	scheduler *sim.Scheduler
	timers    *timer.Service
	channel   *channel.Channel
	sender    *arq.Sender
	receiver  *arq.Receiver
	entities  [2]arq.Entity

	backlog    []packet.Message
	refused    []packet.Message
	abandoned  []packet.Message
	deliveries []Delivery
	failed     bool
	timedOut   bool
	events     int

	singleRunLock sync.Mutex
	started       bool

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	stateLock sync.Mutex
}

// ID returns the run ID.
func (s *Simulation) ID() string {
	return s.id
}

// Config returns the run parameters.
func (s *Simulation) Config() config.Config {
	return s.cfg
}

// Context returns the shared clock, parameters and counters.
func (s *Simulation) Context() *sim.Context {
	return s.ctx
}

// Scheduler returns the event scheduler.
func (s *Simulation) Scheduler() *sim.Scheduler {
	return s.scheduler
}

// Timers returns the timer service.
func (s *Simulation) Timers() *timer.Service {
	return s.timers
}

// Channel returns the channel.
func (s *Simulation) Channel() *channel.Channel {
	return s.channel
}

// Sender returns entity A.
func (s *Simulation) Sender() *arq.Sender {
	return s.sender
}

// Receiver returns entity B.
func (s *Simulation) Receiver() *arq.Receiver {
	return s.receiver
}

// Deliveries returns a copy of the payloads delivered so far, in order.
func (s *Simulation) Deliveries() []Delivery {
	d := make([]Delivery, len(s.deliveries))
	copy(d, s.deliveries)

	return d
}

// Backlog returns a copy of the messages waiting for room in the window.
func (s *Simulation) Backlog() []packet.Message {
	b := make([]packet.Message, len(s.backlog))
	copy(b, s.backlog)

	return b
}

// RegisterHook adds h to the simulation and to every component in it.
func (s *Simulation) RegisterHook(h sim.Hook) {
	for _, c := range s.Hookables() {
		c.AcceptHook(h)
	}
}

// Hookables lists every component that accepts hooks.
func (s *Simulation) Hookables() []sim.Hookable {
	return []sim.Hookable{
		s, s.scheduler, s.timers, s.channel, s.sender, s.receiver,
	}
}

// Run processes events until the queue is empty or the time limit is
// passed. An internal consistency failure stops the run and is returned as
// a *sim.InternalError together with the counters at that point.
func (s *Simulation) Run() (res Result, err error) {
	s.singleRunLock.Lock()
	defer s.singleRunLock.Unlock()

	if s.started {
		return s.result(), ErrAlreadyRun
	}
	s.started = true

	defer func() {
		r := recover()
		if r == nil {
			return
		}

		ie, ok := r.(*sim.InternalError)
		if !ok {
			panic(r)
		}

		res = s.result()
		err = ie
	}()

	s.start()

	for s.step() {
	}

	res = s.result()
	s.invoke(HookPosRunEnd, res)

	return res, nil
}

func (s *Simulation) start() {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	if s.ctx.Params.MessageCount > 0 {
		s.scheduleArrival()
	}
}

func (s *Simulation) step() bool {
	s.pauseLock.Lock()
	defer s.pauseLock.Unlock()

	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	next, ok := s.scheduler.Peek()
	if !ok {
		return false
	}

	if s.cfg.TimeLimit > 0 && next.Time > sim.VTime(s.cfg.TimeLimit) {
		s.timedOut = true
		return false
	}

	evt, _ := s.scheduler.PopEarliest()
	s.events++

	s.invoke(sim.HookPosBeforeEvent, evt)
	s.dispatch(evt)
	s.drainBacklog()
	s.invoke(sim.HookPosAfterEvent, evt)

	return true
}

func (s *Simulation) dispatch(evt sim.Event) {
	if evt.Entity != sim.EntityA && evt.Entity != sim.EntityB {
		sim.Panicf("dispatch", "event %s targets unknown entity", evt)
	}

	entity := s.entities[evt.Entity]

	switch evt.Kind {
	case sim.FromAbove:
		s.handleArrival(evt)
	case sim.FromChannel:
		if evt.Packet == nil {
			sim.Panicf("dispatch", "arrival %s carries no packet", evt)
		}

		entity.OnPacketFromChannel(*evt.Packet)
	case sim.TimerInterrupt:
		entity.OnTimerInterrupt()
	default:
		sim.Panicf("dispatch", "unknown event kind %s", evt.Kind)
	}
}

func (s *Simulation) handleArrival(evt sim.Event) {
	stats := &s.ctx.Stats
	total := s.ctx.Params.MessageCount

	if stats.Generated >= total {
		return
	}

	if stats.Generated+1 < total {
		s.scheduleArrival()
	}

	msg := MessageFor(stats.Generated)
	stats.Generated++
	s.invoke(HookPosMessageGenerated, msg)

	s.offer(s.entities[evt.Entity], msg)
}

// scheduleArrival schedules the next application message after a delay
// drawn uniformly from [0, 2*mean).
func (s *Simulation) scheduleArrival() {
	mean := s.ctx.Params.MeanInterarrival
	delay := 2 * mean * sim.VTime(s.rng.Float64())

	s.scheduler.Schedule(sim.Event{
		Time:   s.scheduler.Now() + delay,
		Kind:   sim.FromAbove,
		Entity: sim.EntityA,
	})
}

func (s *Simulation) offer(entity arq.Entity, msg packet.Message) {
	if len(s.backlog) > 0 {
		s.enqueue(msg)
		return
	}

	err := entity.OnMessageFromAbove(msg)

	switch {
	case err == nil:
	case errors.Is(err, arq.ErrWindowFull):
		s.enqueue(msg)
	case errors.Is(err, arq.ErrLinkFailed):
		s.refused = append(s.refused, msg)
	default:
		sim.Panicf("offer", "entity %s refused data: %v", entity.ID(), err)
	}
}

func (s *Simulation) enqueue(msg packet.Message) {
	if s.failed {
		s.refused = append(s.refused, msg)
		return
	}

	s.backlog = append(s.backlog, msg)
	s.invoke(HookPosBacklogged, msg)
}

func (s *Simulation) drainBacklog() {
	for len(s.backlog) > 0 && s.sender.CanAccept() {
		msg := s.backlog[0]
		s.backlog = s.backlog[1:]

		if err := s.sender.OnMessageFromAbove(msg); err != nil {
			sim.Panicf("backlog",
				"sender refused a message it said it could accept: %v", err)
		}
	}
}

// Deliver records data handed up by an entity.
func (s *Simulation) Deliver(
	now sim.VTime,
	entity sim.EntityID,
	msg packet.Message,
) {
	s.deliveries = append(s.deliveries, Delivery{
		Time:    now,
		Entity:  entity,
		Message: msg,
	})
}

// Abandoned records the messages the sender gave up on. Messages still
// waiting in the backlog are refused with them.
func (s *Simulation) Abandoned(
	_ sim.VTime,
	_ sim.EntityID,
	msgs []packet.Message,
) {
	s.failed = true
	s.abandoned = append(s.abandoned, msgs...)
	s.refused = append(s.refused, s.backlog...)
	s.backlog = nil

	s.invoke(HookPosLinkFailed, msgs)
}

// Pause prevents the simulation from processing more events.
func (s *Simulation) Pause() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if s.isPaused {
		return
	}

	s.pauseLock.Lock()
	s.isPaused = true
}

// Continue allows the simulation to process events again.
func (s *Simulation) Continue() {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	if !s.isPaused {
		return
	}

	s.pauseLock.Unlock()
	s.isPaused = false
}

// IsPaused tells if the simulation is paused.
func (s *Simulation) IsPaused() bool {
	s.isPausedLock.Lock()
	defer s.isPausedLock.Unlock()

	return s.isPaused
}

// Inspect runs f between two events. f may read any state of the simulation
// but must not change it.
func (s *Simulation) Inspect(f func()) {
	s.stateLock.Lock()
	defer s.stateLock.Unlock()

	f()
}

// Now returns the current virtual time. It is safe to call while Run is in
// progress.
func (s *Simulation) Now() sim.VTime {
	var now sim.VTime

	s.Inspect(func() { now = s.scheduler.Now() })

	return now
}

// PendingEvents returns the events waiting in the queue in pop order. It is
// safe to call while Run is in progress.
func (s *Simulation) PendingEvents() []sim.Event {
	var events []sim.Event

	s.Inspect(func() { events = s.scheduler.Pending() })

	return events
}

// Snapshot returns the result the run would report if it ended now. It is
// safe to call while Run is in progress.
func (s *Simulation) Snapshot() Result {
	var r Result

	s.Inspect(func() { r = s.result() })

	return r
}

func (s *Simulation) invoke(pos *sim.HookPos, item any) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Now:    s.scheduler.Now(),
		Pos:    pos,
		Item:   item,
	})
}

// MessageFor returns the n-th message of the application layer, counting
// from zero: 19 copies of one lowercase letter, cycling a to z, followed by
// a zero byte.
func MessageFor(n int) packet.Message {
	var msg packet.Message

	letter := byte('a' + n%26)
	for i := 0; i < packet.PayloadSize-1; i++ {
		msg.Data[i] = letter
	}

	return msg
}

// String implements fmt.Stringer.
func (d Delivery) String() string {
	return fmt.Sprintf("%.6f %s %s", d.Time, d.Entity, d.Message)
}
