// Package timer provides the one-shot retransmission timers of the protocol
// entities.
package timer

import (
	"github.com/sarchlab/arqsim/sim"
)

// HookPosTimerStarted triggers when a timer is armed. The item is the
// TimerInterrupt event.
var HookPosTimerStarted = &sim.HookPos{Name: "TimerStarted"}

// HookPosTimerStopped triggers when a pending timer is cancelled. The item is
// the entity.
var HookPosTimerStopped = &sim.HookPos{Name: "TimerStopped"}

// A Service arms and cancels timers on top of a Scheduler. Each entity has at
// most one pending timer.
type Service struct {
	sim.HookableBase

	scheduler *sim.Scheduler
}

// NewService creates a timer Service that schedules into s.
func NewService(s *sim.Scheduler) *Service {
	return &Service{scheduler: s}
}

// Start arms the timer of entity to fire after duration. If the entity
// already has a pending timer, Start warns and leaves that timer untouched.
func (t *Service) Start(entity sim.EntityID, duration sim.VTime) {
	if t.IsRunning(entity) {
		t.scheduler.Warn(sim.Warning{
			Entity: entity,
			Msg:    "attempt to start a timer that is already started",
		})

		return
	}

	evt := sim.Event{
		Time:   t.scheduler.Now() + duration,
		Kind:   sim.TimerInterrupt,
		Entity: entity,
	}
	t.scheduler.Schedule(evt)

	t.InvokeHook(sim.HookCtx{
		Domain: t,
		Now:    t.scheduler.Now(),
		Pos:    HookPosTimerStarted,
		Item:   evt,
	})
}

// Stop cancels the pending timer of entity. If the entity has no pending
// timer, Stop warns and returns.
func (t *Service) Stop(entity sim.EntityID) {
	isTimer := func(e sim.Event) bool { return e.IsTimerOf(entity) }

	if n := t.scheduler.Count(isTimer); n > 1 {
		sim.Panicf("stop timer",
			"entity %s has %d pending timers", entity, n)
	}

	if !t.scheduler.Cancel(isTimer) {
		t.scheduler.Warn(sim.Warning{
			Entity: entity,
			Msg:    "unable to cancel your timer. It wasn't running.",
		})

		return
	}

	t.InvokeHook(sim.HookCtx{
		Domain: t,
		Now:    t.scheduler.Now(),
		Pos:    HookPosTimerStopped,
		Item:   entity,
	})
}

// IsRunning tells if entity has a pending timer.
func (t *Service) IsRunning(entity sim.EntityID) bool {
	return t.scheduler.Count(func(e sim.Event) bool {
		return e.IsTimerOf(entity)
	}) > 0
}
