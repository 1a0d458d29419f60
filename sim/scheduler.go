package sim

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	Now() VTime
}

// A Scheduler owns the event queue of a simulation and the clock of its
// Context. Popping an event moves the clock to the event time.
type Scheduler struct {
	HookableBase

	ctx   *Context
	queue *EventQueue
	ids   IDGenerator
}

// NewScheduler creates a Scheduler that drives the clock of ctx.
func NewScheduler(ctx *Context, order TieBreak) *Scheduler {
	return &Scheduler{
		ctx:   ctx,
		queue: NewEventQueue(order),
		ids:   NewSequentialIDGenerator(),
	}
}

// Context returns the context whose clock the scheduler drives.
func (s *Scheduler) Context() *Context {
	return s.ctx
}

// Now returns the current virtual time.
func (s *Scheduler) Now() VTime {
	return s.ctx.Now()
}

// Schedule registers an event to happen in the future. Scheduling an event
// earlier than the current time is an internal error.
func (s *Scheduler) Schedule(evt Event) {
	now := s.ctx.Now()
	if evt.Time < now {
		Panicf("schedule",
			"scheduling an event earlier than current time, evt %s, now %.6f",
			evt, now)
	}

	if evt.ID == "" {
		evt.ID = s.ids.Generate()
	}

	s.queue.Insert(evt)

	s.InvokeHook(HookCtx{
		Domain: s,
		Now:    now,
		Pos:    HookPosEventInserted,
		Item:   evt,
	})
}

// PopEarliest removes the earliest event and moves the clock to its time.
func (s *Scheduler) PopEarliest() (Event, bool) {
	evt, ok := s.queue.PopEarliest()
	if !ok {
		return evt, false
	}

	s.ctx.advanceTo(evt.Time)

	return evt, true
}

// Peek returns the earliest event without removing it.
func (s *Scheduler) Peek() (Event, bool) {
	return s.queue.Peek()
}

// Cancel removes the earliest event that satisfies match.
func (s *Scheduler) Cancel(match func(Event) bool) bool {
	_, ok := s.queue.Cancel(match)
	return ok
}

// Count returns the number of pending events that satisfy match.
func (s *Scheduler) Count(match func(Event) bool) int {
	return s.queue.Count(match)
}

// Len returns the number of pending events.
func (s *Scheduler) Len() int {
	return s.queue.Len()
}

// Pending returns a copy of the pending events in pop order.
func (s *Scheduler) Pending() []Event {
	return s.queue.Events()
}

// Warn reports a usage warning through the scheduler's hooks.
func (s *Scheduler) Warn(w Warning) {
	s.ctx.Stats.Warnings++

	s.InvokeHook(HookCtx{
		Domain: s,
		Now:    s.ctx.Now(),
		Pos:    HookPosWarning,
		Item:   w,
	})
}
