package simulation

import (
	"fmt"

	"github.com/sarchlab/arqsim/sim"
)

// Result is the final state of a run.
type Result struct {
	ID string

	Generated     int
	SentToChannel int
	Lost          int
	Corrupted     int
	Delivered     int
	Warnings      int

	Retransmissions int
	Abandoned       int
	Refused         int
	Backlogged      int
	Events          int

	FinalTime        sim.VTime
	LinkFailed       bool
	TimeLimitReached bool
}

func (s *Simulation) result() Result {
	stats := s.ctx.Stats

	return Result{
		ID:               s.id,
		Generated:        stats.Generated,
		SentToChannel:    stats.SentToChannel,
		Lost:             stats.Lost,
		Corrupted:        stats.Corrupted,
		Delivered:        stats.Delivered,
		Warnings:         stats.Warnings,
		Retransmissions:  s.sender.Retransmissions(),
		Abandoned:        len(s.abandoned),
		Refused:          len(s.refused),
		Backlogged:       len(s.backlog),
		Events:           s.events,
		FinalTime:        s.scheduler.Now(),
		LinkFailed:       s.failed,
		TimeLimitReached: s.timedOut,
	}
}

// Termination returns the closing line of a run.
func (r Result) Termination() string {
	return fmt.Sprintf(
		"Simulator terminated at time %f\nafter sending %d msgs from layer5.",
		r.FinalTime, r.Generated)
}

// String prints the counters one per line.
func (r Result) String() string {
	s := r.Termination() + "\n"
	s += fmt.Sprintf("packets sent to channel: %d\n", r.SentToChannel)
	s += fmt.Sprintf("packets lost: %d\n", r.Lost)
	s += fmt.Sprintf("packets corrupted: %d\n", r.Corrupted)
	s += fmt.Sprintf("messages delivered: %d\n", r.Delivered)
	s += fmt.Sprintf("retransmissions: %d\n", r.Retransmissions)

	if r.Warnings > 0 {
		s += fmt.Sprintf("warnings: %d\n", r.Warnings)
	}

	if r.LinkFailed {
		s += fmt.Sprintf("link failed: %d messages abandoned, %d refused\n",
			r.Abandoned, r.Refused)
	}

	if r.TimeLimitReached {
		s += "time limit reached\n"
	}

	return s
}
