package simulation

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/sarchlab/arqsim/arq"
	"github.com/sarchlab/arqsim/channel"
	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/sim/timer"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg      config.Config
	rng      sim.RandomSource
	checkRNG bool
	id       string
	hooks    []sim.Hook
}

// MakeBuilder creates a new builder with the default configuration.
func MakeBuilder() Builder {
	return Builder{
		cfg: config.Default(),
	}
}

// WithConfig sets the run parameters.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithRandomSource replaces the seeded generator. Every random decision of
// the run is drawn from r.
func (b Builder) WithRandomSource(r sim.RandomSource) Builder {
	b.rng = r
	return b
}

// WithRandomCheck makes Build refuse a random source whose mean looks
// wrong. The check consumes 1000 draws.
func (b Builder) WithRandomCheck() Builder {
	b.checkRNG = true
	return b
}

// WithID sets the run ID. A random ID is used if none is set.
func (b Builder) WithID(id string) Builder {
	b.id = id
	return b
}

// WithHook registers a hook with every component of the simulation.
func (b Builder) WithHook(h sim.Hook) Builder {
	b.hooks = append(b.hooks, h)
	return b
}

// Build validates the configuration and wires the components together.
func (b Builder) Build() (*Simulation, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	variant, err := arq.ParseVariant(b.cfg.Protocol)
	if err != nil {
		return nil, err
	}

	order, err := sim.ParseTieBreak(b.cfg.TieBreak)
	if err != nil {
		return nil, err
	}

	rng := b.rng
	if rng == nil {
		rng = sim.NewRandomSource(b.cfg.Seed)
	}

	if b.checkRNG {
		if err := sim.CheckRandomSource(rng); err != nil {
			return nil, err
		}
	}

	s := &Simulation{
		id:  b.id,
		cfg: b.cfg,
		rng: rng,
	}

	if s.id == "" {
		s.id = xid.New().String()
	}

	s.ctx = sim.NewContext(sim.Params{
		MessageCount:     b.cfg.MessageCount,
		LossProb:         b.cfg.LossProbability,
		CorruptProb:      b.cfg.CorruptionProbability,
		MeanInterarrival: sim.VTime(b.cfg.MeanInterarrivalTime),
	})
	s.scheduler = sim.NewScheduler(s.ctx, order)
	s.timers = timer.NewService(s.scheduler)
	s.channel = channel.New(s.scheduler, rng)
	s.channel.SetUpperLayer(s)

	protocol := arq.MakeBuilder().
		WithVariant(variant).
		WithWindowSize(b.cfg.Window()).
		WithTimeout(sim.VTime(b.cfg.Timeout)).
		WithMaxRetransmissions(b.cfg.MaxRetransmissions).
		WithLink(s.channel).
		WithTimer(s.timers).
		WithTimeTeller(s.scheduler).
		WithFailureHandler(s)

	s.sender = protocol.BuildSender(sim.EntityA)
	s.receiver = protocol.BuildReceiver(sim.EntityB)
	s.entities = [2]arq.Entity{s.sender, s.receiver}

	for _, h := range b.hooks {
		s.RegisterHook(h)
	}

	return s, nil
}
