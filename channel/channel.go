// Package channel models the unreliable, order-preserving medium between the
// two protocol entities.
package channel

import (
	"github.com/sarchlab/arqsim/packet"
	"github.com/sarchlab/arqsim/sim"
)

// Delay bounds. Every packet spends MinDelay plus a uniform share of
// DelayRange in the medium, counted from the later of now and the arrival of
// the previous packet to the same destination.
const (
	MinDelay   sim.VTime = 1
	DelayRange sim.VTime = 9
)

// Corruption weights. A corrupted packet has its first payload byte
// overwritten with probability PayloadCorruptionShare. Otherwise the seqnum
// is corrupted with probability SeqnumCorruptionShare, else the acknum.
const (
	PayloadCorruptionShare = 0.75
	SeqnumCorruptionShare  = 0.125
)

// CorruptByte is written into the first payload byte of a corrupted packet.
const CorruptByte byte = 'Z'

// Corruption tells how the channel damaged a packet.
type Corruption int

// Corruption modes.
const (
	NoCorruption Corruption = iota
	PayloadCorruption
	SeqnumCorruption
	AcknumCorruption
)

func (c Corruption) String() string {
	switch c {
	case PayloadCorruption:
		return "payload"
	case SeqnumCorruption:
		return "seqnum"
	case AcknumCorruption:
		return "acknum"
	default:
		return "none"
	}
}

// HookPosSend triggers when an entity hands a packet to the channel, before
// the loss decision. The item is a Transmission.
var HookPosSend = &sim.HookPos{Name: "ChannelSend"}

// HookPosLost triggers when the channel drops a packet.
var HookPosLost = &sim.HookPos{Name: "ChannelLost"}

// HookPosCorrupted triggers when the channel corrupts the scheduled copy of
// a packet.
var HookPosCorrupted = &sim.HookPos{Name: "ChannelCorrupted"}

// HookPosScheduled triggers when the arrival of a packet is scheduled.
var HookPosScheduled = &sim.HookPos{Name: "ChannelScheduled"}

// HookPosDeliverUp triggers when an entity hands data to the application
// layer. The item is a Delivery.
var HookPosDeliverUp = &sim.HookPos{Name: "DeliverUp"}

// A Transmission describes one packet handed to the channel.
type Transmission struct {
	From       sim.EntityID
	To         sim.EntityID
	Packet     packet.Packet
	Arrival    sim.VTime
	Corruption Corruption
}

// A Delivery describes data handed to the application layer.
type Delivery struct {
	Entity  sim.EntityID
	Message packet.Message
}

// UpperLayer receives the data that entities deliver.
type UpperLayer interface {
	Deliver(now sim.VTime, entity sim.EntityID, msg packet.Message)
}

// A Channel carries packets between the two entities. It may lose or corrupt
// a packet but never reorders the packets heading to one destination.
type Channel struct {
	sim.HookableBase

	scheduler   *sim.Scheduler
	rng         sim.RandomSource
	upper       UpperLayer
	lastArrival [2]sim.VTime
}

// New creates a Channel that schedules arrivals into s and draws its random
// decisions from rng.
func New(s *sim.Scheduler, rng sim.RandomSource) *Channel {
	return &Channel{
		scheduler: s,
		rng:       rng,
	}
}

// SetUpperLayer sets the receiver of delivered data.
func (c *Channel) SetUpperLayer(u UpperLayer) {
	c.upper = u
}

// LastArrival returns the latest arrival time scheduled toward to.
func (c *Channel) LastArrival(to sim.EntityID) sim.VTime {
	return c.lastArrival[to]
}

// Send hands pkt from entity from to the channel. The caller keeps its own
// copy of pkt, which the channel never touches.
func (c *Channel) Send(from sim.EntityID, pkt packet.Packet) {
	stats := &c.scheduler.Context().Stats
	params := c.scheduler.Context().Params
	tx := Transmission{From: from, To: from.Peer(), Packet: pkt}

	stats.SentToChannel++
	c.invoke(HookPosSend, tx)

	if c.rng.Float64() < params.LossProb {
		stats.Lost++
		c.invoke(HookPosLost, tx)

		return
	}

	clone := pkt
	tx.Arrival = c.arrivalTime(tx.To)

	if c.rng.Float64() < params.CorruptProb {
		stats.Corrupted++
		tx.Corruption = c.corrupt(&clone)
		tx.Packet = clone
		c.invoke(HookPosCorrupted, tx)
	}

	c.scheduler.Schedule(sim.Event{
		Time:   tx.Arrival,
		Kind:   sim.FromChannel,
		Entity: tx.To,
		Packet: &clone,
	})
	c.invoke(HookPosScheduled, tx)
}

func (c *Channel) arrivalTime(to sim.EntityID) sim.VTime {
	last := c.scheduler.Now()
	if c.lastArrival[to] > last {
		last = c.lastArrival[to]
	}

	arrival := last + MinDelay + DelayRange*sim.VTime(c.rng.Float64())
	c.lastArrival[to] = arrival

	return arrival
}

func (c *Channel) corrupt(p *packet.Packet) Corruption {
	x := c.rng.Float64()

	switch {
	case x < PayloadCorruptionShare:
		p.Payload[0] = CorruptByte
		return PayloadCorruption
	case x < PayloadCorruptionShare+SeqnumCorruptionShare:
		p.Seqnum = packet.InvalidSeq
		return SeqnumCorruption
	default:
		p.Acknum = packet.InvalidSeq
		return AcknumCorruption
	}
}

// DeliverUp hands msg, received by entity, to the application layer.
func (c *Channel) DeliverUp(entity sim.EntityID, msg packet.Message) {
	c.scheduler.Context().Stats.Delivered++

	c.invoke(HookPosDeliverUp, Delivery{Entity: entity, Message: msg})

	if c.upper != nil {
		c.upper.Deliver(c.scheduler.Now(), entity, msg)
	}
}

func (c *Channel) invoke(pos *sim.HookPos, item any) {
	if c.NumHooks() == 0 {
		return
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Now:    c.scheduler.Now(),
		Pos:    pos,
		Item:   item,
	})
}
