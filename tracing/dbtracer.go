package tracing

import (
	"github.com/sarchlab/arqsim/channel"
	"github.com/sarchlab/arqsim/datarecording"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/simulation"
)

// Table names written by DBTracer.
const (
	ChannelEventsTable = "channel_events"
	DeliveriesTable    = "deliveries"
	RunSummaryTable    = "run_summary"
)

// ChannelEvent is one row of the channel_events table.
type ChannelEvent struct {
	Time       float64
	RunID      string
	Action     string
	Src        string
	Dst        string
	Seq        int32
	Ack        int32
	Checksum   int32
	Payload    string
	Arrival    float64
	Corruption string
}

// DeliveryEntry is one row of the deliveries table.
type DeliveryEntry struct {
	Time    float64
	RunID   string
	Entity  string
	Payload string
}

// RunSummary is the single row a run writes into the run_summary table.
type RunSummary struct {
	RunID           string
	Generated       int
	SentToChannel   int
	Lost            int
	Corrupted       int
	Delivered       int
	Retransmissions int
	Abandoned       int
	FinalTime       float64
	LinkFailed      bool
}

// DBTracer is a hook that stores the channel activity of a run in a
// database.
type DBTracer struct {
	runID   string
	backend datarecording.DataRecorder
}

// NewDBTracer creates the tables of the tracer in dataRecorder.
func NewDBTracer(
	runID string,
	dataRecorder datarecording.DataRecorder,
) *DBTracer {
	dataRecorder.CreateTable(ChannelEventsTable, ChannelEvent{})
	dataRecorder.CreateTable(DeliveriesTable, DeliveryEntry{})
	dataRecorder.CreateTable(RunSummaryTable, RunSummary{})

	return &DBTracer{
		runID:   runID,
		backend: dataRecorder,
	}
}

// Func records the hook site if it describes channel activity.
func (t *DBTracer) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case channel.HookPosSend:
		t.recordTransmission(ctx, "send")
	case channel.HookPosLost:
		t.recordTransmission(ctx, "lost")
	case channel.HookPosCorrupted:
		t.recordTransmission(ctx, "corrupted")
	case channel.HookPosScheduled:
		t.recordTransmission(ctx, "scheduled")
	case channel.HookPosDeliverUp:
		d := ctx.Item.(channel.Delivery)
		t.backend.InsertData(DeliveriesTable, DeliveryEntry{
			Time:    float64(ctx.Now),
			RunID:   t.runID,
			Entity:  d.Entity.String(),
			Payload: d.Message.String(),
		})
	case simulation.HookPosRunEnd:
		t.recordSummary(ctx.Item.(simulation.Result))
		t.backend.Flush()
	}
}

func (t *DBTracer) recordTransmission(ctx sim.HookCtx, action string) {
	tx := ctx.Item.(channel.Transmission)

	t.backend.InsertData(ChannelEventsTable, ChannelEvent{
		Time:       float64(ctx.Now),
		RunID:      t.runID,
		Action:     action,
		Src:        tx.From.String(),
		Dst:        tx.To.String(),
		Seq:        tx.Packet.Seqnum,
		Ack:        tx.Packet.Acknum,
		Checksum:   tx.Packet.Checksum,
		Payload:    tx.Packet.Message().String(),
		Arrival:    float64(tx.Arrival),
		Corruption: tx.Corruption.String(),
	})
}

func (t *DBTracer) recordSummary(r simulation.Result) {
	t.backend.InsertData(RunSummaryTable, RunSummary{
		RunID:           t.runID,
		Generated:       r.Generated,
		SentToChannel:   r.SentToChannel,
		Lost:            r.Lost,
		Corrupted:       r.Corrupted,
		Delivered:       r.Delivered,
		Retransmissions: r.Retransmissions,
		Abandoned:       r.Abandoned,
		FinalTime:       float64(r.FinalTime),
		LinkFailed:      r.LinkFailed,
	})
}

// Terminate flushes the buffered rows.
func (t *DBTracer) Terminate() {
	t.backend.Flush()
}
