package monitoring

import (
	"sync"
	"time"

	"github.com/sarchlab/arqsim/channel"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/simulation"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

type progressBarRsp struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	StartTime  time.Time `json:"start_time"`
	Total      uint64    `json:"total"`
	Finished   uint64    `json:"finished"`
	InProgress uint64    `json:"in_progress"`
}

// IncrementInProgress adds the number of in-progress element.
func (b *ProgressBar) IncrementInProgress(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.InProgress += amount
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// MoveInProgressToFinished reduces the number of in progress item by a certain
// amount and increase the finished item by the same amount. The in-progress
// count never drops below zero.
func (b *ProgressBar) MoveInProgressToFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	if amount > b.InProgress {
		b.InProgress = 0
	} else {
		b.InProgress -= amount
	}

	b.Finished += amount
}

func (b *ProgressBar) rsp() progressBarRsp {
	b.Lock()
	defer b.Unlock()

	return progressBarRsp{
		ID:         b.ID,
		Name:       b.Name,
		StartTime:  b.StartTime,
		Total:      b.Total,
		Finished:   b.Finished,
		InProgress: b.InProgress,
	}
}

// DeliveryProgress is a hook that drives a ProgressBar from a run. A message
// is in progress from its generation until the receiver hands it to the
// application layer.
type DeliveryProgress struct {
	Bar *ProgressBar
}

// NewDeliveryProgress creates a hook that updates bar.
func NewDeliveryProgress(bar *ProgressBar) *DeliveryProgress {
	return &DeliveryProgress{Bar: bar}
}

// Func implements sim.Hook.
func (p *DeliveryProgress) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case simulation.HookPosMessageGenerated:
		p.Bar.IncrementInProgress(1)
	case channel.HookPosDeliverUp:
		p.Bar.MoveInProgressToFinished(1)
	}
}
