// Package plotting draws sequence number charts of a run.
package plotting

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/sarchlab/arqsim/arq"
	"github.com/sarchlab/arqsim/packet"
	"github.com/sarchlab/arqsim/sim"
)

// Series names one kind of sample.
type Series int

// The series of a sequence plot.
const (
	DataSent Series = iota
	Retransmitted
	AckAccepted
	Accepted
	numSeries
)

func (s Series) String() string {
	switch s {
	case DataSent:
		return "sent"
	case Retransmitted:
		return "retransmitted"
	case AckAccepted:
		return "ack accepted"
	case Accepted:
		return "accepted by B"
	default:
		return fmt.Sprintf("Series(%d)", int(s))
	}
}

var seriesStyle = [numSeries]struct {
	color color.Color
	shape draw.GlyphDrawer
}{
	{color.RGBA{B: 200, A: 255}, draw.CircleGlyph{}},
	{color.RGBA{R: 220, A: 255}, draw.CrossGlyph{}},
	{color.RGBA{G: 160, A: 255}, draw.TriangleGlyph{}},
	{color.RGBA{R: 120, G: 60, B: 160, A: 255}, draw.BoxGlyph{}},
}

// Default chart size.
const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 4 * vg.Inch
)

// A SequencePlot is a hook that samples the sequence numbers of protocol
// activity over time.
type SequencePlot struct {
	samples [numSeries]plotter.XYs
}

// NewSequencePlot creates an empty SequencePlot.
func NewSequencePlot() *SequencePlot {
	return &SequencePlot{}
}

// Func records a sample if the hook site is protocol activity.
func (p *SequencePlot) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case arq.HookPosDataSent:
		p.add(DataSent, ctx.Now, ctx.Item.(packet.Packet).Seqnum)
	case arq.HookPosRetransmit:
		p.add(Retransmitted, ctx.Now, ctx.Item.(packet.Packet).Seqnum)
	case arq.HookPosAckAccepted:
		p.add(AckAccepted, ctx.Now, ctx.Item.(packet.Packet).Acknum)
	case arq.HookPosAccepted:
		p.add(Accepted, ctx.Now, ctx.Item.(packet.Packet).Seqnum)
	}
}

func (p *SequencePlot) add(s Series, now sim.VTime, seq int32) {
	p.samples[s] = append(p.samples[s], plotter.XY{
		X: float64(now),
		Y: float64(seq),
	})
}

// Samples returns the samples of one series in the order they were taken.
func (p *SequencePlot) Samples(s Series) plotter.XYs {
	return p.samples[s]
}

// Plot builds the chart. Empty series are left out.
func (p *SequencePlot) Plot(title string) (*plot.Plot, error) {
	plt := plot.New()
	plt.Title.Text = title
	plt.X.Label.Text = "time"
	plt.Y.Label.Text = "sequence number"

	for s := Series(0); s < numSeries; s++ {
		if len(p.samples[s]) == 0 {
			continue
		}

		scatter, err := plotter.NewScatter(p.samples[s])
		if err != nil {
			return nil, err
		}

		scatter.GlyphStyle.Color = seriesStyle[s].color
		scatter.GlyphStyle.Shape = seriesStyle[s].shape
		scatter.GlyphStyle.Radius = vg.Points(2)

		plt.Add(scatter)
		plt.Legend.Add(s.String(), scatter)
	}

	return plt, nil
}

// Write renders the chart into output in the given format, such as "png"
// or "svg".
func (p *SequencePlot) Write(output io.Writer, title, format string) error {
	plt, err := p.Plot(title)
	if err != nil {
		return err
	}

	w, err := plt.WriterTo(DefaultWidth, DefaultHeight, format)
	if err != nil {
		return err
	}

	_, err = w.WriteTo(output)

	return err
}

// Save renders the chart into a file. The format follows the extension.
func (p *SequencePlot) Save(path, title string) (err error) {
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if format == "" {
		return fmt.Errorf("cannot tell the image format of %s", path)
	}

	output, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		err = combineErrors(err, output.Close())
	}()

	return p.Write(output, title, format)
}

func combineErrors(errors ...error) (err error) {
	for _, e := range errors {
		switch {
		case e == nil:
		case err == nil:
			err = e
		default:
			err = multierror.Append(err, e)
		}
	}

	return err
}
