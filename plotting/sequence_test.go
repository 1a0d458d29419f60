package plotting

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arqsim/arq"
	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/packet"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/simulation"
)

var _ = Describe("SequencePlot", func() {
	var p *SequencePlot

	BeforeEach(func() {
		p = NewSequencePlot()
	})

	It("should sample protocol activity", func() {
		p.Func(sim.HookCtx{
			Now:  1.5,
			Pos:  arq.HookPosDataSent,
			Item: packet.NewData(1, packet.Message{}),
		})
		p.Func(sim.HookCtx{
			Now:  9,
			Pos:  arq.HookPosAckAccepted,
			Item: packet.NewAck(1),
		})
		p.Func(sim.HookCtx{Now: 10, Pos: sim.HookPosBeforeEvent})

		Expect(p.Samples(DataSent)).To(HaveLen(1))
		Expect(p.Samples(DataSent)[0].X).To(Equal(1.5))
		Expect(p.Samples(DataSent)[0].Y).To(Equal(1.0))
		Expect(p.Samples(AckAccepted)[0].X).To(Equal(9.0))
		Expect(p.Samples(Retransmitted)).To(BeEmpty())
	})

	It("should chart a whole run", func() {
		cfg := config.Default()
		cfg.MessageCount = 10
		cfg.LossProbability = 0.2
		cfg.MeanInterarrivalTime = 20

		s, err := simulation.MakeBuilder().
			WithConfig(cfg).
			WithHook(p).
			Build()
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run()
		Expect(err).NotTo(HaveOccurred())

		Expect(p.Samples(DataSent)).To(HaveLen(10))
		Expect(p.Samples(Accepted)).To(HaveLen(10))

		buf := &bytes.Buffer{}
		Expect(p.Write(buf, "run", "svg")).To(Succeed())
		Expect(buf.Len()).To(BeNumerically(">", 0))
	})

	It("should save to a file named by format", func() {
		p.Func(sim.HookCtx{
			Now:  1,
			Pos:  arq.HookPosDataSent,
			Item: packet.NewData(1, packet.Message{}),
		})

		path := filepath.Join(GinkgoT().TempDir(), "seq.png")
		Expect(p.Save(path, "run")).To(Succeed())

		info, err := os.Stat(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(info.Size()).To(BeNumerically(">", 0))
	})

	It("should refuse a file without extension", func() {
		Expect(p.Save(filepath.Join(GinkgoT().TempDir(), "seq"), "run")).
			NotTo(Succeed())
	})
})

var _ = Describe("combineErrors", func() {
	It("should keep the only error", func() {
		e := errors.New("a")

		Expect(combineErrors(nil, e, nil)).To(Equal(e))
		Expect(combineErrors(nil, nil)).To(BeNil())
	})

	It("should merge several errors", func() {
		err := combineErrors(errors.New("a"), errors.New("b"))

		Expect(err.Error()).To(ContainSubstring("a"))
		Expect(err.Error()).To(ContainSubstring("b"))
	})
})
