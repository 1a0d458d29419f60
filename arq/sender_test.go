package arq

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/arqsim/packet"
	"github.com/sarchlab/arqsim/sim"
)

var _ = Describe("Sender", func() {
	var (
		mockCtrl *gomock.Controller
		link     *MockLink
		timer    *MockTimer
		builder  Builder
		msgA     packet.Message
		msgB     packet.Message
		msgC     packet.Message
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		link = NewMockLink(mockCtrl)
		timer = NewMockTimer(mockCtrl)
		builder = MakeBuilder().
			WithLink(link).
			WithTimer(timer).
			WithTimeTeller(fixedClock(0)).
			WithTimeout(20)
		msgA = packet.MessageFromString("aaaaaaaaaaaaaaaaaaa")
		msgB = packet.MessageFromString("bbbbbbbbbbbbbbbbbbb")
		msgC = packet.MessageFromString("ccccccccccccccccccc")
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("alternating bit", func() {
		var sender *Sender

		BeforeEach(func() {
			sender = builder.BuildSender(sim.EntityA)
		})

		It("should start idle", func() {
			Expect(sender.State()).To(Equal(Idle))
			Expect(sender.NextSeq()).To(Equal(int32(1)))
			Expect(sender.CanAccept()).To(BeTrue())
			Expect(sender.WindowSize()).To(Equal(1))
		})

		It("should send a sealed packet and start the timer", func() {
			link.EXPECT().Send(sim.EntityA, packet.NewData(1, msgA))
			timer.EXPECT().Start(sim.EntityA, sim.VTime(20))

			Expect(sender.OnMessageFromAbove(msgA)).To(Succeed())

			Expect(sender.State()).To(Equal(AwaitingAck))
			Expect(sender.Outstanding()).To(HaveLen(1))
			Expect(packet.Verify(sender.Outstanding()[0])).To(BeTrue())
			Expect(sender.CanAccept()).To(BeFalse())
		})

		It("should reject a message while waiting for an ACK", func() {
			link.EXPECT().Send(gomock.Any(), gomock.Any())
			timer.EXPECT().Start(gomock.Any(), gomock.Any())
			Expect(sender.OnMessageFromAbove(msgA)).To(Succeed())

			Expect(sender.OnMessageFromAbove(msgB)).To(MatchError(ErrWindowFull))
		})

		It("should alternate sequence numbers", func() {
			timer.EXPECT().Start(sim.EntityA, sim.VTime(20)).Times(3)
			timer.EXPECT().Stop(sim.EntityA).Times(2)

			seqs := []int32{}
			link.EXPECT().Send(sim.EntityA, gomock.Any()).
				Do(func(_ sim.EntityID, p packet.Packet) {
					seqs = append(seqs, p.Seqnum)
				}).Times(3)

			Expect(sender.OnMessageFromAbove(msgA)).To(Succeed())
			sender.OnPacketFromChannel(packet.NewAck(1))
			Expect(sender.State()).To(Equal(Idle))

			Expect(sender.OnMessageFromAbove(msgB)).To(Succeed())
			sender.OnPacketFromChannel(packet.NewAck(2))

			Expect(sender.OnMessageFromAbove(msgC)).To(Succeed())

			Expect(seqs).To(Equal([]int32{1, 2, 1}))
		})

		It("should ignore a corrupted ACK", func() {
			link.EXPECT().Send(gomock.Any(), gomock.Any())
			timer.EXPECT().Start(gomock.Any(), gomock.Any())
			Expect(sender.OnMessageFromAbove(msgA)).To(Succeed())

			ack := packet.NewAck(1)
			ack.Payload[0] = 'Z'
			sender.OnPacketFromChannel(ack)

			Expect(sender.State()).To(Equal(AwaitingAck))
		})

		It("should ignore a NAK", func() {
			link.EXPECT().Send(gomock.Any(), gomock.Any())
			timer.EXPECT().Start(gomock.Any(), gomock.Any())
			Expect(sender.OnMessageFromAbove(msgA)).To(Succeed())

			sender.OnPacketFromChannel(packet.NewNak(1))

			Expect(sender.State()).To(Equal(AwaitingAck))
		})

		It("should ignore an ACK for another sequence number", func() {
			link.EXPECT().Send(gomock.Any(), gomock.Any())
			timer.EXPECT().Start(gomock.Any(), gomock.Any())
			Expect(sender.OnMessageFromAbove(msgA)).To(Succeed())

			var ignored []Ignored
			sender.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
				if ctx.Pos == HookPosIgnored {
					ignored = append(ignored, ctx.Item.(Ignored))
				}
			}))

			sender.OnPacketFromChannel(packet.NewAck(0))
			sender.OnPacketFromChannel(packet.NewAck(2))

			Expect(ignored).To(HaveLen(2))
			Expect(sender.State()).To(Equal(AwaitingAck))
		})

		It("should retransmit the packet on timeout", func() {
			pkt := packet.NewData(1, msgA)
			link.EXPECT().Send(sim.EntityA, pkt).Times(3)
			timer.EXPECT().Start(sim.EntityA, sim.VTime(20)).Times(3)

			Expect(sender.OnMessageFromAbove(msgA)).To(Succeed())
			sender.OnTimerInterrupt()
			sender.OnTimerInterrupt()

			Expect(sender.Retransmissions()).To(Equal(2))
			Expect(sender.State()).To(Equal(AwaitingAck))
		})

		It("should ignore a timeout with nothing in flight", func() {
			sender.OnTimerInterrupt()

			Expect(sender.State()).To(Equal(Idle))
		})
	})

	Context("go-back-n", func() {
		var sender *Sender

		BeforeEach(func() {
			sender = builder.
				WithVariant(GoBackN).
				WithWindowSize(3).
				BuildSender(sim.EntityA)
		})

		It("should fill the window and start a single timer", func() {
			link.EXPECT().Send(sim.EntityA, gomock.Any()).Times(3)
			timer.EXPECT().Start(sim.EntityA, sim.VTime(20)).Times(1)

			Expect(sender.OnMessageFromAbove(msgA)).To(Succeed())
			Expect(sender.OnMessageFromAbove(msgB)).To(Succeed())
			Expect(sender.OnMessageFromAbove(msgC)).To(Succeed())

			Expect(sender.OnMessageFromAbove(msgA)).To(MatchError(ErrWindowFull))
			Expect(sender.Outstanding()).To(HaveLen(3))
		})

		It("should retransmit every packet in flight, oldest first", func() {
			link.EXPECT().Send(sim.EntityA, gomock.Any()).Times(2)
			timer.EXPECT().Start(sim.EntityA, sim.VTime(20)).Times(2)

			Expect(sender.OnMessageFromAbove(msgA)).To(Succeed())
			Expect(sender.OnMessageFromAbove(msgB)).To(Succeed())

			resent := []int32{}
			sender.AcceptHook(sim.HookFunc(func(ctx sim.HookCtx) {
				if ctx.Pos == HookPosRetransmit {
					resent = append(resent, ctx.Item.(packet.Packet).Seqnum)
				}
			}))
			link.EXPECT().Send(sim.EntityA, packet.NewData(1, msgA))
			link.EXPECT().Send(sim.EntityA, packet.NewData(2, msgB))

			sender.OnTimerInterrupt()

			Expect(resent).To(Equal([]int32{1, 2}))
			Expect(sender.Retransmissions()).To(Equal(2))
		})

		It("should slide the window on cumulative ACKs", func() {
			link.EXPECT().Send(sim.EntityA, gomock.Any()).Times(3)
			timer.EXPECT().Start(sim.EntityA, sim.VTime(20)).Times(2)
			timer.EXPECT().Stop(sim.EntityA).Times(2)

			Expect(sender.OnMessageFromAbove(msgA)).To(Succeed())
			Expect(sender.OnMessageFromAbove(msgB)).To(Succeed())
			Expect(sender.OnMessageFromAbove(msgC)).To(Succeed())

			sender.OnPacketFromChannel(packet.NewAck(2))
			Expect(sender.Outstanding()).To(HaveLen(1))
			Expect(sender.Outstanding()[0].Seqnum).To(Equal(int32(3)))
			Expect(sender.State()).To(Equal(AwaitingAck))

			sender.OnPacketFromChannel(packet.NewAck(3))
			Expect(sender.State()).To(Equal(Idle))
		})

		It("should wrap sequence numbers after window plus one", func() {
			timer.EXPECT().Start(gomock.Any(), gomock.Any()).AnyTimes()
			timer.EXPECT().Stop(gomock.Any()).AnyTimes()

			seqs := []int32{}
			link.EXPECT().Send(sim.EntityA, gomock.Any()).
				Do(func(_ sim.EntityID, p packet.Packet) {
					seqs = append(seqs, p.Seqnum)
				}).AnyTimes()

			for i := 0; i < 6; i++ {
				Expect(sender.OnMessageFromAbove(msgA)).To(Succeed())
				sender.OnPacketFromChannel(packet.NewAck(seqs[len(seqs)-1]))
			}

			Expect(seqs).To(Equal([]int32{1, 2, 3, 4, 1, 2}))
		})
	})

	Context("with a retransmission limit", func() {
		var (
			sender    *Sender
			onFailure *MockFailureHandler
		)

		BeforeEach(func() {
			onFailure = NewMockFailureHandler(mockCtrl)
			sender = builder.
				WithTimeTeller(fixedClock(42)).
				WithMaxRetransmissions(2).
				WithFailureHandler(onFailure).
				BuildSender(sim.EntityA)
		})

		It("should give up after too many timeouts", func() {
			link.EXPECT().Send(sim.EntityA, gomock.Any()).Times(3)
			timer.EXPECT().Start(sim.EntityA, gomock.Any()).Times(3)
			onFailure.EXPECT().
				Abandoned(sim.VTime(42), sim.EntityA, []packet.Message{msgA})

			Expect(sender.OnMessageFromAbove(msgA)).To(Succeed())
			sender.OnTimerInterrupt()
			sender.OnTimerInterrupt()
			sender.OnTimerInterrupt()

			Expect(sender.State()).To(Equal(Failed))
			Expect(sender.Outstanding()).To(BeEmpty())
			Expect(sender.CanAccept()).To(BeFalse())
			Expect(sender.OnMessageFromAbove(msgB)).To(MatchError(ErrLinkFailed))
		})

		It("should reset the count when an ACK arrives", func() {
			link.EXPECT().Send(sim.EntityA, gomock.Any()).AnyTimes()
			timer.EXPECT().Start(sim.EntityA, gomock.Any()).AnyTimes()
			timer.EXPECT().Stop(sim.EntityA).AnyTimes()

			Expect(sender.OnMessageFromAbove(msgA)).To(Succeed())
			sender.OnTimerInterrupt()
			sender.OnTimerInterrupt()
			sender.OnPacketFromChannel(packet.NewAck(1))

			Expect(sender.OnMessageFromAbove(msgB)).To(Succeed())
			sender.OnTimerInterrupt()
			sender.OnTimerInterrupt()

			Expect(sender.State()).To(Equal(AwaitingAck))
		})
	})
})

var _ = Describe("ParseVariant", func() {
	It("should parse protocol names", func() {
		Expect(ParseVariant("abp")).To(Equal(AlternatingBit))
		Expect(ParseVariant("GBN")).To(Equal(GoBackN))

		_, err := ParseVariant("tcp")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("SeqSpace", func() {
	It("should cycle through 1..window+1", func() {
		s := NewSeqSpace(1)

		Expect(s.Next(0)).To(Equal(int32(1)))
		Expect(s.Next(1)).To(Equal(int32(2)))
		Expect(s.Next(2)).To(Equal(int32(1)))
	})
})
