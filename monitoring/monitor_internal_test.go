package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/arqsim/channel"
	"github.com/sarchlab/arqsim/config"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/simulation"
)

var _ Simulation = (*simulation.Simulation)(nil)

type fakeSimulation struct {
	paused    bool
	now       sim.VTime
	result    simulation.Result
	pending   []sim.Event
	inspected int
}

func (f *fakeSimulation) Pause()                      { f.paused = true }
func (f *fakeSimulation) Continue()                   { f.paused = false }
func (f *fakeSimulation) IsPaused() bool              { return f.paused }
func (f *fakeSimulation) Now() sim.VTime              { return f.now }
func (f *fakeSimulation) Snapshot() simulation.Result { return f.result }

func (f *fakeSimulation) PendingEvents() []sim.Event { return f.pending }

func (f *fakeSimulation) Inspect(fn func()) {
	f.inspected++
	fn()
}

type counterEntity struct {
	Count int
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m    *Monitor
		fake *fakeSimulation
		h    http.Handler
	)

	BeforeEach(func() {
		m = NewMonitor()
		fake = &fakeSimulation{now: 12.5}
		m.RegisterSimulation(fake)
		h = m.Router()
	})

	It("should ignore privileged port numbers", func() {
		m.WithPortNumber(80)
		Expect(m.portNumber).To(Equal(0))

		m.WithPortNumber(8080)
		Expect(m.portNumber).To(Equal(8080))
	})

	It("should report the current time", func() {
		rec := get(h, "/api/now")

		Expect(rec.Code).To(Equal(http.StatusOK))

		rsp := struct {
			Now    float64 `json:"now"`
			Paused bool    `json:"paused"`
		}{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.Now).To(BeNumerically("~", 12.5))
		Expect(rsp.Paused).To(BeFalse())
	})

	It("should pause and continue", func() {
		get(h, "/api/pause")
		Expect(fake.paused).To(BeTrue())

		get(h, "/api/continue")
		Expect(fake.paused).To(BeFalse())
	})

	It("should report statistics", func() {
		fake.result = simulation.Result{ID: "run", Generated: 3, Delivered: 2}

		rec := get(h, "/api/stats")

		var r simulation.Result
		Expect(json.Unmarshal(rec.Body.Bytes(), &r)).To(Succeed())
		Expect(r.ID).To(Equal("run"))
		Expect(r.Generated).To(Equal(3))
		Expect(r.Delivered).To(Equal(2))
	})

	It("should list pending events", func() {
		fake.pending = []sim.Event{
			{Time: 3, Kind: sim.TimerInterrupt, Entity: sim.EntityA},
			{Time: 4.5, Kind: sim.FromChannel, Entity: sim.EntityB},
		}

		rec := get(h, "/api/pending")

		var events []pendingEventRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &events)).To(Succeed())
		Expect(events).To(HaveLen(2))
		Expect(events[0].Time).To(BeNumerically("~", 3))
		Expect(events[0].Kind).To(Equal(sim.TimerInterrupt.String()))
		Expect(events[0].Entity).To(Equal("A"))
		Expect(events[1].Entity).To(Equal("B"))
	})

	It("should answer 503 without a simulation", func() {
		h = NewMonitor().Router()

		rec := get(h, "/api/now")

		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("should list entities in order", func() {
		m.RegisterEntity("sender", &counterEntity{})
		m.RegisterEntity("receiver", &counterEntity{})

		rec := get(h, "/api/list_entities")

		var names []string
		Expect(json.Unmarshal(rec.Body.Bytes(), &names)).To(Succeed())
		Expect(names).To(Equal([]string{"receiver", "sender"}))
	})

	It("should serialize an entity between events", func() {
		m.RegisterEntity("sender", &counterEntity{Count: 7})

		rec := get(h, "/api/entity/sender")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.Len()).To(BeNumerically(">", 0))
		Expect(fake.inspected).To(Equal(1))
	})

	It("should answer 404 for unknown entities", func() {
		rec := get(h, "/api/entity/nobody")

		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(fake.inspected).To(Equal(0))
	})

	It("should list and complete progress bars", func() {
		bar := m.CreateProgressBar("Delivered", 10)
		other := m.CreateProgressBar("Other", 5)
		bar.IncrementInProgress(3)
		bar.MoveInProgressToFinished(2)

		rec := get(h, "/api/progress")

		var bars []progressBarRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(2))
		Expect(bars[0].ID).To(Equal("1"))
		Expect(bars[0].Finished).To(Equal(uint64(2)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))
		Expect(bars[1].ID).To(Equal("2"))

		m.CompleteProgressBar(other)

		rec = get(h, "/api/progress")
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Delivered"))
	})

	It("should report resource usage", func() {
		rec := get(h, "/api/resource")

		var rsp resourceRsp
		Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())
		Expect(rsp.MemorySize).To(BeNumerically(">", 0))
	})

	It("should serve the web page", func() {
		rec := get(h, "/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})
})

var _ = Describe("DeliveryProgress", func() {
	It("should never let in-progress drop below zero", func() {
		bar := &ProgressBar{}

		bar.MoveInProgressToFinished(2)

		Expect(bar.InProgress).To(Equal(uint64(0)))
		Expect(bar.Finished).To(Equal(uint64(2)))
	})

	It("should follow a run", func() {
		cfg := config.Default()
		cfg.MessageCount = 4
		cfg.LossProbability = 0.2
		cfg.CorruptionProbability = 0.2
		cfg.MeanInterarrivalTime = 100

		m := NewMonitor()
		bar := m.CreateProgressBar("Delivered", uint64(cfg.MessageCount))

		s, err := simulation.MakeBuilder().
			WithConfig(cfg).
			WithHook(NewDeliveryProgress(bar)).
			Build()
		Expect(err).ToNot(HaveOccurred())

		m.RegisterSimulation(s)

		res, err := s.Run()
		Expect(err).ToNot(HaveOccurred())

		Expect(bar.Finished).To(Equal(uint64(res.Delivered)))
		Expect(bar.Finished).To(Equal(uint64(4)))
		Expect(bar.InProgress).To(Equal(uint64(0)))

		rec := get(m.Router(), "/api/stats")

		var r simulation.Result
		Expect(json.Unmarshal(rec.Body.Bytes(), &r)).To(Succeed())
		Expect(r.Delivered).To(Equal(res.Delivered))
		Expect(r.ID).To(Equal(s.ID()))
	})

	It("should ignore other hook positions", func() {
		bar := &ProgressBar{}
		p := NewDeliveryProgress(bar)

		p.Func(sim.HookCtx{Pos: channel.HookPosSend})

		Expect(bar.InProgress).To(Equal(uint64(0)))
		Expect(bar.Finished).To(Equal(uint64(0)))
	})
})
