// Package monitoring turns a running simulation into a web server so that it
// can be observed and paused from a browser.
package monitoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/arqsim/monitoring/web"
	"github.com/sarchlab/arqsim/sim"
	"github.com/sarchlab/arqsim/simulation"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// Simulation is what the monitor needs from a run.
type Simulation interface {
	Pause()
	Continue()
	IsPaused() bool
	Now() sim.VTime
	Snapshot() simulation.Result
	PendingEvents() []sim.Event

	// Inspect runs f while no event is being processed.
	Inspect(f func())
}

// Monitor can turn a simulation into a server and allows external monitoring
// controlling of the simulation.
type Monitor struct {
	simulation Simulation
	entities   map[string]any
	portNumber int
	idGen      sim.IDGenerator

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		entities: make(map[string]any),
		idGen:    sim.NewSequentialIDGenerator(),
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterSimulation registers the run that is monitored.
func (m *Monitor) RegisterSimulation(s Simulation) {
	m.simulation = s
}

// RegisterEntity registers an object whose state can be listed under name.
func (m *Monitor) RegisterEntity(name string, entity any) {
	m.entities[name] = entity
}

// EntityNames returns the names of the registered entities in sorted order.
func (m *Monitor) EntityNames() []string {
	names := make([]string, 0, len(m.entities))
	for name := range m.entities {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        m.idGen.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar to be shown on the webpage.
func (m *Monitor) CompleteProgressBar(pb *ProgressBar) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	newBars := make([]*ProgressBar, 0, len(m.progressBars))

	for _, b := range m.progressBars {
		if b != pb {
			newBars = append(newBars, b)
		}
	}

	m.progressBars = newBars
}

// Router returns the handler that serves the monitoring API and the web page.
func (m *Monitor) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseSimulation)
	r.HandleFunc("/api/continue", m.continueSimulation)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/stats", m.stats)
	r.HandleFunc("/api/pending", m.pending)
	r.HandleFunc("/api/list_entities", m.listEntities)
	r.HandleFunc("/api/entity/{name}", m.entityDetails)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	fServer := http.FileServer(web.GetAssets())
	r.PathPrefix("/").Handler(fServer)

	return r
}

// StartServer starts the monitor as a web server and returns its address.
// If openBrowser is set, the page is opened in the default browser.
func (m *Monitor) StartServer(openBrowser bool) string {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	handler := m.Router()

	go func() {
		err := http.Serve(listener, handler)
		dieOnErr(err)
	}()

	if openBrowser {
		err := browser.OpenURL(url)
		if err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}

	return url
}

func (m *Monitor) pauseSimulation(w http.ResponseWriter, _ *http.Request) {
	if !m.simulationOr503(w) {
		return
	}

	m.simulation.Pause()

	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueSimulation(w http.ResponseWriter, _ *http.Request) {
	if !m.simulationOr503(w) {
		return
	}

	m.simulation.Continue()

	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	if !m.simulationOr503(w) {
		return
	}

	now := m.simulation.Now()
	fmt.Fprintf(w, "{\"now\":%.10f,\"paused\":%t}",
		float64(now), m.simulation.IsPaused())
}

func (m *Monitor) stats(w http.ResponseWriter, _ *http.Request) {
	if !m.simulationOr503(w) {
		return
	}

	bytes, err := json.Marshal(m.simulation.Snapshot())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type pendingEventRsp struct {
	Time   float64 `json:"time"`
	Kind   string  `json:"kind"`
	Entity string  `json:"entity"`
}

func (m *Monitor) pending(w http.ResponseWriter, _ *http.Request) {
	if !m.simulationOr503(w) {
		return
	}

	events := m.simulation.PendingEvents()

	rsp := make([]pendingEventRsp, 0, len(events))
	for _, evt := range events {
		rsp = append(rsp, pendingEventRsp{
			Time:   float64(evt.Time),
			Kind:   evt.Kind.String(),
			Entity: evt.Entity.String(),
		})
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listEntities(w http.ResponseWriter, _ *http.Request) {
	bytes, err := json.Marshal(m.EntityNames())
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) entityDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	entity := m.findEntityOr404(w, name)
	if entity == nil {
		return
	}

	buf := bytes.NewBuffer(nil)
	serialize := func() {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(entity)
		serializer.SetMaxDepth(1)
		err := serializer.Serialize(buf)
		dieOnErr(err)
	}

	if m.simulation != nil {
		m.simulation.Inspect(serialize)
	} else {
		serialize()
	}

	_, err := w.Write(buf.Bytes())
	dieOnErr(err)
}

func (m *Monitor) findEntityOr404(w http.ResponseWriter, name string) any {
	entity, found := m.entities[name]
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Entity not found"))
		dieOnErr(err)

		return nil
	}

	return entity
}

func (m *Monitor) simulationOr503(w http.ResponseWriter) bool {
	if m.simulation != nil {
		return true
	}

	w.WriteHeader(http.StatusServiceUnavailable)
	_, err := w.Write([]byte("No simulation registered"))
	dieOnErr(err)

	return false
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	rsp := make([]progressBarRsp, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		rsp = append(rsp, b.rsp())
	}
	m.progressBarsLock.Unlock()

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	bytes, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
