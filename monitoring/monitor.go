// Package monitoring turns a running simulation into a web server that can be
// used to inspect and control the simulation.
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
	"strings"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/hsfifo/monitoring/web"
	"github.com/sarchlab/hsfifo/sim/clocking"
	"github.com/sarchlab/hsfifo/sim/id"
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/timing"
)

// An OccupancyReporter tells how full a queue is.
type OccupancyReporter interface {
	naming.Named

	Size() int
	Capacity() int
}

// Monitor can turn a simulation into a server and allows external monitoring
// and controlling of the simulation.
type Monitor struct {
	engine      timing.Engine
	domain      *clocking.Domain
	portNumber  int
	openBrowser bool

	lock       sync.Mutex
	components []naming.Named
	queues     []OccupancyReporter

	progressBarsLock sync.Mutex
	progressBars     []*ProgressBar
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// replaced by a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)

		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithOpenBrowser makes StartServer open the monitoring page in a browser.
func (m *Monitor) WithOpenBrowser(open bool) *Monitor {
	m.openBrowser = open
	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e timing.Engine) {
	m.engine = e
}

// RegisterDomain registers the clock domain whose cycle count is reported.
func (m *Monitor) RegisterDomain(d *clocking.Domain) {
	m.domain = d
}

// RegisterComponent registers a component to be monitored. Components that
// report their occupancy are also tracked by the hang detector.
func (m *Monitor) RegisterComponent(c naming.Named) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.components = append(m.components, c)

	if q, ok := c.(OccupancyReporter); ok {
		m.queues = append(m.queues, q)
	}
}

// CreateProgressBar creates a new progress bar.
func (m *Monitor) CreateProgressBar(name string, total uint64) *ProgressBar {
	bar := &ProgressBar{
		ID:        id.Generate(),
		Name:      name,
		StartTime: time.Now(),
		Total:     total,
	}

	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	m.progressBars = append(m.progressBars, bar)

	return bar
}

// CompleteProgressBar removes a bar from the list.
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

// Router returns the HTTP handler of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/cycle", m.cycle)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/hangdetector/fifos", m.hangDetectorFIFOs)
	r.HandleFunc("/api/progress", m.listProgressBars)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts serving in the background and returns the URL of the
// monitoring page.
func (m *Monitor) StartServer() (string, error) {
	listener, err := net.Listen("tcp", ":"+strconv.Itoa(m.portNumber))
	if err != nil {
		return "", errors.Wrap(err, "starting monitoring server")
	}

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	router := m.Router()

	go func() {
		err := http.Serve(listener, router)
		if err != nil {
			log.Printf("monitoring server stopped: %v", err)
		}
	}()

	if m.openBrowser {
		err = browser.OpenURL(url)
		if err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}

	return url, nil
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	if !m.engineMustBeRegistered(w) {
		return
	}

	m.engine.Pause()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	if !m.engineMustBeRegistered(w) {
		return
	}

	m.engine.Continue()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) engineMustBeRegistered(w http.ResponseWriter) bool {
	if m.engine == nil {
		http.Error(w, "no engine registered", http.StatusServiceUnavailable)
		return false
	}

	return true
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	if !m.engineMustBeRegistered(w) {
		return
	}

	fmt.Fprintf(w, "{\"now\":%.10f}", m.engine.Now())
}

type cycleRsp struct {
	Domain  string `json:"domain"`
	Cycle   uint64 `json:"cycle"`
	Stopped bool   `json:"stopped"`
}

func (m *Monitor) cycle(w http.ResponseWriter, _ *http.Request) {
	if m.domain == nil {
		http.Error(w, "no clock domain registered",
			http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, cycleRsp{
		Domain:  m.domain.Name(),
		Cycle:   m.domain.Cycle(),
		Stopped: m.domain.Stopped() || m.domain.ReachedMaxCycles(),
	})
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	m.lock.Lock()
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}
	m.lock.Unlock()

	writeJSON(w, names)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	component := m.findComponentOr404(w, mux.Vars(r)["name"])
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err := serializer.Serialize(w)
	if err != nil {
		log.Printf("cannot serialize %s: %v", component.Name(), err)
	}
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	req := fieldReq{}

	err := json.Unmarshal([]byte(mux.Vars(r)["json"]), &req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = serializer.Serialize(w)
	if err != nil {
		log.Printf("cannot serialize %s: %v", req.FieldName, err)
	}
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) naming.Named {
	m.lock.Lock()
	defer m.lock.Unlock()

	for _, c := range m.components {
		if c.Name() == name {
			return c
		}
	}

	http.Error(w, "Component not found", http.StatusNotFound)

	return nil
}

type queueRsp struct {
	FIFO  string `json:"fifo"`
	Level int    `json:"level"`
	Cap   int    `json:"cap"`
}

func (m *Monitor) hangDetectorFIFOs(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := parseQueueParams(r)
	if err != nil {
		http.Error(w, "Error: "+err.Error(), http.StatusBadRequest)
		return
	}

	queues := m.sortAndSelectQueues(sortMethod, limit, offset)

	rsp := make([]queueRsp, 0, len(queues))
	for _, q := range queues {
		rsp = append(rsp, queueRsp{
			FIFO:  q.Name(),
			Level: q.Size(),
			Cap:   q.Capacity(),
		})
	}

	writeJSON(w, rsp)
}

func parseQueueParams(
	r *http.Request,
) (sortMethod string, limit, offset int, err error) {
	query := r.URL.Query()

	sortMethod = query.Get("sort")
	if sortMethod == "" {
		sortMethod = "percent"
	}

	if sortMethod != "level" && sortMethod != "percent" {
		return "", 0, 0, errors.Errorf(
			"invalid sort method %s, allowed values are `level` and `percent`",
			sortMethod)
	}

	limit, err = intParam(query.Get("limit"))
	if err != nil {
		return "", 0, 0, errors.Wrap(err, "limit")
	}

	offset, err = intParam(query.Get("offset"))
	if err != nil {
		return "", 0, 0, errors.Wrap(err, "offset")
	}

	return sortMethod, limit, offset, nil
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}

	if n < 0 {
		return 0, errors.Errorf("%d is negative", n)
	}

	return n, nil
}

func queuePercent(q OccupancyReporter) float64 {
	return float64(q.Size()) / float64(q.Capacity())
}

// sortAndSelectQueues sorts the queues from the fullest. A limit of 0 selects
// all the queues after the offset.
func (m *Monitor) sortAndSelectQueues(
	sortMethod string,
	limit, offset int,
) []OccupancyReporter {
	m.lock.Lock()
	sorted := append([]OccupancyReporter(nil), m.queues...)
	m.lock.Unlock()

	type snapshot struct {
		q       OccupancyReporter
		size    int
		percent float64
	}

	snapshots := make([]snapshot, len(sorted))
	for i, q := range sorted {
		snapshots[i] = snapshot{q: q, size: q.Size(), percent: queuePercent(q)}
	}

	sort.SliceStable(snapshots, func(i, j int) bool {
		a, b := snapshots[i], snapshots[j]

		if sortMethod == "level" {
			if a.size != b.size {
				return a.size > b.size
			}

			return a.percent > b.percent
		}

		if a.percent != b.percent {
			return a.percent > b.percent
		}

		return a.size > b.size
	})

	if offset > len(snapshots) {
		offset = len(snapshots)
	}

	end := len(snapshots)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	selected := make([]OccupancyReporter, 0, end-offset)
	for _, s := range snapshots[offset:end] {
		selected = append(selected, s.q)
	}

	return selected
}

func (m *Monitor) listProgressBars(w http.ResponseWriter, _ *http.Request) {
	m.progressBarsLock.Lock()
	defer m.progressBarsLock.Unlock()

	bars := make([]progressBarSnapshot, 0, len(m.progressBars))
	for _, b := range m.progressBars {
		bars = append(bars, b.snapshot())
	}

	writeJSON(w, bars)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	memoryInfo, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	})
}

// collectProfile samples the CPU for a second, or for the number of
// milliseconds given by the ms parameter.
func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	duration := time.Second

	if ms := r.URL.Query().Get("ms"); ms != "" {
		n, err := intParam(ms)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		duration = time.Duration(n) * time.Millisecond
	}

	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(duration)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(data)
	if err != nil {
		log.Printf("cannot write response: %v", err)
	}
}
