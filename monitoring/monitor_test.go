package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/hsfifo/sim/clocking"
	"github.com/sarchlab/hsfifo/sim/naming"
	"github.com/sarchlab/hsfifo/sim/timing"
)

type fakeQueue struct {
	naming.NamedBase

	Level int
	Cap   int
}

func (q *fakeQueue) Size() int     { return q.Level }
func (q *fakeQueue) Capacity() int { return q.Cap }

func newFakeQueue(name string, level, capacity int) *fakeQueue {
	return &fakeQueue{
		NamedBase: naming.MakeNamedBase(name),
		Level:     level,
		Cap:       capacity,
	}
}

var _ = Describe("Monitor", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *MockEngine
		m        *Monitor
	)

	get := func(url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, url, nil)
		m.Router().ServeHTTP(rec, req)

		return rec
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewMockEngine(mockCtrl)

		m = NewMonitor()
		m.RegisterEngine(engine)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should replace a low port number", func() {
		m.WithPortNumber(80)

		Expect(m.portNumber).To(Equal(0))
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})

	It("should pause and continue the engine", func() {
		engine.EXPECT().Pause()
		engine.EXPECT().Continue()

		Expect(get("/api/pause").Code).To(Equal(http.StatusOK))
		Expect(get("/api/continue").Code).To(Equal(http.StatusOK))
	})

	It("should report the time", func() {
		engine.EXPECT().Now().Return(1e-9)

		rec := get("/api/now")

		Expect(rec.Body.String()).To(Equal(`{"now":0.0000000010}`))
	})

	It("should fail without an engine", func() {
		m = NewMonitor()

		Expect(get("/api/now").Code).To(Equal(http.StatusServiceUnavailable))
	})

	It("should report the cycle of the domain", func() {
		d := clocking.MakeBuilder().
			WithEngine(timing.NewSerialEngine()).
			Build("Clock")
		d.Tick()
		d.Tick()
		m.RegisterDomain(d)

		rsp := cycleRsp{}
		Expect(json.Unmarshal(get("/api/cycle").Body.Bytes(), &rsp)).
			To(Succeed())
		Expect(rsp).To(Equal(cycleRsp{Domain: "Clock", Cycle: 2}))
	})

	It("should list components", func() {
		m.RegisterComponent(newFakeQueue("A", 0, 1))
		m.RegisterComponent(newFakeQueue("B", 0, 1))

		var names []string
		Expect(json.Unmarshal(get("/api/list_components").Body.Bytes(), &names)).
			To(Succeed())
		Expect(names).To(Equal([]string{"A", "B"}))
	})

	It("should show component details", func() {
		m.RegisterComponent(newFakeQueue("A", 3, 4))

		rec := get("/api/component/A")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Level"))
		Expect(get("/api/component/B").Code).To(Equal(http.StatusNotFound))
	})

	It("should reject a bad field request", func() {
		rec := get("/api/field/notjson")

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	Context("hang detector", func() {
		BeforeEach(func() {
			m.RegisterComponent(newFakeQueue("Half", 2, 4))
			m.RegisterComponent(newFakeQueue("Full", 1, 1))
			m.RegisterComponent(newFakeQueue("Deep", 3, 8))
			m.RegisterComponent(newFakeQueue("Empty", 0, 2))
		})

		names := func(url string) []string {
			var rsp []queueRsp

			rec := get(url)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(json.Unmarshal(rec.Body.Bytes(), &rsp)).To(Succeed())

			result := make([]string, 0, len(rsp))
			for _, q := range rsp {
				result = append(result, q.FIFO)
			}

			return result
		}

		It("should sort by percent by default", func() {
			Expect(names("/api/hangdetector/fifos")).To(Equal(
				[]string{"Full", "Half", "Deep", "Empty"}))
		})

		It("should sort by level", func() {
			Expect(names("/api/hangdetector/fifos?sort=level")).To(Equal(
				[]string{"Deep", "Half", "Full", "Empty"}))
		})

		It("should page", func() {
			Expect(names("/api/hangdetector/fifos?limit=2&offset=1")).To(Equal(
				[]string{"Half", "Deep"}))
			Expect(names("/api/hangdetector/fifos?offset=10")).To(BeEmpty())
		})

		It("should reject bad parameters", func() {
			Expect(get("/api/hangdetector/fifos?sort=name").Code).
				To(Equal(http.StatusBadRequest))
			Expect(get("/api/hangdetector/fifos?limit=-1").Code).
				To(Equal(http.StatusBadRequest))
			Expect(get("/api/hangdetector/fifos?offset=x").Code).
				To(Equal(http.StatusBadRequest))
		})
	})

	It("should list progress bars", func() {
		bar := m.CreateProgressBar("Printed", 10)
		bar.IncrementInProgress(2)
		bar.MoveInProgressToFinished(1)
		bar.IncrementFinished(1)

		var bars []progressBarSnapshot
		Expect(json.Unmarshal(get("/api/progress").Body.Bytes(), &bars)).
			To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("Printed"))
		Expect(bars[0].Finished).To(Equal(uint64(2)))
		Expect(bars[0].InProgress).To(Equal(uint64(1)))

		m.CompleteProgressBar(bar)

		Expect(get("/api/progress").Body.String()).To(Equal("[]"))
	})

	It("should report resources", func() {
		rec := get("/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("memory_size"))
	})

	It("should collect a profile", func() {
		rec := get("/api/profile?ms=10")

		Expect(rec.Code).To(Equal(http.StatusOK))
	})

	It("should serve the web page", func() {
		rec := get("/")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(HavePrefix("<!DOCTYPE html>"))
	})
})
