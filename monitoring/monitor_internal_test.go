package monitoring

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"time"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/simulation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type sampleStruct struct {
	field1 int
	field2 string
	field3 *sampleStruct
	field4 []sampleStruct
}

type counterState struct {
	Count int
}

// counter counts its internal events, one per unit of time.
type counter struct {
	*modeling.Atomic[counterState]

	Limit int
}

func newCounter(name string, limit int) *counter {
	c := &counter{Limit: limit}
	c.Atomic = modeling.NewAtomic(name, counterState{}, c)

	return c
}

func (c *counter) InternalTransition(s *counterState) {
	s.Count++
}

func (c *counter) ExternalTransition(s *counterState, e modeling.VTimeInSec) {}

func (c *counter) Output(s counterState) {}

func (c *counter) TimeAdvance(s counterState) modeling.VTimeInSec {
	if s.Count >= c.Limit {
		return modeling.Infinity
	}

	return 1
}

func newSampleRoot() *simulation.RootCoordinator {
	top := modeling.NewCoupled("top")
	Expect(top.AddComponent(newCounter("counter", 3))).To(Succeed())
	Expect(top.AddComponent(newCounter("idle", 0))).To(Succeed())

	r, err := simulation.NewRootCoordinator(top)
	Expect(err).NotTo(HaveOccurred())
	Expect(r.Start()).To(Succeed())

	return r
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	return rec
}

var _ = Describe("Monitor", func() {
	var (
		m    *Monitor
		root *simulation.RootCoordinator
		h    http.Handler
	)

	BeforeEach(func() {
		m = NewMonitor()
		root = newSampleRoot()
		m.RegisterRootCoordinator(root)
		h = m.Router()
	})

	AfterEach(func() {
		root.Continue()
		root.Stop()
	})

	It("should register every model of the hierarchy", func() {
		Expect(m.components).To(HaveLen(3))
	})

	It("should list components", func() {
		rec := get(h, "/api/list_components")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).
			To(MatchJSON(`["top", "top.counter", "top.idle"]`))
	})

	It("should report the current time", func() {
		Expect(root.SimulateIterations(2)).To(Succeed())

		rec := get(h, "/api/now")

		Expect(rec.Body.String()).To(MatchJSON(`{"now": 2}`))
	})

	It("should report the state of atomic models", func() {
		Expect(root.SimulateIterations(1)).To(Succeed())

		rec := get(h, "/api/state/top.counter")
		Expect(rec.Body.String()).To(MatchJSON(
			`{"name": "top.counter", "state": "{1}", "sigma": 1, "passive": false}`))

		rec = get(h, "/api/state/top.idle")
		Expect(rec.Body.String()).To(MatchJSON(
			`{"name": "top.idle", "state": "{0}", "sigma": 0, "passive": true}`))
	})

	It("should refuse the state of coupled models", func() {
		rec := get(h, "/api/state/top")

		Expect(rec.Code).To(Equal(http.StatusMethodNotAllowed))
	})

	It("should return 404 for unknown components", func() {
		Expect(get(h, "/api/component/nobody").Code).
			To(Equal(http.StatusNotFound))
		Expect(get(h, "/api/state/nobody").Code).
			To(Equal(http.StatusNotFound))
	})

	It("should serialize components", func() {
		rec := get(h, "/api/component/top.counter")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("Limit"))
	})

	It("should check the field path", func() {
		req := func(field string) string {
			return "/api/field/" + url.PathEscape(
				`{"comp_name":"top.counter","field_name":"`+field+`"}`)
		}

		Expect(get(h, req("Limit")).Code).To(Equal(http.StatusOK))
		Expect(get(h, req("Missing")).Code).To(Equal(http.StatusBadRequest))
		Expect(get(h, "/api/field/"+url.PathEscape("{")).Code).
			To(Equal(http.StatusBadRequest))
	})

	It("should pause and continue the simulation", func() {
		Expect(get(h, "/api/pause").Code).To(Equal(http.StatusOK))

		done := make(chan error)
		go func() { done <- root.SimulateIterations(1) }()
		Consistently(done, 50*time.Millisecond).ShouldNot(Receive())

		Expect(get(h, "/api/continue").Code).To(Equal(http.StatusOK))
		Eventually(done).Should(Receive(BeNil()))
		Expect(root.CurrentTime()).To(Equal(modeling.VTimeInSec(1)))
	})

	It("should track steps on progress bars", func() {
		bar := m.CreateProgressBar("steps", 3)
		root.AcceptHook(NewStepProgressHook(bar))

		Expect(root.SimulateIterations(10)).To(Succeed())

		rec := get(h, "/api/progress")
		var bars []ProgressBar
		Expect(json.Unmarshal(rec.Body.Bytes(), &bars)).To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0].Name).To(Equal("steps"))
		Expect(bars[0].Finished).To(Equal(uint64(3)))
		Expect(bars[0].InProgress).To(BeZero())

		m.CompleteProgressBar(bar)
		Expect(get(h, "/api/progress").Body.String()).To(MatchJSON(`[]`))
	})

	It("should report resources", func() {
		rec := get(h, "/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("memory_size"))
	})

	It("should collect a profile", func() {
		m.profileDuration = 10 * time.Millisecond

		rec := get(h, "/api/profile")

		Expect(rec.Code).To(Equal(http.StatusOK))
	})
})

var _ = Describe("Monitor during a simulation", func() {
	It("should read models between steps", func() {
		top := modeling.NewCoupled("top")
		Expect(top.AddComponent(newCounter("counter", 20000))).To(Succeed())
		root, err := simulation.NewRootCoordinator(top)
		Expect(err).NotTo(HaveOccurred())
		Expect(root.Start()).To(Succeed())

		m := NewMonitor()
		m.RegisterRootCoordinator(root)
		h := m.Router()

		done := make(chan error)
		go func() { done <- root.SimulateIterations(20000) }()

		for i := 0; i < 200; i++ {
			rec := get(h, "/api/state/top.counter")
			Expect(rec.Code).To(Equal(http.StatusOK))

			rec = get(h, "/api/component/top.counter")
			Expect(rec.Code).To(Equal(http.StatusOK))
		}

		Eventually(done, 10*time.Second).Should(Receive(BeNil()))
		Expect(get(h, "/api/state/top.counter").Body.String()).To(MatchJSON(
			`{"name": "top.counter", "state": "{20000}", "sigma": 0, "passive": true}`))
		root.Stop()
	})
})

var _ = Describe("Monitor without simulation", func() {
	It("should not pause anything", func() {
		h := NewMonitor().Router()

		Expect(get(h, "/api/pause").Code).
			To(Equal(http.StatusServiceUnavailable))
		Expect(get(h, "/api/now").Body.String()).To(MatchJSON(`{"now": 0}`))
	})

	It("should refuse reserved ports", func() {
		Expect(NewMonitor().WithPortNumber(80).portNumber).To(BeZero())
		Expect(NewMonitor().WithPortNumber(8080).portNumber).To(Equal(8080))
	})
})

var _ = Describe("Field walking", func() {
	var m *Monitor

	BeforeEach(func() {
		m = &Monitor{}
	})

	It("should walk int fields", func() {
		s := &sampleStruct{
			field1: 1,
		}

		elem, err := m.walkFields(s, "field1")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.Int))
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk string fields", func() {
		s := &sampleStruct{
			field2: "abc",
		}

		elem, err := m.walkFields(s, "field2")

		Expect(err).To(BeNil())
		Expect(elem.Kind()).To(Equal(reflect.String))
		Expect(elem.String()).To(Equal("abc"))
	})

	It("should walk recursively", func() {
		s := &sampleStruct{
			field3: &sampleStruct{
				field1: 1,
			},
		}

		elem, err := m.walkFields(s, "field3.field1")

		Expect(err).To(BeNil())
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should walk slice recursively", func() {
		s := &sampleStruct{
			field4: []sampleStruct{{
				field4: []sampleStruct{
					{field1: 1},
				},
			}, {}},
		}

		elem, err := m.walkFields(s, "field4.0.field4.0.field1")

		Expect(err).To(BeNil())
		Expect(elem.Int()).To(Equal(int64(1)))
	})

	It("should reject bad paths", func() {
		s := &sampleStruct{field4: []sampleStruct{{}}}

		_, err := m.walkFields(s, "field4.3")
		Expect(err).To(MatchError("cannot walk into field 3"))

		_, err = m.walkFields(s, "field1.x")
		Expect(err).To(HaveOccurred())

		_, err = m.walkFields(s, "nothing")
		Expect(err).To(HaveOccurred())
	})
})
