package monitoring

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"reflect"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/mmucov/coverage"
	"github.com/sarchlab/mmucov/internal/fixture"
	"github.com/sarchlab/mmucov/path"
	"github.com/sarchlab/mmucov/trajectory"
)

type sampleStruct struct {
	field1 int
	field2 string
	field3 *sampleStruct
	field4 []sampleStruct
}

var _ = Describe("Monitor", func() {
	var (
		m *Monitor
	)

	BeforeEach(func() {
		m = NewMonitor()
	})

	get := func(url string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, url, nil)
		m.Router().ServeHTTP(rec, req)

		return rec
	}

	search := func() path.Builder {
		s := fixture.Cache()
		r := trajectory.NewExtractor(s, trajectory.ByBufferEvent).Extract()

		return path.MakeBuilder().
			WithSubsystem(s).
			WithGraph(r.Graph).
			WithRandom(rand.New(rand.NewSource(1)))
	}

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

	It("should report fields that do not exist", func() {
		s := &sampleStruct{field4: []sampleStruct{{}}}

		_, err := m.walkFields(s, "field9")
		Expect(err).To(HaveOccurred())

		_, err = m.walkFields(s, "field4.3")
		Expect(err).To(HaveOccurred())

		_, err = m.walkFields(s, "field1.x")
		Expect(err).To(HaveOccurred())
	})

	It("should list registered objects", func() {
		m.RegisterObject("b", &sampleStruct{})
		m.RegisterObject("a", &sampleStruct{})

		rec := get("/api/objects")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(Equal(`["a","b"]`))
	})

	It("should serve field values", func() {
		m.RegisterObject("s", &sampleStruct{field2: "abc"})

		Expect(get("/api/value/s/field2").Body.String()).To(Equal("abc"))
		Expect(get("/api/value/s/field9").Code).
			To(Equal(http.StatusBadRequest))
		Expect(get("/api/value/x/field2").Code).
			To(Equal(http.StatusNotFound))
	})

	It("should serve exploration statistics", func() {
		x := coverage.NewExplorer()
		m.RegisterExplorer(x)

		it := search().
			WithHook(x).
			Build()
		for it.HasNext() {
			it.Next()
		}

		rec := get("/api/stats")

		stats := map[string]coverage.Stats{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &stats)).To(Succeed())
		Expect(stats[coverage.Unrestricted].Paths).To(Equal(3))
	})

	It("should track progress bars", func() {
		bar := m.CreateProgressBar("paths", 2)
		bar.IncrementInProgress(1)

		it := search().
			WithHook(bar).
			Build()
		for it.HasNext() {
			it.Next()
		}

		bar.MoveInProgressToFinished(1)

		var bars []map[string]any
		Expect(json.Unmarshal(get("/api/progress").Body.Bytes(), &bars)).
			To(Succeed())
		Expect(bars).To(HaveLen(1))
		Expect(bars[0]["paths"]).To(BeNumerically("==", 3))
		Expect(bars[0]["finished"]).To(BeNumerically("==", 1))

		m.CompleteProgressBar(bar)
		Expect(get("/api/progress").Body.String()).To(Equal("[]"))
	})

	It("should report resources", func() {
		rec := get("/api/resource")

		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring("memory_size"))
	})

	It("should fall back to a random port for reserved ports", func() {
		Expect(m.WithPortNumber(80).portNumber).To(Equal(0))
		Expect(m.WithPortNumber(8080).portNumber).To(Equal(8080))
	})
})
