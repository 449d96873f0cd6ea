package iestream

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/simulation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type received struct {
	Clock  modeling.VTimeInSec
	Values []int
	Times  []modeling.VTimeInSec
}

type collector struct {
	*modeling.Atomic[received]

	in *modeling.TypedPort[int]
}

func newCollector() *collector {
	c := &collector{}
	c.Atomic = modeling.NewAtomic("collector", received{}, c)
	c.in, _ = modeling.AddInPort[int](c, "in")

	return c
}

func (c *collector) InternalTransition(s *received) {}

func (c *collector) ExternalTransition(s *received, e modeling.VTimeInSec) {
	s.Clock += e
	for _, v := range c.in.Bag() {
		s.Values = append(s.Values, v)
		s.Times = append(s.Times, s.Clock)
	}
}

func (c *collector) Output(s received) {}

func (c *collector) TimeAdvance(s received) modeling.VTimeInSec {
	return modeling.Infinity
}

func runStream(input string) (*collector, error) {
	stream, err := New("stream", strings.NewReader(input), Int)
	Expect(err).NotTo(HaveOccurred())

	c := newCollector()
	top := modeling.NewCoupled("top")
	Expect(top.AddComponent(stream)).To(Succeed())
	Expect(top.AddComponent(c)).To(Succeed())
	Expect(top.AddCoupling(stream.Out, c.in)).To(Succeed())

	root, err := simulation.NewRootCoordinator(top)
	Expect(err).NotTo(HaveOccurred())
	Expect(root.Start()).To(Succeed())

	err = root.SimulateIterations(100)
	root.Stop()

	return c, err
}

var _ = Describe("IEStream", func() {
	It("should replay the events at their times", func() {
		c, err := runStream("0.5 12\n\n# comment\n1.25\t7\n1.25 8\n3 -1\n")

		Expect(err).NotTo(HaveOccurred())
		Expect(c.State().Values).To(Equal([]int{12, 7, 8, -1}))
		Expect(c.State().Times).To(Equal(
			[]modeling.VTimeInSec{0.5, 1.25, 1.25, 3}))
	})

	It("should become passive at the end of the stream", func() {
		stream, _ := New("stream", strings.NewReader("1 1\n"), Int)
		s := State[int]{}

		stream.InternalTransition(&s)
		Expect(s.Sigma).To(Equal(modeling.VTimeInSec(1)))
		Expect(s.String()).To(Equal("{0 1 1}"))

		stream.InternalTransition(&s)
		Expect(s.Sigma.IsInf()).To(BeTrue())
		Expect(s.HasNext).To(BeFalse())
		Expect(s.String()).To(ContainSubstring("none"))
	})

	It("should reject unsorted events", func() {
		_, err := runStream("2 1\n1 2\n")

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("not properly sorted"))
	})

	It("should reject malformed lines", func() {
		_, err := runStream("soon 1\n")

		Expect(err).To(MatchError(ContainSubstring("bad time")))
	})

	It("should reject messages the decoder cannot read", func() {
		_, err := runStream("1 one\n")

		Expect(err).To(MatchError(ContainSubstring("bad message")))
	})

	It("should read from files", func() {
		path := filepath.Join(GinkgoT().TempDir(), "events.txt")
		Expect(os.WriteFile(path, []byte("1 hello world\n"), 0o644)).To(Succeed())

		stream, err := Open("stream", path, String)
		Expect(err).NotTo(HaveOccurred())
		defer stream.Close()

		s := State[string]{}
		stream.InternalTransition(&s)
		Expect(s.Next).To(Equal("hello world"))
	})

	It("should report missing files", func() {
		_, err := Open("stream", "/does/not/exist", String)

		Expect(err).To(MatchError(ContainSubstring("could not be opened")))
	})
})
