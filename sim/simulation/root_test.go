package simulation

import (
	"fmt"
	"time"

	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/hooking"
	"github.com/SimulationEverywhere/cadmium-v2-sub001/sim/modeling"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("RootCoordinator", func() {
	var (
		mockCtrl *gomock.Controller
		logger   *MockLogger
		top      *modeling.Coupled
		g        *generator
		k        *sink
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		logger = NewMockLogger(mockCtrl)

		top = modeling.NewCoupled("top")
		g = newGenerator("g", 1, 5)
		k = newSink("k", modeling.Infinity)
		Expect(top.AddComponent(g)).To(Succeed())
		Expect(top.AddComponent(k)).To(Succeed())
		Expect(top.AddCoupling(g.out, k.in)).To(Succeed())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should refuse a top model that has a parent", func() {
		outer := modeling.NewCoupled("outer")
		Expect(outer.AddComponent(top)).To(Succeed())

		_, err := NewRootCoordinator(top)

		Expect(err).To(MatchError(modeling.ErrComponentHasParent))
	})

	It("should turn a negative initial time advance into an error", func() {
		b := newBroken("b")
		b.ApplyInternalTransition()
		bad := modeling.NewCoupled("bad")
		Expect(bad.AddComponent(b)).To(Succeed())

		_, err := NewRootCoordinator(bad)

		Expect(err).To(BeAssignableToTypeOf(&modeling.ProtocolError{}))
	})

	It("should run a bounded number of iterations", func() {
		r, err := NewRootCoordinator(top)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Start()).To(Succeed())

		Expect(r.SimulateIterations(3)).To(Succeed())

		Expect(k.State().Received).To(Equal([]int{0, 1, 2}))
		Expect(r.CurrentTime()).To(Equal(modeling.VTimeInSec(3)))
	})

	It("should stop iterating once the model is passive", func() {
		r, _ := NewRootCoordinator(top)
		Expect(r.Start()).To(Succeed())

		Expect(r.SimulateIterations(100)).To(Succeed())

		Expect(k.State().Received).To(HaveLen(5))
		Expect(r.TopCoordinator().TimeNext().IsInf()).To(BeTrue())
	})

	It("should run for an interval", func() {
		r, _ := NewRootCoordinator(top)
		Expect(r.Start()).To(Succeed())

		Expect(r.SimulateFor(2.5)).To(Succeed())

		Expect(k.State().Received).To(Equal([]int{0, 1}))
		Expect(r.CurrentTime()).To(Equal(modeling.VTimeInSec(2)))
	})

	It("should start at the configured time", func() {
		r, _ := MakeBuilder().WithStartTime(10).Build(top)
		Expect(r.Start()).To(Succeed())

		Expect(r.CurrentTime()).To(Equal(modeling.VTimeInSec(10)))
		Expect(r.TopCoordinator().TimeNext()).To(Equal(modeling.VTimeInSec(11)))
	})

	It("should log every step", func() {
		r, _ := MakeBuilder().WithLogger(logger).Build(top)
		Expect(r.Logger()).To(BeIdenticalTo(Logger(logger)))

		gomock.InOrder(
			logger.EXPECT().Start(),
			logger.EXPECT().LogState(modeling.VTimeInSec(0), 1, "g", gomock.Any()),
			logger.EXPECT().LogState(modeling.VTimeInSec(0), 2, "k", gomock.Any()),
			logger.EXPECT().LogTime(modeling.VTimeInSec(1)),
			logger.EXPECT().LogOutput(modeling.VTimeInSec(1), 1, "g", "out", "0"),
			logger.EXPECT().LogState(modeling.VTimeInSec(1), 1, "g", gomock.Any()),
			logger.EXPECT().LogState(modeling.VTimeInSec(1), 2, "k", gomock.Any()),
			logger.EXPECT().LogState(modeling.VTimeInSec(1), 1, "g", gomock.Any()),
			logger.EXPECT().LogState(modeling.VTimeInSec(1), 2, "k", gomock.Any()),
			logger.EXPECT().Stop(),
		)

		Expect(r.Start()).To(Succeed())
		Expect(r.SimulateIterations(1)).To(Succeed())
		r.Stop()
	})

	It("should invoke hooks around steps", func() {
		hook := NewMockHook(mockCtrl)
		r, _ := MakeBuilder().WithHook(hook).Build(top)
		Expect(r.NumHooks()).To(Equal(1))

		gomock.InOrder(
			hook.EXPECT().Func(hooking.HookCtx{
				Domain: r, Pos: HookPosBeforeStep, Item: modeling.VTimeInSec(1),
			}),
			hook.EXPECT().Func(hooking.HookCtx{
				Domain: r, Pos: HookPosAfterStep, Item: modeling.VTimeInSec(1),
			}),
		)

		Expect(r.Start()).To(Succeed())
		Expect(r.SimulateIterations(1)).To(Succeed())
	})

	It("should inject external messages", func() {
		in, _ := modeling.AddInPort[int](top, "in")
		Expect(top.AddCoupling(in, k.in)).To(Succeed())
		hook := NewMockHook(mockCtrl)
		r, _ := MakeBuilder().WithHook(hook).Build(top)
		hook.EXPECT().Func(hooking.HookCtx{
			Domain: r, Pos: HookPosInject, Item: modeling.VTimeInSec(0.5),
		})

		Expect(r.Start()).To(Succeed())
		in.AddMessage(9)
		Expect(r.Inject(0.5)).To(Succeed())

		Expect(k.State().Received).To(Equal([]int{9}))
		Expect(in.Empty()).To(BeTrue())
		Expect(r.CurrentTime()).To(Equal(modeling.VTimeInSec(0.5)))
	})

	It("should refuse injections outside the current interval", func() {
		r, _ := NewRootCoordinator(top)
		Expect(r.Start()).To(Succeed())
		Expect(r.SimulateIterations(1)).To(Succeed())

		err := r.Inject(2.5)
		Expect(err).To(BeAssignableToTypeOf(&modeling.ProtocolError{}))
		Expect(err.Error()).To(ContainSubstring("outside [1, 2)"))

		Expect(r.Inject(0.5)).To(HaveOccurred())
		Expect(r.Inject(2)).To(HaveOccurred())
		Expect(r.CurrentTime()).To(Equal(modeling.VTimeInSec(1)))

		Expect(r.Inject(1.5)).To(Succeed())
		Expect(r.CurrentTime()).To(Equal(modeling.VTimeInSec(1.5)))
	})

	It("should turn protocol violations into errors", func() {
		bad := modeling.NewCoupled("bad")
		Expect(bad.AddComponent(newBroken("b"))).To(Succeed())
		r, err := NewRootCoordinator(bad)
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Start()).To(Succeed())

		err = r.SimulateIterations(2)

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("model b"))
	})

	It("should not run steps while paused", func() {
		r, _ := NewRootCoordinator(top)
		Expect(r.Start()).To(Succeed())
		r.Pause()
		r.Pause()

		done := make(chan error)
		go func() {
			done <- r.SimulateIterations(1)
		}()

		Consistently(done, 50*time.Millisecond).ShouldNot(Receive())
		Expect(r.CurrentTime()).To(Equal(modeling.VTimeInSec(0)))

		r.Continue()
		r.Continue()

		Eventually(done).Should(Receive(BeNil()))
		Expect(r.CurrentTime()).To(Equal(modeling.VTimeInSec(1)))
	})

	It("should notify hooks when the simulation continues", func() {
		hook := NewMockHook(mockCtrl)
		r, _ := MakeBuilder().WithHook(hook).Build(top)
		Expect(r.Start()).To(Succeed())
		hook.EXPECT().Func(hooking.HookCtx{Domain: r, Pos: HookPosContinue})

		r.Continue()
		r.Pause()
		r.Continue()
	})

	It("should examine models between steps", func() {
		r, _ := NewRootCoordinator(top)
		Expect(r.Start()).To(Succeed())

		done := make(chan error)
		go func() { done <- r.SimulateIterations(5) }()

		for i := 0; i < 20; i++ {
			r.Examine(func() {
				s := g.State()
				Expect(g.LogState()).To(Equal(fmt.Sprint(s)))
			})
		}

		Eventually(done).Should(Receive(BeNil()))
		Expect(k.State().Received).To(HaveLen(5))
	})

	It("should examine models while paused", func() {
		r, _ := NewRootCoordinator(top)
		Expect(r.Start()).To(Succeed())
		r.Pause()

		examined := make(chan bool)
		go r.Examine(func() { examined <- true })

		Eventually(examined).Should(Receive(BeTrue()))
		r.Continue()
	})
})
