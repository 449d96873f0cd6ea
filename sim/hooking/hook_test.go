package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HookableBase", func() {
	var (
		base *HookableBase
		pos  *HookPos
	)

	BeforeEach(func() {
		base = NewHookableBase()
		pos = &HookPos{Name: "Test"}
	})

	It("should invoke hooks in registration order", func() {
		var order []string
		first := NewHookFunc(func(ctx HookCtx) { order = append(order, "first") })
		second := NewHookFunc(func(ctx HookCtx) { order = append(order, "second") })

		base.AcceptHook(first)
		base.AcceptHook(second)
		base.InvokeHook(HookCtx{Domain: base, Pos: pos, Item: 1.5})

		Expect(base.NumHooks()).To(Equal(2))
		Expect(base.Hooks()).To(Equal([]Hook{first, second}))
		Expect(order).To(Equal([]string{"first", "second"}))
	})

	It("should pass the context through", func() {
		var got HookCtx
		base.AcceptHook(NewHookFunc(func(ctx HookCtx) { got = ctx }))

		base.InvokeHook(HookCtx{Domain: base, Pos: pos, Item: 2.0, Detail: "x"})

		Expect(got.Pos).To(BeIdenticalTo(pos))
		Expect(got.Item).To(Equal(2.0))
		Expect(got.Detail).To(Equal("x"))
	})

	It("should panic on duplicated hook", func() {
		hook := NewHookFunc(func(ctx HookCtx) {})
		base.AcceptHook(hook)

		Expect(func() { base.AcceptHook(hook) }).To(Panic())
	})

	It("should accept the same function wrapped twice", func() {
		f := func(ctx HookCtx) {}

		base.AcceptHook(NewHookFunc(f))

		Expect(func() { base.AcceptHook(NewHookFunc(f)) }).NotTo(Panic())
	})
})
