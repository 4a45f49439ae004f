package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		base     *HookableBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		base = &HookableBase{}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should invoke hooks in registration order", func() {
		first := NewMockHook(mockCtrl)
		second := NewMockHook(mockCtrl)
		ctx := HookCtx{Pos: &HookPos{Name: "Test"}, Item: 1}

		gomock.InOrder(
			first.EXPECT().Func(ctx),
			second.EXPECT().Func(ctx),
		)

		base.AcceptHook(first)
		base.AcceptHook(second)
		base.InvokeHook(ctx)

		Expect(base.NumHooks()).To(Equal(2))
		Expect(base.Hooks()).To(HaveLen(2))
	})

	It("should reject the same hook twice", func() {
		hook := NewMockHook(mockCtrl)
		base.AcceptHook(hook)

		Expect(func() { base.AcceptHook(hook) }).To(Panic())
	})

	It("should accept plain functions", func() {
		count := 0
		base.AcceptHook(HookFunc(func(HookCtx) { count++ }))
		base.AcceptHook(HookFunc(func(HookCtx) { count++ }))

		base.InvokeHook(HookCtx{})

		Expect(count).To(Equal(2))
	})
})
