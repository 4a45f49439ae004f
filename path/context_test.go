package path_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/mmucov/path"
)

var _ = Describe("Context", func() {
	It("should be empty by default", func() {
		var c path.Context

		Expect(c.Depth()).To(Equal(0))
		Expect(c.FrameID()).To(Equal(""))
		Expect(c.Frames()).To(BeEmpty())

		_, ok := c.Top()
		Expect(ok).To(BeFalse())
	})

	It("should push and pop frames", func() {
		var c path.Context

		inner := c.Push(path.Frame{ID: "PT#1"}).Push(path.Frame{ID: "PT#2"})

		Expect(inner.Depth()).To(Equal(2))
		Expect(inner.FrameID()).To(Equal("PT#2"))
		Expect(inner.String()).To(Equal("[PT#1/PT#2]"))

		f, outer := inner.Pop()
		Expect(f.ID).To(Equal("PT#2"))
		Expect(outer.Depth()).To(Equal(1))
		Expect(outer.FrameID()).To(Equal("PT#1"))
	})

	It("should not change when a fork changes", func() {
		base := path.Context{}.Push(path.Frame{ID: "a"})
		fork := base.Fork().Push(path.Frame{ID: "b"})

		Expect(base.Depth()).To(Equal(1))
		Expect(fork.Depth()).To(Equal(2))
		Expect(fork.Frames()[0].ID).To(Equal("a"))
	})

	It("should panic when popping an empty context", func() {
		Expect(func() { path.Context{}.Pop() }).To(Panic())
	})
})
