package scan

import (
	"bytes"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Progress", func() {
	It("starts at zero done", func() {
		p := NewProgress(10)
		Expect(p.Done()).To(Equal(int64(0)))
		Expect(p.Total()).To(Equal(int64(10)))
	})

	It("accumulates adds from multiple callers", func() {
		p := NewProgress(10)
		done := make(chan struct{})
		for i := 0; i < 5; i++ {
			go func() {
				p.Add(1)
				done <- struct{}{}
			}()
		}
		for i := 0; i < 5; i++ {
			<-done
		}
		Expect(p.Done()).To(Equal(int64(5)))
	})

	It("draws a final line and stops when told to", func() {
		p := NewProgress(2)
		p.Add(2)

		var buf bytes.Buffer
		stop := make(chan struct{})
		rendered := make(chan struct{})
		go func() {
			p.Render(&buf, time.Hour, stop)
			close(rendered)
		}()

		close(stop)
		Eventually(rendered).Should(BeClosed())
		Expect(buf.String()).To(ContainSubstring("2/2"))
	})
})
