package scan

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Classifier", func() {
	var (
		dir string
		tg  *Target
		c   *Classifier
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		var err error
		tg, err = NewTarget(0, "http://example.com", dir, 1)
		Expect(err).NotTo(HaveOccurred())
		c = NewClassifier(NewProgress(10))
	})

	AfterEach(func() {
		tg.Stop()
	})

	It("silently drops a 404 without writing a hit", func() {
		res := c.Classify(tg, "http://example.com/x", Outcome{Kind: OutcomeResponse, Status: 404})
		Expect(res.Blocked).To(BeFalse())

		entries, _ := os.ReadDir(dir)
		content, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
		Expect(string(content)).To(BeEmpty())
	})

	It("logs a 200 hit with size and URL", func() {
		c.Classify(tg, "http://example.com/x", Outcome{Kind: OutcomeResponse, Status: 200, ContentLength: 1024, FinalURL: "http://example.com/x"})
		tg.Stop() // flushes the buffered log sink

		entries, _ := os.ReadDir(dir)
		content, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
		Expect(string(content)).To(ContainSubstring("200 - 1.0KiB"))
		Expect(string(content)).To(ContainSubstring("http://example.com/x"))
	})

	It("logs a redirect hit with an arrow to Location", func() {
		c.Classify(tg, "http://example.com/x", Outcome{
			Kind: OutcomeResponse, Status: 301, FinalURL: "http://example.com/x", Location: "/y",
		})
		tg.Stop() // flushes the buffered log sink

		entries, _ := os.ReadDir(dir)
		content, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
		Expect(string(content)).To(ContainSubstring("301 - 0.0B"))
		Expect(string(content)).To(ContainSubstring("-> /y"))
	})

	It("does not block below the error budget", func() {
		res := c.Classify(tg, "http://example.com/x", Outcome{Kind: OutcomeError, ErrKind: ErrTimeout, Err: errors.New("boom")})
		Expect(res.Blocked).To(BeFalse())
		Expect(tg.Running()).To(BeTrue())
	})

	It("blocks once the error budget is exceeded", func() {
		c.Classify(tg, "http://example.com/x", Outcome{Kind: OutcomeError, ErrKind: ErrTimeout, Err: errors.New("one")})
		res := c.Classify(tg, "http://example.com/y", Outcome{Kind: OutcomeError, ErrKind: ErrTimeout, Err: errors.New("two")})

		Expect(res.Blocked).To(BeTrue())
	})

	It("advances progress by one regardless of outcome kind", func() {
		p := NewProgress(10)
		c2 := NewClassifier(p)

		c2.Classify(tg, "u", Outcome{Kind: OutcomeCancelled})
		Expect(p.Done()).To(Equal(int64(1)))

		c2.Classify(tg, "u", Outcome{Kind: OutcomeResponse, Status: 404})
		Expect(p.Done()).To(Equal(int64(2)))
	})
})
