package urlutil_test

import (
	"strconv"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dgrsk/pathtines/internal/urlutil"
)

func TestUrlutil(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "urlutil")
}

var _ = Describe("Normalize", func() {
	It("prefixes a bare host with http://", func() {
		n, err := urlutil.Normalize("example.com/a")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal("http://example.com/a"))
	})

	It("preserves an explicit https scheme", func() {
		n, err := urlutil.Normalize("https://x/")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal("https://x"))
	})

	It("strips a leading slash before assuming a scheme", func() {
		n, err := urlutil.Normalize("/example.com")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal("http://example.com"))
	})

	It("is idempotent", func() {
		once, err := urlutil.Normalize("example.com/a")
		Expect(err).NotTo(HaveOccurred())
		twice, err := urlutil.Normalize(once)
		Expect(err).NotTo(HaveOccurred())
		Expect(twice).To(Equal(once))
	})

	It("never leaves a trailing slash", func() {
		n, err := urlutil.Normalize("http://example.com/a/")
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal("http://example.com/a"))
	})
})

var _ = Describe("HumanSize", func() {
	DescribeTable("binary prefixes",
		func(n int64, want string) {
			Expect(urlutil.HumanSize(n)).To(Equal(want))
		},
		Entry("zero", int64(0), "0.0B"),
		Entry("bytes", int64(10), "10.0B"),
		Entry("one KiB", int64(1024), "1.0KiB"),
		Entry("one and a half KiB", int64(1536), "1.5KiB"),
		Entry("one MiB", int64(1024*1024), "1.0MiB"),
	)

	It("round-trips within 5% for positive sizes", func() {
		for _, n := range []int64{1, 7, 512, 1023, 1024, 99999, 123456789} {
			formatted := urlutil.HumanSize(n)
			parsed := parseHumanSize(formatted)
			diff := float64(n) - parsed
			if diff < 0 {
				diff = -diff
			}
			Expect(diff / float64(n)).To(BeNumerically("<", 0.05))
		}
	})
})

// parseHumanSize is the minimal inverse of HumanSize used only to assert
// the round-trip law in §8 of the spec; it is not part of the public API.
func parseHumanSize(s string) float64 {
	units := []struct {
		suffix string
		mul    float64
	}{
		{"KiB", 1024}, {"MiB", 1024 * 1024}, {"GiB", 1024 * 1024 * 1024}, {"B", 1},
	}
	for _, u := range units {
		if strings.HasSuffix(s, u.suffix) {
			val, _ := strconv.ParseFloat(strings.TrimSuffix(s, u.suffix), 64)
			return val * u.mul
		}
	}
	return 0
}
