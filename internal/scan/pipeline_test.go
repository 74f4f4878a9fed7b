package scan

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Generate", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("interleaves targets per path index, round robin", func() {
		t0, err := NewTarget(0, "http://a.example", dir, 1)
		Expect(err).NotTo(HaveOccurred())
		defer t0.Stop()
		t1, err := NewTarget(1, "http://b.example", dir, 1)
		Expect(err).NotTo(HaveOccurred())
		defer t1.Stop()

		reqs := Generate([]*Target{t0, t1}, []string{"x", "y"})

		var got []Request
		for r := range reqs {
			got = append(got, r)
		}

		Expect(got).To(HaveLen(4))
		Expect(got[0].TargetID).To(Equal(0))
		Expect(got[0].URL).To(Equal("http://a.example/x"))
		Expect(got[1].TargetID).To(Equal(1))
		Expect(got[1].URL).To(Equal("http://b.example/x"))
		Expect(got[2].URL).To(Equal("http://a.example/y"))
		Expect(got[3].URL).To(Equal("http://b.example/y"))
	})

	It("emits a dropped slot once a target has stopped", func() {
		t0, err := NewTarget(0, "http://a.example", dir, 1)
		Expect(err).NotTo(HaveOccurred())
		t0.Stop()

		reqs := Generate([]*Target{t0}, []string{"x", "y"})

		var got []Request
		for r := range reqs {
			got = append(got, r)
		}

		Expect(got).To(HaveLen(2))
		Expect(got[0].Dropped).To(BeTrue())
		Expect(got[1].Dropped).To(BeTrue())
	})
})

var _ = Describe("Chunks", func() {
	It("partitions a stream into fixed-size slices, shorter last", func() {
		in := make(chan Request, 5)
		for i := 0; i < 5; i++ {
			in <- Request{TargetID: i}
		}
		close(in)

		var got [][]Request
		for c := range Chunks(in, 2) {
			got = append(got, c)
		}

		Expect(got).To(HaveLen(3))
		Expect(got[0]).To(HaveLen(2))
		Expect(got[1]).To(HaveLen(2))
		Expect(got[2]).To(HaveLen(1))
	})
})
