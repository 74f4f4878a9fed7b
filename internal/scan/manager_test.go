package scan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Manager", func() {
	var srv *httptest.Server

	BeforeEach(func() {
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/admin" {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))
	})

	AfterEach(func() {
		srv.Close()
	})

	It("scans a target to completion and records only non-404 hits", func() {
		dir := GinkgoT().TempDir()

		m, err := NewManager(Options{
			BaseURLs:      []string{srv.URL},
			Paths:         []string{"admin", "missing"},
			LogsDir:       dir,
			Method:        "get",
			MaxErrors:     1,
			MaxRetries:    1,
			MaxConns:      2,
			MaxConnsHost:  2,
			Timeout:       time.Second,
			ChunkSize:     10,
			GiveupTimeout: 10 * time.Millisecond,
		})
		Expect(err).NotTo(HaveOccurred())

		err = m.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		entries, err := os.ReadDir(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))

		content, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
		Expect(err).NotTo(HaveOccurred())
		Expect(string(content)).To(ContainSubstring("200 - 0.0B"))
		Expect(string(content)).NotTo(ContainSubstring("404"))
	})

	It("respects a pre-cancelled context and shuts down cleanly", func() {
		dir := GinkgoT().TempDir()

		m, err := NewManager(Options{
			BaseURLs:      []string{srv.URL},
			Paths:         []string{"admin"},
			LogsDir:       dir,
			Method:        "get",
			MaxErrors:     1,
			MaxRetries:    1,
			MaxConns:      1,
			MaxConnsHost:  1,
			Timeout:       time.Second,
			ChunkSize:     10,
			GiveupTimeout: 5 * time.Millisecond,
		})
		Expect(err).NotTo(HaveOccurred())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err = m.Run(ctx)
		Expect(err).To(HaveOccurred())
	})
})
