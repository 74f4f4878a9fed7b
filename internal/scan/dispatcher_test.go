package scan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/dgrsk/pathtines/pkg/clientpool"
)

var _ = Describe("Dispatcher", func() {
	var (
		srv  *httptest.Server
		pool *clientpool.Pool
		gate *Gate
	)

	BeforeEach(func() {
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/redirect" {
				w.Header().Set("Location", "/target")
				w.WriteHeader(http.StatusFound)
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		}))

		var err error
		pool, err = clientpool.New(clientpool.Config{MaxConnections: 2, MaxConnectionsPerHost: 2, Timeout: time.Second})
		Expect(err).NotTo(HaveOccurred())

		gate = NewGate()
	})

	AfterEach(func() {
		srv.Close()
	})

	It("returns a response outcome on success", func() {
		d := NewDispatcher(pool, gate, 4, 3, "get")
		out := d.Fetch(context.Background(), 0, srv.URL+"/ok")

		Expect(out.Kind).To(Equal(OutcomeResponse))
		Expect(out.Status).To(Equal(http.StatusOK))
	})

	It("captures the Location header on a redirect response", func() {
		d := NewDispatcher(pool, gate, 4, 3, "get")
		out := d.Fetch(context.Background(), 0, srv.URL+"/redirect")

		Expect(out.Kind).To(Equal(OutcomeResponse))
		Expect(out.Status).To(Equal(http.StatusFound))
		Expect(out.Location).To(Equal("/target"))
	})

	It("returns cancelled when the context is already done", func() {
		d := NewDispatcher(pool, gate, 4, 3, "get")
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		out := d.Fetch(ctx, 0, srv.URL+"/ok")
		Expect(out.Kind).To(Equal(OutcomeCancelled))
	})

	It("returns cancelled when the gate never opens before the context dies", func() {
		gate.Close()
		d := NewDispatcher(pool, gate, 4, 3, "get")

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		out := d.Fetch(ctx, 0, srv.URL+"/ok")
		Expect(out.Kind).To(Equal(OutcomeCancelled))
	})

	It("exhausts maxRetries and reports an error outcome against a dead target", func() {
		dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		addr := dead.URL
		dead.Close()

		d := NewDispatcher(pool, gate, 4, 2, "get")
		out := d.Fetch(context.Background(), 0, addr+"/ok")

		Expect(out.Kind).To(Equal(OutcomeError))
		Expect(out.Err).To(HaveOccurred())
	})
})
