package scan

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/dgrsk/pathtines/pkg/clientpool"
)

// Dispatcher issues fetches under a bounded-concurrency semaphore, with
// retries and per-target cancellation on a blocked error budget, per
// spec.md §4.5.
type Dispatcher struct {
	pool       *clientpool.Pool
	gate       *Gate
	sem        chan struct{}
	method     string
	maxRetries int
}

// NewDispatcher builds a dispatcher. maxConnections sizes the global
// semaphore; method is "get" or "head" per spec.md §6.
func NewDispatcher(pool *clientpool.Pool, gate *Gate, maxConnections, maxRetries int, method string) *Dispatcher {
	return &Dispatcher{
		pool:       pool,
		gate:       gate,
		sem:        make(chan struct{}, maxConnections),
		method:     strings.ToUpper(method),
		maxRetries: maxRetries,
	}
}

// Fetch runs one (target, url) request to completion, applying the
// retry policy in spec.md §4.5 step 3: up to maxRetries attempts total,
// no backoff, any exception retryable.
func (d *Dispatcher) Fetch(ctx context.Context, targetID int, url string) Outcome {
	select {
	case d.sem <- struct{}{}:
	case <-ctx.Done():
		return Outcome{Kind: OutcomeCancelled}
	}
	defer func() { <-d.sem }()

	if err := d.gate.Wait(ctx); err != nil {
		return Outcome{Kind: OutcomeCancelled}
	}

	client := d.pool.Client(targetID)

	var lastErr error
	for attempt := 0; attempt < d.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return Outcome{Kind: OutcomeCancelled}
		}

		outcome, err := d.attempt(ctx, client, url)
		if err == nil {
			return outcome
		}
		if errors.Is(err, context.Canceled) {
			return Outcome{Kind: OutcomeCancelled}
		}
		lastErr = err
	}

	return Outcome{Kind: OutcomeError, ErrKind: classifyError(lastErr), Err: lastErr}
}

func (d *Dispatcher) attempt(ctx context.Context, client *http.Client, url string) (Outcome, error) {
	req, err := http.NewRequestWithContext(ctx, d.method, url, nil)
	if err != nil {
		return Outcome{}, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return Outcome{}, err
	}
	defer resp.Body.Close()

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return Outcome{
		Kind:          OutcomeResponse,
		Status:        resp.StatusCode,
		ContentLength: resp.ContentLength,
		FinalURL:      finalURL,
		Location:      resp.Header.Get("Location"),
	}, nil
}

// classifyError tags a transport error into the kinds the warning line
// in spec.md §4.6/§7 names.
func classifyError(err error) ErrorKind {
	if err == nil {
		return ErrOther
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "EOF"), strings.Contains(msg, "connection reset"), strings.Contains(msg, "broken pipe"):
		return ErrServerDisconnected
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "no such host"), strings.Contains(msg, "network is unreachable"):
		return ErrClientOS
	default:
		return ErrOther
	}
}
