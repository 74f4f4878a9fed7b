package scan

import (
	"bufio"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Target holds per-target state: base URL, error budget, running flag,
// and the append-only log sink. See spec.md §3/§4.1.
type Target struct {
	ID      int
	BaseURL string

	maxErrors int

	errCount atomic.Int64
	running  atomic.Bool

	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
}

// NewTarget creates a target and opens its log sink. The log file name
// is derived from the base URL's host at construction time, per
// spec.md §4.1 ("Timestamp captured at construction, not at close").
func NewTarget(id int, baseURL, logsDir string, maxErrors int) (*Target, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("scan: target %d: parse %q: %w", id, baseURL, err)
	}

	host := strings.ToLower(u.Host)
	host = strings.ReplaceAll(host, ":", "_")

	ts := time.Now().Format("02-01-06_15_04")
	name := fmt.Sprintf("%s_%s.txt", ts, host)

	f, err := os.Create(filepath.Join(logsDir, name))
	if err != nil {
		return nil, fmt.Errorf("scan: target %d: create log: %w", id, err)
	}

	t := &Target{
		ID:        id,
		BaseURL:   baseURL,
		maxErrors: maxErrors,
		file:      f,
		w:         bufio.NewWriter(f),
	}
	t.running.Store(true)
	return t, nil
}

// Host returns the target's netloc, used in warning lines.
func (t *Target) Host() string {
	u, err := url.Parse(t.BaseURL)
	if err != nil {
		return t.BaseURL
	}
	return u.Host
}

// Running reports whether the target still accepts fetches.
func (t *Target) Running() bool {
	return t.running.Load()
}

// SaveHit appends a line to the log sink. No-op once the target has
// stopped (spec.md §4.1 precondition: running = true).
func (t *Target) SaveHit(line string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.Running() {
		return nil
	}
	_, err := t.w.WriteString(line + "\n")
	return err
}

// PathAt resolves one wordlist path to an absolute URL, or reports
// ok=false (a ⊥ slot) if the target has already stopped. This is the
// pull side of spec.md §4.1's link_generator: the pipeline calls it
// lazily, once per (target, path) pair, never pre-materializing.
func (t *Target) PathAt(path string) (absoluteURL string, ok bool) {
	if !t.Running() {
		return "", false
	}
	return t.BaseURL + "/" + path, true
}

// IncrementErrors charges one error to the budget and returns the new
// count.
func (t *Target) IncrementErrors() int64 {
	return t.errCount.Add(1)
}

// ErrorBudgetExceeded reports whether the charged error count is
// strictly greater than maxErrors (spec.md §4.2, §8 invariant 2).
func (t *Target) ErrorBudgetExceeded() bool {
	return t.errCount.Load() > int64(t.maxErrors)
}

// Stop transitions running true -> false, idempotently, flushing and
// closing the log sink exactly once.
func (t *Target) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running.CompareAndSwap(true, false) {
		return
	}
	t.w.Flush()
	t.file.Close()
}
