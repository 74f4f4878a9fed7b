package scan

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgrsk/pathtines/internal/logx"
	"github.com/dgrsk/pathtines/pkg/clientpool"
)

// Options collects everything the manager needs to run a scan, already
// resolved from CLI flags and config file (spec.md §6). It deliberately
// has no notion of argument parsing or file formats: that's internal/config's
// job (SPEC_FULL.md §2.1).
type Options struct {
	BaseURLs       []string
	Paths          []string
	LogsDir        string
	Method         string
	MaxErrors      int
	MaxRetries     int
	MaxConns       int
	MaxConnsHost   int
	Timeout        time.Duration
	UserAgent      string
	Auth           *clientpool.Auth
	Proxy          string
	FollowRedirect bool
	ChunkSize      int
	GiveupTimeout  time.Duration
	ProgressEvery  time.Duration
}

// Manager wires a full scan together: targets, client pool, request
// pipeline, dispatcher, classifier, progress counter, and the
// pause/resume/abort control plane (spec.md §2, C9).
type Manager struct {
	opts     Options
	targets  []*Target
	pool     *clientpool.Pool
	progress *Progress
	logger   logEntry
}

// Progress exposes the run's shared progress counter, e.g. so an
// optional dashboard can feed off the same numbers the stderr bar
// renders.
func (m *Manager) Progress() *Progress {
	return m.progress
}

// NewManager constructs targets and the client pool from opts. The
// caller owns calling Run afterward.
func NewManager(opts Options) (*Manager, error) {
	if err := os.MkdirAll(opts.LogsDir, 0o755); err != nil {
		return nil, fmt.Errorf("scan: create logs dir: %w", err)
	}

	targets := make([]*Target, 0, len(opts.BaseURLs))
	for i, base := range opts.BaseURLs {
		t, err := NewTarget(i, base, opts.LogsDir, opts.MaxErrors)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}

	pool, err := clientpool.New(clientpool.Config{
		MaxConnections:        opts.MaxConns,
		MaxConnectionsPerHost: opts.MaxConnsHost,
		Timeout:               opts.Timeout,
		UserAgent:             opts.UserAgent,
		Auth:                  opts.Auth,
		Proxy:                 opts.Proxy,
		FollowRedirects:       opts.FollowRedirect,
	})
	if err != nil {
		for _, t := range targets {
			t.Stop()
		}
		return nil, err
	}

	total := int64(len(opts.Paths)) * int64(len(targets))

	return &Manager{
		opts:     opts,
		targets:  targets,
		pool:     pool,
		progress: NewProgress(total),
		logger:   logx.Named("SCAN"),
	}, nil
}

// Run drives the scan to completion: it generates the interleaved
// request stream, dispatches each chunk under the bounded-concurrency
// dispatcher, classifies every outcome, and honors pause/resume/abort
// via the Controller. It returns once every target has either finished
// its wordlist or been blocked, or the run was cancelled (spec.md §5).
func (m *Manager) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl := NewController(cancel)
	go ctrl.Run()
	defer ctrl.Stop()

	progressEvery := m.opts.ProgressEvery
	if progressEvery <= 0 {
		progressEvery = 200 * time.Millisecond
	}
	stopProgress := make(chan struct{})
	go m.progress.Render(os.Stderr, progressEvery, stopProgress)
	defer close(stopProgress)

	disp := NewDispatcher(m.pool, ctrl.Gate, m.opts.MaxConns, m.opts.MaxRetries, m.opts.Method)
	classifier := NewClassifier(m.progress)

	byID := make(map[int]*Target, len(m.targets))
	for _, t := range m.targets {
		byID[t.ID] = t
	}

	targetCtx := make(map[int]context.Context, len(m.targets))
	targetCancel := make(map[int]context.CancelFunc, len(m.targets))
	for _, t := range m.targets {
		tc, tcancel := context.WithCancel(runCtx)
		targetCtx[t.ID] = tc
		targetCancel[t.ID] = tcancel
	}
	defer func() {
		for _, c := range targetCancel {
			c()
		}
	}()

	defer func() {
		for _, t := range m.targets {
			t.Stop()
		}
		m.pool.Close()
	}()

	reqs := Generate(m.targets, m.opts.Paths)
	chunks := Chunks(reqs, m.opts.ChunkSize)

	var chunkErr error
	for chunk := range chunks {
		if err := m.processChunk(runCtx, targetCtx, targetCancel, byID, disp, classifier, chunk); err != nil {
			chunkErr = err
			break
		}
		if runCtx.Err() != nil {
			chunkErr = runCtx.Err()
			break
		}
	}

	if chunkErr != nil {
		m.logger.Warn(fmt.Sprintf("Shutting down, waiting %s for in-flight work...", m.opts.GiveupTimeout))
		for _, t := range m.targets {
			t.Stop()
		}
		for range chunks {
			// Drain so the generator/chunker goroutines can unblock and
			// exit; every target is stopped, so remaining slots resolve
			// to dropped (⊥) immediately with no network I/O.
		}
		time.Sleep(m.opts.GiveupTimeout)
		return chunkErr
	}

	m.logger.Info("Scan complete")
	return nil
}

// processChunk dispatches one chunk's slots concurrently, advancing
// progress immediately for dropped slots and cancelling a target's
// remaining in-flight fetches the moment its error budget is exceeded
// (spec.md §4.2, §4.5).
func (m *Manager) processChunk(
	runCtx context.Context,
	targetCtx map[int]context.Context,
	targetCancel map[int]context.CancelFunc,
	byID map[int]*Target,
	disp *Dispatcher,
	classifier *Classifier,
	chunk []Request,
) error {
	var wg sync.WaitGroup

	for _, r := range chunk {
		if r.Dropped {
			m.progress.Add(1)
			continue
		}

		t := byID[r.TargetID]
		if t == nil || !t.Running() {
			m.progress.Add(1)
			continue
		}

		tctx := targetCtx[r.TargetID]
		if tctx.Err() != nil {
			m.progress.Add(1)
			continue
		}

		wg.Add(1)
		go func(t *Target, url string, tctx context.Context) {
			defer wg.Done()
			out := disp.Fetch(tctx, t.ID, url)
			res := classifier.Classify(t, url, out)
			if res.Blocked {
				t.Stop()
				// Cancel this target's in-flight fetches the instant it
				// blocks, not after the chunk drains (spec.md §4.2): a
				// sibling goroutine already dispatched to this target in
				// this same chunk must be interrupted, not left to run
				// to completion on its own.
				if cancel := targetCancel[t.ID]; cancel != nil {
					cancel()
				}
			}
		}(t, r.URL, tctx)
	}

	wg.Wait()

	return runCtx.Err()
}
