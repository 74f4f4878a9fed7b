package scan

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fatih/color"

	"github.com/dgrsk/pathtines/internal/logx"
)

// Gate is the binary pause latch every fetch awaits between acquiring
// its semaphore permit and issuing the request (spec.md §4.7). It is
// "monotone-free": it may be toggled open/closed repeatedly over a run.
type Gate struct {
	mu     sync.Mutex
	open   bool
	waitCh chan struct{}
}

// NewGate creates an initially-open gate.
func NewGate() *Gate {
	g := &Gate{open: true, waitCh: make(chan struct{})}
	close(g.waitCh)
	return g
}

// Close shuts the gate; fetches calling Wait will block until Open.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.open {
		return
	}
	g.open = false
	g.waitCh = make(chan struct{})
}

// Open reopens the gate, releasing any fetch blocked in Wait.
func (g *Gate) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.open {
		return
	}
	g.open = true
	close(g.waitCh)
}

// Wait blocks until the gate is open or ctx is cancelled.
func (g *Gate) Wait(ctx context.Context) error {
	g.mu.Lock()
	ch := g.waitCh
	g.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Controller owns the signal handlers and the pause menu, driving the
// Gate and the run's cancellation, per spec.md §4.7.
type Controller struct {
	Gate   *Gate
	cancel context.CancelFunc
	logger interface {
		Warn(args ...interface{})
		Info(args ...interface{})
	}

	sigCh   chan os.Signal
	stopped chan struct{}
	once    sync.Once
}

// NewController wires a Controller around ctx's cancellation.
func NewController(cancel context.CancelFunc) *Controller {
	return &Controller{
		Gate:    NewGate(),
		cancel:  cancel,
		logger:  logx.Named("SCAN"),
		sigCh:   make(chan os.Signal, 1),
		stopped: make(chan struct{}),
	}
}

// Run installs signal handlers and processes them until Stop is called
// or a signal makes it cancel the run itself.
func (c *Controller) Run() {
	signal.Notify(c.sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(c.sigCh)

	for {
		select {
		case sig := <-c.sigCh:
			switch sig {
			case syscall.SIGHUP, syscall.SIGTERM:
				c.logger.Warn(fmt.Sprintf("Received exit signal %v...", sig))
				c.cancel()
				return
			case syscall.SIGINT:
				if c.interruptMenu() {
					return
				}
			}
		case <-c.stopped:
			return
		}
	}
}

// Stop releases Run, used when the scan completes on its own.
func (c *Controller) Stop() {
	c.once.Do(func() { close(c.stopped) })
}

// interruptMenu implements the "[e]xit / [c]ontinue" pause prompt.
// Returns true if the caller should shut down (the user chose exit, or
// stdin cannot be read interactively).
//
// SIGINT is deregistered for the menu's duration, so a second Ctrl-C
// while blocked on the prompt's read propagates as a hard interrupt
// instead of queueing into sigCh (spec.md §4.7).
func (c *Controller) interruptMenu() bool {
	c.Gate.Close()
	color.Yellow("CTRL+C detected: pausing pathtines...")
	signal.Stop(c.sigCh)

	if !isInteractive() {
		c.logger.Warn("stdin is not a TTY, cannot prompt: shutting down")
		c.cancel()
		return true
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("[e]xit / [c]ontinue: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			c.cancel()
			return true
		}

		switch trimChoice(line) {
		case "e":
			c.cancel()
			return true
		case "c":
			color.Yellow("Resuming pathtines...")
			c.Gate.Open()
			signal.Notify(c.sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
			return false
		default:
			continue
		}
	}
}

func trimChoice(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	return s
}

// isInteractive reports whether stdin looks like a terminal. The spec
// leaves non-TTY behavior undefined upstream; pathtines degrades to an
// immediate shutdown rather than blocking on a read that can never
// complete (SPEC_FULL.md §6).
func isInteractive() bool {
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
