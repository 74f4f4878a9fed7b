package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgrsk/pathtines/internal/config"
	"github.com/dgrsk/pathtines/internal/logx"
	"github.com/dgrsk/pathtines/internal/scan"
	"github.com/dgrsk/pathtines/internal/webui"
)

// version is bumped by hand; pathtines has no release automation yet.
var version = config.Version{Major: 0, Minor: 1, Revision: 0}

// runtimeErr wraps a failure that happened after flags parsed cleanly,
// so main can tell it apart from a cli-usage error and map it to exit
// code 1 instead of 2 (SPEC_FULL.md §4).
type runtimeErr struct{ err error }

func (e *runtimeErr) Error() string { return e.err.Error() }
func (e *runtimeErr) Unwrap() error { return e.err }

func main() {
	os.Exit(run())
}

func run() int {
	cmd := config.NewRootCommand(runScan)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var rt *runtimeErr
		if errors.As(err, &rt) {
			return 1
		}
		return 2
	}
	return 0
}

func runScan(resolved config.Resolved) error {
	logger := logx.Named("MAIN")

	config.PrintBanner(os.Stdout, version)
	config.PrintConfig(resolved)

	mgr, err := scan.NewManager(scan.Options{
		BaseURLs:       resolved.BaseURLs,
		Paths:          resolved.Paths,
		LogsDir:        resolved.LogsDir,
		Method:         resolved.HTTPMethod,
		MaxErrors:      resolved.MaxErrors,
		MaxRetries:     resolved.MaxRetries,
		MaxConns:       resolved.MaxConnections,
		MaxConnsHost:   resolved.MaxConnectionsPerHost,
		Timeout:        time.Duration(resolved.Timeout) * time.Second,
		UserAgent:      resolved.UserAgent,
		Auth:           resolved.Auth,
		Proxy:          resolved.Proxy,
		FollowRedirect: resolved.FollowRedirects,
		ChunkSize:      resolved.ChunkSize,
		GiveupTimeout:  time.Duration(resolved.GiveupTimeout) * time.Second,
	})
	if err != nil {
		return &runtimeErr{err}
	}

	if resolved.DashboardPort != 0 {
		dash := webui.NewDashboard()
		stopFeed := make(chan struct{})
		defer close(stopFeed)

		go func() {
			if err := dash.ListenAndServe(resolved.DashboardPort); err != nil {
				logger.Warn(fmt.Sprintf("Dashboard stopped: %s", err))
			}
		}()
		go dash.RunProgressFeed(mgr.Progress(), 200*time.Millisecond, stopFeed)

		logger.Info(fmt.Sprintf("Dashboard: http://127.0.0.1:%d", resolved.DashboardPort))
	}

	err = mgr.Run(context.Background())
	switch {
	case err == nil:
		logger.Info("Scan completed")
		return nil
	case errors.Is(err, context.Canceled):
		logger.Info("Scan cancelled by user")
		return nil
	default:
		return &runtimeErr{err}
	}
}
