package config

import (
	"fmt"
	"io"
	"text/template"

	"github.com/fatih/color"

	"github.com/dgrsk/pathtines/internal/logx"
)

// Version is the three-part version the banner template interpolates,
// carried over from the original's VERSION dict in lib/controller.py.
type Version struct {
	Major    int
	Minor    int
	Revision int
}

const bannerText = `
8888888b.           888    888      888    d8b
888   Y88b          888    888      888    Y8P
888    888          888    888      888
888   d88P  8888b.  888888 88888b.  888888 888 88888b.   .d88b.  .d8888b
8888888P"      "88b 888    888 "88b 888    888 888 "88b d8P  Y8b 88K
888        .d888888 888    888  888 888    888 888  888 88888888 "Y8888b.
888        888  888 Y88b.  888  888 Y88b.  888 888  888 Y8b.          X88
888        "Y888888  "Y888 888  888  "Y888 888 888  888  "Y8888   88888P'

  v{{.Major}}.{{.Minor}}.{{.Revision}}
`

// PrintBanner renders the startup banner, mirroring lib/banner.txt's
// format(**VERSION) interpolation.
func PrintBanner(w io.Writer, v Version) error {
	t, err := template.New("banner").Parse(bannerText)
	if err != nil {
		return err
	}
	return t.Execute(w, v)
}

// PrintConfig logs the resolved run configuration, line for line the
// same set controller.py.print_config reports before starting the scan.
func PrintConfig(r Resolved) {
	logger := logx.Named("MAIN")

	logger.Info("Initializing pathtines...")
	logger.Info(fmt.Sprintf("User-Agent: %s", r.UserAgent))
	if len(r.BaseURLs) == 1 {
		logger.Info(fmt.Sprintf("Target: %s", r.BaseURLs[0]))
	} else {
		logger.Info(fmt.Sprintf("Target list: %d targets total", len(r.BaseURLs)))
	}
	logger.Info(fmt.Sprintf("HTTP method: %s", r.HTTPMethod))
	logger.Info(fmt.Sprintf("Max connections: %d", r.MaxConnections))
	logger.Info(fmt.Sprintf("Max retries: %d", r.MaxRetries))
	logger.Info(fmt.Sprintf("Max errors per host: %d", r.MaxErrors))
	logger.Info(fmt.Sprintf("Word list size: %d", len(r.Paths)))
	logger.Info(fmt.Sprintf("Requests group size: %d", r.ChunkSize))
	logger.Info(fmt.Sprintf("Requests total: %d", len(r.Paths)*len(r.BaseURLs)))

	if r.Proxy != "" {
		color.Yellow("Using socks proxy: %s", r.Proxy)
	} else {
		logger.Info("Proxy: none")
	}
}
