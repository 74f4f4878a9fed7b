// Package webui is the optional live progress dashboard, adapted from
// the teacher's web.go: the same upgrader/clients/broadcast shape and
// Payload{Kind,Body} envelope, now broadcasting the scan's overall
// progress counter instead of load-balancer stats; no per-target state
// is broadcast.
package webui

import (
	"net/http"
	"path"
	"runtime"
	"strconv"
	"sync"
	"text/template"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dgrsk/pathtines/internal/logx"
)

// Payload is one message broadcast to every connected dashboard client.
type Payload struct {
	Kind string `json:"kind"`
	Body any    `json:"body"`
}

// ProgressSource is the subset of scan.Progress the dashboard feed
// needs, kept as an interface so webui does not import internal/scan.
type ProgressSource interface {
	Done() int64
	Total() int64
}

// Dashboard serves the index page and a websocket feed of progress
// updates, mirroring listenAndServe/wsHandler/handleMessages/serveIndex
// from web.go.
type Dashboard struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	broadcast chan Payload
	mu        sync.Mutex
	logger    interface{ Warn(args ...interface{}) }
}

// NewDashboard creates a Dashboard and starts its broadcast loop; call
// ListenAndServe (or wrap Handler in an httptest.Server) to accept
// connections.
func NewDashboard() *Dashboard {
	d := &Dashboard{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Payload),
		logger:    logx.Named("WEB"),
	}
	go d.handleMessages()
	return d
}

// Handler builds the dashboard's http.Handler: the index page, static
// assets, and the websocket feed. Split out from ListenAndServe so
// tests can drive it through httptest.Server.
func (d *Dashboard) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", d.serveIndex)
	mux.HandleFunc("/ws", d.wsHandler)

	fs := http.FileServer(http.Dir(webDir()))
	mux.Handle("/static/", http.StripPrefix("/static/", fs))
	return mux
}

// ListenAndServe starts the HTTP server on port, serving the dashboard
// page, its static assets, and the websocket feed. It blocks until the
// server stops or errors.
func (d *Dashboard) ListenAndServe(port int) error {
	return http.ListenAndServe(":"+strconv.Itoa(port), d.Handler())
}

// Broadcast hands one payload to the broadcast loop, which writes it to
// every connected client. It never blocks: the payload is dropped if the
// loop is still busy with the previous one.
func (d *Dashboard) Broadcast(kind string, body any) {
	select {
	case d.broadcast <- Payload{Kind: kind, Body: body}:
	default:
	}
}

// RunProgressFeed periodically broadcasts the current progress counter
// until stop is closed, giving the dashboard the same counter the
// stderr progress bar renders (SPEC_FULL.md §3, no second counter).
func (d *Dashboard) RunProgressFeed(p ProgressSource, interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.Broadcast("progress", map[string]int64{"done": p.Done(), "total": p.Total()})
		case <-stop:
			return
		}
	}
}

func (d *Dashboard) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.Warn("websocket upgrade failed: ", err)
		return
	}

	d.mu.Lock()
	d.clients[conn] = true
	d.mu.Unlock()
}

func (d *Dashboard) handleMessages() {
	for payload := range d.broadcast {
		d.mu.Lock()
		for c := range d.clients {
			if err := c.WriteJSON(payload); err != nil {
				c.Close()
				delete(d.clients, c)
			}
		}
		d.mu.Unlock()
	}
}

func (d *Dashboard) serveIndex(w http.ResponseWriter, r *http.Request) {
	t, err := template.ParseFiles(path.Join(webDir(), "template.html"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if err := t.Execute(w, "ws://"+r.Host+"/ws"); err != nil {
		d.logger.Warn("template execute failed: ", err)
	}
}

func webDir() string {
	_, file, _, _ := runtime.Caller(0)
	return path.Join(path.Dir(file), "web")
}
