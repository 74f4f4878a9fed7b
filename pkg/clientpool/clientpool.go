// Package clientpool builds the N long-lived HTTP clients the scan
// engine's dispatcher draws from, all sharing one underlying connection
// pool — direct, or through a SOCKS5 proxy with local or remote DNS
// resolution. It is adapted from the teacher's pkg/wlpb, which built a
// small set of sessions sharing one *http.Transport behind a load
// balancer; here there is no balancing, only the shared-pool-plus-N-
// clients shape (spec.md §4.4).
package clientpool

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// Auth is HTTP Basic auth credentials, parsed by the caller from a
// "user:password" string (spec.md §6 --auth).
type Auth struct {
	User     string
	Password string
}

// Config configures the pool. Proxy, when non-empty, is a SOCKS URL
// such as "socks5://127.0.0.1:9050" (local DNS) or
// "socks5h://127.0.0.1:9050" (remote DNS, resolved by the proxy).
type Config struct {
	MaxConnections        int
	MaxConnectionsPerHost int
	Timeout               time.Duration
	UserAgent             string
	Auth                  *Auth
	Proxy                 string
	FollowRedirects       bool
}

// Pool is max_connections *http.Client instances sharing one
// *http.Transport (and therefore one connection pool).
type Pool struct {
	clients   []*http.Client
	transport *http.Transport
}

// New builds the pool. The shared transport caps connections per host
// at MaxConnectionsPerHost and keeps at most MaxConnections idle
// connections; it sets no cap of its own on the total number of open
// connections. In direct mode it also caches DNS lookups for 300s. In
// proxy mode it dials through SOCKS5, resolving locally for
// "socks5://" and leaving resolution to the proxy for "socks5h://".
func New(cfg Config) (*Pool, error) {
	transport, err := buildTransport(cfg)
	if err != nil {
		return nil, err
	}

	clients := make([]*http.Client, cfg.MaxConnections)
	for i := range clients {
		clients[i] = &http.Client{
			Timeout:       cfg.Timeout,
			Transport:     &headerRoundTripper{next: transport, userAgent: cfg.UserAgent, auth: cfg.Auth},
			CheckRedirect: redirectPolicy(cfg.FollowRedirects),
		}
	}

	return &Pool{clients: clients, transport: transport}, nil
}

func buildTransport(cfg Config) (*http.Transport, error) {
	tlsCfg := insecureTLSConfig()

	if cfg.Proxy == "" {
		resolver := newCachingResolver(300 * time.Second)
		dialer := &net.Dialer{Timeout: cfg.Timeout, Resolver: nil}
		return &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				return dialThroughResolver(ctx, dialer, resolver, network, addr)
			},
			MaxConnsPerHost:     cfg.MaxConnectionsPerHost,
			MaxIdleConnsPerHost: cfg.MaxConnectionsPerHost,
			MaxIdleConns:        cfg.MaxConnections,
			TLSClientConfig:     tlsCfg,
			DisableCompression:  true,
		}, nil
	}

	dialer, err := socksDialer(cfg.Proxy)
	if err != nil {
		return nil, err
	}

	return &http.Transport{
		DialContext:         dialer.DialContext,
		MaxConnsPerHost:     cfg.MaxConnectionsPerHost,
		MaxIdleConnsPerHost: cfg.MaxConnectionsPerHost,
		MaxIdleConns:        cfg.MaxConnections,
		TLSClientConfig:     tlsCfg,
		DisableCompression:  true,
	}, nil
}

// socksDialer returns a context-aware dialer for the given SOCKS URL.
// "socks5h://" leaves DNS resolution to the proxy (the hostname is
// forwarded as-is); "socks5://" resolves the hostname locally first, so
// the proxy only ever sees an IP address.
func socksDialer(proxyURL string) (contextDialer, error) {
	remoteDNS := strings.HasPrefix(proxyURL, "socks5h://")
	normalized := strings.Replace(proxyURL, "socks5h://", "socks5://", 1)

	u, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("clientpool: parse proxy %q: %w", proxyURL, err)
	}

	var auth *proxy.Auth
	if u.User != nil {
		pass, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: pass}
	}

	d, err := proxy.SOCKS5("tcp", u.Host, auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("clientpool: build SOCKS5 dialer: %w", err)
	}

	cd, ok := d.(contextDialer)
	if !ok {
		return nil, fmt.Errorf("clientpool: SOCKS5 dialer does not support DialContext")
	}

	if remoteDNS {
		return cd, nil
	}
	return &localResolveDialer{next: cd}, nil
}

type contextDialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// localResolveDialer resolves the hostname with the local resolver
// before handing an IP:port to the wrapped SOCKS5 dialer, for plain
// "socks5://" (non-"h") semantics.
type localResolveDialer struct {
	next contextDialer
}

func (d *localResolveDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}

	ips, err := net.DefaultResolver.LookupHost(ctx, host)
	if err != nil {
		return nil, err
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("clientpool: no addresses for %q", host)
	}

	return d.next.DialContext(ctx, network, net.JoinHostPort(ips[0], port))
}

// redirectPolicy maps follow_redirects to http.Client.CheckRedirect:
// when disabled, the first 3xx response is returned as-is (status and
// Location header intact) instead of being followed.
func redirectPolicy(follow bool) func(req *http.Request, via []*http.Request) error {
	if follow {
		return nil
	}
	return func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}
}

// Client returns the client assigned to targetID, spread across the
// pool by target_id mod max_connections (spec.md §4.4).
func (p *Pool) Client(targetID int) *http.Client {
	return p.clients[targetID%len(p.clients)]
}

// Close tears down the shared transport's idle connections. Per
// spec.md §3, this happens during shutdown, after in-flight requests
// have completed or been cancelled.
func (p *Pool) Close() {
	p.transport.CloseIdleConnections()
}
