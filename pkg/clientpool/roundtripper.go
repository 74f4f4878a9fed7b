package clientpool

import "net/http"

// headerRoundTripper applies the client's configured User-Agent and
// optional Basic auth to every request, the per-client defaults
// aiohttp.ClientSession(headers=..., auth=...) set once at session
// construction (spec.md §4.4).
type headerRoundTripper struct {
	next      http.RoundTripper
	userAgent string
	auth      *Auth
}

func (rt *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	if rt.userAgent != "" {
		cloned.Header.Set("User-Agent", rt.userAgent)
	}
	if rt.auth != nil {
		cloned.SetBasicAuth(rt.auth.User, rt.auth.Password)
	}
	return rt.next.RoundTrip(cloned)
}
