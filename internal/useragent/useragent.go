// Package useragent rotates through a pool of User-Agent strings,
// adapted from the teacher's own useragent.go (same random-pick shape,
// generalized to accept a caller-supplied pool loaded from a db file).
package useragent

import "math/rand"

// default pool used when no --user-agent / user-agents file is configured.
var defaultAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; rv:78.0) Gecko/20100101 Firefox/78.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:134.0) Gecko/20100101 Firefox/134.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_7_3) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4.1 Safari/605.1.15",
}

// Pool is a set of User-Agent strings to pick from.
type Pool struct {
	agents []string
}

// NewPool wraps agents, falling back to a built-in pool when empty.
func NewPool(agents []string) *Pool {
	if len(agents) == 0 {
		agents = defaultAgents
	}
	return &Pool{agents: agents}
}

// Pick returns a random User-Agent string from the pool.
func (p *Pool) Pick() string {
	return p.agents[rand.Intn(len(p.agents))]
}
