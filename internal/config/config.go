// Package config resolves the scan manager's Options from the config
// file, the CLI flags, and the wordlist/user-agent files on disk. It is
// the boundary the scan engine never reaches across: generalized from
// the original's lib/config.py, which did the same INI-plus-flags
// merge before handing a plain Config object to the controller.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/dgrsk/pathtines/internal/urlutil"
	"github.com/dgrsk/pathtines/internal/useragent"
	"github.com/dgrsk/pathtines/internal/wordlist"
	"github.com/dgrsk/pathtines/pkg/clientpool"
)

// DefaultUserAgent mirrors lib/config.py's DEFAULT_UA, used when
// random_useragent is disabled and no explicit agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; rv:78.0) Gecko/20100101 Firefox/78.0"

// FileDefaults is the subset of defaults that come from the INI file
// (pathtines.cfg), generalized from helpers.go's reflect-tag-driven
// setDefaultValues against `default:"..."` struct tags.
type FileDefaults struct {
	ChunkSize             int    `default:"65535"`
	Pathlist              string `default:"pathlist.txt"`
	FollowRedirects       bool   `default:"false"`
	GiveupTimeout         int    `default:"5"`
	MaxErrors             int    `default:"5"`
	MaxRetries            int    `default:"3"`
	RandomUserAgent       bool   `default:"true"`
	UserAgent             string `default:""`
	Proxy                 string `default:""`
	MaxConnections        int    `default:"128"`
	MaxConnectionsPerHost int    `default:"16"`
	Timeout               int    `default:"30"`
}

// LoadFileDefaults parses path as an INI file with the general/connection
// sections spec.md §6 documents. A missing file or missing keys fall
// back to defaults without error; only malformed files are fatal.
func LoadFileDefaults(path string) (FileDefaults, error) {
	var d FileDefaults
	applyDefaults(&d)
	d.UserAgent = DefaultUserAgent

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return d, nil
	}

	cfg, err := ini.LoadSources(ini.LoadOptions{AllowShadows: true}, path)
	if err != nil {
		return d, fmt.Errorf("config: load %q: %w", path, err)
	}

	general := cfg.Section("general")
	d.ChunkSize = general.Key("chunk_size").MustInt(d.ChunkSize)
	d.Pathlist = general.Key("pathlist").MustString(d.Pathlist)

	conn := cfg.Section("connection")
	d.FollowRedirects = conn.Key("follow_redirects").MustBool(d.FollowRedirects)
	d.GiveupTimeout = conn.Key("giveup_timeout").MustInt(d.GiveupTimeout)
	d.MaxErrors = conn.Key("max_errors").MustInt(d.MaxErrors)
	d.MaxRetries = conn.Key("max_retries").MustInt(d.MaxRetries)
	d.RandomUserAgent = conn.Key("random_useragent").MustBool(d.RandomUserAgent)
	d.UserAgent = conn.Key("useragent").MustString(d.UserAgent)
	d.Proxy = conn.Key("proxy").MustString(d.Proxy)
	d.MaxConnections = conn.Key("max_connections").MustInt(d.MaxConnections)
	d.MaxConnectionsPerHost = conn.Key("max_connections_per_host").MustInt(d.MaxConnectionsPerHost)
	d.Timeout = conn.Key("timeout").MustInt(d.Timeout)

	return d, nil
}

// Flags is the parsed CLI surface, one field per spec.md §6 flag,
// before URL/pathlist/user-agent files have been read from disk.
type Flags struct {
	HTTPMethod            string
	Logs                  string
	URL                   string
	URLList               string
	Pathlist              string
	Proxy                 string
	MaxConnections        int
	MaxConnectionsPerHost int
	Auth                  string
	Timeout               int
	UserAgent             string
	DashboardPort         int
}

// Resolved is the fully merged configuration, ready to build a
// scan.Options from.
type Resolved struct {
	BaseURLs              []string
	Paths                 []string
	LogsDir               string
	HTTPMethod            string
	MaxErrors             int
	MaxRetries            int
	MaxConnections        int
	MaxConnectionsPerHost int
	Timeout               int
	UserAgent             string
	Auth                  *clientpool.Auth
	Proxy                 string
	FollowRedirects       bool
	ChunkSize             int
	GiveupTimeout         int
	DashboardPort         int
}

// Resolve merges CLI flags over file defaults, reads the pathlist and
// target URL(s) from disk, and picks a user-agent, mirroring
// lib/config.py's Config.__init__ end to end.
func Resolve(flags Flags, defaults FileDefaults) (Resolved, error) {
	if (flags.URL == "") == (flags.URLList == "") {
		return Resolved{}, fmt.Errorf("config: exactly one of --url or --url-list is required")
	}

	var baseURLs []string
	if flags.URL != "" {
		u, err := urlutil.Normalize(flags.URL)
		if err != nil {
			return Resolved{}, fmt.Errorf("config: --url: %w", err)
		}
		baseURLs = []string{u}
	} else {
		raw, err := wordlist.ReadLines(flags.URLList)
		if err != nil {
			return Resolved{}, fmt.Errorf("config: --url-list: %w", err)
		}
		for _, r := range raw {
			u, err := urlutil.Normalize(r)
			if err != nil {
				return Resolved{}, fmt.Errorf("config: --url-list entry %q: %w", r, err)
			}
			baseURLs = append(baseURLs, u)
		}
	}

	pathlistFile := flags.Pathlist
	if pathlistFile == "" {
		pathlistFile = filepath.Join("db", defaults.Pathlist)
	}
	paths, err := wordlist.ReadLines(pathlistFile)
	if err != nil {
		return Resolved{}, fmt.Errorf("config: --pathlist: %w", err)
	}

	proxy := flags.Proxy
	if proxy == "" {
		proxy = defaults.Proxy
	}

	maxConns := flags.MaxConnections
	if maxConns == 0 {
		maxConns = defaults.MaxConnections
	}
	maxConnsHost := flags.MaxConnectionsPerHost
	if maxConnsHost == 0 {
		maxConnsHost = defaults.MaxConnectionsPerHost
	}
	timeout := flags.Timeout
	if timeout == 0 {
		timeout = defaults.Timeout
	}

	var auth *clientpool.Auth
	if flags.Auth != "" {
		user, pass, ok := strings.Cut(flags.Auth, ":")
		if !ok {
			return Resolved{}, fmt.Errorf("config: --auth must be user:password")
		}
		auth = &clientpool.Auth{User: user, Password: pass}
	}

	agent := flags.UserAgent
	if agent == "" {
		if defaults.RandomUserAgent {
			agent = pickUserAgent()
		} else if defaults.UserAgent != "" {
			agent = defaults.UserAgent
		} else {
			agent = DefaultUserAgent
		}
	}

	method := flags.HTTPMethod
	if method == "" {
		method = "get"
	}

	logsDir := flags.Logs
	if logsDir == "" {
		logsDir = "logs"
	}

	return Resolved{
		BaseURLs:              baseURLs,
		Paths:                 paths,
		LogsDir:               logsDir,
		HTTPMethod:            method,
		MaxErrors:             defaults.MaxErrors,
		MaxRetries:            defaults.MaxRetries,
		MaxConnections:        maxConns,
		MaxConnectionsPerHost: maxConnsHost,
		Timeout:               timeout,
		UserAgent:             agent,
		Auth:                  auth,
		Proxy:                 proxy,
		FollowRedirects:       defaults.FollowRedirects,
		ChunkSize:             defaults.ChunkSize,
		GiveupTimeout:         defaults.GiveupTimeout,
		DashboardPort:         flags.DashboardPort,
	}, nil
}

// pickUserAgent mirrors lib/config.py's Config.pick_user_agent: a
// random line from db/user-agents.txt, falling back to the pool's
// built-in agents when that file is absent.
func pickUserAgent() string {
	agents, err := wordlist.ReadLines(filepath.Join("db", "user-agents.txt"))
	if err != nil || len(agents) == 0 {
		return useragent.NewPool(nil).Pick()
	}
	return useragent.NewPool(agents).Pick()
}
