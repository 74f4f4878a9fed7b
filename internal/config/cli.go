package config

import (
	"github.com/spf13/cobra"
)

// BindFlags registers the spec.md §6 flag surface on cmd, following
// -p for --pathlist and -x for --proxy per SPEC_FULL.md §6 (the
// original CLI collides both on -p; pathtines keeps -p for the flag
// every run needs and gives --proxy its own short form).
func BindFlags(cmd *cobra.Command, flags *Flags) {
	cmd.Flags().StringVar(&flags.HTTPMethod, "http-method", "", "HTTP method: get or head")
	cmd.Flags().StringVarP(&flags.Logs, "logs", "l", "", "destination directory for the logs")
	cmd.Flags().StringVarP(&flags.URL, "url", "u", "", "target URL")
	cmd.Flags().StringVarP(&flags.URLList, "url-list", "L", "", "file with one target URL per line")
	cmd.Flags().StringVarP(&flags.Pathlist, "pathlist", "p", "", "file with one path per line")
	cmd.Flags().StringVarP(&flags.Proxy, "proxy", "x", "", "SOCKS proxy, e.g. socks5h://127.0.0.1:9050")
	cmd.Flags().IntVarP(&flags.MaxConnections, "max-connections", "m", 0, "max simultaneous connections")
	cmd.Flags().IntVarP(&flags.MaxConnectionsPerHost, "max-connections-per-host", "M", 0, "max simultaneous connections per host")
	cmd.Flags().StringVarP(&flags.Auth, "auth", "A", "", "basic HTTP auth, user:password")
	cmd.Flags().IntVarP(&flags.Timeout, "timeout", "t", 0, "request timeout in seconds")
	cmd.Flags().StringVarP(&flags.UserAgent, "user-agent", "U", "", "User-Agent header")
	cmd.Flags().IntVar(&flags.DashboardPort, "dashboard-port", 0, "serve a live progress dashboard on this port (0 disables it)")
}

// NewRootCommand builds the pathtines cobra command. run receives the
// fully resolved configuration once flags and the config file have
// been merged.
func NewRootCommand(run func(Resolved) error) *cobra.Command {
	var flags Flags

	cmd := &cobra.Command{
		Use:           "pathtines",
		Short:         "Concurrent HTTP path brute-forcer",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaults, err := LoadFileDefaults("pathtines.cfg")
			if err != nil {
				return err
			}

			resolved, err := Resolve(flags, defaults)
			if err != nil {
				return err
			}

			return run(resolved)
		},
	}

	BindFlags(cmd, &flags)
	return cmd
}
