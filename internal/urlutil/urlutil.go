// Package urlutil provides small pure helpers shared by the scan engine:
// base-URL normalization and human-readable byte formatting.
package urlutil

import (
	"fmt"
	"net/url"
	"strings"
)

// Normalize canonicalizes a user-supplied base URL. If the scheme is
// missing, "http://" is assumed (after stripping a leading slash), then
// the URL is parsed and re-serialized so repeated calls are idempotent.
// The result never carries a trailing slash.
func Normalize(raw string) (string, error) {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + strings.TrimLeft(raw, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("urlutil: normalize %q: %w", raw, err)
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}

// binary-prefix units, ascending.
var sizeUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB", "EiB", "ZiB", "YiB"}

// HumanSize renders a byte count with binary (1024-based) prefixes and
// one decimal place, e.g. 1536 -> "1.5KiB".
func HumanSize(n int64) string {
	size := float64(n)
	unit := 0

	for unit < len(sizeUnits)-1 && (size >= 1024 || size <= -1024) {
		size /= 1024
		unit++
	}

	return fmt.Sprintf("%.1f%s", size, sizeUnits[unit])
}
