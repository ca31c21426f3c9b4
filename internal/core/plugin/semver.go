package plugin

import (
	"strconv"
	"strings"
)

// compareSemver compares two "major.minor.patch" version strings,
// returning -1, 0, or 1. Pre-release/build metadata suffixes (after a
// '-' or '+') are ignored; this host only needs release-version
// comparison to decide whether a hot-reloaded module is newer.
func compareSemver(a, b string) int {
	pa := parseSemverCore(a)
	pb := parseSemverCore(b)
	for i := 0; i < 3; i++ {
		if pa[i] != pb[i] {
			if pa[i] < pb[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func parseSemverCore(v string) [3]int {
	v = strings.TrimPrefix(v, "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	parts := strings.SplitN(v, ".", 3)
	var out [3]int
	for i := 0; i < len(parts) && i < 3; i++ {
		n, err := strconv.Atoi(parts[i])
		if err == nil {
			out[i] = n
		}
	}
	return out
}

// isNewerVersion reports whether candidate is strictly newer than current.
func isNewerVersion(current, candidate string) bool {
	return compareSemver(candidate, current) > 0
}
