package domain

import "regexp"

// releasePattern matches released versions: optional "v", then MAJOR.MINOR.PATCH.
var releasePattern = regexp.MustCompile(`^v?[0-9]+\.[0-9]+\.[0-9]+$`)

// IsRelease reports whether v is a released (non-prerelease, non-build) version.
func IsRelease(v string) bool {
	return releasePattern.MatchString(v)
}

// EligibleVersions returns the release versions of vs, keeping upstream order.
func EligibleVersions(vs []string) []string {
	var out []string
	for _, v := range vs {
		if IsRelease(v) {
			out = append(out, v)
		}
	}
	return out
}
