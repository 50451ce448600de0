// Package recipient builds email header values from deploy notification
// recipient lists.
package recipient

import (
	"fmt"
	"sort"
	"strings"
)

// Normalize turns a list of recipient fragments into a single header value.
// Entries that already carry a domain pass through unchanged; bare fragments
// get "@" + defaultDomain appended. The result is deduplicated by exact
// string match, sorted ascending and joined with "," without spaces.
//
// Pure function, no I/O. The only failure mode is a bare fragment with no
// default domain to qualify it, which is a configuration error.
func Normalize(recipients []string, defaultDomain string) (string, error) {
	out := make([]string, 0, len(recipients))
	seen := make(map[string]struct{}, len(recipients))

	for _, r := range recipients {
		if !qualified(r) {
			if defaultDomain == "" {
				return "", fmt.Errorf("recipient %q has no domain and no default recipient domain is configured", r)
			}
			r = r + "@" + defaultDomain
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}

	sort.Strings(out)
	return strings.Join(out, ","), nil
}

// qualified reports whether the fragment contains "@" followed by at least
// one character.
func qualified(s string) bool {
	i := strings.Index(s, "@")
	return i >= 0 && i < len(s)-1
}
