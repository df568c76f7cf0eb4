// Package discovery implements the periodic pipeline that polls external
// job sources, filters and deduplicates results, and lands them in the
// triage inbox.
package discovery

import "strings"

// ContainsRedFlag reports whether any red-flag term appears, case
// insensitively, anywhere in the combined title + company + description
// text. An empty flag list never matches. Matching offers are discarded
// before they reach storage.
func ContainsRedFlag(title, company, description string, redFlags []string) bool {
	if len(redFlags) == 0 {
		return false
	}
	combined := strings.ToLower(title + " " + company + " " + description)
	for _, flag := range redFlags {
		if flag == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(flag)) {
			return true
		}
	}
	return false
}
