package ptysession

import "strings"

// envWithout drops the entries for the given keys so they can be replaced.
func envWithout(env []string, keys ...string) []string {
	filtered := make([]string, 0, len(env))
	for _, item := range env {
		name, _, _ := strings.Cut(item, "=")
		drop := false
		for _, k := range keys {
			if name == k {
				drop = true
				break
			}
		}
		if !drop {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
