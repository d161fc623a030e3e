// internal/engine/batch/grouping.go
package batch

import (
	"net/url"
	"strings"
)

// GroupByHost maps each host to the indexes of its URLs, in input order.
// Unparseable URLs share the "default" group.
func GroupByHost(urls []string) (map[string][]int, []string) {
	groups := make(map[string][]int)
	var order []string

	for i, raw := range urls {
		host := "default"
		if u, err := url.Parse(strings.TrimSpace(raw)); err == nil && u.Host != "" {
			host = strings.ToLower(u.Host)
		}
		if _, seen := groups[host]; !seen {
			order = append(order, host)
		}
		groups[host] = append(groups[host], i)
	}

	return groups, order
}

// Interleave returns URL indexes round-robin across hosts so consecutive
// submissions rarely hit the same storefront.
func Interleave(urls []string) []int {
	groups, order := GroupByHost(urls)
	out := make([]int, 0, len(urls))

	for round := 0; len(out) < len(urls); round++ {
		for _, host := range order {
			if idx := groups[host]; round < len(idx) {
				out = append(out, idx[round])
			}
		}
	}
	return out
}
