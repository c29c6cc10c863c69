package searchclient

import "strings"

// DedupePages removes pages whose normalized URL has already been seen,
// preserving order. Adapted from the teacher's search_router.go
// MergeSearchResults/normalizeURL, trimmed to the single-source case this
// orchestrator needs (no route priority boosting, no per-domain cap).
func DedupePages(pages []Page) []Page {
	seen := make(map[string]bool, len(pages))
	out := make([]Page, 0, len(pages))
	for _, p := range pages {
		key := normalizeURL(p.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}

// normalizeURL strips a trailing slash so "https://x.com/a" and
// "https://x.com/a/" dedupe together.
func normalizeURL(url string) string {
	return strings.TrimSuffix(url, "/")
}

// ExtractDomain returns the host portion of url. No per-domain cap is
// applied to search results in this package.
func ExtractDomain(url string) string {
	rest := url
	if after, ok := strings.CutPrefix(rest, "https://"); ok {
		rest = after
	} else if after, ok := strings.CutPrefix(rest, "http://"); ok {
		rest = after
	}
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// HasSubstantialContent reports whether a page's markdown body clears the
// spec §4.7 100-char threshold used to decide whether a search produced
// anything worth summarizing.
func HasSubstantialContent(p Page) bool {
	return len(strings.TrimSpace(p.Markdown)) > 100
}

// AnySubstantial reports whether at least one page in pages has
// substantial content.
func AnySubstantial(pages []Page) bool {
	for _, p := range pages {
		if HasSubstantialContent(p) {
			return true
		}
	}
	return false
}
