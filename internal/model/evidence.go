package model

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// EvidenceItem is a single search result used as synthesis input.
// Items have no identity of their own; their position in the evidence
// slice is their rank.
type EvidenceItem struct {
	// Title is the page title reported by the search provider.
	Title string `json:"title"`

	// URL is the address of the source page.
	URL string `json:"url"`

	// Snippet is the provider's extract of the page content.
	Snippet string `json:"snippet"`
}

// Host returns the lower-cased ASCII (punycode) host name of the item's URL
// without port, or an empty string if the URL cannot be parsed. Hosts that
// fail IDNA conversion are returned as written.
func (e EvidenceItem) Host() string {
	u, err := url.Parse(strings.TrimSpace(e.URL))
	if err != nil {
		return ""
	}
	host := strings.TrimSuffix(strings.ToLower(u.Hostname()), ".")
	if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
		return ascii
	}
	return host
}

// WithinDomains reports whether the item's host equals one of the domains or
// is a subdomain of one. An empty domain list matches everything.
func (e EvidenceItem) WithinDomains(domains []string) bool {
	if len(domains) == 0 {
		return true
	}
	host := e.Host()
	if host == "" {
		return false
	}
	for _, d := range domains {
		d = strings.TrimSuffix(strings.ToLower(d), ".")
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// Len returns the rune count that the item contributes to a prompt.
func (e EvidenceItem) Len() int {
	return len([]rune(e.Title)) + len([]rune(e.URL)) + len([]rune(e.Snippet))
}
