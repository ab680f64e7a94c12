package player

import (
	"net/url"
	"strings"
)

// NavigationPolicy decides whether the embedded player frame may navigate to
// a URL. Embed providers are notorious for popup and redirect chains, so the
// default policy only lets the known provider hosts through.
type NavigationPolicy interface {
	Allow(rawURL string) bool
}

// HostAllowPolicy permits navigation to an explicit set of hosts and their
// subdomains. Everything else, including unparseable URLs, is blocked.
type HostAllowPolicy struct {
	hosts []string
}

// DefaultNavigationPolicy covers the two embed providers.
func DefaultNavigationPolicy() *HostAllowPolicy {
	return NewHostAllowPolicy("vidsrc.to", "vidsrc.me")
}

func NewHostAllowPolicy(hosts ...string) *HostAllowPolicy {
	normalized := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			normalized = append(normalized, h)
		}
	}
	return &HostAllowPolicy{hosts: normalized}
}

func (p *HostAllowPolicy) Allow(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	for _, allowed := range p.hosts {
		if host == allowed || strings.HasSuffix(host, "."+allowed) {
			return true
		}
	}
	return false
}
