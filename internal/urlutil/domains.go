package urlutil

import (
	"sort"
	"strings"
)

// DomainSet holds the hostnames considered internal to a crawl.
// A link whose host is a member expands the crawl frontier; all other
// hosts are checked but never crawled.
type DomainSet struct {
	// hosts maps lowercased hostnames to membership.
	hosts map[string]struct{}
}

// NewDomainSet builds the internal-domain set for a crawl.
//
// The set always contains the base host and its www-toggled variant:
// "www." is stripped if present, added if absent. This is exactly one
// toggle, not a wildcard; subdomains not explicitly listed stay external.
// Extra hosts are case-folded and trimmed before being added.
func NewDomainSet(baseHost string, extraHosts []string) *DomainSet {
	hosts := make(map[string]struct{})

	if base := strings.ToLower(strings.TrimSpace(baseHost)); base != "" {
		hosts[base] = struct{}{}
		if toggled, ok := strings.CutPrefix(base, "www."); ok {
			if toggled != "" {
				hosts[toggled] = struct{}{}
			}
		} else {
			hosts["www."+base] = struct{}{}
		}
	}

	for _, host := range extraHosts {
		if cleaned := strings.ToLower(strings.TrimSpace(host)); cleaned != "" {
			hosts[cleaned] = struct{}{}
		}
	}

	return &DomainSet{hosts: hosts}
}

// Contains reports whether the host is internal to the crawl.
// Membership is a case-insensitive exact match.
func (s *DomainSet) Contains(host string) bool {
	_, ok := s.hosts[strings.ToLower(strings.TrimSpace(host))]
	return ok
}

// Hosts returns the member hostnames in sorted order.
// Used for logging and for persisting the crawl configuration.
func (s *DomainSet) Hosts() []string {
	hosts := make([]string, 0, len(s.hosts))
	for host := range s.hosts {
		hosts = append(hosts, host)
	}
	sort.Strings(hosts)
	return hosts
}

// IsLinkedInHost reports whether the host belongs to LinkedIn.
// LinkedIn answers HTTP 999 to automated clients; the engine downgrades
// those failures to warnings instead of hard issues.
func IsLinkedInHost(host string) bool {
	return strings.HasSuffix(strings.ToLower(host), "linkedin.com")
}
