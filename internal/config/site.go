package config

// SiteConfig holds per-site settings for a single website.
// Sites are keyed by hostname in the .sitecheck file.
type SiteConfig struct {
	// InternalDomains are additional hostnames treated as part of this
	// site during crawling (e.g. a CDN or docs subdomain).
	InternalDomains []string `yaml:"internalDomains,omitempty"`

	// Headers are custom HTTP headers to include in requests to this
	// site, such as an auth header for a staging environment.
	Headers map[string]string `yaml:"headers,omitempty"`

	// Workers overrides the global worker count for this site.
	// If zero, the global setting is used.
	Workers int `yaml:"workers,omitempty"`
}

// File represents the structure of the .sitecheck configuration file.
type File struct {
	// Sites maps hostnames to their site-specific configurations.
	// Keys are bare hostnames (e.g. "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains settings applied to every site unless
	// overridden in the site-specific entry.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the configuration for a hostname, merging the
// site-specific entry over the defaults.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults

	siteConfig, ok := cf.Sites[host]
	if !ok {
		return result
	}

	if len(siteConfig.InternalDomains) > 0 {
		result.InternalDomains = siteConfig.InternalDomains
	}
	if siteConfig.Workers != 0 {
		result.Workers = siteConfig.Workers
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string)
		}
		for k, v := range siteConfig.Headers {
			result.Headers[k] = v
		}
	}

	return result
}
