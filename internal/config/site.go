package config

// SiteConfig is one entry of the configuration file. Zero values mean
// "not set" and leave the command line or defaults in effect.
type SiteConfig struct {
	Depth     int    `yaml:"depth,omitempty"`
	MaxPages  int    `yaml:"maxPages,omitempty"`
	UserAgent string `yaml:"userAgent,omitempty"`

	// IgnorePatterns are path globs the crawler never fetches.
	IgnorePatterns []string `yaml:"ignorePatterns,omitempty"`
	// FollowPatterns, when set, restrict the crawl to matching paths. The
	// seed is always fetched.
	FollowPatterns []string `yaml:"followPatterns,omitempty"`
}

// File is the parsed .wordscraper file.
type File struct {
	// Sites is keyed by lower-case host[:port], without scheme.
	Sites    map[string]SiteConfig `yaml:"sites,omitempty"`
	Defaults SiteConfig            `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns Defaults overlaid with the non-zero fields of the
// entry for host.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	merged := cf.Defaults
	site, ok := cf.Sites[host]
	if !ok {
		return merged
	}

	merged.Depth = firstNonZero(site.Depth, merged.Depth)
	merged.MaxPages = firstNonZero(site.MaxPages, merged.MaxPages)
	merged.UserAgent = firstNonZero(site.UserAgent, merged.UserAgent)
	if site.IgnorePatterns != nil {
		merged.IgnorePatterns = site.IgnorePatterns
	}
	if site.FollowPatterns != nil {
		merged.FollowPatterns = site.FollowPatterns
	}
	return merged
}

func firstNonZero[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
