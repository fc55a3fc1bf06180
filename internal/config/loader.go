package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file looked up in the working and
// home directories.
const DefaultConfigFile = ".wordscraper"

// ErrConfigNotFound is returned by LoadConfigFile for a missing file.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadConfigFile parses the YAML file at path. Site keys are lower-cased to
// match Config.TargetHost.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrConfigNotFound
	}
	if err != nil {
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := cf.Defaults.validate(); err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}

	sites := make(map[string]SiteConfig, len(cf.Sites))
	for host, site := range cf.Sites {
		if err := site.validate(); err != nil {
			return nil, fmt.Errorf("site %s: %w", host, err)
		}
		sites[strings.ToLower(host)] = site
	}
	cf.Sites = sites

	return &cf, nil
}

func (s SiteConfig) validate() error {
	switch {
	case s.Depth < 0:
		return ErrNegativeDepth
	case s.MaxPages < 0:
		return ErrInvalidMaxPages
	}
	return nil
}

// FindConfigFile resolves the configuration file to load, or "" when there
// is none. An explicit configPath must exist. Otherwise the first existing
// of ./.wordscraper, ~/.wordscraper and $XDG_CONFIG_HOME/wordscraper/config.yaml
// is used.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if fileExists(configPath) {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), "config.yaml"))

	for _, c := range candidates {
		if fileExists(c) {
			return c
		}
	}
	return ""
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
