package config

import (
	"github.com/ksmm-dev/ksmm/pkg/manifest"
)

// Config is the complete settings tree
type Config struct {
	Build    Build    `koanf:"build" toml:"build"`
	Signer   Signer   `koanf:"signer" toml:"signer"`
	Manifest Manifest `koanf:"manifest" toml:"manifest"`
}

// Build holds build pipeline locations
type Build struct {
	OutputDir   string   `koanf:"output_dir" toml:"output_dir"`
	ReleaseDir  string   `koanf:"release_dir" toml:"release_dir"`
	IgnoreFile  string   `koanf:"ignore_file" toml:"ignore_file"`
	ExtraIgnore []string `koanf:"extra_ignore" toml:"extra_ignore"`
}

// Signer holds signing settings
type Signer struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Binary  string `koanf:"binary" toml:"binary"`
	KeyDir  string `koanf:"key_dir" toml:"key_dir"`
}

// Manifest holds the hosts update.json links point at
type Manifest struct {
	RawBaseURL    string `koanf:"raw_base_url" toml:"raw_base_url"`
	GitHubBaseURL string `koanf:"github_base_url" toml:"github_base_url"`
	Branch        string `koanf:"branch" toml:"branch"`
}

// URLs converts the manifest settings for the manifest package
func (m Manifest) URLs() manifest.URLs {
	return manifest.URLs{
		RawBase:    m.RawBaseURL,
		GitHubBase: m.GitHubBaseURL,
		Branch:     m.Branch,
	}
}
