// Package manifest generates the update.json file the KernelSU manager
// polls to discover new releases of a module.
package manifest

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ksmm-dev/ksmm/pkg/archive"
	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/logging"
	"github.com/ksmm-dev/ksmm/pkg/metadata"
	"github.com/ksmm-dev/ksmm/pkg/types"
	"github.com/ksmm-dev/ksmm/pkg/vcs"
)

// Owner and repository used when updateJson does not point at GitHub
const (
	FallbackOwner = "unknown"
	FallbackRepo  = "repo"
)

var githubRepoPattern = regexp.MustCompile(`github\.com[/:]([^/]+)/([^/]+)`)

// Manifest is the update.json document. Field order is the output order.
type Manifest struct {
	Changelog   string `json:"changelog"`
	Version     string `json:"version"`
	VersionCode int    `json:"versionCode"`
	ZipURL      string `json:"zipUrl"`
}

// URLs holds the hosts the manifest links point at
type URLs struct {
	RawBase    string
	GitHubBase string
	Branch     string
}

// DefaultURLs points at github.com
func DefaultURLs() URLs {
	return URLs{
		RawBase:    "https://raw.githubusercontent.com",
		GitHubBase: "https://github.com",
		Branch:     "main",
	}
}

// ParseGitHub extracts owner and repository from a GitHub URL. Anything
// it cannot parse yields the fallback pair.
func ParseGitHub(url string) (owner, repo string) {
	m := githubRepoPattern.FindStringSubmatch(url)
	if m == nil {
		return FallbackOwner, FallbackRepo
	}
	return m[1], strings.TrimSuffix(m[2], ".git")
}

// Repository picks the GitHub owner and repository the manifest links
// point at: the updateJson URL when module.prop sets one, otherwise the
// origin remote of the checkout.
func Repository(props metadata.Props, remote string) (owner, repo string) {
	if updateJSON, ok := props.Get(metadata.KeyUpdateJSON); ok {
		return ParseGitHub(updateJSON)
	}
	return ParseGitHub(remote)
}

// New derives the manifest for a module snapshot, taking the commit and
// remote from rev
func New(props metadata.Props, rev vcs.Reader, urls URLs) (Manifest, error) {
	code, err := props.VersionCodeInt()
	if err != nil {
		return Manifest{}, err
	}

	defaults := DefaultURLs()
	if urls.RawBase == "" {
		urls.RawBase = defaults.RawBase
	}
	if urls.GitHubBase == "" {
		urls.GitHubBase = defaults.GitHubBase
	}
	if urls.Branch == "" {
		urls.Branch = defaults.Branch
	}
	commit := rev.ShortCommit()
	if commit == "" {
		commit = vcs.UnknownCommit
	}

	owner, repo := Repository(props, rev.RemoteURL())
	id := props.ID()
	raw := strings.TrimSuffix(urls.RawBase, "/")
	gh := strings.TrimSuffix(urls.GitHubBase, "/")

	return Manifest{
		Changelog:   raw + "/" + owner + "/" + repo + "/" + urls.Branch + "/" + id + "/CHANGELOG.md",
		Version:     "v" + props.Version() + "-" + commit,
		VersionCode: code,
		ZipURL:      gh + "/" + owner + "/" + repo + "/releases/latest/download/" + archive.Name(id, props.VersionCode()),
	}, nil
}

// Marshal renders m as two-space indented JSON. URLs are written as is,
// without HTML escaping.
func Marshal(m Manifest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to encode manifest")
	}
	return buf.Bytes(), nil
}

// Write renders m to path, creating the parent directory if needed
func Write(fsys types.FS, path string, m Manifest) error {
	logger := logging.GetLogger("manifest")

	data, err := Marshal(m)
	if err != nil {
		return err
	}

	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory for %s", path)
	}
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write manifest %s", path)
	}

	logger.Info().
		Str("path", path).
		Str("version", m.Version).
		Int("versionCode", m.VersionCode).
		Msg("Update manifest written")
	return nil
}
