// Package metadata reads a module's module.prop file into an immutable
// snapshot.
//
// The file is a flat list of key=value lines. Keys and values are taken
// verbatim: nothing is trimmed and key lookup is case-sensitive. Lines
// without "=" are skipped, and when a key repeats the last occurrence
// wins.
package metadata

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/logging"
	"github.com/ksmm-dev/ksmm/pkg/types"
)

// Well-known keys
const (
	KeyID          = "id"
	KeyVersion     = "version"
	KeyVersionCode = "versionCode"
	KeyUpdateJSON  = "updateJson"
)

// Defaults applied when a key is absent
const (
	DefaultID          = "unknown"
	DefaultVersion     = "0.1.0"
	DefaultVersionCode = "1"
	DefaultUpdateJSON  = "https://github.com/unknown/repo/releases/latest/download/update.json"
)

// Props is a read-only snapshot of module.prop
type Props struct {
	values map[string]string
}

// Parse builds a snapshot from file content
func Parse(content string) Props {
	values := make(map[string]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSuffix(line, "\r")
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[key] = value
	}
	return Props{values: values}
}

// Load reads and parses path. A missing file is a missing-input error.
func Load(fsys types.FS, path string) (Props, error) {
	logger := logging.GetLogger("metadata")

	data, err := fsys.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Props{}, errors.Wrapf(err, errors.ErrMissingInput, "module metadata not found at %s", path).
				WithDetail("path", path)
		}
		return Props{}, errors.Wrapf(err, errors.ErrIO, "failed to read module metadata %s", path)
	}

	props := Parse(string(data))
	logger.Debug().
		Str("path", path).
		Int("keys", len(props.values)).
		Msg("Loaded module metadata")
	return props, nil
}

// Get returns the raw value for key
func (p Props) Get(key string) (string, bool) {
	v, ok := p.values[key]
	return v, ok
}

// GetOr returns the value for key, or def when absent
func (p Props) GetOr(key, def string) string {
	if v, ok := p.values[key]; ok {
		return v
	}
	return def
}

// Keys returns all keys, sorted
func (p Props) Keys() []string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of distinct keys
func (p Props) Len() int {
	return len(p.values)
}

func (p Props) ID() string {
	return p.GetOr(KeyID, DefaultID)
}

func (p Props) Version() string {
	return p.GetOr(KeyVersion, DefaultVersion)
}

// VersionCode returns the version code as written in the file
func (p Props) VersionCode() string {
	return p.GetOr(KeyVersionCode, DefaultVersionCode)
}

// VersionCodeInt parses the version code
func (p Props) VersionCodeInt() (int, error) {
	raw := p.VersionCode()
	code, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrInvalidInput, "versionCode %q is not an integer", raw)
	}
	return code, nil
}

func (p Props) UpdateJSON() string {
	return p.GetOr(KeyUpdateJSON, DefaultUpdateJSON)
}
