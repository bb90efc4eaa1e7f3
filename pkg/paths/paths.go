package paths

import (
	"os"
	"path/filepath"

	"github.com/ksmm-dev/ksmm/pkg/errors"
)

// Environment variable names
const (
	// EnvRoot overrides the project root
	EnvRoot = "KSMM_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed project layout. These are not configurable.
const (
	StateDirName       = ".ksmm"
	ModulePropFile     = "module.prop"
	BuildConfFile      = "build.conf"
	SettingsFileName   = "ksmm.toml"
	UpdateManifestFile = "update.json"
)

// Paths resolves project locations
type Paths interface {
	Root() string
	UsedFallback() bool
	StateDir() string
	ModuleProp() string
	BuildConf() string
	SettingsFile() string
	UpdateManifest() string
	Resolve(path string) string
	NormalizePath(path string) (string, error)
}

type paths struct {
	root         string
	usedFallback bool
}

// New creates a Paths rooted at root. An empty root is taken from
// KSMM_ROOT, then the current directory.
func New(root string) (Paths, error) {
	p := &paths{}

	if root == "" {
		found, usedFallback, err := findRoot()
		if err != nil {
			return nil, err
		}
		root = found
		p.usedFallback = usedFallback
	}

	abs, err := filepath.Abs(expandHome(root))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIO, "failed to resolve project root %s", root)
	}
	p.root = filepath.Clean(abs)

	return p, nil
}

func findRoot() (string, bool, error) {
	if root := os.Getenv(EnvRoot); root != "" {
		return root, false, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrap(err, errors.ErrIO, "failed to get current directory")
	}
	return cwd, true, nil
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~otheruser is left alone
	return path
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) string {
	return expandHome(path)
}

func (p *paths) Root() string {
	return p.root
}

// UsedFallback reports whether the root came from the working directory
func (p *paths) UsedFallback() bool {
	return p.usedFallback
}

func (p *paths) StateDir() string {
	return filepath.Join(p.root, StateDirName)
}

func (p *paths) ModuleProp() string {
	return filepath.Join(p.root, ModulePropFile)
}

func (p *paths) BuildConf() string {
	return filepath.Join(p.StateDir(), BuildConfFile)
}

func (p *paths) SettingsFile() string {
	return filepath.Join(p.StateDir(), SettingsFileName)
}

func (p *paths) UpdateManifest() string {
	return filepath.Join(p.StateDir(), UpdateManifestFile)
}

// Resolve makes a configured location absolute. Relative paths are
// taken relative to the project root.
func (p *paths) Resolve(path string) string {
	expanded := expandHome(path)
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded)
	}
	return filepath.Join(p.root, expanded)
}

func (p *paths) NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrIO, "failed to get absolute path")
	}
	return filepath.Clean(abs), nil
}
