// Package vcs reads version-control facts about a project. Every lookup
// degrades to a placeholder instead of failing: a build outside a git
// checkout is still a valid build.
package vcs

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/ksmm-dev/ksmm/pkg/logging"
)

// UnknownCommit is reported when no commit hash can be read
const UnknownCommit = "unknown"

// Reader is a read-only view of the project's repository
type Reader interface {
	// ShortCommit returns the abbreviated HEAD hash or UnknownCommit
	ShortCommit() string
	// RemoteURL returns the origin URL or ""
	RemoteURL() string
}

// Git reads from the git checkout containing Dir
type Git struct {
	Dir    string
	Binary string // defaults to "git" on PATH
}

// NewGit creates a reader rooted at dir
func NewGit(dir string) *Git {
	return &Git{Dir: dir}
}

func (g *Git) ShortCommit() string {
	out, ok := g.run("rev-parse", "--short", "HEAD")
	if !ok || out == "" {
		return UnknownCommit
	}
	return out
}

func (g *Git) RemoteURL() string {
	out, _ := g.run("remote", "get-url", "origin")
	return out
}

func (g *Git) run(args ...string) (string, bool) {
	logger := logging.GetLogger("vcs")

	bin := g.Binary
	if bin == "" {
		bin = "git"
	}

	cmd := exec.Command(bin, args...)
	cmd.Dir = g.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logger.Debug().
			Err(err).
			Strs("args", args).
			Str("stderr", strings.TrimSpace(stderr.String())).
			Msg("git lookup failed")
		return "", false
	}
	return strings.TrimSpace(stdout.String()), true
}

// Static is a Reader with fixed answers
type Static struct {
	Commit string
	Remote string
}

func (s Static) ShortCommit() string {
	if s.Commit == "" {
		return UnknownCommit
	}
	return s.Commit
}

func (s Static) RemoteURL() string {
	return s.Remote
}
