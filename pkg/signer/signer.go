package signer

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/ksmm-dev/ksmm/pkg/archive"
	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/logging"
)

// DefaultBinary is the signer executable name
const DefaultBinary = "zakosign"

// Signer signs archives and creates keys
type Signer interface {
	// Sign signs archivePath with the key at keyPath and returns the
	// path of the signed archive
	Sign(archivePath, keyPath string) (string, error)
	// NewKey generates a private key at keyPath
	NewKey(keyPath string) error
}

// Zakosign runs the zakosign binary
type Zakosign struct {
	// Binary is a name looked up on the search path, or a path
	Binary string
	// SearchDirs are checked, in order, before PATH
	SearchDirs []string
}

// NewZakosign creates a signer for binary, also searching the ksmm
// cache directory
func NewZakosign(binary string) *Zakosign {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Zakosign{
		Binary:     binary,
		SearchDirs: []string{CacheBinDir()},
	}
}

// CacheBinDir is where a downloaded signer binary is expected
func CacheBinDir() string {
	cache := os.Getenv("XDG_CACHE_HOME")
	if cache == "" {
		cache = xdg.CacheHome
	}
	return filepath.Join(cache, "ksmm", "bin")
}

// Resolve returns the executable path that would be run
func (z *Zakosign) Resolve() (string, error) {
	bin := z.Binary
	if bin == "" {
		bin = DefaultBinary
	}

	if strings.ContainsRune(bin, filepath.Separator) {
		if isExecutableFile(bin) {
			return bin, nil
		}
		return "", errors.Newf(errors.ErrSignerNotFound, "signer binary %s not found", bin).
			WithDetail("binary", bin)
	}

	for _, dir := range z.SearchDirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, bin)
		if isExecutableFile(candidate) {
			return candidate, nil
		}
	}

	path, err := exec.LookPath(bin)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrSignerNotFound, "signer binary %s not found", bin).
			WithDetail("binary", bin).
			WithDetail("searched", z.SearchDirs)
	}
	return path, nil
}

// Sign runs `zakosign sign` and verifies the signed file was produced
func (z *Zakosign) Sign(archivePath, keyPath string) (string, error) {
	output := archive.SignedName(archivePath)

	if err := z.run("sign", "--key", keyPath, "--output", output, "-f", archivePath); err != nil {
		return "", err
	}

	if _, err := os.Stat(output); err != nil {
		return "", errors.Wrapf(err, errors.ErrSignerOutputMissing, "signer reported success but %s was not created", output).
			WithDetail("output", output)
	}

	logger := logging.GetLogger("signer")
	logger.Info().Str("archive", archivePath).Str("signed", output).Msg("Archive signed")
	return output, nil
}

// NewKey runs `zakosign key new`
func (z *Zakosign) NewKey(keyPath string) error {
	if err := z.run("key", "new", keyPath); err != nil {
		return err
	}
	logger := logging.GetLogger("signer")
	logger.Info().Str("key", keyPath).Msg("Signing key created")
	return nil
}

func (z *Zakosign) run(args ...string) error {
	bin, err := z.Resolve()
	if err != nil {
		return err
	}

	cmd := exec.Command(bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger := logging.GetLogger("signer")
	logger.Debug().Str("binary", bin).Strs("args", args).Msg("Running signer")

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return errors.Wrapf(err, errors.ErrSignerFailed, "%s %s failed", filepath.Base(bin), args[0]).
			WithDetail("stderr", msg).
			WithDetail("args", args)
	}
	return nil
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode().Perm()&0111 != 0
}
