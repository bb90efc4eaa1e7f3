package signer

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/logging"
	"github.com/ksmm-dev/ksmm/pkg/types"
)

// KeyExt is the extension of private key files
const KeyExt = ".pem"

// KeyFileName appends the key extension when missing
func KeyFileName(name string) string {
	if strings.HasSuffix(name, KeyExt) {
		return name
	}
	return name + KeyExt
}

// FindKey returns the first key file in keyDir in directory-read order.
// A missing directory or a directory without keys returns "".
func FindKey(fsys types.FS, keyDir string) (string, error) {
	entries, err := fsys.ReadDir(keyDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, errors.ErrIO, "failed to read key directory %s", keyDir)
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != KeyExt {
			continue
		}
		return filepath.Join(keyDir, e.Name()), nil
	}
	return "", nil
}

// RequireKey is FindKey for callers that cannot proceed without a key
func RequireKey(fsys types.FS, keyDir string) (string, error) {
	if _, err := fsys.Stat(keyDir); err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf(errors.ErrNotFound, "key directory %s does not exist", keyDir).
				WithDetail("hint", "create one with 'ksmm key new <name>'")
		}
		return "", errors.Wrapf(err, errors.ErrIO, "failed to stat key directory %s", keyDir)
	}

	key, err := FindKey(fsys, keyDir)
	if err != nil {
		return "", err
	}
	if key == "" {
		return "", errors.Newf(errors.ErrNotFound, "no %s key found in %s", KeyExt, keyDir).
			WithDetail("hint", "create one with 'ksmm key new <name>'")
	}
	return key, nil
}

// CreateKey makes keyDir and asks s to generate name inside it. An
// existing key is never overwritten.
func CreateKey(fsys types.FS, s Signer, keyDir, name string) (string, error) {
	logger := logging.GetLogger("signer")

	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", errors.Newf(errors.ErrInvalidInput, "invalid key name %q", name)
	}

	if err := fsys.MkdirAll(keyDir, 0700); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "failed to create key directory %s", keyDir)
	}

	keyPath := filepath.Join(keyDir, KeyFileName(name))
	if _, err := fsys.Stat(keyPath); err == nil {
		return "", errors.Newf(errors.ErrAlreadyExists, "key %s already exists", keyPath).
			WithDetail("path", keyPath)
	}

	logger.Debug().Str("key", keyPath).Msg("Generating signing key")
	if err := s.NewKey(keyPath); err != nil {
		return "", err
	}
	return keyPath, nil
}
