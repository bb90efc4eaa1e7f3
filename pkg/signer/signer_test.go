package signer

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fakeZakosign = `#!/bin/sh
echo "$@" >> "$(dirname "$0")/calls.log"
case "$1" in
sign) cp "$7" "$5" ;;
key) echo "PRIVATE KEY" > "$3" ;;
esac
`

const failingZakosign = `#!/bin/sh
echo "bad key format" >&2
exit 3
`

const lazyZakosign = `#!/bin/sh
exit 0
`

// installFake writes an executable script named zakosign into a new
// directory and returns that directory
func installFake(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not executable on windows")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultBinary), []byte(script), 0755))
	return dir
}

func newTestSigner(binDir string) *Zakosign {
	return &Zakosign{Binary: DefaultBinary, SearchDirs: []string{binDir}}
}

func TestResolve(t *testing.T) {
	binDir := installFake(t, fakeZakosign)

	t.Run("search dir", func(t *testing.T) {
		got, err := newTestSigner(binDir).Resolve()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(binDir, DefaultBinary), got)
	})

	t.Run("explicit path", func(t *testing.T) {
		path := filepath.Join(binDir, DefaultBinary)
		got, err := (&Zakosign{Binary: path}).Resolve()
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("explicit path missing", func(t *testing.T) {
		_, err := (&Zakosign{Binary: filepath.Join(binDir, "nope")}).Resolve()
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSignerNotFound))
	})

	t.Run("not on path", func(t *testing.T) {
		z := &Zakosign{Binary: "ksmm-test-no-such-signer", SearchDirs: []string{binDir}}
		_, err := z.Resolve()
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSignerNotFound))
		assert.Equal(t, errors.CategoryExternalProcess, errors.CategoryOf(errors.GetErrorCode(err)))
	})
}

func TestSign(t *testing.T) {
	binDir := installFake(t, fakeZakosign)
	work := t.TempDir()
	zipPath := filepath.Join(work, "foo-42.zip")
	keyPath := filepath.Join(work, "dev.pem")
	require.NoError(t, os.WriteFile(zipPath, []byte("zip bytes"), 0644))
	require.NoError(t, os.WriteFile(keyPath, []byte("key"), 0600))

	signed, err := newTestSigner(binDir).Sign(zipPath, keyPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(work, "foo-42_signed.zip"), signed)

	data, err := os.ReadFile(signed)
	require.NoError(t, err)
	assert.Equal(t, "zip bytes", string(data))

	calls, err := os.ReadFile(filepath.Join(binDir, "calls.log"))
	require.NoError(t, err)
	assert.Equal(t, "sign --key "+keyPath+" --output "+signed+" -f "+zipPath, strings.TrimSpace(string(calls)))
}

func TestSignFailure(t *testing.T) {
	binDir := installFake(t, failingZakosign)
	work := t.TempDir()
	zipPath := filepath.Join(work, "foo-42.zip")
	require.NoError(t, os.WriteFile(zipPath, []byte("zip"), 0644))

	_, err := newTestSigner(binDir).Sign(zipPath, filepath.Join(work, "dev.pem"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSignerFailed))
	assert.Equal(t, "bad key format", errors.GetErrorDetails(err)["stderr"])

	_, statErr := os.Stat(zipPath)
	assert.NoError(t, statErr, "unsigned archive must be kept")
}

func TestSignOutputMissing(t *testing.T) {
	binDir := installFake(t, lazyZakosign)
	work := t.TempDir()
	zipPath := filepath.Join(work, "foo-42.zip")
	require.NoError(t, os.WriteFile(zipPath, []byte("zip"), 0644))

	_, err := newTestSigner(binDir).Sign(zipPath, filepath.Join(work, "dev.pem"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSignerOutputMissing))
}

func TestNewKey(t *testing.T) {
	binDir := installFake(t, fakeZakosign)
	keyPath := filepath.Join(t.TempDir(), "dev.pem")

	require.NoError(t, newTestSigner(binDir).NewKey(keyPath))

	data, err := os.ReadFile(keyPath)
	require.NoError(t, err)
	assert.Equal(t, "PRIVATE KEY\n", string(data))
}

func TestCacheBinDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache-root")
	assert.Equal(t, filepath.Join("/tmp/cache-root", "ksmm", "bin"), CacheBinDir())
}
