package testutil

import (
	"io/fs"
	"path"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ksmm-dev/ksmm/pkg/filesystem"
	"github.com/ksmm-dev/ksmm/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// NewTestFS creates a new in-memory filesystem for testing.
func NewTestFS() types.FS {
	return filesystem.NewAferoFS(afero.NewMemMapFs())
}

// WriteTree materializes files under root. Keys are slash-separated
// relative paths; a key ending in "/" creates an empty directory.
func WriteTree(t *testing.T, fsys types.FS, root string, files map[string]string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(root, 0755))
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, fsys.MkdirAll(full, 0755))
			continue
		}
		require.NoError(t, fsys.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, fsys.WriteFile(full, []byte(content), 0644))
	}
}

// ReadTree returns every file under root keyed by slash-separated
// relative path, with directories listed as "dir/" and empty content.
func ReadTree(t *testing.T, fsys types.FS, root string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	var walk func(dir, rel string)
	walk = func(dir, rel string) {
		entries, err := fsys.ReadDir(dir)
		require.NoError(t, err)
		for _, e := range entries {
			childRel := path.Join(rel, e.Name())
			childPath := filepath.Join(dir, e.Name())
			if e.IsDir() {
				out[childRel+"/"] = ""
				walk(childPath, childRel)
				continue
			}
			data, err := fsys.ReadFile(childPath)
			require.NoError(t, err)
			out[childRel] = string(data)
		}
	}
	walk(root, "")
	return out
}

// FileMode returns the permission bits of a file
func FileMode(t *testing.T, fsys types.FS, name string) fs.FileMode {
	t.Helper()
	info, err := fsys.Stat(name)
	require.NoError(t, err)
	return info.Mode().Perm()
}
