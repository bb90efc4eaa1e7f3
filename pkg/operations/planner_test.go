package operations

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/filesystem"
	"github.com/ksmm-dev/ksmm/pkg/rules"
	"github.com/ksmm-dev/ksmm/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ignorePaths = cmpopts.IgnoreFields(FileOperation{}, "Source", "Destination")

func op(kind Kind, rel string) FileOperation {
	return FileOperation{Kind: kind, Rel: rel}
}

func recorded(kind Kind, rel, pattern string) FileOperation {
	return FileOperation{Kind: kind, Rel: rel, Pattern: pattern}
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		ignore  []string
		include []string
		want    []FileOperation
	}{
		{
			name: "plain tree is copied depth first",
			files: map[string]string{
				"module.prop":     "id=foo\n",
				"system/bin/tool": "#!/bin/sh\n",
				"webroot/":        "",
			},
			want: []FileOperation{
				op(CopyFile, "module.prop"),
				op(CreateDirectory, "system"),
				op(CreateDirectory, "system/bin"),
				op(CopyFile, "system/bin/tool"),
				op(CreateDirectory, "webroot"),
			},
		},
		{
			name: "ignored file is recorded",
			files: map[string]string{
				"README.md":   "docs",
				"module.prop": "id=foo\n",
			},
			ignore: []string{"README.md"},
			want: []FileOperation{
				recorded(RecordedIgnore, "README.md", "README.md"),
				op(CopyFile, "module.prop"),
			},
		},
		{
			name: "ignored directory is not entered without includes",
			files: map[string]string{
				"build/out.bin": "x",
				"service.sh":    "echo",
			},
			ignore: []string{"build/"},
			want: []FileOperation{
				recorded(RecordedIgnore, "build", "build/"),
				op(CopyFile, "service.sh"),
			},
		},
		{
			name: "force include beats ignore",
			files: map[string]string{
				"other.sh":   "a",
				"service.sh": "b",
			},
			ignore:  []string{"*.sh"},
			include: []string{"service.sh"},
			want: []FileOperation{
				recorded(RecordedIgnore, "other.sh", "*.sh"),
				recorded(RecordedForceInclude, "service.sh", "service.sh"),
				op(CopyFile, "service.sh"),
			},
		},
		{
			name: "force included directory is planned normally",
			files: map[string]string{
				"system/etc/a.conf": "a",
				"system/etc/b.log":  "b",
			},
			ignore:  []string{"system/", "*.log"},
			include: []string{"system/"},
			want: []FileOperation{
				recorded(RecordedForceInclude, "system", "system/"),
				op(CreateDirectory, "system"),
				recorded(RecordedForceInclude, "system/etc", "system/"),
				op(CreateDirectory, "system/etc"),
				recorded(RecordedForceInclude, "system/etc/a.conf", "system/"),
				op(CopyFile, "system/etc/a.conf"),
				recorded(RecordedForceInclude, "system/etc/b.log", "system/"),
				op(CopyFile, "system/etc/b.log"),
			},
		},
		{
			name: "shadowed directory only materializes force included entries",
			files: map[string]string{
				"vendor/a.txt":     "a",
				"vendor/keep.txt":  "k",
				"vendor/sub/b.txt": "b",
			},
			ignore:  []string{"vendor/"},
			include: []string{"keep.txt"},
			want: []FileOperation{
				recorded(RecordedIgnore, "vendor", "vendor/"),
				op(CreateDirectory, "vendor"),
				recorded(RecordedIgnore, "vendor/a.txt", "vendor/"),
				recorded(RecordedForceInclude, "vendor/keep.txt", "keep.txt"),
				op(CopyFile, "vendor/keep.txt"),
				recorded(RecordedIgnore, "vendor/sub", "vendor/"),
				recorded(RecordedIgnore, "vendor/sub/b.txt", "vendor/"),
			},
		},
		{
			name: "tool state directory is never planned",
			files: map[string]string{
				".ksmm/build.conf":     "*.log",
				".ksmm/key/dev.pem":    "key",
				"module.prop":          "id=foo\n",
				"system/.ksmm/keep.me": "nested state dirs are ordinary",
			},
			include: []string{".ksmm/"},
			want: []FileOperation{
				op(CopyFile, "module.prop"),
				op(CreateDirectory, "system"),
				recorded(RecordedForceInclude, "system/.ksmm", ".ksmm/"),
				op(CreateDirectory, "system/.ksmm"),
				recorded(RecordedForceInclude, "system/.ksmm/keep.me", ".ksmm/"),
				op(CopyFile, "system/.ksmm/keep.me"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := testutil.NewTestFS()
			testutil.WriteTree(t, fsys, "/src", tt.files)

			ops, err := Plan(fsys, "/src", "/out", rules.NewRuleSet(tt.ignore, tt.include))
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, ops, ignorePaths); diff != "" {
				t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPlanPaths(t *testing.T) {
	fsys := testutil.NewTestFS()
	testutil.WriteTree(t, fsys, "/src", map[string]string{"system/bin/tool": "x"})

	ops, err := Plan(fsys, "/src", "/out", nil)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	last := ops[2]
	assert.Equal(t, filepath.Join("/src", "system", "bin", "tool"), last.Source)
	assert.Equal(t, filepath.Join("/out", "system", "bin", "tool"), last.Destination)
}

func TestPlanMissingRoot(t *testing.T) {
	fsys := testutil.NewTestFS()

	ops, err := Plan(fsys, "/nope", "/out", rules.NewRuleSet(nil, nil))
	require.NoError(t, err)
	assert.NotNil(t, ops)
	assert.Empty(t, ops)
}

func TestPlanRootIsFile(t *testing.T) {
	fsys := testutil.NewTestFS()
	testutil.WriteTree(t, fsys, "/", map[string]string{"file": "x"})

	_, err := Plan(fsys, "/file", "/out", nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestPlanSkipsOutputRoot(t *testing.T) {
	fsys := testutil.NewTestFS()
	testutil.WriteTree(t, fsys, "/src", map[string]string{
		"dist/old.zip": "stale",
		"module.prop":  "id=foo\n",
	})

	ops, err := Plan(fsys, "/src", "/src/dist", nil)
	require.NoError(t, err)

	want := []FileOperation{op(CopyFile, "module.prop")}
	if diff := cmp.Diff(want, ops, ignorePaths); diff != "" {
		t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanExcludedDirectories(t *testing.T) {
	fsys := testutil.NewTestFS()
	testutil.WriteTree(t, fsys, "/src", map[string]string{
		"dist/foo-1.zip":   "earlier release",
		"nested/dist/x":    "kept",
		"module.prop":      "id=foo\n",
		"out/leftover.txt": "old build",
	})

	ops, err := NewPlanner(fsys, nil).Exclude("/src/dist/", "").Plan("/src", "/src/out")
	require.NoError(t, err)

	want := []FileOperation{
		op(CopyFile, "module.prop"),
		op(CreateDirectory, "nested"),
		op(CreateDirectory, "nested/dist"),
		op(CopyFile, "nested/dist/x"),
	}
	if diff := cmp.Diff(want, ops, ignorePaths); diff != "" {
		t.Errorf("Plan() mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanFollowsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "lib"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "lib", "a.so"), []byte("elf"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "module.prop"), []byte("id=foo\n"), 0644))
	require.NoError(t, os.Symlink("lib", filepath.Join(src, "link")))
	require.NoError(t, os.Symlink("module.prop", filepath.Join(src, "file-link")))
	require.NoError(t, os.Symlink("missing", filepath.Join(src, "broken")))
	require.NoError(t, os.Symlink("..", filepath.Join(src, "lib", "self")))

	fsys := filesystem.NewOS()
	out := filepath.Join(t.TempDir(), "out")
	ops, err := Plan(fsys, src, out, nil)
	require.NoError(t, err)

	want := []FileOperation{
		op(CopyFile, "file-link"),
		op(CreateDirectory, "lib"),
		op(CopyFile, "lib/a.so"),
		op(CreateDirectory, "link"),
		op(CopyFile, "link/a.so"),
		op(CopyFile, "module.prop"),
	}
	if diff := cmp.Diff(want, ops, ignorePaths); diff != "" {
		t.Fatalf("Plan() mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, NewExecutor(fsys).Execute(ops))

	info, err := os.Lstat(filepath.Join(out, "file-link"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular(), "symlinked file is copied as a regular file")

	info, err = os.Lstat(filepath.Join(out, "link"))
	require.NoError(t, err)
	assert.True(t, info.IsDir(), "symlinked directory is materialized as a directory")

	data, err := os.ReadFile(filepath.Join(out, "link", "a.so"))
	require.NoError(t, err)
	assert.Equal(t, "elf", string(data))
}

func TestPlanIsReadOnly(t *testing.T) {
	fsys := testutil.NewTestFS()
	files := map[string]string{
		"a/b/c.txt": "c",
		"d.txt":     "d",
	}
	testutil.WriteTree(t, fsys, "/src", files)
	before := testutil.ReadTree(t, fsys, "/")

	_, err := Plan(fsys, "/src", "/out", rules.NewRuleSet([]string{"d.txt"}, nil))
	require.NoError(t, err)

	assert.Equal(t, before, testutil.ReadTree(t, fsys, "/"))
}

func TestCountByKind(t *testing.T) {
	counts := CountByKind([]FileOperation{
		op(CreateDirectory, "a"),
		op(CopyFile, "a/b"),
		op(CopyFile, "a/c"),
		recorded(RecordedIgnore, "d", "d"),
	})

	assert.Equal(t, 1, counts[CreateDirectory])
	assert.Equal(t, 2, counts[CopyFile])
	assert.Equal(t, 0, counts[RecordedForceInclude])
	assert.Equal(t, 1, counts[RecordedIgnore])
}
