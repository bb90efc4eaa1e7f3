package manifest

import (
	"testing"

	"github.com/ksmm-dev/ksmm/pkg/errors"
	"github.com/ksmm-dev/ksmm/pkg/metadata"
	"github.com/ksmm-dev/ksmm/pkg/testutil"
	"github.com/ksmm-dev/ksmm/pkg/vcs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGitHub(t *testing.T) {
	tests := []struct {
		url   string
		owner string
		repo  string
	}{
		{"https://github.com/alice/mymod/releases/latest/download/update.json", "alice", "mymod"},
		{"https://github.com/alice/mymod.git", "alice", "mymod"},
		{"git@github.com:alice/mymod.git", "alice", "mymod"},
		{"https://github.com/alice/my.mod", "alice", "my.mod"},
		{"https://github.com/alice", "unknown", "repo"},
		{"https://gitlab.com/alice/mymod", "unknown", "repo"},
		{"not a url", "unknown", "repo"},
		{"", "unknown", "repo"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			owner, repo := ParseGitHub(tt.url)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}

func TestNew(t *testing.T) {
	props := metadata.Parse("id=foo\nversion=1.2.0\nversionCode=42\nupdateJson=https://github.com/alice/mymod/releases/latest/download/update.json\n")

	m, err := New(props, vcs.Static{Commit: "abc1234"}, DefaultURLs())
	require.NoError(t, err)

	assert.Equal(t, Manifest{
		Changelog:   "https://raw.githubusercontent.com/alice/mymod/main/foo/CHANGELOG.md",
		Version:     "v1.2.0-abc1234",
		VersionCode: 42,
		ZipURL:      "https://github.com/alice/mymod/releases/latest/download/foo-42.zip",
	}, m)
}

func TestNewFallback(t *testing.T) {
	props := metadata.Parse("id=foo\nversionCode=42\nupdateJson=nonsense\n")

	m, err := New(props, vcs.Static{}, URLs{})
	require.NoError(t, err)

	assert.Equal(t, "https://github.com/unknown/repo/releases/latest/download/foo-42.zip", m.ZipURL)
	assert.Contains(t, m.ZipURL, "unknown")
	assert.Contains(t, m.ZipURL, "repo")
	assert.Equal(t, "v0.1.0-unknown", m.Version)
}

func TestNewRepositoryFromRemote(t *testing.T) {
	rev := vcs.Static{Commit: "abc1234", Remote: "git@github.com:bob/other.git"}

	t.Run("no updateJson uses remote", func(t *testing.T) {
		props := metadata.Parse("id=foo\nversionCode=42\n")

		m, err := New(props, rev, DefaultURLs())
		require.NoError(t, err)
		assert.Equal(t, "https://github.com/bob/other/releases/latest/download/foo-42.zip", m.ZipURL)
		assert.Equal(t, "https://raw.githubusercontent.com/bob/other/main/foo/CHANGELOG.md", m.Changelog)
	})

	t.Run("updateJson wins over remote", func(t *testing.T) {
		props := metadata.Parse("id=foo\nversionCode=42\nupdateJson=https://github.com/alice/mymod/update.json\n")

		owner, repo := Repository(props, rev.RemoteURL())
		assert.Equal(t, "alice", owner)
		assert.Equal(t, "mymod", repo)
	})

	t.Run("neither", func(t *testing.T) {
		owner, repo := Repository(metadata.Parse("id=foo\n"), "")
		assert.Equal(t, FallbackOwner, owner)
		assert.Equal(t, FallbackRepo, repo)
	})
}

func TestNewCustomURLs(t *testing.T) {
	props := metadata.Parse("id=foo\nversion=2.0\nversionCode=7\nupdateJson=https://github.com/alice/mymod\n")
	urls := URLs{
		RawBase:    "https://raw.example.com/",
		GitHubBase: "https://gh.example.com",
		Branch:     "release",
	}

	m, err := New(props, vcs.Static{Commit: "deadbee"}, urls)
	require.NoError(t, err)

	assert.Equal(t, "https://raw.example.com/alice/mymod/release/foo/CHANGELOG.md", m.Changelog)
	assert.Equal(t, "https://gh.example.com/alice/mymod/releases/latest/download/foo-7.zip", m.ZipURL)
}

func TestNewInvalidVersionCode(t *testing.T) {
	props := metadata.Parse("id=foo\nversionCode=next\n")

	_, err := New(props, vcs.Static{Commit: "abc"}, DefaultURLs())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestMarshalFieldOrder(t *testing.T) {
	data, err := Marshal(Manifest{
		Changelog:   "https://raw.githubusercontent.com/a/b/main/foo/CHANGELOG.md",
		Version:     "v1.0-abc",
		VersionCode: 42,
		ZipURL:      "https://github.com/a/b/releases/latest/download/foo-42.zip?x=1&y=2",
	})
	require.NoError(t, err)

	want := `{
  "changelog": "https://raw.githubusercontent.com/a/b/main/foo/CHANGELOG.md",
  "version": "v1.0-abc",
  "versionCode": 42,
  "zipUrl": "https://github.com/a/b/releases/latest/download/foo-42.zip?x=1&y=2"
}
`
	assert.Equal(t, want, string(data))
}

func TestWrite(t *testing.T) {
	fsys := testutil.NewTestFS()
	m := Manifest{Changelog: "c", Version: "v", VersionCode: 1, ZipURL: "z"}

	require.NoError(t, Write(fsys, "/mod/.ksmm/update.json", m))

	data, err := fsys.ReadFile("/mod/.ksmm/update.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"changelog":"c","version":"v","versionCode":1,"zipUrl":"z"}`, string(data))
}
