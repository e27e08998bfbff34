package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediabrowser/internal/apperr"
	"mediabrowser/internal/pathsafe"
)

func newTestCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()
	dir := t.TempDir()
	root, err := pathsafe.New(dir)
	require.NoError(t, err)
	return New(root, Options{Deny: DefaultDenylist()}), dir
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}
}

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestListOrdering(t *testing.T) {
	cat, dir := newTestCatalog(t)
	touch(t, dir, "b.mp3", "A.mp3", "10.mp3", "2.mp3")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Folder"), 0o755))

	entries, err := cat.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"Folder", "2.mp3", "10.mp3", "A.mp3", "b.mp3"}, names(entries))
	assert.Equal(t, Entry{Name: "Folder", Type: TypeDirectory, Path: "Folder"}, entries[0])
	assert.Equal(t, TypeFile, entries[1].Type)
}

func TestListSubdirectoryPaths(t *testing.T) {
	cat, dir := newTestCatalog(t)
	touch(t, dir, "Music/Album/track10.flac", "Music/Album/track2.flac", "Music/Album/cover.jpg")

	entries, err := cat.List("/Music/Album/")
	require.NoError(t, err)
	assert.Equal(t, []string{"cover.jpg", "track2.flac", "track10.flac"}, names(entries))
	for _, e := range entries {
		assert.True(t, strings.HasPrefix(e.Path, "Music/Album/"), e.Path)
	}

	entries, err = cat.List("Music\\Album")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, "Music/Album/cover.jpg", entries[0].Path)
}

func TestListDenylist(t *testing.T) {
	cat, dir := newTestCatalog(t)
	touch(t, dir, ".hidden", "web_player/index.html", "node_modules/x/index.js", "song.mp3",
		"sub/.secret", "sub/node_modules/y.js", "sub/ok.mp3")

	entries, err := cat.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"sub", "song.mp3"}, names(entries))

	entries, err = cat.List("sub")
	require.NoError(t, err)
	assert.Equal(t, []string{"ok.mp3"}, names(entries))
}

func TestListCustomDenylist(t *testing.T) {
	dir := t.TempDir()
	root, err := pathsafe.New(dir)
	require.NoError(t, err)
	cat := New(root, Options{Deny: Denylist{Names: []string{"private"}}})
	touch(t, dir, ".dotfile", "private/a.mp3", "public/b.mp3")

	entries, err := cat.List("")
	require.NoError(t, err)
	assert.Equal(t, []string{"public", ".dotfile"}, names(entries))
}

func TestListErrors(t *testing.T) {
	cat, dir := newTestCatalog(t)
	touch(t, dir, "file.mp3")

	_, err := cat.List("missing")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = cat.List("file.mp3")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = cat.List("../")
	assert.Equal(t, apperr.KindAccessDenied, apperr.KindOf(err))
}

func TestSearchEmptyQuery(t *testing.T) {
	root, err := pathsafe.New(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	cat := New(root, Options{})

	for _, q := range []string{"", "   ", "\t\n"} {
		hits, err := cat.Search(q)
		require.NoError(t, err)
		assert.NotNil(t, hits)
		assert.Empty(t, hits)
	}
}

func TestSearchMatchesFilesAndDirectories(t *testing.T) {
	cat, dir := newTestCatalog(t)
	touch(t, dir,
		"Beatles/Abbey Road/01 Come Together.mp3",
		"Beatles/Help!/help.mp3",
		"Jazz/Come Fly With Me.flac",
		".beatles-cache/beatles.mp3",
		"node_modules/beatles/index.js",
	)

	hits, err := cat.Search("BEATLES")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, Entry{Name: "Beatles", Type: TypeDirectory, Path: "Beatles"}, hits[0])

	hits, err = cat.Search("come")
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Name: "01 Come Together.mp3", Type: TypeFile, Path: "Beatles/Abbey Road/01 Come Together.mp3"},
		{Name: "Come Fly With Me.flac", Type: TypeFile, Path: "Jazz/Come Fly With Me.flac"},
	}, hits)

	hits, err = cat.Search("help")
	require.NoError(t, err)
	assert.Equal(t, []string{"Help!", "help.mp3"}, names(hits))
}

func TestSearchKeepsSurroundingSpaces(t *testing.T) {
	cat, dir := newTestCatalog(t)
	touch(t, dir, "olive.mp3", "Live/Best Live Show.mp3")

	hits, err := cat.Search(" live")
	require.NoError(t, err)
	assert.Equal(t, []string{"Best Live Show.mp3"}, names(hits))

	hits, err = cat.Search("live")
	require.NoError(t, err)
	assert.Equal(t, []string{"Live", "Best Live Show.mp3", "olive.mp3"}, names(hits))
}

func TestSearchLimit(t *testing.T) {
	cat, dir := newTestCatalog(t)
	for i := range 3 {
		for j := range 60 {
			touch(t, dir, fmt.Sprintf("disc%d/song%03d.mp3", i, j))
		}
	}

	hits, err := cat.Search("song")
	require.NoError(t, err)
	assert.Len(t, hits, DefaultSearchLimit)
	assert.Equal(t, "disc0/song000.mp3", hits[0].Path)
	assert.Equal(t, "disc1/song039.mp3", hits[len(hits)-1].Path)
}

func TestSearchSkipsUnreadableDirectories(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	cat, dir := newTestCatalog(t)
	touch(t, dir, "locked/song.mp3", "open/song.mp3")
	locked := filepath.Join(dir, "locked")
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	hits, err := cat.Search("song")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "open/song.mp3", hits[0].Path)
}

func TestSearchMissingRoot(t *testing.T) {
	root, err := pathsafe.New(filepath.Join(t.TempDir(), "gone"))
	require.NoError(t, err)
	cat := New(root, Options{})

	_, err = cat.Search("x")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestCompareNames(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"track2", "track10", -1},
		{"track10", "track2", 1},
		{"a", "B", -1},
		{"B", "a", 1},
		{"disc 1 track 9", "disc 1 track 10", -1},
		{"007", "7", -1},
		{"abc", "abcd", -1},
		{"same", "same", 0},
		{"2.mp3", "A.mp3", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareNames(tt.a, tt.b))
		})
	}
}
