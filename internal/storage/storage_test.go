package storage_test

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	logger "github.com/konstantinfoerster/anki-importer-go/internal/log"
	"github.com/konstantinfoerster/anki-importer-go/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.SetupConsoleLogger(os.Stderr)
	if err := logger.SetLogLevel("warn"); err != nil {
		fmt.Printf("Failed to set log level %v", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func newStore(t *testing.T, mode string) (storage.Storer, string) {
	t.Helper()

	dir := t.TempDir()
	store, err := storage.NewLocalStorage(storage.Config{Location: dir, Mode: mode})
	require.NoError(t, err, "failed to create local storage")

	return store, dir
}

func TestNewLocalStorageUnknownMode(t *testing.T) {
	_, err := storage.NewLocalStorage(storage.Config{Location: t.TempDir(), Mode: "append"})

	assert.ErrorContains(t, err, "unsupported storage mode APPEND")
}

func TestNewLocalStorageRelativeLocation(t *testing.T) {
	chdir(t, t.TempDir())
	store, err := storage.NewLocalStorage(storage.Config{Location: ".", Mode: storage.REPLACE})
	require.NoError(t, err)

	f, err := store.Store(strings.NewReader("content"), "out.apkg")

	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(f.AbsolutePath))
	assert.Equal(t, "out.apkg", f.Path)
}

func TestStorePathOutsideBasePathFails(t *testing.T) {
	store, _ := newStore(t, storage.CREATE)

	cases := []struct {
		name string
		path []string
	}{
		{name: "parent dir", path: []string{"..", "test.txt"}},
		{name: "nested parent dirs", path: []string{"dir", "..", "..", "test.txt"}},
		{name: "base dir itself", path: []string{""}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Store(strings.NewReader("content"), tc.path...)

			assert.ErrorContains(t, err, "not within base path")
		})
	}
}

func TestStoreWithSubDirs(t *testing.T) {
	store, dir := newStore(t, storage.CREATE)

	f, err := store.Store(strings.NewReader("content"), "dir", "sub", "sub2", "test.txt")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "dir", "sub", "sub2", "test.txt"), f.AbsolutePath)
	assert.Equal(t, filepath.Join("dir", "sub", "sub2", "test.txt"), f.Path)
	assertFileContent(t, "content", f.AbsolutePath)
}

func TestStoreModeCreateFails(t *testing.T) {
	store, _ := newStore(t, storage.CREATE)
	_, err := store.Store(strings.NewReader("content"), "test.txt")
	require.NoError(t, err)

	_, err = store.Store(strings.NewReader("differentContent"), "test.txt")

	assert.ErrorIs(t, err, os.ErrExist)
}

func TestStoreModeReplace(t *testing.T) {
	store, _ := newStore(t, storage.REPLACE)
	_, err := store.Store(strings.NewReader("content"), "test.txt")
	require.NoError(t, err)

	f, err := store.Store(strings.NewReader("new"), "test.txt")

	require.NoError(t, err)
	assertFileContent(t, "new", f.AbsolutePath)
}

func TestStoreAtomic(t *testing.T) {
	store, dir := newStore(t, storage.REPLACE)
	_, err := store.StoreAtomic(strings.NewReader("old"), "deck.apkg")
	require.NoError(t, err)

	f, err := store.StoreAtomic(strings.NewReader("new"), "deck.apkg")

	require.NoError(t, err)
	assertFileContent(t, "new", f.AbsolutePath)
	assertNoTempFiles(t, dir)
}

type failingReader struct{}

func (failingReader) Read(_ []byte) (int, error) {
	return 0, errors.New("read failed")
}

func TestStoreAtomicKeepsExistingFileOnError(t *testing.T) {
	store, dir := newStore(t, storage.REPLACE)
	_, err := store.StoreAtomic(strings.NewReader("old"), "deck.apkg")
	require.NoError(t, err)

	_, err = store.StoreAtomic(io.MultiReader(strings.NewReader("partial"), failingReader{}), "deck.apkg")

	assert.ErrorContains(t, err, "read failed")
	assertFileContent(t, "old", filepath.Join(dir, "deck.apkg"))
	assertNoTempFiles(t, dir)
}

func TestStoreAtomicModeCreateFails(t *testing.T) {
	store, _ := newStore(t, storage.CREATE)
	_, err := store.StoreAtomic(strings.NewReader("old"), "deck.apkg")
	require.NoError(t, err)

	_, err = store.StoreAtomic(strings.NewReader("new"), "deck.apkg")

	assert.ErrorContains(t, err, "already exists")
}

func TestLoadFile(t *testing.T) {
	store, _ := newStore(t, storage.CREATE)
	_, err := store.Store(strings.NewReader("content"), "dir", "test.txt")
	require.NoError(t, err)

	r, err := store.Load("dir", "test.txt")
	require.NoError(t, err)
	defer r.Close()

	content, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "content", string(content))
}

func TestLoadFails(t *testing.T) {
	store, _ := newStore(t, storage.CREATE)
	_, err := store.Store(strings.NewReader("content"), "dir", "test.txt")
	require.NoError(t, err)

	cases := []struct {
		name        string
		path        []string
		wantContain string
	}{
		{name: "not existing file", path: []string{"notFound.txt"}, wantContain: "failed to get file info"},
		{name: "directory", path: []string{"dir"}, wantContain: "not supported"},
		{name: "outside base path", path: []string{"..", "test.txt"}, wantContain: "not within base path"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.Load(tc.path...)

			assert.ErrorContains(t, err, tc.wantContain)
		})
	}
}

func TestRemove(t *testing.T) {
	store, dir := newStore(t, storage.CREATE)
	_, err := store.Store(strings.NewReader("content"), "downloads", "a", "test.txt")
	require.NoError(t, err)

	err = store.Remove("downloads", "a")

	require.NoError(t, err)
	assert.NoDirExists(t, filepath.Join(dir, "downloads", "a"))
	assert.DirExists(t, filepath.Join(dir, "downloads"))
}

func assertFileContent(t *testing.T, expected string, path string) {
	t.Helper()

	actual, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read file %s", path)

	assert.Equal(t, expected, string(actual))
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)

	assert.Empty(t, matches)
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}
