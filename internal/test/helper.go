package test

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// ZipEntry a single file written into a test archive.
type ZipEntry struct {
	Name    string
	Content string
}

// WriteFile creates the file name inside dir and returns its path.
func WriteFile(t *testing.T, dir string, name string, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(content), 0600)
	require.NoError(t, err, fmt.Sprintf("failed to write file %s", path))

	return path
}

// WriteZip creates a zip archive inside dir containing the given entries in order.
func WriteZip(t *testing.T, dir string, name string, entries ...ZipEntry) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err, fmt.Sprintf("failed to create zip file %s", path))
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		require.NoError(t, err, fmt.Sprintf("failed to create zip entry %s", e.Name))
		_, err = w.Write([]byte(e.Content))
		require.NoError(t, err, fmt.Sprintf("failed to write zip entry %s", e.Name))
	}
	require.NoError(t, zw.Close(), "failed to finish zip file")

	return path
}

func FileContent(t *testing.T, path string) []byte {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err, fmt.Sprintf("failed to read data from %s", path))

	return content
}
