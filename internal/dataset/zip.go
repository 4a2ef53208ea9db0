package dataset

import (
	"archive/zip"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/konstantinfoerster/anki-importer-go/internal/aio"
	"github.com/rs/zerolog/log"
)

const readByteLimit int64 = 64 * 1024 * 1024 // 64 MiB

// unzip extracts all files of src into dest and returns the paths of the written files.
func unzip(src string, dest string) (_ []string, err error) {
	log.Debug().Msgf("Unzipping %s to %s with a target limit of %d bytes", src, dest, readByteLimit)

	r, err := zip.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open zip file %s %w", src, err)
	}
	defer aio.CloseWithErr(r, &err)

	if err = os.MkdirAll(dest, 0750); err != nil {
		return nil, err
	}

	var files []string
	var oneKiB int64 = 1024
	var readBytes int64
	for _, f := range r.File {
		path, err := sanitizeArchivePath(dest, f.Name)
		if err != nil {
			return nil, err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0750); err != nil {
				return nil, err
			}

			continue
		}

		unsafeZipUncompressedSize := f.UncompressedSize64
		if unsafeZipUncompressedSize > math.MaxInt64 {
			return nil, fmt.Errorf("cannot write file %s, uncompressed size is > maxInt64", f.Name)
		}
		// #nosec G115 checked above
		zipUncompressedSize := int64(unsafeZipUncompressedSize)

		// prevent zip bombs
		readBytes += zipUncompressedSize
		if readBytes > readByteLimit {
			return nil, fmt.Errorf("cannot write next file, reached limit of %dMiB", readByteLimit/oneKiB/oneKiB)
		}

		d, err := writeFile(f, path, zipUncompressedSize)
		if err != nil {
			return nil, err
		}
		files = append(files, d)
	}

	log.Debug().Msgf("Unzip finished with files %v", files)

	return files, nil
}

func writeFile(zippedFile *zip.File, destFile string, readBytesN int64) (_ string, err error) {
	destFile = filepath.Clean(destFile)

	if err := os.MkdirAll(filepath.Dir(destFile), 0750); err != nil {
		return "", err
	}

	f, err := os.OpenFile(destFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", err
	}
	defer aio.CloseWithErr(f, &err)

	rc, err := zippedFile.Open()
	if err != nil {
		return "", err
	}
	defer aio.CloseWithErr(rc, &err)

	// the header size is not trusted, never read more than announced
	if _, err := io.Copy(f, io.LimitReader(rc, readBytesN)); err != nil {
		return "", err
	}

	if err := f.Sync(); err != nil {
		return "", err
	}

	return destFile, nil
}

func sanitizeArchivePath(dest, filename string) (string, error) {
	path := filepath.Join(dest, filename)
	rel, err := filepath.Rel(filepath.Clean(dest), path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		// Zip slip
		return "", fmt.Errorf("illegal file path %s", filename)
	}

	return path, nil
}
