package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/konstantinfoerster/anki-importer-go/internal/aio"
)

const (
	REPLACE = "REPLACE"
	CREATE  = "CREATE"
)

// Config of a local storage. Mode REPLACE overwrites existing files, CREATE fails if the file exists.
type Config struct {
	Location string `yaml:"location"`
	Mode     string `yaml:"mode"`
}

// LocationOrDefault returns the configured location or a directory below the OS temp dir.
func (c Config) LocationOrDefault() string {
	if strings.TrimSpace(c.Location) == "" {
		return filepath.Join(os.TempDir(), "anki-importer")
	}

	return c.Location
}

// ModeOrDefault returns the upper case mode, CREATE if none is configured.
func (c Config) ModeOrDefault() string {
	mode := strings.ToUpper(strings.TrimSpace(c.Mode))
	if mode == "" {
		return CREATE
	}

	return mode
}

type Storer interface {
	// Store writes the content of in directly to the given path.
	Store(in io.Reader, path ...string) (StoredFile, error)
	// StoreAtomic writes the content of in to a temporary file first and renames it to the given path
	// afterward. An existing file stays untouched if anything fails before the rename.
	StoreAtomic(in io.Reader, path ...string) (StoredFile, error)
	Load(path ...string) (io.ReadCloser, error)
	Remove(path ...string) error
}

type StoredFile struct {
	Path         string
	AbsolutePath string
}

func NewLocalStorage(cfg Config) (Storer, error) {
	location, err := filepath.Abs(cfg.LocationOrDefault())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve storage dir %s %w", cfg.Location, err)
	}

	mode := cfg.ModeOrDefault()
	if mode != REPLACE && mode != CREATE {
		return nil, fmt.Errorf("unsupported storage mode %s, expected %s or %s", mode, REPLACE, CREATE)
	}

	if err := os.MkdirAll(location, 0750); err != nil {
		return nil, fmt.Errorf("failed to create storage dir %s %w", location, err)
	}

	return &localStorage{
		location: location,
		mode:     mode,
	}, nil
}

type localStorage struct {
	location string
	mode     string
}

func (s *localStorage) fromBasePath(path ...string) (string, error) {
	target := filepath.Clean(filepath.Join(s.location, filepath.Join(path...)))

	rel, err := filepath.Rel(s.location, target)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path is not within base path, %s", s.location)
	}

	return target, nil
}

func (s *localStorage) prepare(path ...string) (string, error) {
	filePath, err := s.fromBasePath(path...)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return "", fmt.Errorf("failed to create sub dirs for %s %w", filePath, err)
	}

	return filePath, nil
}

func (s *localStorage) Store(r io.Reader, path ...string) (_ StoredFile, err error) {
	filePath, err := s.prepare(path...)
	if err != nil {
		return StoredFile{}, err
	}

	flags := os.O_RDWR | os.O_CREATE
	if s.mode == REPLACE {
		flags |= os.O_TRUNC // truncate existing file
	} else {
		flags |= os.O_EXCL // file must not exist
	}

	// #nosec G304 fromBasePath does already a path cleanup
	target, err := os.OpenFile(filePath, flags, 0600)
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create empty file %s with mode %s %w", filePath, s.mode, err)
	}
	defer aio.CloseWithErr(target, &err)

	if _, err = io.Copy(target, r); err != nil {
		return StoredFile{}, fmt.Errorf("failed to copy file %w", err)
	}

	if err = target.Sync(); err != nil {
		return StoredFile{}, fmt.Errorf("failed to sync file %w", err)
	}

	return s.storedFile(filePath), nil
}

func (s *localStorage) StoreAtomic(r io.Reader, path ...string) (StoredFile, error) {
	filePath, err := s.prepare(path...)
	if err != nil {
		return StoredFile{}, err
	}

	if s.mode == CREATE {
		if _, err := os.Stat(filePath); err == nil {
			return StoredFile{}, fmt.Errorf("file %s already exists, mode is %s", filePath, s.mode)
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), "."+filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return StoredFile{}, fmt.Errorf("failed to create temporary file for %s %w", filePath, err)
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := writeAndClose(tmp, r); err != nil {
		return StoredFile{}, err
	}

	// #nosec G302 written files are user documents
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return StoredFile{}, fmt.Errorf("failed to change file mode of %s %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return StoredFile{}, fmt.Errorf("failed to move %s to %s %w", tmp.Name(), filePath, err)
	}
	renamed = true

	return s.storedFile(filePath), nil
}

func writeAndClose(f *os.File, r io.Reader) (err error) {
	defer aio.CloseWithErr(f, &err)

	if _, err = io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to copy file %w", err)
	}

	if err = f.Sync(); err != nil {
		return fmt.Errorf("failed to sync file %w", err)
	}

	return nil
}

func (s *localStorage) storedFile(filePath string) StoredFile {
	return StoredFile{
		AbsolutePath: filePath,
		Path:         s.removeBasePath(filePath),
	}
}

func (s *localStorage) removeBasePath(path string) string {
	noBasePath := strings.TrimPrefix(path, s.location)
	noBasePath = strings.TrimPrefix(noBasePath, string(filepath.Separator))

	return noBasePath
}

func (s *localStorage) Load(path ...string) (io.ReadCloser, error) {
	filePath, err := s.fromBasePath(path...)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get file info %s %w", filePath, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("loading a directory is not supported")
	}

	// #nosec G304 fromBasePath does already a path cleanup
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s %w", filePath, err)
	}

	return file, nil
}

// Remove deletes the file or directory tree at the given path.
func (s *localStorage) Remove(path ...string) error {
	filePath, err := s.fromBasePath(path...)
	if err != nil {
		return err
	}

	if err := os.RemoveAll(filePath); err != nil {
		return fmt.Errorf("failed to remove %s %w", filePath, err)
	}

	return nil
}
