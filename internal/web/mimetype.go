package web

import (
	"fmt"
	"strings"
)

const (
	MimeTypeJSON      = "application/json"
	MimeTypeZip       = "application/zip"
	MimeTypeZipLegacy = "application/x-zip-compressed"
	MimeTypeCSV       = "text/csv"
	MimeTypePlain     = "text/plain"
	HeaderAccept      = "Accept"
	HeaderUserAgent   = "User-Agent"
	DefaultUserAgent  = "AnkiImporter/0.1"
)

// NewMimeType creates a MimeType from the given content-type header value.
func NewMimeType(contentType string) MimeType {
	ct := strings.Split(contentType, ";")[0]

	return MimeType{value: strings.TrimSpace(strings.ToLower(ct))}
}

type MimeType struct {
	value string
}

// Extension returns the file extension including the leading dot.
// Plain text is treated as csv, spreadsheet exports often use it.
func (m MimeType) Extension() (string, error) {
	switch m.value {
	case MimeTypeJSON:
		return ".json", nil
	case MimeTypeZip, MimeTypeZipLegacy:
		return ".zip", nil
	case MimeTypeCSV, MimeTypePlain:
		return ".csv", nil
	default:
		return "", fmt.Errorf("unsupported mime type %s", m.value)
	}
}

// BuildFilename appends the matching file extension to the given name.
// An error is returned for unsupported mime-types or empty names.
func (m MimeType) BuildFilename(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("can't build file name without prefix")
	}

	ext, err := m.Extension()
	if err != nil {
		return "", err
	}

	return name + ext, nil
}

// IsZip returns true for zip archives.
func (m MimeType) IsZip() bool {
	return m.value == MimeTypeZip || m.value == MimeTypeZipLegacy
}

// Raw returns the extracted mime-type.
func (m MimeType) Raw() string {
	return m.value
}
