package anki

import (
	"crypto/sha1" // #nosec G505 anki note checksums are defined as sha1
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"html"
	"regexp"
	"strconv"
	"strings"
)

const base91Table = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!#$%&()*+,-./:;<=>?@[]^_`{|}~"

const (
	guidFieldJoiner  = "__"
	noteFieldJoiner  = "\x1f"
	tagListSeparator = " "
)

var (
	htmlTagPattern  = regexp.MustCompile(`(?s)<[^>]*>`)
	soundRefPattern = regexp.MustCompile(`\[sound:[^\]]+\]`)
)

// GUIDFor derives a stable note guid from the given values, equal values always produce the same guid.
// Anki uses the guid to detect already imported notes.
func GUIDFor(values ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(values, guidFieldJoiner)))

	return base91(binary.BigEndian.Uint64(sum[:8]))
}

func base91(n uint64) string {
	if n == 0 {
		return base91Table[:1]
	}

	var reversed []byte
	for n > 0 {
		reversed = append(reversed, base91Table[n%91])
		n /= 91
	}

	out := make([]byte, len(reversed))
	for i, b := range reversed {
		out[len(reversed)-1-i] = b
	}

	return string(out)
}

// stripHTML removes tags and media references and decodes entities, used for sort field and checksum.
func stripHTML(s string) string {
	s = soundRefPattern.ReplaceAllString(s, "")
	s = htmlTagPattern.ReplaceAllString(s, "")

	return strings.TrimSpace(html.UnescapeString(s))
}

// fieldChecksum returns the first 8 hex digits of the sha1 of the stripped field as number.
func fieldChecksum(field string) int64 {
	sum := sha1.Sum([]byte(stripHTML(field))) // #nosec G401 not used for security
	v, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)

	return v
}
