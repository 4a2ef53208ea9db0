package cards

import (
	"html"
	"strings"
	"unicode/utf8"
)

var newlineReplacer = strings.NewReplacer("\r\n", "<br>", "\n", "<br>")

// Sanitize removes everything that is not representable as valid UTF-8 text.
// Invalid byte sequences (e.g. encoded lone surrogates) are dropped, as well as replacement
// characters that decoders emit for unpaired surrogate escapes.
func Sanitize(s string) string {
	s = strings.ToValidUTF8(s, "")
	if !strings.ContainsRune(s, utf8.RuneError) {
		return s
	}

	return strings.ReplaceAll(s, string(utf8.RuneError), "")
}

// UnescapeHTML decodes HTML entities, &lt;br&gt; becomes <br>.
func UnescapeHTML(s string) string {
	return html.UnescapeString(s)
}

// NewlinesToBreaks replaces line breaks with <br> markup.
func NewlinesToBreaks(s string) string {
	return newlineReplacer.Replace(s)
}

// CleanFront prepares the text shown as prompt.
func CleanFront(s string) string {
	return Sanitize(s)
}

// CleanBack prepares the answer text. Entities are decoded before the newline substitution.
func CleanBack(s string) string {
	return NewlinesToBreaks(UnescapeHTML(Sanitize(s)))
}

// ParseTags splits the input on whitespace. Anki tags must not contain spaces.
func ParseTags(s string) []string {
	tags := strings.Fields(Sanitize(s))
	if len(tags) == 0 {
		return nil
	}

	return tags
}
