package anki

import (
	"fmt"
	"strings"
	"unicode"
)

// Note holds the field values of one entry. Field values are stored in the order of the model fields.
type Note struct {
	Model  *Model
	Fields []string
	Tags   []string
	GUID   string
}

// NewNote creates a note for the given model. The guid is derived from the field values.
func NewNote(model *Model, fields []string, tags []string) (*Note, error) {
	if model == nil {
		return nil, fmt.Errorf("note requires a model")
	}
	if len(fields) != len(model.Fields) {
		return nil, fmt.Errorf("model %s expects %d fields but got %d", model.Name, len(model.Fields), len(fields))
	}
	for _, t := range tags {
		if t == "" || strings.ContainsFunc(t, unicode.IsSpace) {
			return nil, fmt.Errorf("tag '%s' must not be empty or contain whitespace", t)
		}
	}

	return &Note{
		Model:  model,
		Fields: fields,
		Tags:   tags,
		GUID:   GUIDFor(fields...),
	}, nil
}

// CardOrds returns the template ordinals for which a card gets generated.
// A template produces a card if at least one field of its question side is not empty.
func (n *Note) CardOrds() []int {
	var ords []int
	for i := range n.Model.Templates {
		for _, f := range n.Model.requiredFields(i) {
			if stripHTML(n.Fields[f]) != "" {
				ords = append(ords, i)

				break
			}
		}
	}

	return ords
}

func (n *Note) sortField() string {
	return stripHTML(n.Fields[n.Model.SortField])
}

func (n *Note) checksum() int64 {
	return fieldChecksum(n.Fields[0])
}

func (n *Note) joinedFields() string {
	return strings.Join(n.Fields, noteFieldJoiner)
}

// joinedTags returns the tags in anki format, space separated and surrounded by spaces.
func (n *Note) joinedTags() string {
	if len(n.Tags) == 0 {
		return ""
	}

	return tagListSeparator + strings.Join(n.Tags, tagListSeparator) + tagListSeparator
}
