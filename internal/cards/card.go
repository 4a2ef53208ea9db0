package cards

// Card A single flashcard. Front is shown as prompt, Back as answer.
// Cards have no identity beyond their position in the input.
type Card struct {
	Front string
	Back  string
	Tags  []string
}

// NewCard builds a card from raw input fields. The first field is the front, the second the back and the
// optional third one holds whitespace separated tags. Returns false if less than two fields are given.
func NewCard(fields []string) (Card, bool) {
	if len(fields) < 2 {
		return Card{}, false
	}

	c := Card{
		Front: CleanFront(fields[0]),
		Back:  CleanBack(fields[1]),
	}
	if len(fields) > 2 {
		c.Tags = ParseTags(fields[2])
	}

	return c, true
}
