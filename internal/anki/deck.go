package anki

import "fmt"

// Deck a named collection of notes.
type Deck struct {
	ID          int64
	Name        string
	Description string
	Notes       []*Note
}

func NewDeck(id int64, name string) *Deck {
	return &Deck{
		ID:   id,
		Name: name,
	}
}

func (d *Deck) AddNote(n *Note) {
	d.Notes = append(d.Notes, n)
}

// Models returns the distinct models of all notes in insertion order.
func (d *Deck) Models() []*Model {
	seen := map[int64]bool{}
	var models []*Model
	for _, n := range d.Notes {
		if !seen[n.Model.ID] {
			seen[n.Model.ID] = true
			models = append(models, n.Model)
		}
	}

	return models
}

func (d *Deck) validate() error {
	if d.ID <= 0 {
		return fmt.Errorf("deck id must be positive but was %d", d.ID)
	}
	if d.Name == "" {
		return fmt.Errorf("deck %d has no name", d.ID)
	}

	for _, m := range d.Models() {
		if err := m.validate(); err != nil {
			return err
		}
	}

	return nil
}

type deckJSON struct {
	Collapsed bool   `json:"collapsed"`
	Conf      int    `json:"conf"`
	Desc      string `json:"desc"`
	Dyn       int    `json:"dyn"`
	ExtendNew int    `json:"extendNew"`
	ExtendRev int    `json:"extendRev"`
	ID        int64  `json:"id"`
	LrnToday  [2]int `json:"lrnToday"`
	Mod       int64  `json:"mod"`
	Name      string `json:"name"`
	NewToday  [2]int `json:"newToday"`
	RevToday  [2]int `json:"revToday"`
	TimeToday [2]int `json:"timeToday"`
	Usn       int    `json:"usn"`
}

func newDeckJSON(id int64, name, desc string, mod int64) deckJSON {
	return deckJSON{
		Conf:      1,
		Desc:      desc,
		ExtendRev: 50,
		ID:        id,
		Mod:       mod,
		Name:      name,
		Usn:       -1,
	}
}
