package anki

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

const (
	schemaVersion = 11
	defaultDeckID = 1
)

var schema = []string{
	`CREATE TABLE col (
		id     integer primary key,
		crt    integer not null,
		mod    integer not null,
		scm    integer not null,
		ver    integer not null,
		dty    integer not null,
		usn    integer not null,
		ls     integer not null,
		conf   text not null,
		models text not null,
		decks  text not null,
		dconf  text not null,
		tags   text not null
	)`,
	`CREATE TABLE notes (
		id    integer primary key,
		guid  text not null,
		mid   integer not null,
		mod   integer not null,
		usn   integer not null,
		tags  text not null,
		flds  text not null,
		sfld  integer not null,
		csum  integer not null,
		flags integer not null,
		data  text not null
	)`,
	`CREATE TABLE cards (
		id     integer primary key,
		nid    integer not null,
		did    integer not null,
		ord    integer not null,
		mod    integer not null,
		usn    integer not null,
		type   integer not null,
		queue  integer not null,
		due    integer not null,
		ivl    integer not null,
		factor integer not null,
		reps   integer not null,
		lapses integer not null,
		left   integer not null,
		odue   integer not null,
		odid   integer not null,
		flags  integer not null,
		data   text not null
	)`,
	`CREATE TABLE revlog (
		id      integer primary key,
		cid     integer not null,
		usn     integer not null,
		ease    integer not null,
		ivl     integer not null,
		lastIvl integer not null,
		factor  integer not null,
		time    integer not null,
		type    integer not null
	)`,
	`CREATE TABLE graves (
		usn  integer not null,
		oid  integer not null,
		type integer not null
	)`,
	`CREATE INDEX ix_notes_usn ON notes (usn)`,
	`CREATE INDEX ix_cards_usn ON cards (usn)`,
	`CREATE INDEX ix_revlog_usn ON revlog (usn)`,
	`CREATE INDEX ix_cards_nid ON cards (nid)`,
	`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
	`CREATE INDEX ix_notes_csum ON notes (csum)`,
}

// idSequence hands out strictly increasing millisecond based ids.
type idSequence struct {
	next int64
}

func newIDSequence(now time.Time) *idSequence {
	return &idSequence{next: now.UnixMilli()}
}

func (s *idSequence) Next() int64 {
	id := s.next
	s.next++

	return id
}

// writeCollection creates the anki schema inside the empty database and stores the deck with all notes and cards.
func writeCollection(ctx context.Context, db *sql.DB, deck *Deck, now time.Time) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := insertCol(ctx, tx, deck, now); err != nil {
		return err
	}
	if err := insertNotes(ctx, tx, deck, now); err != nil {
		return err
	}

	return tx.Commit()
}

func insertCol(ctx context.Context, tx *sql.Tx, deck *Deck, now time.Time) error {
	mod := now.Unix()
	models := map[string]modelJSON{}
	curModel := ""
	for _, m := range deck.Models() {
		id := strconv.FormatInt(m.ID, 10)
		models[id] = m.toJSON(deck.ID, mod)
		if curModel == "" {
			curModel = id
		}
	}

	decks := map[string]deckJSON{
		strconv.Itoa(defaultDeckID):     newDeckJSON(defaultDeckID, "Default", "", mod),
		strconv.FormatInt(deck.ID, 10): newDeckJSON(deck.ID, deck.Name, deck.Description, mod),
	}

	conf := map[string]any{
		"activeDecks":   []int64{defaultDeckID},
		"addToCur":      true,
		"collapseTime":  1200,
		"curDeck":       defaultDeckID,
		"curModel":      curModel,
		"dueCounts":     true,
		"estTimes":      true,
		"newBury":       true,
		"newSpread":     0,
		"nextPos":       len(deck.Notes) + 1,
		"sortBackwards": false,
		"sortType":      "noteFld",
		"timeLim":       0,
	}

	values := make([]string, 0, 4)
	for _, v := range []any{conf, models, decks, defaultDeckConf()} {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal collection settings %w", err)
		}
		values = append(values, string(b))
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		 VALUES (1, ?, ?, ?, ?, 0, 0, 0, ?, ?, ?, ?, '{}')`,
		now.Truncate(24*time.Hour).Unix(), now.UnixMilli(), now.UnixMilli(), schemaVersion,
		values[0], values[1], values[2], values[3],
	)
	if err != nil {
		return fmt.Errorf("inserting collection: %w", err)
	}

	return nil
}

func insertNotes(ctx context.Context, tx *sql.Tx, deck *Deck, now time.Time) error {
	noteStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
		 VALUES (?, ?, ?, ?, -1, ?, ?, ?, ?, 0, '')`)
	if err != nil {
		return fmt.Errorf("preparing note insert: %w", err)
	}
	defer noteStmt.Close()

	cardStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data)
		 VALUES (?, ?, ?, ?, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`)
	if err != nil {
		return fmt.Errorf("preparing card insert: %w", err)
	}
	defer cardStmt.Close()

	ids := newIDSequence(now)
	mod := now.Unix()
	for pos, n := range deck.Notes {
		noteID := ids.Next()
		_, err := noteStmt.ExecContext(ctx,
			noteID, n.GUID, n.Model.ID, mod, n.joinedTags(), n.joinedFields(), n.sortField(), n.checksum())
		if err != nil {
			return fmt.Errorf("inserting note %d: %w", pos+1, err)
		}

		for _, ord := range n.CardOrds() {
			if _, err := cardStmt.ExecContext(ctx, ids.Next(), noteID, deck.ID, ord, mod, pos+1); err != nil {
				return fmt.Errorf("inserting card %d of note %d: %w", ord, pos+1, err)
			}
		}
	}

	return nil
}

func defaultDeckConf() map[string]any {
	return map[string]any{
		"1": map[string]any{
			"autoplay": true,
			"id":       1,
			"lapse": map[string]any{
				"delays":      []int{10},
				"leechAction": 0,
				"leechFails":  8,
				"minInt":      1,
				"mult":        0,
			},
			"maxTaken": 60,
			"mod":      0,
			"name":     "Default",
			"new": map[string]any{
				"bury":          true,
				"delays":        []int{1, 10},
				"initialFactor": 2500,
				"ints":          []int{1, 4, 7},
				"order":         1,
				"perDay":        20,
				"separate":      true,
			},
			"replayq": true,
			"rev": map[string]any{
				"bury":     true,
				"ease4":    1.3,
				"fuzz":     0.05,
				"ivlFct":   1,
				"maxIvl":   36500,
				"minSpace": 1,
				"perDay":   100,
			},
			"timer": 0,
			"usn":   0,
		},
	}
}
