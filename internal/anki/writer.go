package anki

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/konstantinfoerster/anki-importer-go/internal/cards"
	"github.com/konstantinfoerster/anki-importer-go/internal/storage"
	"github.com/rs/zerolog/log"
)

type AtomicStorer interface {
	StoreAtomic(in io.Reader, path ...string) (storage.StoredFile, error)
}

// DeckInfo identifies the deck all imported cards end up in.
type DeckInfo struct {
	ID          int64
	Name        string
	Description string
}

// Writer turns cards into notes of a single model and stores them as .apkg file.
type Writer struct {
	model    *Model
	deck     DeckInfo
	store    AtomicStorer
	filename string
	now      func() time.Time
}

func NewWriter(model *Model, deck DeckInfo, store AtomicStorer, filename string) *Writer {
	return &Writer{
		model:    model,
		deck:     deck,
		store:    store,
		filename: filename,
		now:      time.Now,
	}
}

// WithClock replaces the clock used for timestamps and note/card ids.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now

	return w
}

// Package writes the cards into the configured file. The previous file is only replaced on success.
func (w *Writer) Package(ctx context.Context, cc []cards.Card) (string, error) {
	deck := NewDeck(w.deck.ID, w.deck.Name)
	deck.Description = w.deck.Description

	for i, c := range cc {
		note, err := NewNote(w.model, []string{c.Front, c.Back}, c.Tags)
		if err != nil {
			return "", fmt.Errorf("invalid card %d %w", i+1, err)
		}
		deck.AddNote(note)
	}

	var buf bytes.Buffer
	if err := NewPackage(deck).WithClock(w.now).Write(ctx, &buf); err != nil {
		return "", fmt.Errorf("failed to build package %w", err)
	}

	f, err := w.store.StoreAtomic(&buf, w.filename)
	if err != nil {
		return "", fmt.Errorf("failed to store package %w", err)
	}

	log.Debug().Int("notes", len(deck.Notes)).Str("file", f.AbsolutePath).Msg("package written")

	return f.AbsolutePath, nil
}

var _ cards.Packager = (*Writer)(nil)
