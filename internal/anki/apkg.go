package anki

import (
	"archive/zip"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/konstantinfoerster/anki-importer-go/internal/aio"
	_ "github.com/mattn/go-sqlite3"
)

const (
	collectionFile = "collection.anki2"
	mediaFile      = "media"
	// the media manifest maps archive entries to file names, no media is shipped
	emptyMedia = "{}"
)

// Package a deck ready to be written as .apkg archive.
type Package struct {
	Deck *Deck
	now  func() time.Time
}

func NewPackage(deck *Deck) *Package {
	return &Package{
		Deck: deck,
		now:  time.Now,
	}
}

// WithClock replaces the clock used for timestamps and note/card ids.
func (p *Package) WithClock(now func() time.Time) *Package {
	p.now = now

	return p
}

// Write builds the collection database in a temporary directory and writes the zipped package to w.
func (p *Package) Write(ctx context.Context, w io.Writer) error {
	if p.Deck == nil {
		return fmt.Errorf("package has no deck")
	}
	if err := p.Deck.validate(); err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "apkg-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary directory %w", err)
	}
	defer os.RemoveAll(dir)

	dbPath := filepath.Join(dir, collectionFile)
	if err := buildCollection(ctx, dbPath, p.Deck, p.now()); err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	if err := addFile(zw, collectionFile, dbPath); err != nil {
		return err
	}
	if err := addContent(zw, mediaFile, []byte(emptyMedia)); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish archive %w", err)
	}

	return nil
}

func buildCollection(ctx context.Context, path string, deck *Deck, now time.Time) (err error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=DELETE")
	if err != nil {
		return fmt.Errorf("failed to open collection %w", err)
	}
	defer aio.CloseWithErr(db, &err)
	db.SetMaxOpenConns(1)

	if err := writeCollection(ctx, db, deck, now); err != nil {
		return fmt.Errorf("failed to write collection %w", err)
	}

	return nil
}

func addFile(zw *zip.Writer, name string, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s %w", path, err)
	}
	defer aio.Close(f)

	entry, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s %w", name, err)
	}

	if _, err := io.Copy(entry, f); err != nil {
		return fmt.Errorf("failed to write archive entry %s %w", name, err)
	}

	return nil
}

func addContent(zw *zip.Writer, name string, content []byte) error {
	entry, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create archive entry %s %w", name, err)
	}

	if _, err := entry.Write(content); err != nil {
		return fmt.Errorf("failed to write archive entry %s %w", name, err)
	}

	return nil
}
