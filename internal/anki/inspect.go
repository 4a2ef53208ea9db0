package anki

import (
	"archive/zip"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/konstantinfoerster/anki-importer-go/internal/aio"
)

type DeckSummary struct {
	ID   int64
	Name string
}

type ModelSummary struct {
	ID     int64
	Name   string
	Fields []string
}

type NoteSummary struct {
	GUID   string
	Fields []string
	Tags   []string
}

// Summary describes the content of an .apkg file.
type Summary struct {
	Decks     []DeckSummary
	Models    []ModelSummary
	Notes     []NoteSummary
	CardCount int
}

// Inspect reads the package at path. The default deck every collection carries is not reported.
func Inspect(ctx context.Context, path string) (*Summary, error) {
	dir, err := os.MkdirTemp("", "apkg-inspect-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary directory %w", err)
	}
	defer os.RemoveAll(dir)

	dbPath := filepath.Join(dir, collectionFile)
	if err := extractCollection(path, dbPath); err != nil {
		return nil, err
	}

	return readSummary(ctx, dbPath)
}

func extractCollection(apkg string, target string) error {
	r, err := zip.OpenReader(apkg)
	if err != nil {
		return fmt.Errorf("failed to open package %s %w", apkg, err)
	}
	defer aio.Close(r)

	for _, f := range r.File {
		if f.Name == collectionFile {
			return copyEntry(f, target)
		}
	}

	return fmt.Errorf("package %s contains no %s", apkg, collectionFile)
}

func copyEntry(f *zip.File, target string) (err error) {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s %w", f.Name, err)
	}
	defer aio.Close(src)

	dst, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s %w", target, err)
	}
	defer aio.CloseWithErr(dst, &err)

	if _, err = io.Copy(dst, src); err != nil {
		return fmt.Errorf("failed to extract %s %w", f.Name, err)
	}

	return nil
}

func readSummary(ctx context.Context, dbPath string) (_ *Summary, err error) {
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %w", err)
	}
	defer aio.CloseWithErr(db, &err)

	var rawModels, rawDecks string
	err = db.QueryRowContext(ctx, "SELECT models, decks FROM col").Scan(&rawModels, &rawDecks)
	if err != nil {
		return nil, fmt.Errorf("failed to read collection settings %w", err)
	}

	s := &Summary{}
	if s.Models, err = parseModels(rawModels); err != nil {
		return nil, err
	}
	if s.Decks, err = parseDecks(rawDecks); err != nil {
		return nil, err
	}
	if s.Notes, err = readNotes(ctx, db); err != nil {
		return nil, err
	}

	err = db.QueryRowContext(ctx, "SELECT count(*) FROM cards").Scan(&s.CardCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count cards %w", err)
	}

	return s, nil
}

func parseModels(raw string) ([]ModelSummary, error) {
	var models map[string]modelJSON
	if err := json.Unmarshal([]byte(raw), &models); err != nil {
		return nil, fmt.Errorf("failed to parse models %w", err)
	}

	result := make([]ModelSummary, 0, len(models))
	for _, m := range models {
		id, err := strconv.ParseInt(m.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid model id %s %w", m.ID, err)
		}

		fields := make([]string, 0, len(m.Flds))
		for _, f := range m.Flds {
			fields = append(fields, f.Name)
		}
		result = append(result, ModelSummary{ID: id, Name: m.Name, Fields: fields})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func parseDecks(raw string) ([]DeckSummary, error) {
	var decks map[string]deckJSON
	if err := json.Unmarshal([]byte(raw), &decks); err != nil {
		return nil, fmt.Errorf("failed to parse decks %w", err)
	}

	result := make([]DeckSummary, 0, len(decks))
	for _, d := range decks {
		if d.ID == defaultDeckID {
			continue
		}
		result = append(result, DeckSummary{ID: d.ID, Name: d.Name})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })

	return result, nil
}

func readNotes(ctx context.Context, db *sql.DB) (_ []NoteSummary, err error) {
	rows, err := db.QueryContext(ctx, "SELECT guid, flds, tags FROM notes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query notes %w", err)
	}
	defer aio.CloseWithErr(rows, &err)

	var notes []NoteSummary
	for rows.Next() {
		var guid, flds, tags string
		if err := rows.Scan(&guid, &flds, &tags); err != nil {
			return nil, fmt.Errorf("failed to read note %w", err)
		}
		notes = append(notes, NoteSummary{
			GUID:   guid,
			Fields: strings.Split(flds, noteFieldJoiner),
			Tags:   strings.Fields(tags),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes %w", err)
	}

	return notes, nil
}
