package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/konstantinfoerster/anki-importer-go/internal/aio"
	"github.com/konstantinfoerster/anki-importer-go/internal/cards"
	"github.com/konstantinfoerster/anki-importer-go/internal/storage"
	"github.com/konstantinfoerster/anki-importer-go/internal/web"
	"github.com/rs/zerolog/log"
)

// ErrSourceNotFound is returned when the local input file does not exist.
var ErrSourceNotFound = errors.New("source not found")

// Stdin as source reads json from standard input.
const Stdin = "-"

const downloadDir = "downloads"

var acceptedMimeTypes = strings.Join([]string{web.MimeTypeCSV, web.MimeTypeJSON, web.MimeTypeZip, "*/*;q=0.5"}, ", ")

type Format int

const (
	// FormatAuto picks the reader by file extension, json for stdin.
	FormatAuto Format = iota
	FormatCSV
	FormatJSON
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	default:
		return "auto"
	}
}

type Loader struct {
	csv    cards.Dataset
	json   cards.Dataset
	client web.Client
	store  storage.Storer
	stdin  io.Reader
	format Format
}

func NewLoader(csv cards.Dataset, json cards.Dataset, client web.Client, store storage.Storer) *Loader {
	return &Loader{
		csv:    csv,
		json:   json,
		client: client,
		store:  store,
		stdin:  os.Stdin,
		format: FormatAuto,
	}
}

func (l *Loader) WithStdin(r io.Reader) *Loader {
	l.stdin = r

	return l
}

// WithFormat forces the reader for every source, zip files are still extracted.
func (l *Loader) WithFormat(f Format) *Loader {
	l.format = f

	return l
}

// Load imports the given source. A source is either '-' for stdin, a http(s) url or a local file.
// Zip files must contain exactly one csv or json file.
func (l *Loader) Load(ctx context.Context, source string) (*cards.Report, error) {
	if source == Stdin {
		log.Info().Msg("Reading cards from stdin")

		return l.datasetFor(".json").Import(ctx, l.stdin)
	}

	if u, err := url.Parse(source); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return l.loadURL(ctx, u)
	}

	return l.loadFile(ctx, filepath.Clean(source))
}

func (l *Loader) loadFile(ctx context.Context, filePath string) (*cards.Report, error) {
	s, err := os.Stat(filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to access file %s %w", filePath, err)
	}
	if s.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory, not a regular file", filePath)
	}

	if strings.EqualFold(filepath.Ext(filePath), ".zip") {
		return l.loadZip(ctx, filePath)
	}

	return l.importFile(ctx, filePath)
}

func (l *Loader) loadZip(ctx context.Context, zipPath string) (*cards.Report, error) {
	dest, err := os.MkdirTemp("", "anki-import-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction directory %w", err)
	}
	defer func() {
		if err := os.RemoveAll(dest); err != nil {
			log.Warn().Err(err).Msgf("failed to delete extracted files in %s", dest)
		}
	}()

	files, err := unzip(zipPath, dest)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, f := range files {
		switch strings.ToLower(filepath.Ext(f)) {
		case ".csv", ".json":
			candidates = append(candidates, f)
		}
	}
	if len(candidates) != 1 {
		return nil, fmt.Errorf("unexpected file count inside zip file, expected 1 csv or json file but found %d", len(candidates))
	}

	return l.importFile(ctx, candidates[0])
}

func (l *Loader) loadURL(ctx context.Context, source *url.URL) (*cards.Report, error) {
	log.Info().Msgf("Downloading %s", source)

	opts := web.NewGetOpts().
		WithExpectedCodes(200).
		WithHeader(web.HeaderAccept, acceptedMimeTypes)
	resp, err := l.client.Get(ctx, source.String(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to download dataset from %s due to %w", source, err)
	}
	defer aio.Close(resp.Body)

	filename, err := downloadFilename(resp.MimeType, source)
	if err != nil {
		return nil, err
	}

	sFile, err := l.store.Store(resp.Body, downloadDir, filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := l.store.Remove(downloadDir, filename); err != nil {
			log.Warn().Err(err).Msgf("failed to delete downloaded file %s", sFile.Path)
		}
	}()

	return l.loadFile(ctx, sFile.AbsolutePath)
}

// downloadFilename builds a unique file name, the extension comes from the mime type or the url path
// for generic content types.
func downloadFilename(m web.MimeType, source *url.URL) (string, error) {
	name := fmt.Sprintf("%d", time.Now().UnixMilli())

	filename, err := m.BuildFilename(name)
	if err == nil {
		return filename, nil
	}

	switch ext := strings.ToLower(path.Ext(source.Path)); ext {
	case ".csv", ".json", ".zip":
		return name + ext, nil
	default:
		return "", err
	}
}

func (l *Loader) importFile(ctx context.Context, filePath string) (*cards.Report, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s %w", filePath, err)
	}
	defer aio.Close(f)

	log.Info().Msgf("Importing %s", filePath)

	return l.datasetFor(strings.ToLower(filepath.Ext(filePath))).Import(ctx, f)
}

func (l *Loader) datasetFor(ext string) cards.Dataset {
	switch l.format {
	case FormatCSV:
		return l.csv
	case FormatJSON:
		return l.json
	}

	if ext == ".json" {
		return l.json
	}

	return l.csv
}
