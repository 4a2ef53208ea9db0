package dataset

import (
	"context"
	"fmt"
	"io"

	"github.com/konstantinfoerster/anki-importer-go/internal/cards"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Importer struct {
	name     string
	read     readFunc
	packager cards.Packager
}

// NewCSVImporter imports csv input with a header line and the columns front, back and optional tags.
func NewCSVImporter(packager cards.Packager, delimiter rune) cards.Dataset {
	return &Importer{
		name:     "csv",
		read:     csvReader(delimiter),
		packager: packager,
	}
}

// NewJSONImporter imports a json array of [front, back] pairs.
func NewJSONImporter(packager cards.Packager) cards.Dataset {
	return &Importer{
		name:     "json",
		read:     readJSON,
		packager: packager,
	}
}

func (imp *Importer) Import(ctx context.Context, r io.Reader) (*cards.Report, error) {
	errg, gctx := errgroup.WithContext(ctx)
	rows := make(chan []string)

	errg.Go(func() error {
		defer close(rows)

		return imp.read(gctx, r, rows)
	})

	report := &cards.Report{}
	var cc []cards.Card
	for row := range rows {
		report.RowCount++

		c, ok := cards.NewCard(row)
		if !ok {
			report.SkippedCount++
			log.Debug().Int("row", report.RowCount).Int("fields", len(row)).Msg("skipping row with less than two fields")

			continue
		}
		cc = append(cc, c)
	}

	if err := errg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read %s input %w", imp.name, err)
	}

	log.Info().Msgf("Read %d rows, %d skipped", report.RowCount, report.SkippedCount)

	out, err := imp.packager.Package(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to write package %w", err)
	}
	report.CardCount = len(cc)
	report.Output = out

	return report, nil
}
