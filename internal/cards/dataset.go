package cards

import (
	"context"
	"io"
)

// Report summarizes a single import run.
type Report struct {
	// RowCount number of data rows read, the header is not counted.
	RowCount int
	// CardCount number of cards written into the package.
	CardCount int
	// SkippedCount number of rows with less than two fields.
	SkippedCount int
	// Output absolute path of the written package.
	Output string
}

type Dataset interface {
	Import(ctx context.Context, r io.Reader) (*Report, error)
}

// Packager writes the given cards into a package and returns the path of the written file.
type Packager interface {
	Package(ctx context.Context, cc []Card) (string, error)
}
