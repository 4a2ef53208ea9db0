package dataset

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// readFunc streams the rows of r into rows until the input is exhausted or ctx is canceled.
type readFunc func(ctx context.Context, r io.Reader, rows chan<- []string) error

func emit(ctx context.Context, rows chan<- []string, row []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case rows <- row:
		return nil
	}
}

// csvReader returns a reader for delimiter separated input. The first record is the header and never emitted.
func csvReader(delimiter rune) readFunc {
	return func(ctx context.Context, r io.Reader, rows chan<- []string) error {
		// invalid byte sequences become U+FFFD, they get removed while cleaning the fields
		decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

		reader := csv.NewReader(decoded)
		reader.Comma = delimiter
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		header := true
		for {
			record, err := reader.Read()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read csv record %w", err)
			}

			if header {
				header = false

				continue
			}

			if err := emit(ctx, rows, record); err != nil {
				return err
			}
		}
	}
}

// readJSON expects an array of arrays. Each inner array is one row, scalar entries are rendered as text.
// Top level entries that are not an array are emitted as empty row.
func readJSON(ctx context.Context, r io.Reader, rows chan<- []string) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectNext(json.Delim('['), dec); err != nil {
		return err
	}

	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return fmt.Errorf("failed to get next token %w", err)
		}

		var row []string
		switch t {
		case json.Delim('['):
			if row, err = readJSONRow(dec); err != nil {
				return err
			}
		case json.Delim('{'):
			if err := skipRest(dec); err != nil {
				return err
			}
		}

		if err := emit(ctx, rows, row); err != nil {
			return err
		}
	}

	return expectNext(json.Delim(']'), dec)
}

func readJSONRow(dec *json.Decoder) ([]string, error) {
	row := []string{}
	for dec.More() {
		t, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to get next token %w", err)
		}

		switch v := t.(type) {
		case string:
			row = append(row, v)
		case json.Number:
			row = append(row, v.String())
		case bool:
			row = append(row, fmt.Sprintf("%t", v))
		case nil:
			row = append(row, "")
		default:
			return nil, fmt.Errorf("unexpected nested value %v in row %d", v, len(row)+1)
		}
	}

	if err := expectNext(json.Delim(']'), dec); err != nil {
		return nil, err
	}

	return row, nil
}

func expectNext(expected json.Delim, dec *json.Decoder) error {
	t, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to get next token %w", err)
	}

	if t != expected {
		return fmt.Errorf("expected token to be %v but found %v", expected, t)
	}

	return nil
}

// skipRest consumes a composite value whose opening delimiter was already read.
func skipRest(dec *json.Decoder) error {
	n := 1
	for n > 0 {
		t, err := dec.Token()
		if err != nil {
			return err
		}
		switch t {
		case json.Delim('['), json.Delim('{'):
			n++
		case json.Delim(']'), json.Delim('}'):
			n--
		}
	}

	return nil
}
