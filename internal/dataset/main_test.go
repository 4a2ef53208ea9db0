package dataset_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/konstantinfoerster/anki-importer-go/internal/cards"
	logger "github.com/konstantinfoerster/anki-importer-go/internal/log"
)

func TestMain(m *testing.M) {
	logger.SetupConsoleLogger(os.Stderr)
	err := logger.SetLogLevel("warn")
	if err != nil {
		fmt.Printf("Failed to set log level %v", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

type recordingPackager struct {
	cards  []cards.Card
	called bool
	err    error
}

func (p *recordingPackager) Package(_ context.Context, cc []cards.Card) (string, error) {
	p.called = true
	p.cards = cc
	if p.err != nil {
		return "", p.err
	}

	return "/out/NotionToAnki.apkg", nil
}
