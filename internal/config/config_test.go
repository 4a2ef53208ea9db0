package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/konstantinfoerster/anki-importer-go/internal/anki"
	"github.com/konstantinfoerster/anki-importer-go/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "application.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: DEBUG
anki:
  deckId: 42
  deckName: Kanji
  modelId: 43
  output: out/kanji.apkg
input:
  delimiter: ";"
  download:
    timeout: 10s
    retries: 2
    retrieables: [429, 503]
storage:
  location: /tmp/downloads
  mode: replace
`)

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.LevelOrDefault())
	assert.Equal(t, int64(42), cfg.Anki.DeckIDOrDefault())
	assert.Equal(t, "Kanji", cfg.Anki.DeckNameOrDefault())
	assert.Equal(t, int64(43), cfg.Anki.ModelIDOrDefault())
	assert.Equal(t, anki.DefaultModelName, cfg.Anki.ModelNameOrDefault())
	assert.Equal(t, "out/kanji.apkg", cfg.Anki.OutputOrDefault())
	assert.Equal(t, ';', cfg.Input.DelimiterOrDefault())
	assert.Equal(t, 10*time.Second, cfg.Input.Download.TimeoutOrDefault())
	assert.Equal(t, []int{429, 503}, cfg.Input.Download.Retrieables)
	assert.Equal(t, "REPLACE", cfg.Storage.ModeOrDefault())
}

func TestDefaults(t *testing.T) {
	cfg := config.Config{}

	assert.Equal(t, "info", cfg.Logging.LevelOrDefault())
	assert.Equal(t, int64(2059400110), cfg.Anki.DeckIDOrDefault())
	assert.Equal(t, int64(1607392319), cfg.Anki.ModelIDOrDefault())
	assert.Equal(t, "Notion to Anki • Japanese N4+", cfg.Anki.DeckNameOrDefault())
	assert.Equal(t, "Notion CSV Model", cfg.Anki.ModelNameOrDefault())
	assert.Equal(t, "NotionToAnki.apkg", cfg.Anki.OutputOrDefault())
	assert.Equal(t, ',', cfg.Input.DelimiterOrDefault())
	assert.Equal(t, 30*time.Second, cfg.Input.Download.TimeoutOrDefault())
	assert.Equal(t, "CREATE", cfg.Storage.ModeOrDefault())
}

func TestDelimiterOrDefault(t *testing.T) {
	cases := []struct {
		name      string
		delimiter string
		want      rune
	}{
		{name: "empty", delimiter: "", want: ','},
		{name: "escaped tab", delimiter: `\t`, want: '\t'},
		{name: "semicolon", delimiter: ";", want: ';'},
		{name: "multi byte rune", delimiter: "、", want: '、'},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, config.Input{Delimiter: tc.delimiter}.DelimiterOrDefault())
		})
	}
}

func TestLoadFails(t *testing.T) {
	cases := []struct {
		name        string
		content     string
		wantContain string
	}{
		{
			name:        "invalid yaml",
			content:     "logging: [",
			wantContain: "config unmarshal failed",
		},
		{
			name:        "delimiter too long",
			content:     "input:\n  delimiter: ';;'",
			wantContain: "single character",
		},
		{
			name:        "quote as delimiter",
			content:     "input:\n  delimiter: '\"'",
			wantContain: "not allowed",
		},
		{
			name:        "negative deck id",
			content:     "anki:\n  deckId: -1",
			wantContain: "must be positive",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tc.content))

			assert.ErrorContains(t, err, tc.wantContain)
		})
	}
}

func TestLoadDirectoryFails(t *testing.T) {
	_, err := config.Load(t.TempDir())

	assert.ErrorContains(t, err, "is a directory")
}

func TestLoadOptional(t *testing.T) {
	cfg, err := config.LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, &config.Config{}, cfg)
}
