package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/konstantinfoerster/anki-importer-go/internal/anki"
	"github.com/konstantinfoerster/anki-importer-go/internal/storage"
	"github.com/konstantinfoerster/anki-importer-go/internal/web"
	"gopkg.in/yaml.v3"
)

const DefaultOutput = "NotionToAnki.apkg"

type Config struct {
	Logging Logging        `yaml:"logging"`
	Anki    Anki           `yaml:"anki"`
	Input   Input          `yaml:"input"`
	Storage storage.Config `yaml:"storage"`
}

type Logging struct {
	Level string `yaml:"level"`
}

func (l Logging) LevelOrDefault() string {
	level := strings.TrimSpace(l.Level)
	if level == "" {
		level = "INFO"
	}

	return strings.ToLower(level)
}

// Anki holds the identity of the generated deck and note model. Keep the ids stable between runs,
// otherwise Anki creates a new deck instead of updating the existing one.
type Anki struct {
	DeckID          int64  `yaml:"deckId"`
	DeckName        string `yaml:"deckName"`
	DeckDescription string `yaml:"deckDescription"`
	ModelID         int64  `yaml:"modelId"`
	ModelName       string `yaml:"modelName"`
	Output          string `yaml:"output"`
}

func (a Anki) DeckIDOrDefault() int64 {
	if a.DeckID == 0 {
		return anki.DefaultDeckID
	}

	return a.DeckID
}

func (a Anki) DeckNameOrDefault() string {
	if strings.TrimSpace(a.DeckName) == "" {
		return anki.DefaultDeckName
	}

	return a.DeckName
}

func (a Anki) ModelIDOrDefault() int64 {
	if a.ModelID == 0 {
		return anki.DefaultModelID
	}

	return a.ModelID
}

func (a Anki) ModelNameOrDefault() string {
	if strings.TrimSpace(a.ModelName) == "" {
		return anki.DefaultModelName
	}

	return a.ModelName
}

func (a Anki) OutputOrDefault() string {
	if strings.TrimSpace(a.Output) == "" {
		return DefaultOutput
	}

	return a.Output
}

type Input struct {
	Delimiter string     `yaml:"delimiter"`
	Download  web.Config `yaml:"download"`
}

// DelimiterOrDefault returns the csv field delimiter, a comma if nothing is configured.
func (i Input) DelimiterOrDefault() rune {
	if i.Delimiter == "" {
		return ','
	}
	if i.Delimiter == `\t` {
		return '\t'
	}

	r, _ := utf8.DecodeRuneInString(i.Delimiter)

	return r
}

// Load reads the configuration from the given yaml file.
func Load(path string) (*Config, error) {
	s, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if s.IsDir() {
		return nil, fmt.Errorf("'%s' is a directory, not a regular file", path)
	}

	return buildConfig(path)
}

// LoadOptional behaves like Load but falls back to an empty configuration if the file does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}

	return cfg, err
}

func buildConfig(path string) (*Config, error) {
	// #nosec G304 the config path is supplied by the user on purpose
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file: %w", err)
	}

	config := &Config{}

	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("config unmarshal failed with: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Anki.DeckID < 0 || c.Anki.ModelID < 0 {
		return fmt.Errorf("deckId and modelId must be positive")
	}

	d := c.Input.Delimiter
	if d != "" && d != `\t` && utf8.RuneCountInString(d) != 1 {
		return fmt.Errorf("delimiter must be a single character but was '%s'", d)
	}
	if d == "\"" || d == "\n" || d == "\r" {
		return fmt.Errorf("delimiter '%s' is not allowed", d)
	}

	return nil
}
