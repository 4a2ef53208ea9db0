package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/fatih/color"
	"github.com/konstantinfoerster/anki-importer-go/internal/anki"
	"github.com/konstantinfoerster/anki-importer-go/internal/config"
	"github.com/konstantinfoerster/anki-importer-go/internal/dataset"
	logger "github.com/konstantinfoerster/anki-importer-go/internal/log"
	"github.com/konstantinfoerster/anki-importer-go/internal/stats"
	"github.com/konstantinfoerster/anki-importer-go/internal/storage"
	"github.com/konstantinfoerster/anki-importer-go/internal/timer"
	"github.com/konstantinfoerster/anki-importer-go/internal/web"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	defaultConfigPath = "./configs/application.yaml"
	defaultSource     = "notion_to_anki.csv"
)

type options struct {
	configPath string
	output     string
	deckName   string
	json       bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "ankipack [source]",
		Short: "Package flashcards from csv or json into an Anki deck",
		Long: `ankipack reads front/back pairs and writes them as notes into an Anki package (.apkg).

The source is a csv file with a header line (Front, Back and optional Tags column), a json file
holding an array of [front, back] pairs, a zip archive with exactly one of them or a http(s) url.
Use '-' to read json from stdin. Without a source ` + defaultSource + ` is used.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			source := defaultSource
			if len(args) == 1 {
				source = args[0]
			}

			return runPackage(cmd, source, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "path to the configuration file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "path of the written package (default "+config.DefaultOutput+")")
	cmd.Flags().StringVar(&opts.deckName, "deck-name", "", "name of the deck (default "+anki.DefaultDeckName+")")
	cmd.Flags().BoolVar(&opts.json, "json", false, "read the source as json regardless of its extension")

	cmd.AddCommand(newInspectCmd())

	return cmd
}

func loadConfig(cmd *cobra.Command, path string) (*config.Config, error) {
	if cmd.Flags().Changed("config") {
		return config.Load(path)
	}

	return config.LoadOptional(path)
}

func runPackage(cmd *cobra.Command, source string, opts *options) error {
	defer timer.TimeTrack(time.Now(), "package")

	cfg, err := loadConfig(cmd, opts.configPath)
	if err != nil {
		return err
	}

	if err := logger.SetLogLevel(cfg.Logging.LevelOrDefault()); err != nil {
		return err
	}

	log.Info().Msgf("OS\t\t %s", runtime.GOOS)
	log.Info().Msgf("ARCH\t\t %s", runtime.GOARCH)
	log.Info().Msgf("CPUs\t\t %d", runtime.NumCPU())

	output := cfg.Anki.OutputOrDefault()
	if opts.output != "" {
		output = opts.output
	}
	deckName := cfg.Anki.DeckNameOrDefault()
	if opts.deckName != "" {
		deckName = opts.deckName
	}

	store, err := storage.NewLocalStorage(cfg.Storage)
	if err != nil {
		return err
	}
	outStore, err := storage.NewLocalStorage(storage.Config{Location: filepath.Dir(output), Mode: storage.REPLACE})
	if err != nil {
		return err
	}

	model := anki.NewBasicModel(cfg.Anki.ModelIDOrDefault(), cfg.Anki.ModelNameOrDefault())
	deck := anki.DeckInfo{
		ID:          cfg.Anki.DeckIDOrDefault(),
		Name:        deckName,
		Description: cfg.Anki.DeckDescription,
	}
	writer := anki.NewWriter(model, deck, outStore, filepath.Base(output))

	client := web.NewClient(cfg.Input.Download, &http.Client{
		Timeout: cfg.Input.Download.TimeoutOrDefault(),
	})
	loader := dataset.NewLoader(
		dataset.NewCSVImporter(writer, cfg.Input.DelimiterOrDefault()),
		dataset.NewJSONImporter(writer),
		client,
		store,
	).WithStdin(cmd.InOrStdin())
	if opts.json {
		loader.WithFormat(dataset.FormatJSON)
	}

	log.Info().Msgf("Reading data from %s", source)
	report, err := loader.Load(cmd.Context(), source)
	if errors.Is(err, dataset.ErrSourceNotFound) {
		_, _ = color.New(color.FgRed).Fprintf(cmd.OutOrStdout(), "Error: File '%s' not found!\n", source)

		return nil
	}
	if err != nil {
		return fmt.Errorf("fatal error during packaging %w", err)
	}

	_, _ = color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "SUCCESS: %d notes packaged into %s\n",
		report.CardCount, report.Output)
	log.Info().Msgf("Report %#v", report)
	stats.LogMemUsage()

	return nil
}

func main() {
	logger.SetupConsoleLogger(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("ankipack failed")
		os.Exit(1)
	}
}
