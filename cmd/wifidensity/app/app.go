package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/wifi-density/internal/beacon"
	"github.com/roman-kulish/wifi-density/internal/chart"
	"github.com/roman-kulish/wifi-density/internal/export"
	"github.com/roman-kulish/wifi-density/internal/report"
	"github.com/roman-kulish/wifi-density/internal/storage"
)

// CombinedFile is the name of the CSV file holding the records of all sources.
const CombinedFile = "combined_data.csv"

// SourceFile returns the name of the CSV file holding the records of a source.
func SourceFile(label string) string {
	return label + "_data.csv"
}

// Run analyzes the configured captures, or loads earlier results in one of
// the report modes, and draws the comparison charts.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	var records []beacon.Record
	var err error

	switch {
	case config.FromCSV != "":
		records, err = loadCSV(config.FromCSV, logger)
	case config.FromDB != "":
		records, err = loadDB(ctx, config.FromDB, logger)
	default:
		records, err = analyze(ctx, config, logger)
	}
	if err != nil {
		return err
	}

	if config.NoCharts {
		logger.Info("chart generation disabled")
		return nil
	}
	return generateCharts(records, config, logger)
}

// analyze runs the pipeline over every source in order, writing a CSV file per
// source, then the combined CSV file and the optional database export.
func analyze(ctx context.Context, config *Config, logger *slog.Logger) (_ []beacon.Record, err error) {
	if err = os.MkdirAll(config.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var store storage.Store
	if config.DBPath != "" {
		store = storage.NewSqliteStore(config.DBPath)
		defer closeWithError(store, &err)
	}

	pipeline := beacon.NewPipeline(beacon.WithLogger(logger))

	runs := make([]beacon.Run, 0, len(config.Sources))
	for _, src := range config.Sources {
		run, err := processSource(ctx, pipeline, src, config, logger)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Label, err)
		}

		if store != nil {
			if err = storeRun(ctx, store, src, config.Decoder, run, logger); err != nil {
				return nil, fmt.Errorf("source %s: %w", src.Label, err)
			}
		}

		runs = append(runs, run)
	}

	combined := beacon.Merge(runs...)
	if err = writeCSV(filepath.Join(config.OutputDir, CombinedFile), combined, logger); err != nil {
		return nil, err
	}

	return combined, nil
}

func processSource(ctx context.Context, pipeline *beacon.Pipeline, src Source, config *Config, logger *slog.Logger) (_ beacon.Run, err error) {
	logger = logger.With(slog.String("source", src.Label))
	logger.Info("reading capture",
		slog.String("path", src.Path),
		slog.String("decoder", config.Decoder.String()))

	frames, err := OpenSource(ctx, config, src.Path, logger)
	if err != nil {
		return beacon.Run{}, err
	}
	defer closeWithError(frames, &err)

	run, err := pipeline.Run(ctx, frames, src.Label)
	if err != nil {
		return beacon.Run{}, err
	}

	logger.Info("finished reading capture",
		slog.Group("stats",
			slog.String("frames", humanize.Comma(int64(run.Stats.Frames))),
			slog.String("duplicates", humanize.Comma(int64(run.Stats.Duplicates))),
			slog.String("skipped", humanize.Comma(int64(run.Stats.Skipped))),
			slog.String("networks", humanize.Comma(int64(len(run.Records)))),
		))

	if err = writeCSV(filepath.Join(config.OutputDir, SourceFile(src.Label)), run.Records, logger); err != nil {
		return beacon.Run{}, err
	}

	return run, nil
}

func writeCSV(path string, records []beacon.Record, logger *slog.Logger) error {
	n, err := export.WriteCSV(path, records)
	if err != nil {
		return fmt.Errorf("exporting records: %w", err)
	}

	logger.Info("exported unique beacons",
		slog.String("path", path),
		slog.String("rows", humanize.Comma(int64(n))))
	return nil
}

func storeRun(ctx context.Context, store storage.Store, src Source, decoder Decoder, run beacon.Run, logger *slog.Logger) error {
	id, err := store.CreateCapture(ctx, src.Label, src.Path, decoder.String())
	if err != nil {
		return fmt.Errorf("creating capture: %w", err)
	}
	if err = store.StoreBeacons(ctx, id, run.Records); err != nil {
		return fmt.Errorf("storing beacons: %w", err)
	}

	logger.Info("stored beacons",
		slog.String("source", src.Label),
		slog.Int64("captureId", id),
		slog.String("rows", humanize.Comma(int64(len(run.Records)))))
	return nil
}

func loadCSV(path string, logger *slog.Logger) ([]beacon.Record, error) {
	records, err := export.ReadCSV(path)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}

	logger.Info("loaded records",
		slog.String("path", path),
		slog.String("rows", humanize.Comma(int64(len(records)))))
	return records, nil
}

func loadDB(ctx context.Context, path string, logger *slog.Logger) (_ []beacon.Record, err error) {
	if _, err = os.Stat(path); err != nil {
		return nil, fmt.Errorf("database file '%s' does not exist: %w", path, err)
	}

	store := storage.NewSqliteStore(path)
	defer closeWithError(store, &err)

	captures, err := store.Captures(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing captures: %w", err)
	}

	labels := make(map[string]int, len(captures))
	for _, c := range captures {
		labels[c.Source]++
	}

	var records []beacon.Record
	for _, c := range captures {
		source := c.Source
		if labels[source] > 1 {
			// same label stored by several runs, each capture is its own group
			source = fmt.Sprintf("%s#%d", source, c.ID)
		}

		if records, err = readCapture(ctx, store, c.ID, source, records); err != nil {
			return nil, err
		}
	}

	logger.Info("loaded records",
		slog.String("path", path),
		slog.String("rows", humanize.Comma(int64(len(records)))))
	return records, nil
}

func readCapture(ctx context.Context, store *storage.SqliteStore, captureID int64, source string, records []beacon.Record) (_ []beacon.Record, err error) {
	iter, err := store.ReadBeacons(ctx, storage.WithCaptureIDs(captureID))
	if err != nil {
		return nil, fmt.Errorf("reading beacons: %w", err)
	}
	defer closeWithError(iter, &err)

	for iter.Next(ctx) {
		record := *iter.Current()
		record.Source = source
		records = append(records, record)
	}
	if err = iter.Error(); err != nil {
		return nil, fmt.Errorf("reading beacons of capture %d: %w", captureID, err)
	}
	return records, nil
}

func generateCharts(records []beacon.Record, config *Config, logger *slog.Logger) error {
	renderer, err := chart.NewRenderer(chart.RenderConfig{
		Width:    config.Chart.Width,
		Height:   config.Chart.Height,
		FontSize: config.Chart.FontSize,
	})
	if err != nil {
		return fmt.Errorf("creating chart renderer: %w", err)
	}

	generator, err := report.NewGenerator(
		report.WithLogger(logger),
		report.WithFormat(config.Format),
		report.WithRenderer(renderer))
	if err != nil {
		return fmt.Errorf("creating report generator: %w", err)
	}

	paths, err := generator.Generate(records, config.OutputDir)
	if err != nil {
		return fmt.Errorf("generating charts: %w", err)
	}

	logger.Info("generated charts", slog.Int("count", len(paths)), slog.String("directory", config.OutputDir))
	return nil
}

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}
