package report

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/wifi-density/internal/beacon"
	"github.com/roman-kulish/wifi-density/internal/chart"
)

// Chart file names, without the extension.
const (
	SSIDCountFile     = "plot_ssid_count_per_network"
	PHYTypeCountFile  = "plot_unique_phy_types_per_network"
	SignalNoiseFile   = "plot_signal_noise_comparison"
	SignalPerSSIDFile = "plot_signal_strength_per_ssid"
)

const (
	medianLabelFormat = "%.1f dBm"
	signalTickStep    = 1.0 // dBm

	noSignalMessage = "No signal data"
	noNoiseMessage  = "No noise data"
	noDataMessage   = "No data"
)

var (
	ssidBarColors = []color.Color{
		chart.MustHex("#87ceeb"), // skyblue
		chart.MustHex("#fa8072"), // salmon
		chart.MustHex("#90ee90"), // lightgreen
	}
	phyBarColors = []color.Color{
		chart.MustHex("#3cb371"), // mediumseagreen
		chart.MustHex("#ff8c00"), // darkorange
		chart.MustHex("#6495ed"), // cornflowerblue
	}
)

// WithLogger sets the logger used to report written charts.
func WithLogger(logger *slog.Logger) func(*Generator) {
	return func(g *Generator) {
		g.logger = logger
	}
}

// WithFormat sets the image format of the charts.
func WithFormat(format chart.Format) func(*Generator) {
	return func(g *Generator) {
		g.format = format
	}
}

// WithRenderer replaces the renderer used to draw every chart.
func WithRenderer(r *chart.Renderer) func(*Generator) {
	return func(g *Generator) {
		g.renderer = r
	}
}

// Generator draws the comparison charts of a set of beacon records.
type Generator struct {
	logger   *slog.Logger
	format   chart.Format
	renderer *chart.Renderer
}

// NewGenerator creates a Generator writing PNG charts with a default renderer.
func NewGenerator(options ...func(*Generator)) (*Generator, error) {
	g := Generator{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		format: chart.FormatPNG,
	}

	for _, option := range options {
		option(&g)
	}

	if g.renderer == nil {
		r, err := chart.NewRenderer(chart.RenderConfig{})
		if err != nil {
			return nil, fmt.Errorf("creating renderer: %w", err)
		}
		g.renderer = r
	}

	return &g, nil
}

// Generate writes the four comparison charts into dir and returns their
// paths. Sources without signal or noise values are left out of the
// corresponding charts; a chart with nothing to show is drawn as a
// placeholder.
func (g *Generator) Generate(records []beacon.Record, dir string) ([]string, error) {
	summaries, err := Summarize(records)
	if err != nil {
		return nil, fmt.Errorf("summarizing records: %w", err)
	}

	if err = os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating chart directory: %w", err)
	}

	charts := []struct {
		name   string
		render func() (image.Image, error)
	}{
		{SSIDCountFile, func() (image.Image, error) { return g.ssidCounts(summaries) }},
		{PHYTypeCountFile, func() (image.Image, error) { return g.phyTypeCounts(summaries) }},
		{SignalNoiseFile, func() (image.Image, error) { return g.signalNoise(summaries) }},
		{SignalPerSSIDFile, func() (image.Image, error) { return g.signalPerSSID(records) }},
	}

	paths := make([]string, 0, len(charts))
	for _, c := range charts {
		img, err := c.render()
		if err != nil {
			return paths, fmt.Errorf("rendering %s: %w", c.name, err)
		}

		path := filepath.Join(dir, c.name+g.format.Ext())
		if err = g.save(path, img); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func (g *Generator) save(path string, img image.Image) error {
	if err := chart.Save(path, img, g.format); err != nil {
		return fmt.Errorf("saving chart: %w", err)
	}

	attrs := []any{
		slog.String("path", path),
		slog.String("format", string(g.format)),
		slog.Int("width", img.Bounds().Dx()),
		slog.Int("height", img.Bounds().Dy()),
	}
	if info, err := os.Stat(path); err == nil {
		attrs = append(attrs, slog.String("size", humanize.Bytes(uint64(info.Size()))))
	}
	g.logger.Info("saved chart", attrs...)

	return nil
}

func (g *Generator) ssidCounts(summaries []Summary) (image.Image, error) {
	const title = "Number of Unique SSIDs per Network"
	if len(summaries) == 0 {
		return g.renderer.Placeholder(title, noDataMessage)
	}

	labels, values := make([]string, len(summaries)), make([]float64, len(summaries))
	for i, s := range summaries {
		labels[i], values[i] = s.Source, float64(s.SSIDs)
	}

	return g.renderer.Bar(chart.BarChart{
		Title:  title,
		YLabel: "SSID Count",
		Labels: labels,
		Values: values,
		Colors: ssidBarColors,
	})
}

func (g *Generator) phyTypeCounts(summaries []Summary) (image.Image, error) {
	const title = "Number of Unique PHY Types per Network"
	if len(summaries) == 0 {
		return g.renderer.Placeholder(title, noDataMessage)
	}

	labels, values := make([]string, len(summaries)), make([]float64, len(summaries))
	for i, s := range summaries {
		labels[i], values[i] = s.Source, float64(s.PHYTypes)
	}

	return g.renderer.Bar(chart.BarChart{
		Title:  title,
		YLabel: "Unique PHY Types",
		Labels: labels,
		Values: values,
		Colors: phyBarColors,
	})
}

// signalNoise draws the signal and noise box plots side by side.
func (g *Generator) signalNoise(summaries []Summary) (image.Image, error) {
	var signal, noise []chart.BoxGroup
	for _, s := range summaries {
		if s.Signal != nil {
			signal = append(signal, chart.BoxGroup{Label: s.Source, Stats: s.Signal.BoxStats()})
		}
		if s.Noise != nil {
			noise = append(noise, chart.BoxGroup{Label: s.Source, Stats: s.Noise.BoxStats()})
		}
	}

	left, err := g.boxPanel(chart.BoxPlot{
		Title:        "Signal Strength per Network",
		YLabel:       "dBm",
		Groups:       signal,
		TickStep:     signalTickStep,
		MedianFormat: medianLabelFormat,
	}, noSignalMessage)
	if err != nil {
		return nil, err
	}

	right, err := g.boxPanel(chart.BoxPlot{
		Title:  "Noise Level per Network",
		YLabel: "dBm",
		Groups: noise,
	}, noNoiseMessage)
	if err != nil {
		return nil, err
	}

	return chart.HStack(left, right), nil
}

func (g *Generator) boxPanel(plot chart.BoxPlot, placeholder string) (image.Image, error) {
	if len(plot.Groups) == 0 {
		return g.renderer.Placeholder(plot.Title, placeholder)
	}
	return g.renderer.Box(plot)
}

// signalPerSSID draws every record with a signal as a point over its SSID,
// one series per source.
func (g *Generator) signalPerSSID(records []beacon.Record) (image.Image, error) {
	const title = "Signal Strength of Each SSID per Network"

	var series []chart.Series
	for _, grp := range groupBySource(records) {
		s := chart.Series{Name: grp.source}
		for _, r := range grp.records {
			if r.SignalDBm != nil {
				s.Points = append(s.Points, chart.Point{Category: r.SSID, Value: float64(*r.SignalDBm)})
			}
		}
		if len(s.Points) > 0 {
			series = append(series, s)
		}
	}

	if len(series) == 0 {
		return g.renderer.Placeholder(title, noSignalMessage)
	}

	return g.renderer.Scatter(chart.ScatterChart{
		Title:    title,
		YLabel:   "Signal Strength (dBm)",
		Series:   series,
		TickStep: signalTickStep,
	})
}
