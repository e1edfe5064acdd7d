package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/wifi-density/internal/chart"
)

const (
	DecoderNative Decoder = "native"
	DecoderTshark Decoder = "tshark"
)

// ErrUnknownDecoder is returned for a decoder name other than native or tshark.
var ErrUnknownDecoder = errors.New("unknown decoder")

var validDecoders = map[Decoder]struct{}{
	DecoderNative: {},
	DecoderTshark: {},
}

// Decoder selects how capture files are read.
type Decoder string

func (d Decoder) String() string {
	return string(d)
}

// Source is one capture file and the label its records are tagged with.
type Source struct {
	Label string `yaml:"label" toml:"label"`
	Path  string `yaml:"path" toml:"path"`
}

// ParseSource parses the "label=path" form of a source.
func ParseSource(s string) (Source, error) {
	label, path, ok := strings.Cut(s, "=")
	if !ok {
		return Source{}, fmt.Errorf("source %q: expected label=path", s)
	}
	return Source{Label: strings.TrimSpace(label), Path: strings.TrimSpace(path)}, nil
}

func (s Source) String() string {
	return s.Label + "=" + s.Path
}

// UnmarshalYAML accepts either a mapping with label and path or a
// "label=path" string.
func (s *Source) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		src, err := ParseSource(value.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*s = src
		return nil
	}

	type plain Source
	return value.Decode((*plain)(s))
}

// ChartConfig sets the size of the generated charts. Zero values use the
// renderer defaults.
type ChartConfig struct {
	Width    int     `yaml:"width" toml:"width"`
	Height   int     `yaml:"height" toml:"height"`
	FontSize float64 `yaml:"fontSize" toml:"font_size"`
}

// Config is the application configuration
type Config struct {
	Sources    []Source     `yaml:"sources" toml:"sources"`
	OutputDir  string       `yaml:"outputDir" toml:"output_dir"`
	Decoder    Decoder      `yaml:"decoder" toml:"decoder"`
	TsharkPath string       `yaml:"tsharkPath" toml:"tshark_path"`
	Format     chart.Format `yaml:"format" toml:"format"`
	DBPath     string       `yaml:"dbPath" toml:"db_path"`
	NoCharts   bool         `yaml:"noCharts" toml:"no_charts"`
	Chart      ChartConfig  `yaml:"chart" toml:"chart"`
	LogLevel   slog.Level   `yaml:"logLevel" toml:"log_level"`

	// Report modes: draw the charts from an earlier combined CSV file or
	// SQLite database instead of decoding captures.
	FromCSV string `yaml:"-" toml:"-"`
	FromDB  string `yaml:"-" toml:"-"`
}

func NewConfig() *Config {
	return &Config{
		OutputDir:  ".",
		Decoder:    DecoderNative,
		TsharkPath: "tshark",
		Format:     chart.FormatPNG,
		LogLevel:   slog.LevelInfo,
	}
}

// LoadConfig reads a YAML or TOML configuration file, chosen by extension,
// over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	c := NewConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	case ".toml":
		err = toml.Unmarshal(data, c)
	default:
		return nil, fmt.Errorf("config %s: unsupported file type %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	c.expandPaths()
	return c, nil
}

// NewConfigFromCLI builds the configuration from command line arguments. A
// configuration file given with -c is loaded first and flags set on the
// command line override its values; -source flags replace its sources.
func NewConfigFromCLI(args []string, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("wifidensity", flag.ContinueOnError)
	fs.SetOutput(output)

	defaults := NewConfig()
	flags := NewConfig()

	var configPath, decoder, format string
	var sources sourceList
	fs.StringVar(&configPath, "c", "", "Path to a YAML or TOML configuration file")
	fs.Var(&sources, "source", "Capture source as label=path, repeatable")
	fs.StringVar(&flags.OutputDir, "o", defaults.OutputDir, "Output directory for CSV files and charts")
	fs.StringVar(&decoder, "decoder", string(defaults.Decoder), "Capture decoder. [native, tshark]")
	fs.StringVar(&flags.TsharkPath, "tshark", defaults.TsharkPath, "Path to the tshark binary")
	fs.StringVar(&format, "format", string(defaults.Format), "Chart image format. [png, jpeg]")
	fs.StringVar(&flags.DBPath, "db", "", "Export records to this SQLite database")
	fs.BoolVar(&flags.NoCharts, "no-charts", false, "Do not generate charts")
	fs.StringVar(&flags.FromCSV, "from-csv", "", "Generate charts from a combined CSV file")
	fs.StringVar(&flags.FromDB, "from-db", "", "Generate charts from every capture in a SQLite database")
	fs.TextVar(&flags.LogLevel, "log-level", defaults.LogLevel, "Log level. [debug, info, warn, error]")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	c := defaults
	if configPath != "" {
		var err error
		if c, err = LoadConfig(ExpandPath(configPath)); err != nil {
			return nil, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			c.Sources = sources
		case "o":
			c.OutputDir = flags.OutputDir
		case "decoder":
			c.Decoder = Decoder(decoder)
		case "tshark":
			c.TsharkPath = flags.TsharkPath
		case "format":
			c.Format = chart.Format(format)
		case "db":
			c.DBPath = flags.DBPath
		case "no-charts":
			c.NoCharts = flags.NoCharts
		case "from-csv":
			c.FromCSV = flags.FromCSV
		case "from-db":
			c.FromDB = flags.FromDB
		case "log-level":
			c.LogLevel = flags.LogLevel
		}
	})

	c.expandPaths()
	if err := c.Validate(); err != nil {
		fs.Usage()
		return nil, err
	}
	return c, nil
}

// Validate checks the configuration and normalizes the image format. It
// returns the first problem found.
func (c *Config) Validate() error {
	if c.FromCSV != "" && c.FromDB != "" {
		return errors.New("from-csv and from-db are mutually exclusive")
	}

	if c.FromCSV == "" && c.FromDB == "" {
		if len(c.Sources) == 0 {
			return errors.New("no capture sources configured")
		}

		labels := make(map[string]struct{}, len(c.Sources))
		for i, s := range c.Sources {
			switch {
			case s.Label == "":
				return fmt.Errorf("source %d: label is required", i+1)
			case s.Path == "":
				return fmt.Errorf("source %s: path is required", s.Label)
			case strings.ContainsAny(s.Label, `/\`) || s.Label == "." || s.Label == "..":
				return fmt.Errorf("source %s: label must be usable as a file name", s.Label)
			}
			if _, ok := labels[s.Label]; ok {
				return fmt.Errorf("source %s: duplicate label", s.Label)
			}
			labels[s.Label] = struct{}{}
		}

		c.Decoder = Decoder(strings.ToLower(strings.TrimSpace(string(c.Decoder))))
		if _, ok := validDecoders[c.Decoder]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownDecoder, string(c.Decoder))
		}
		if c.Decoder == DecoderTshark && c.TsharkPath == "" {
			return errors.New("tshark path is required")
		}
	}

	if c.OutputDir == "" {
		return errors.New("output directory is required")
	}

	format, err := chart.ParseFormat(string(c.Format))
	if err != nil {
		return err
	}
	c.Format = format

	if c.Chart.Width < 0 || c.Chart.Height < 0 || c.Chart.FontSize < 0 {
		return fmt.Errorf("invalid chart size: %dx%d, font size %.1f", c.Chart.Width, c.Chart.Height, c.Chart.FontSize)
	}

	return nil
}

func (c *Config) expandPaths() {
	for i := range c.Sources {
		c.Sources[i].Path = ExpandPath(c.Sources[i].Path)
	}
	c.OutputDir = ExpandPath(c.OutputDir)
	c.DBPath = ExpandPath(c.DBPath)
	c.FromCSV = ExpandPath(c.FromCSV)
	c.FromDB = ExpandPath(c.FromDB)
	c.TsharkPath = ExpandPath(c.TsharkPath)
}

// ExpandPath expands a leading tilde to the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	usr, err := user.Current()
	if err != nil {
		return path
	}
	if path == "~" {
		return usr.HomeDir
	}
	return filepath.Join(usr.HomeDir, path[2:])
}

// sourceList collects repeated -source flags.
type sourceList []Source

func (l *sourceList) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(*l))
	for i, s := range *l {
		parts[i] = s.String()
	}
	return strings.Join(parts, ",")
}

func (l *sourceList) Set(value string) error {
	s, err := ParseSource(value)
	if err != nil {
		return err
	}
	*l = append(*l, s)
	return nil
}
