package imputer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"
	yaml "gopkg.in/yaml.v3"
)

// Default paths used when neither flags nor a config file name them.
const (
	DefaultInput  = "LTBI_estimates_cleaned.csv"
	DefaultOutput = "processed_LTBI_dataset.csv"
)

// File types.
const (
	TypeCSV     = "csv"
	TypeJSONL   = "jsonl"
	TypeParquet = "parquet"
)

type Config struct {
	Input     InputConfig  `json:"input" toml:"input" yaml:"input"`
	Output    OutputConfig `json:"output" toml:"output" yaml:"output"`
	Overrides []Override   `json:"overrides" toml:"overrides" yaml:"overrides"`
	// ChunkSize > 0 streams CSV input in chunks of that many rows.
	ChunkSize int       `json:"chunk_size" toml:"chunk_size" yaml:"chunk_size"`
	Log       LogConfig `json:"log" toml:"log" yaml:"log"`
}

type InputConfig struct {
	Path string `json:"path" toml:"path" yaml:"path"`
	// csv|jsonl|parquet, empty = from the file extension
	Type      string `json:"type" toml:"type" yaml:"type"`
	HasHeader *bool  `json:"has_header" toml:"has_header" yaml:"has_header"`
	// a single character, "tab", or "auto" to sniff
	Delimiter string `json:"delimiter" toml:"delimiter" yaml:"delimiter"`
	// nil = csvio.DefaultMissingValues; numbers are accepted and read as text
	MissingValues []any `json:"missing_values" toml:"missing_values" yaml:"missing_values"`
	// Strict rejects rows shorter than the header instead of padding them.
	Strict bool `json:"strict" toml:"strict" yaml:"strict"`
}

type OutputConfig struct {
	Path      string `json:"path" toml:"path" yaml:"path"`
	Type      string `json:"type" toml:"type" yaml:"type"`
	Delimiter string `json:"delimiter" toml:"delimiter" yaml:"delimiter"`
}

// Override replaces the default strategy of one column.
type Override struct {
	Column   string `json:"column" toml:"column" yaml:"column"`
	Strategy string `json:"strategy" toml:"strategy" yaml:"strategy"`
	// Value is required by the constant strategy and coerced to the column kind.
	Value any `json:"value" toml:"value" yaml:"value"`
}

type LogConfig struct {
	Level  string `json:"level" toml:"level" yaml:"level"`
	Format string `json:"format" toml:"format" yaml:"format"`
}

// LoadConfig reads a JSON, TOML or YAML config file, chosen by extension,
// and applies Defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	default:
		err = json.Unmarshal(b, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	cfg.Defaults()
	return cfg, cfg.Validate()
}

// Defaults fills in unset fields.
func (c *Config) Defaults() {
	if c.Input.Path == "" {
		c.Input.Path = DefaultInput
	}
	if c.Output.Path == "" {
		c.Output.Path = DefaultOutput
	}
	if c.Input.HasHeader == nil {
		t := true
		c.Input.HasHeader = &t
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Validate checks the fields that can be checked without touching any file.
func (c *Config) Validate() error {
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk_size must not be negative, got %d", c.ChunkSize)
	}
	for _, t := range []string{c.Input.Type, c.Output.Type} {
		switch t {
		case "", TypeCSV, TypeJSONL, TypeParquet:
		default:
			return fmt.Errorf("unsupported file type %q", t)
		}
	}
	if c.Input.Delimiter != "auto" {
		if _, err := parseDelimiter(c.Input.Delimiter); err != nil {
			return fmt.Errorf("input delimiter: %w", err)
		}
	}
	if _, err := parseDelimiter(c.Output.Delimiter); err != nil {
		return fmt.Errorf("output delimiter: %w", err)
	}
	seen := map[string]bool{}
	for _, o := range c.Overrides {
		if o.Column == "" {
			return fmt.Errorf("override without a column")
		}
		if seen[o.Column] {
			return fmt.Errorf("column %s has more than one override", o.Column)
		}
		seen[o.Column] = true
	}
	if _, err := c.missingValues(); err != nil {
		return err
	}
	return nil
}

func (c *Config) missingValues() ([]string, error) {
	if c.Input.MissingValues == nil {
		return nil, nil
	}
	mv, err := cast.ToStringSliceE(c.Input.MissingValues)
	if err != nil {
		return nil, fmt.Errorf("missing_values: %w", err)
	}
	return mv, nil
}

func (c *Config) hasHeader() bool { return c.Input.HasHeader == nil || *c.Input.HasHeader }

// parseDelimiter maps a configured delimiter to a rune; "" means comma.
func parseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case "tab", `\t`:
		return '\t', nil
	}
	r, n := utf8.DecodeRuneInString(s)
	if n != len(s) || r == utf8.RuneError || r == '"' || r == '\r' || r == '\n' {
		return 0, fmt.Errorf("invalid delimiter %q", s)
	}
	return r, nil
}

// fileType returns t, or the type implied by the path extension (a trailing
// .gz is ignored), defaulting to csv.
func fileType(t, path string) string {
	if t != "" {
		return t
	}
	p := strings.TrimSuffix(strings.ToLower(path), ".gz")
	switch filepath.Ext(p) {
	case ".jsonl", ".ndjson":
		return TypeJSONL
	case ".parquet":
		return TypeParquet
	}
	return TypeCSV
}
