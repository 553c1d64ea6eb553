package imputer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFormats(t *testing.T) {
	files := map[string]string{
		"c.json": `{
  "input": {"path": "in.csv", "has_header": false, "missing_values": ["?", -999]},
  "output": {"path": "out.csv", "delimiter": "tab"},
  "chunk_size": 500,
  "overrides": [{"column": "city", "strategy": "constant", "value": "unknown"}],
  "log": {"level": "debug", "format": "json"}
}`,
		"c.toml": `chunk_size = 500

[input]
path = "in.csv"
has_header = false
missing_values = ["?", -999]

[output]
path = "out.csv"
delimiter = "tab"

[log]
level = "debug"
format = "json"

[[overrides]]
column = "city"
strategy = "constant"
value = "unknown"
`,
		"c.yaml": `input:
  path: in.csv
  has_header: false
  missing_values: ["?", -999]
output:
  path: out.csv
  delimiter: tab
chunk_size: 500
overrides:
  - column: city
    strategy: constant
    value: unknown
log:
  level: debug
  format: json
`,
	}
	for name, content := range files {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadConfig(writeInput(t, name, content))
			require.NoError(t, err)
			assert.Equal(t, "in.csv", cfg.Input.Path)
			assert.False(t, cfg.hasHeader())
			mv, err := cfg.missingValues()
			require.NoError(t, err)
			assert.Equal(t, []string{"?", "-999"}, mv)
			assert.Equal(t, "out.csv", cfg.Output.Path)
			assert.Equal(t, 500, cfg.ChunkSize)
			require.Len(t, cfg.Overrides, 1)
			assert.Equal(t, Override{Column: "city", Strategy: "constant", Value: "unknown"}, cfg.Overrides[0])
			assert.Equal(t, LogConfig{Level: "debug", Format: "json"}, cfg.Log)
			d, err := parseDelimiter(cfg.Output.Delimiter)
			require.NoError(t, err)
			assert.Equal(t, '\t', d)
		})
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config
	cfg.Defaults()
	assert.Equal(t, DefaultInput, cfg.Input.Path)
	assert.Equal(t, DefaultOutput, cfg.Output.Path)
	assert.True(t, cfg.hasHeader())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoadConfigRejects(t *testing.T) {
	cases := map[string]string{
		"negative chunk": `{"chunk_size": -1}`,
		"bad type":       `{"input": {"type": "xlsx"}}`,
		"long delimiter": `{"output": {"delimiter": ";;"}}`,
		"quote":          `{"input": {"delimiter": "\""}}`,
		"no column":      `{"overrides": [{"strategy": "mean"}]}`,
		"twice":          `{"overrides": [{"column": "a", "strategy": "mean"}, {"column": "a", "strategy": "mode"}]}`,
		"syntax":         `{"input": `,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeInput(t, "c.json", content))
			assert.Error(t, err)
		})
	}
}

func TestFileType(t *testing.T) {
	assert.Equal(t, TypeCSV, fileType("", "data.csv"))
	assert.Equal(t, TypeCSV, fileType("", "data.csv.gz"))
	assert.Equal(t, TypeCSV, fileType("", "-"))
	assert.Equal(t, TypeJSONL, fileType("", "data.ndjson"))
	assert.Equal(t, TypeJSONL, fileType("", "DATA.JSONL.GZ"))
	assert.Equal(t, TypeParquet, fileType("", "data.parquet"))
	assert.Equal(t, TypeJSONL, fileType(TypeJSONL, "data.csv"))
}
