// Package imputer loads a table, fills the missing cells of every column and
// writes the result. Numeric columns are filled with their mean, categorical
// ones with their most frequent value. Columns with no values at all stay
// missing.
package imputer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cast"

	cf "github.com/wdm0006/colfill/pkg/colfill"
	"github.com/wdm0006/colfill/pkg/io/csvio"
	"github.com/wdm0006/colfill/pkg/io/jsonlio"
	"github.com/wdm0006/colfill/pkg/io/parquetio"
	"github.com/wdm0006/colfill/pkg/profile"
	"github.com/wdm0006/colfill/pkg/transform/impute"
)

// Imputer fills missing cells according to a Config.
type Imputer struct {
	cfg Config
	log zerolog.Logger
}

// Result describes a completed run.
type Result struct {
	Output  string
	Rows    int
	Columns []ColumnResult
	// Profile holds the statistics of the input columns.
	Profile *profile.Collector
}

// ColumnResult describes what was done to one column.
type ColumnResult struct {
	Name string
	// Kind is the kind written out, which differs from the input kind when
	// an int column was filled with a fractional mean.
	Kind     cf.Kind
	Missing  int
	Strategy string
	// Fill is nil when the column had nothing to fill it with, or nothing
	// missing.
	Fill any
}

// New returns an Imputer for cfg with its defaults applied.
func New(cfg Config, logger zerolog.Logger) *Imputer {
	cfg.Defaults()
	return &Imputer{cfg: cfg, log: logger}
}

// Run imputes the configured input into the configured output.
func (im *Imputer) Run(ctx context.Context) (*Result, error) {
	return im.Impute(ctx, im.cfg.Input.Path, im.cfg.Output.Path)
}

// Impute reads in, fills its missing values, and writes the result to out.
// On error nothing is written to out.
func (im *Imputer) Impute(ctx context.Context, in, out string) (*Result, error) {
	if err := im.cfg.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	inType := fileType(im.cfg.Input.Type, in)
	outType := fileType(im.cfg.Output.Type, out)
	if in != "-" {
		if _, err := os.Stat(in); err != nil {
			return nil, readError(in, err)
		}
	}

	var (
		res *Result
		err error
	)
	if im.cfg.ChunkSize > 0 && inType == TypeCSV && outType == TypeCSV && in != "-" {
		res, err = im.imputeStream(ctx, in, out)
	} else {
		if im.cfg.ChunkSize > 0 {
			im.log.Warn().Str("input", inType).Str("output", outType).Msg("streaming needs csv files on both ends, loading whole table")
		}
		res, err = im.imputeBatch(ctx, in, out, inType, outType)
	}
	if err != nil {
		return nil, err
	}
	im.log.Info().
		Str("input", in).
		Str("output", out).
		Int("rows", res.Rows).
		Int("columns", len(res.Columns)).
		Dur("took", time.Since(start)).
		Msg("imputation complete")
	return res, nil
}

func (im *Imputer) imputeBatch(ctx context.Context, in, out, inType, outType string) (*Result, error) {
	f, err := im.load(in, inType)
	if err != nil {
		return nil, err
	}
	if f.Rows() == 0 {
		return nil, &Error{Kind: ErrEmptyDataset, Path: in}
	}
	prof := profile.NewCollector(f.Schema(), 10)
	if err := prof.ConsumeFrame(f); err != nil {
		return nil, err
	}

	results := make([]ColumnResult, f.Cols())
	p := cf.NewPipeline()
	for i, cs := range f.Schema().Columns {
		strategy, value := im.strategyFor(cs)
		step, err := impute.New(strategy, cs.Name, value)
		if err != nil {
			return nil, err
		}
		results[i] = ColumnResult{Name: cs.Name, Kind: cs.Type, Missing: cf.NullCount(f.Column(i)), Strategy: strategy}
		p.Add(&recorded{Step: step, res: &results[i], log: im.log})
	}
	filled, err := p.Run(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := im.write(out, outType, filled); err != nil {
		return nil, err
	}
	return &Result{Output: out, Rows: filled.Rows(), Columns: results, Profile: prof}, nil
}

func (im *Imputer) readerOptions(in string) (csvio.ReaderOptions, error) {
	opt := csvio.ReaderOptions{HasHeader: im.cfg.hasHeader(), Strict: im.cfg.Input.Strict}
	mv, err := im.cfg.missingValues()
	if err != nil {
		return opt, err
	}
	opt.MissingValues = mv
	if im.cfg.Input.Delimiter == "auto" && in != "-" {
		d, err := csvio.SniffDelimiter(in)
		if err != nil {
			return opt, readError(in, err)
		}
		im.log.Debug().Str("delimiter", string(d)).Msg("sniffed delimiter")
		opt.Delimiter = d
		return opt, nil
	}
	if im.cfg.Input.Delimiter != "auto" {
		opt.Delimiter, err = parseDelimiter(im.cfg.Input.Delimiter)
	}
	return opt, err
}

func (im *Imputer) load(in, typ string) (*cf.Frame, error) {
	switch typ {
	case TypeJSONL:
		r, err := jsonlio.Open(in)
		if err != nil {
			return nil, readError(in, err)
		}
		defer func() { _ = r.Close() }()
		f, err := r.ReadAll()
		if err != nil {
			return nil, readError(in, err)
		}
		return f, nil
	case TypeParquet:
		r, err := parquetio.OpenReader(in)
		if err != nil {
			return nil, readError(in, err)
		}
		defer func() { _ = r.Close() }()
		f, err := r.ReadAll()
		if err != nil {
			return nil, readError(in, err)
		}
		return f, nil
	}
	opt, err := im.readerOptions(in)
	if err != nil {
		return nil, err
	}
	r, err := csvio.Open(in, opt)
	if err != nil {
		return nil, readError(in, err)
	}
	defer func() { _ = r.Close() }()
	f, err := r.ReadAll()
	if err != nil {
		return nil, readError(in, err)
	}
	if n := r.ShortRecords(); n > 0 {
		im.log.Warn().Int("rows", n).Msg("short rows padded with missing values")
	}
	return f, nil
}

func (im *Imputer) write(out, typ string, f *cf.Frame) error {
	var err error
	switch typ {
	case TypeJSONL:
		err = jsonlio.WriteAll(out, f)
	case TypeParquet:
		err = parquetio.WriteAll(out, f)
	default:
		var d rune
		if d, err = parseDelimiter(im.cfg.Output.Delimiter); err == nil {
			err = csvio.WriteAll(out, f, csvio.WriterOptions{Delimiter: d})
		}
	}
	if err != nil {
		return writeError(out, err)
	}
	return nil
}

// strategyFor returns the strategy of a column: its override if there is one,
// the kind default otherwise.
func (im *Imputer) strategyFor(cs cf.ColumnSchema) (string, any) {
	for _, o := range im.cfg.Overrides {
		if o.Column == cs.Name {
			return o.Strategy, o.Value
		}
	}
	return impute.DefaultStrategy(cs.Type), nil
}

// recorded runs a fill step and stores what it did in res.
type recorded struct {
	impute.Step
	res *ColumnResult
	log zerolog.Logger
}

func (r *recorded) Apply(ctx context.Context, f *cf.Frame) (*cf.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	col, ok := f.ColumnByName(r.res.Name)
	if !ok {
		return f, nil
	}
	out, v, err := r.Fill(col)
	if err != nil {
		return nil, err
	}
	if v == nil {
		if r.res.Missing > 0 {
			r.log.Warn().Str("column", r.res.Name).Int("missing", r.res.Missing).Msg("column has no values, left missing")
		}
		return f, nil
	}
	r.res.Fill = v
	r.res.Kind = out.Kind()
	r.log.Debug().
		Str("column", r.res.Name).
		Str("strategy", r.res.Strategy).
		Int("missing", r.res.Missing).
		Interface("fill", v).
		Msg("column imputed")
	return f.WithColumn(out)
}

// imputeStream handles large CSV files in three passes: classify, collect
// statistics, then fill and write chunk by chunk. Only the default
// strategies and constants can be computed this way.
func (im *Imputer) imputeStream(ctx context.Context, in, out string) (*Result, error) {
	opt, err := im.readerOptions(in)
	if err != nil {
		return nil, err
	}
	schema, rows, err := csvio.Scan(in, opt)
	if err != nil {
		return nil, readError(in, err)
	}
	if rows == 0 {
		return nil, &Error{Kind: ErrEmptyDataset, Path: in}
	}

	prof := profile.NewCollector(schema, 10)
	sr, err := csvio.NewStreamReader(in, opt, schema, im.cfg.ChunkSize)
	if err != nil {
		return nil, readError(in, err)
	}
	for {
		if err := ctx.Err(); err != nil {
			_ = sr.Close()
			return nil, err
		}
		f, err := sr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = sr.Close()
			return nil, readError(in, err)
		}
		if err := prof.ConsumeFrame(f); err != nil {
			_ = sr.Close()
			return nil, err
		}
	}
	if n := sr.ShortRecords(); n > 0 {
		im.log.Warn().Int("rows", n).Msg("short rows padded with missing values")
	}
	_ = sr.Close()

	results := make([]ColumnResult, len(schema.Columns))
	p := cf.NewPipeline()
	for i, cs := range schema.Columns {
		cp, _ := prof.Profile(cs.Name)
		strategy, value := im.strategyFor(cs)
		cr := ColumnResult{Name: cs.Name, Kind: cs.Type, Missing: cp.Nulls(), Strategy: strategy}
		switch {
		case strategy == impute.StrategyConstant:
			if value == nil {
				return nil, fmt.Errorf("constant strategy for column %s needs a value", cs.Name)
			}
		case strategy == impute.DefaultStrategy(cs.Type):
			value, _ = prof.FillValue(cs.Name)
		default:
			return nil, fmt.Errorf("column %s: strategy %q is not available when streaming", cs.Name, strategy)
		}
		if cr.Missing > 0 && value != nil {
			cr.Fill = value
			cr.Kind = filledKind(cs.Type, value)
			p.Add(&impute.Constant{Column: cs.Name, Value: value})
			im.log.Debug().Str("column", cs.Name).Str("strategy", strategy).Int("missing", cr.Missing).Interface("fill", value).Msg("column imputed")
		} else if cr.Missing > 0 {
			im.log.Warn().Str("column", cs.Name).Int("missing", cr.Missing).Msg("column has no values, left missing")
		}
		results[i] = cr
	}

	src, err := csvio.NewStreamReader(in, opt, schema, im.cfg.ChunkSize)
	if err != nil {
		return nil, readError(in, err)
	}
	defer func() { _ = src.Close() }()
	d, err := parseDelimiter(im.cfg.Output.Delimiter)
	if err != nil {
		return nil, err
	}
	sink, err := csvio.NewStreamWriter(out, schema, csvio.WriterOptions{Delimiter: d})
	if err != nil {
		return nil, writeError(out, err)
	}
	im.log.Debug().Int("steps", p.Len()).Int("chunk_size", im.cfg.ChunkSize).Msg("writing filled chunks")
	n, err := cf.RunStream(ctx, p, src, sink)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, writeError(out, err)
	}
	return &Result{Output: out, Rows: n, Columns: results, Profile: prof}, nil
}

// filledKind is the kind a column ends up with after filling it with v.
func filledKind(k cf.Kind, v any) cf.Kind {
	if k != cf.KindInt {
		return k
	}
	x, err := cast.ToFloat64E(v)
	if err != nil {
		return k
	}
	if _, ok := impute.IntFill(x); !ok {
		return cf.KindFloat
	}
	return k
}
