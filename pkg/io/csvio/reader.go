package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	cf "github.com/wdm0006/colfill/pkg/colfill"
	iox "github.com/wdm0006/colfill/pkg/io/ioutils"
)

type ReaderOptions struct {
	HasHeader     bool
	Delimiter     rune     // 0 = ','
	MissingValues []string // nil = DefaultMissingValues
	Strict        bool     // if true, error on short records
}

// ErrLongRecord is returned when a data row has more fields than the header.
var ErrLongRecord = errors.New("csv record has more fields than the header")

type Reader struct {
	r       *csv.Reader
	rc      io.Closer
	opt     ReaderOptions
	missing missingSet
	names   []string
	first   []string // first data row when there is no header
	started bool
	eof     bool
	// repair/warning counters
	shortRecords int
}

// Open opens a CSV file (optionally gzip compressed, "-" for stdin).
func Open(path string, opt ReaderOptions) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	r := NewReaderFrom(rc, opt)
	r.rc = rc
	return r, nil
}

// NewReaderFrom constructs a Reader from an arbitrary io.Reader (stdin, pipe).
func NewReaderFrom(r io.Reader, opt ReaderOptions) *Reader {
	rr := csv.NewReader(r)
	if opt.Delimiter != 0 {
		rr.Comma = opt.Delimiter
	}
	rr.FieldsPerRecord = -1
	return &Reader{r: rr, opt: opt, missing: newMissingSet(opt.MissingValues)}
}

func (r *Reader) Close() error {
	if r.rc == nil {
		return nil
	}
	return r.rc.Close()
}

// Header returns the column names. With HasHeader they come from the first
// record, otherwise they are col_0..col_n sized by the first record. An input
// with no records at all has no columns.
func (r *Reader) Header() ([]string, error) {
	if r.started {
		return r.names, nil
	}
	r.started = true
	rec, err := r.r.Read()
	if errors.Is(err, io.EOF) {
		r.eof = true
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if r.opt.HasHeader {
		r.names = headerNames(rec)
	} else {
		r.names = positionalNames(len(rec))
		r.first = append([]string(nil), rec...)
	}
	return r.names, nil
}

// Next returns the next data record, padded with empty fields to the header
// width, or io.EOF.
func (r *Reader) Next() ([]string, error) {
	if _, err := r.Header(); err != nil {
		return nil, err
	}
	if r.first != nil {
		rec := r.first
		r.first = nil
		return rec, nil
	}
	if r.eof {
		return nil, io.EOF
	}
	rec, err := r.r.Read()
	if errors.Is(err, io.EOF) {
		r.eof = true
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	ncol := len(r.names)
	line, _ := r.r.FieldPos(0)
	switch {
	case len(rec) > ncol:
		return nil, fmt.Errorf("line %d: expected %d fields, saw %d: %w", line, ncol, len(rec), ErrLongRecord)
	case len(rec) < ncol:
		r.shortRecords++
		if r.opt.Strict {
			return nil, fmt.Errorf("csv short record at line %d: need %d fields, got %d", line, ncol, len(rec))
		}
		padded := make([]string, ncol)
		copy(padded, rec)
		rec = padded
	}
	return rec, nil
}

// ReadAll loads the rest of the CSV into a Frame. Column kinds are decided
// from every data row before any value is converted.
func (r *Reader) ReadAll() (*cf.Frame, error) {
	names, err := r.Header()
	if err != nil {
		return nil, err
	}
	cls := NewClassifier(len(names), r.opt.MissingValues)
	var recs [][]string
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		cls.Observe(rec)
		recs = append(recs, rec)
	}
	f := cf.NewFrame(BuildSchema(names, cls.Kinds()))
	for _, rec := range recs {
		if err := r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// BuildSchema pairs column names with their kinds.
func BuildSchema(names []string, kinds []cf.Kind) cf.Schema {
	s := cf.Schema{Columns: make([]cf.ColumnSchema, len(names))}
	for i := range names {
		s.Columns[i] = cf.ColumnSchema{Name: names[i], Type: kinds[i], Nullable: true}
	}
	return s
}

// appendRecord appends a null row then sets the present values. A present
// value that does not parse as its column kind is an error, never a missing
// cell.
func (r *Reader) appendRecord(f *cf.Frame, rec []string) error {
	f.AppendNullRow()
	row := f.Rows() - 1
	for i, cs := range f.Schema().Columns {
		raw := rec[i]
		if r.missing.has(raw) {
			continue
		}
		val := strings.TrimSpace(raw)
		var err error
		switch col := f.Column(i).(type) {
		case *cf.FloatColumn:
			var x float64
			if x, err = strconv.ParseFloat(val, 64); err == nil {
				col.Set(row, x)
			}
		case *cf.IntColumn:
			var x int64
			if x, err = strconv.ParseInt(val, 10, 64); err == nil {
				col.Set(row, x)
			}
		case *cf.BoolColumn:
			var x bool
			if x, err = strconv.ParseBool(strings.ToLower(val)); err == nil {
				col.Set(row, x)
			}
		case *cf.StringColumn:
			col.Set(row, strings.ToValidUTF8(raw, "?"))
		default:
			err = f.SetCell(row, cs.Name, raw)
		}
		if err != nil {
			return fmt.Errorf("column %s: %w", cs.Name, err)
		}
	}
	return nil
}

// ShortRecords reports how many rows were padded with missing cells.
func (r *Reader) ShortRecords() int { return r.shortRecords }

// SniffDelimiter guesses the delimiter of a CSV file by counting candidate
// separators in its first 4KiB.
func SniffDelimiter(path string) (rune, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return 0, err
	}
	defer func() { _ = rc.Close() }()
	br := bufio.NewReader(rc)
	sample, _ := br.Peek(4096)
	if len(sample) == 0 {
		return ',', nil
	}
	candidates := []byte{',', '\t', ';', '|'}
	best := byte(',')
	bestCount := 0
	for _, c := range candidates {
		cnt := 0
		for _, b := range sample {
			if b == c {
				cnt++
			}
		}
		if cnt > bestCount {
			bestCount = cnt
			best = c
		}
	}
	return rune(best), nil
}
