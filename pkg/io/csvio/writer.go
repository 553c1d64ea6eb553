package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	cf "github.com/wdm0006/colfill/pkg/colfill"
	iox "github.com/wdm0006/colfill/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter rune // default ','
}

// WriteAll writes a Frame to a CSV file with headers. The file appears at path
// only if the whole frame was written.
func WriteAll(path string, f *cf.Frame, opt WriterOptions) error {
	out, err := iox.CreateAtomic(path)
	if err != nil {
		return err
	}
	if err := Write(out, f, opt); err != nil {
		_ = out.Abort()
		return err
	}
	return out.Commit()
}

// Write writes the header and every row of f to w. Missing cells become empty
// fields; no index column is emitted.
func Write(w io.Writer, f *cf.Frame, opt WriterOptions) error {
	cw := newCSVWriter(w, opt)
	if err := cw.Write(f.Schema().Names()); err != nil {
		return err
	}
	if err := writeRows(cw, f); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func newCSVWriter(w io.Writer, opt WriterOptions) *csv.Writer {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	return cw
}

func writeRows(cw *csv.Writer, f *cf.Frame) error {
	row := make([]string, f.Cols())
	for r := 0; r < f.Rows(); r++ {
		for c := 0; c < f.Cols(); c++ {
			row[c] = FormatCell(f.Column(c), r)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// FormatCell renders one cell as CSV text. Floats use the shortest
// representation that parses back to the same value.
func FormatCell(col cf.Column, r int) string {
	switch c := col.(type) {
	case *cf.FloatColumn:
		if v, ok := c.Get(r); ok {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	case *cf.IntColumn:
		if v, ok := c.Get(r); ok {
			return strconv.FormatInt(v, 10)
		}
	case *cf.BoolColumn:
		if v, ok := c.Get(r); ok {
			return strconv.FormatBool(v)
		}
	case *cf.StringColumn:
		if v, ok := c.Get(r); ok {
			return v
		}
	default:
		panic(fmt.Sprintf("unknown column type %T", col))
	}
	return ""
}
