package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"

	parquet "github.com/segmentio/parquet-go"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

type Reader struct {
	file   *os.File
	pf     *parquet.File
	schema cf.Schema
}

// OpenReader opens a Parquet file. The frame schema follows the file schema:
// same column order, kinds mapped from the physical types.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open parquet file: %w", err)
	}
	schema, err := frameSchema(pf.Schema())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Reader{file: f, pf: pf, schema: schema}, nil
}

func (r *Reader) Close() error { return r.file.Close() }

func (r *Reader) Schema() cf.Schema { return r.schema }

func (r *Reader) ReadAll() (*cf.Frame, error) {
	f := cf.NewFrame(r.schema)
	buf := make([]parquet.Row, 1024)
	for _, rg := range r.pf.RowGroups() {
		rows := rg.Rows()
		for {
			n, err := rows.ReadRows(buf)
			for i := 0; i < n; i++ {
				f.AppendNullRow()
				if serr := setRow(f, f.Rows()-1, buf[i]); serr != nil {
					_ = rows.Close()
					return nil, serr
				}
			}
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				_ = rows.Close()
				return nil, err
			}
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func frameSchema(s *parquet.Schema) (cf.Schema, error) {
	fields := s.Fields()
	out := cf.Schema{Columns: make([]cf.ColumnSchema, len(fields))}
	for i, fd := range fields {
		if !fd.Leaf() {
			return cf.Schema{}, fmt.Errorf("parquet column %s: nested columns are not supported", fd.Name())
		}
		out.Columns[i] = cf.ColumnSchema{Name: fd.Name(), Type: kindOf(fd.Type().Kind()), Nullable: true}
	}
	return out, nil
}

func kindOf(k parquet.Kind) cf.Kind {
	switch k {
	case parquet.Boolean:
		return cf.KindBool
	case parquet.Int32, parquet.Int64:
		return cf.KindInt
	case parquet.Float, parquet.Double:
		return cf.KindFloat
	default:
		return cf.KindString
	}
}

func setRow(f *cf.Frame, row int, values parquet.Row) error {
	for _, v := range values {
		ci := v.Column()
		if v.IsNull() || ci < 0 || ci >= f.Cols() {
			continue
		}
		var val any
		switch v.Kind() {
		case parquet.Boolean:
			val = v.Boolean()
		case parquet.Int32:
			val = int64(v.Int32())
		case parquet.Int64:
			val = v.Int64()
		case parquet.Float:
			val = float64(v.Float())
		case parquet.Double:
			val = v.Double()
		case parquet.ByteArray, parquet.FixedLenByteArray:
			val = string(v.ByteArray())
		default:
			val = v.String()
		}
		if err := f.SetCell(row, f.Schema().Columns[ci].Name, val); err != nil {
			return err
		}
	}
	return nil
}
