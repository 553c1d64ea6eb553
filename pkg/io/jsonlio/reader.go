package jsonlio

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	cf "github.com/wdm0006/colfill/pkg/colfill"
	iox "github.com/wdm0006/colfill/pkg/io/ioutils"
)

type Reader struct {
	r  io.Reader
	rc io.Closer
}

func Open(path string) (*Reader, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, err
	}
	return &Reader{r: bufio.NewReader(rc), rc: rc}, nil
}

// NewReaderFrom wraps an arbitrary io.Reader.
func NewReaderFrom(r io.Reader) *Reader { return &Reader{r: r} }

func (r *Reader) Close() error {
	if r.rc == nil {
		return nil
	}
	return r.rc.Close()
}

// ReadAll decodes one JSON object per line into a Frame. Columns appear in the
// order their keys are first seen. null and absent keys are missing.
func (r *Reader) ReadAll() (*cf.Frame, error) {
	dec := json.NewDecoder(r.r)
	dec.UseNumber()
	var keys []string
	var rows []map[string]any
	seen := map[string]bool{}
	nrow := 0
	for {
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("jsonl record %d: %w", nrow+1, err)
		}
		nrow++
		ks, err := objectKeys(raw)
		if err != nil {
			return nil, fmt.Errorf("jsonl record %d: %w", nrow, err)
		}
		for _, k := range ks {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
		var m map[string]any
		d := json.NewDecoder(bytes.NewReader(raw))
		d.UseNumber()
		if err := d.Decode(&m); err != nil {
			return nil, fmt.Errorf("jsonl record %d: %w", nrow, err)
		}
		rows = append(rows, m)
	}

	kinds := inferKinds(rows, keys)
	schema := cf.Schema{Columns: make([]cf.ColumnSchema, len(keys))}
	for i, k := range keys {
		schema.Columns[i] = cf.ColumnSchema{Name: k, Type: kinds[i], Nullable: true}
	}
	f := cf.NewFrame(schema)
	for _, m := range rows {
		f.AppendNullRow()
		if err := setRowFromMap(f, f.Rows()-1, m); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		keys = append(keys, tok.(string))
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func setRowFromMap(f *cf.Frame, row int, m map[string]any) error {
	for _, cs := range f.Schema().Columns {
		v, ok := m[cs.Name]
		if !ok || v == nil {
			continue
		}
		var val any = v
		switch t := v.(type) {
		case json.Number:
			if cs.Type == cf.KindString {
				val = t.String()
			} else {
				val = string(t)
			}
		case bool:
			if cs.Type == cf.KindString {
				val = strconv.FormatBool(t)
			}
		case string:
		default:
			// nested values are kept as their JSON encoding
			b, err := json.Marshal(t)
			if err != nil {
				return err
			}
			val = string(b)
		}
		if err := f.SetCell(row, cs.Name, val); err != nil {
			return err
		}
	}
	return nil
}

func inferKinds(rows []map[string]any, keys []string) []cf.Kind {
	kinds := make([]cf.Kind, len(keys))
	for i, k := range keys {
		nPresent, nNum, nInt, nBool := 0, 0, 0, 0
		for _, m := range rows {
			v, ok := m[k]
			if !ok || v == nil {
				continue
			}
			nPresent++
			switch t := v.(type) {
			case json.Number:
				nNum++
				if _, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
					nInt++
				}
			case bool:
				nBool++
			}
		}
		switch {
		case nPresent == 0:
			kinds[i] = cf.KindString
		case nNum == nPresent && nInt == nPresent:
			kinds[i] = cf.KindInt
		case nNum == nPresent:
			kinds[i] = cf.KindFloat
		case nBool == nPresent:
			kinds[i] = cf.KindBool
		default:
			kinds[i] = cf.KindString
		}
	}
	return kinds
}
