package jsonlio

import (
	"bytes"
	"encoding/json"
	"io"

	cf "github.com/wdm0006/colfill/pkg/colfill"
	iox "github.com/wdm0006/colfill/pkg/io/ioutils"
)

// WriteAll writes one JSON object per row, keys in column order, missing
// cells as null. The file appears only once everything is written.
func WriteAll(path string, f *cf.Frame) error {
	out, err := iox.CreateAtomic(path)
	if err != nil {
		return err
	}
	if err := Write(out, f); err != nil {
		_ = out.Abort()
		return err
	}
	return out.Commit()
}

func Write(w io.Writer, f *cf.Frame) error {
	keys := make([][]byte, f.Cols())
	for i, name := range f.Schema().Names() {
		b, err := json.Marshal(name)
		if err != nil {
			return err
		}
		keys[i] = b
	}
	var buf bytes.Buffer
	for r := 0; r < f.Rows(); r++ {
		buf.Reset()
		buf.WriteByte('{')
		for c := 0; c < f.Cols(); c++ {
			if c > 0 {
				buf.WriteByte(',')
			}
			buf.Write(keys[c])
			buf.WriteByte(':')
			b, err := json.Marshal(f.Value(r, c))
			if err != nil {
				return err
			}
			buf.Write(b)
		}
		buf.WriteString("}\n")
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
