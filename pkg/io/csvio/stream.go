package csvio

import (
	"errors"
	"io"

	cf "github.com/wdm0006/colfill/pkg/colfill"
	iox "github.com/wdm0006/colfill/pkg/io/ioutils"
)

// Scan reads the whole file once and returns its schema and data row count
// without keeping any rows in memory.
func Scan(path string, opt ReaderOptions) (cf.Schema, int, error) {
	r, err := Open(path, opt)
	if err != nil {
		return cf.Schema{}, 0, err
	}
	defer func() { _ = r.Close() }()
	names, err := r.Header()
	if err != nil {
		return cf.Schema{}, 0, err
	}
	cls := NewClassifier(len(names), opt.MissingValues)
	rows := 0
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return cf.Schema{}, 0, err
		}
		cls.Observe(rec)
		rows++
	}
	return BuildSchema(names, cls.Kinds()), rows, nil
}

// StreamReader reads CSV into Frame chunks of up to ChunkSize rows using a
// schema decided beforehand (see Scan).
type StreamReader struct {
	r         *Reader
	schema    cf.Schema
	chunkSize int
}

// NewStreamReader opens the file and skips its header.
func NewStreamReader(path string, opt ReaderOptions, schema cf.Schema, chunkSize int) (*StreamReader, error) {
	rr, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	if _, err := rr.Header(); err != nil {
		_ = rr.Close()
		return nil, err
	}
	if chunkSize <= 0 {
		chunkSize = 1024
	}
	return &StreamReader{r: rr, schema: schema, chunkSize: chunkSize}, nil
}

// Next returns the next chunk frame or io.EOF when complete.
func (s *StreamReader) Next() (*cf.Frame, error) {
	f := cf.NewFrame(s.schema)
	for f.Rows() < s.chunkSize {
		rec, err := s.r.Next()
		if errors.Is(err, io.EOF) {
			if f.Rows() == 0 {
				return nil, io.EOF
			}
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		if err := s.r.appendRecord(f, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (s *StreamReader) Schema() cf.Schema { return s.schema }
func (s *StreamReader) Close() error      { return s.r.Close() }

// ShortRecords reports how many rows read so far were padded.
func (s *StreamReader) ShortRecords() int { return s.r.ShortRecords() }

// StreamWriter appends frames to a CSV file with a header (written once).
// Nothing appears at the destination until Close; Abort discards the output.
type StreamWriter struct {
	out         *iox.AtomicFile
	opt         WriterOptions
	wroteHeader bool
	schema      cf.Schema
}

func NewStreamWriter(path string, schema cf.Schema, opt WriterOptions) (*StreamWriter, error) {
	out, err := iox.CreateAtomic(path)
	if err != nil {
		return nil, err
	}
	return &StreamWriter{out: out, opt: opt, schema: schema}, nil
}

func (s *StreamWriter) Write(fr *cf.Frame) error {
	cw := newCSVWriter(s.out, s.opt)
	if err := s.header(cw); err != nil {
		return err
	}
	if err := writeRows(cw, fr); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func (s *StreamWriter) header(cw interface{ Write([]string) error }) error {
	if s.wroteHeader {
		return nil
	}
	s.wroteHeader = true
	return cw.Write(s.schema.Names())
}

// Close writes the header if no chunk arrived and commits the file.
func (s *StreamWriter) Close() error {
	cw := newCSVWriter(s.out, s.opt)
	if err := s.header(cw); err != nil {
		_ = s.out.Abort()
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		_ = s.out.Abort()
		return err
	}
	return s.out.Commit()
}

func (s *StreamWriter) Abort() error { return s.out.Abort() }
