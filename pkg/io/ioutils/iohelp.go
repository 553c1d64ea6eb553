package ioutils

import (
	"bufio"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// OpenMaybeCompressed opens a file path or stdin ("-") and returns a reader.
// If the input appears to be gzip (by extension or magic), it wraps with gzip.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	if path == "-" {
		return sniffGzip(bufio.NewReader(os.Stdin), func() error { return nil })
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if filepath.Ext(path) == ".gz" {
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return readCloser{Reader: zr, closeFn: func() error { _ = zr.Close(); return f.Close() }}, nil
	}
	rc, err := sniffGzip(bufio.NewReader(f), f.Close)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return rc, nil
}

func sniffGzip(br *bufio.Reader, closeFn func() error) (io.ReadCloser, error) {
	b, err := br.Peek(2)
	if err == nil && len(b) >= 2 && b[0] == 0x1f && b[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: zr, closeFn: func() error { _ = zr.Close(); return closeFn() }}, nil
	}
	return readCloser{Reader: br, closeFn: closeFn}, nil
}

// AtomicFile is an output that only appears at its final path once Commit
// succeeds. Until then data goes to a temporary file in the same directory.
// Writes to stdout ("-") are passed through and cannot be rolled back.
type AtomicFile struct {
	io.Writer
	path string
	tmp  *os.File
	bw   *bufio.Writer
	zw   *gzip.Writer
	done bool
}

// CreateAtomic prepares an AtomicFile for path. If the path ends in .gz the
// content is gzip compressed.
func CreateAtomic(path string) (*AtomicFile, error) {
	if path == "-" {
		bw := bufio.NewWriter(os.Stdout)
		return &AtomicFile{Writer: bw, path: path, bw: bw}, nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, err
	}
	a := &AtomicFile{path: path, tmp: tmp, bw: bufio.NewWriter(tmp)}
	a.Writer = a.bw
	if filepath.Ext(path) == ".gz" {
		a.zw = gzip.NewWriter(a.bw)
		a.Writer = a.zw
	}
	return a, nil
}

// Commit flushes all buffered data and renames the temporary file into place.
func (a *AtomicFile) Commit() error {
	if a.done {
		return errors.New("atomic file already finished")
	}
	a.done = true
	if a.zw != nil {
		if err := a.zw.Close(); err != nil {
			a.discard()
			return err
		}
	}
	if err := a.bw.Flush(); err != nil {
		a.discard()
		return err
	}
	if a.tmp == nil {
		return nil
	}
	if err := a.tmp.Close(); err != nil {
		_ = os.Remove(a.tmp.Name())
		return err
	}
	// CreateTemp uses 0600
	_ = os.Chmod(a.tmp.Name(), 0o644)
	if err := os.Rename(a.tmp.Name(), a.path); err != nil {
		_ = os.Remove(a.tmp.Name())
		return err
	}
	return nil
}

// Abort discards the temporary file. It is a no-op after Commit.
func (a *AtomicFile) Abort() error {
	if a.done {
		return nil
	}
	a.done = true
	a.discard()
	return nil
}

func (a *AtomicFile) discard() {
	if a.tmp == nil {
		return
	}
	_ = a.tmp.Close()
	_ = os.Remove(a.tmp.Name())
}

type readCloser struct {
	io.Reader
	closeFn func() error
}

func (r readCloser) Close() error {
	if r.closeFn != nil {
		return r.closeFn()
	}
	return errors.New("no closeFn")
}
