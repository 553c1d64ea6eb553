package csvio

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

const streamInput = "x,s\n1,a\n,b\n3,\n4,a\n5,c\n"

func TestScan(t *testing.T) {
	p := writeFile(t, "in.csv", streamInput)
	schema, rows, err := Scan(p, ReaderOptions{HasHeader: true})
	require.NoError(t, err)
	assert.Equal(t, 5, rows)
	assert.Equal(t, cf.KindInt, schema.Columns[0].Type)
	assert.Equal(t, cf.KindString, schema.Columns[1].Type)
}

func TestStreamReadCSV(t *testing.T) {
	p := writeFile(t, "in.csv", streamInput)
	schema, _, err := Scan(p, ReaderOptions{HasHeader: true})
	require.NoError(t, err)
	sr, err := NewStreamReader(p, ReaderOptions{HasHeader: true}, schema, 2)
	require.NoError(t, err)
	defer func() { _ = sr.Close() }()
	total, chunks := 0, 0
	for {
		fr, err := sr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		total += fr.Rows()
		chunks++
	}
	assert.Equal(t, 5, total)
	assert.Equal(t, 3, chunks)
}

func TestStreamWriterCommitsOnClose(t *testing.T) {
	src := writeFile(t, "in.csv", streamInput)
	schema, _, err := Scan(src, ReaderOptions{HasHeader: true})
	require.NoError(t, err)
	sr, err := NewStreamReader(src, ReaderOptions{HasHeader: true}, schema, 2)
	require.NoError(t, err)
	defer func() { _ = sr.Close() }()

	dst := filepath.Join(t.TempDir(), "out.csv")
	sw, err := NewStreamWriter(dst, schema, WriterOptions{})
	require.NoError(t, err)
	_, err = cf.RunStream(context.Background(), cf.NewPipeline(), sr, sw)
	require.NoError(t, err)

	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, streamInput, string(b))
}

func TestStreamWriterAbort(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.csv")
	sw, err := NewStreamWriter(dst, cf.Schema{Columns: []cf.ColumnSchema{{Name: "a", Type: cf.KindInt}}}, WriterOptions{})
	require.NoError(t, err)
	require.NoError(t, sw.Abort())
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
