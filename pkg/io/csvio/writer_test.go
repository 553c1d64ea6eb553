package csvio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

func TestWriteFormatsCells(t *testing.T) {
	fr := readString(t, "i,f,b,s\n1,2.50,TRUE,\"x, y\"\n,,,\n", ReaderOptions{HasHeader: true})
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, fr, WriterOptions{}))
	assert.Equal(t, "i,f,b,s\n1,2.5,true,\"x, y\"\n,,,\n", buf.String())
}

func TestWriteAllRoundTrip(t *testing.T) {
	in := "name,score\nann,1.25\nbob,3\n"
	fr := readString(t, in, ReaderOptions{HasHeader: true})
	p := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteAll(p, fr, WriterOptions{}))

	r, err := Open(p, ReaderOptions{HasHeader: true})
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	back, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, fr.Schema(), back.Schema())
	for c := 0; c < fr.Cols(); c++ {
		for row := 0; row < fr.Rows(); row++ {
			assert.Equal(t, fr.Value(row, c), back.Value(row, c))
		}
	}
}

func TestWriteAllUsesDelimiter(t *testing.T) {
	s := cf.Schema{Columns: []cf.ColumnSchema{{Name: "a", Type: cf.KindInt, Nullable: true}, {Name: "b", Type: cf.KindString, Nullable: true}}}
	fr := cf.NewFrame(s)
	fr.AppendNullRow()
	require.NoError(t, fr.SetCell(0, "a", 7))
	require.NoError(t, fr.SetCell(0, "b", "z"))
	p := filepath.Join(t.TempDir(), "out.tsv")
	require.NoError(t, WriteAll(p, fr, WriterOptions{Delimiter: '\t'}))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "a\tb\n7\tz\n", string(b))
}
