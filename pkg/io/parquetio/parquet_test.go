package parquetio

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cf "github.com/wdm0006/colfill/pkg/colfill"
)

func mixedFrame(t *testing.T) *cf.Frame {
	t.Helper()
	s := cf.Schema{Columns: []cf.ColumnSchema{
		{Name: "score", Type: cf.KindFloat, Nullable: true},
		{Name: "age", Type: cf.KindInt, Nullable: true},
		{Name: "city", Type: cf.KindString, Nullable: true},
		{Name: "ok", Type: cf.KindBool, Nullable: true},
	}}
	f := cf.NewFrame(s)
	rows := [][]any{
		{1.5, int64(30), "paris", true},
		{nil, int64(41), nil, false},
		{2.25, nil, "oslo", nil},
	}
	for r, vals := range rows {
		f.AppendNullRow()
		for c, v := range vals {
			require.NoError(t, f.SetCell(r, s.Columns[c].Name, v))
		}
	}
	return f
}

func TestWriteThenRead(t *testing.T) {
	in := mixedFrame(t)
	path := filepath.Join(t.TempDir(), "data.parquet")
	require.NoError(t, WriteAll(path, in))

	r, err := OpenReader(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	assert.Equal(t, in.Schema().Names(), r.Schema().Names())
	out, err := r.ReadAll()
	require.NoError(t, err)
	require.Equal(t, in.Rows(), out.Rows())
	for row := 0; row < in.Rows(); row++ {
		for c := 0; c < in.Cols(); c++ {
			assert.Equal(t, in.Value(row, c), out.Value(row, c), "row %d col %d", row, c)
		}
	}
}

func TestConcurrentWritesToSamePath(t *testing.T) {
	in := mixedFrame(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "data.parquet")
	const writers = 4
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = WriteAll(path, in)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files left behind")
	r, err := OpenReader(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	out, err := r.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, in.Rows(), out.Rows())
}

func TestWriteRejectsBadNames(t *testing.T) {
	s := cf.Schema{Columns: []cf.ColumnSchema{{Name: "a,b", Type: cf.KindInt, Nullable: true}}}
	path := filepath.Join(t.TempDir(), "bad.parquet")
	assert.Error(t, WriteAll(path, cf.NewFrame(s)))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestOpenReaderNotParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.parquet")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644))
	_, err := OpenReader(path)
	assert.Error(t, err)
}
