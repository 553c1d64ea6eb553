package ioutils

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicCommitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	a, err := CreateAtomic(path)
	require.NoError(t, err)
	_, err = io.WriteString(a, "a,b\n1,2\n")
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "file must not exist before commit")

	require.NoError(t, a.Commit())
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(b))
	assert.NoError(t, a.Abort(), "abort after commit is a no-op")
}

func TestAtomicAbortLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	a, err := CreateAtomic(path)
	require.NoError(t, err)
	_, _ = io.WriteString(a, "partial")
	require.NoError(t, a.Abort())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGzipRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv.gz")
	a, err := CreateAtomic(path)
	require.NoError(t, err)
	_, err = io.WriteString(a, "x\n1\n")
	require.NoError(t, err)
	require.NoError(t, a.Commit())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, len(raw) > 2 && raw[0] == 0x1f && raw[1] == 0x8b, "expected gzip magic")

	rc, err := OpenMaybeCompressed(path)
	require.NoError(t, err)
	defer func() { _ = rc.Close() }()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "x\n1\n", string(b))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := OpenMaybeCompressed(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}
