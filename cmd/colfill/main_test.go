package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPositional(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	out := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(in, []byte("a,b\n1,x\n,y\n3,\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-log-level", "error", "-profile", in, out}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,x\n2,y\n3,x\n", string(b))
	assert.Contains(t, stdout.String(), "Imputation complete. Output written to '"+out+"'.")
	assert.Contains(t, stdout.String(), "Profile Summary")
	assert.Empty(t, stderr.String())
}

func TestRunMissingFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "nope.csv")
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-in", in, "-out", filepath.Join(dir, "o.csv")}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Error: File '"+in+"' not found.")
	assert.Empty(t, stdout.String())
}

func TestRunConfigAndFlags(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.tsv")
	out := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(in, []byte("a\tb\n1\tx\n\ty\n3\tx\n"), 0o644))
	cfgPath := filepath.Join(dir, "c.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("input:\n  path: ignored.csv\n  delimiter: tab\noutput:\n  path: "+out+"\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-config", cfgPath, "-in", in, "-chunk-size", "1", "-log-format", "json"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,x\n2,y\n3,x\n", string(b))
	assert.Contains(t, stderr.String(), `"message":"imputation complete"`)
}

func TestRunVersionAndUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run(context.Background(), []string{"-version"}, &stdout, &stderr))
	assert.Equal(t, "colfill "+version+"\n", stdout.String())
	assert.Equal(t, 2, run(context.Background(), []string{"a", "b", "c"}, &stdout, &stderr))
	assert.Equal(t, 2, run(context.Background(), []string{"-nope"}, &stdout, &stderr))
	assert.Equal(t, 1, run(context.Background(), []string{"-delimiter", "ab", "x.csv"}, &stdout, &stderr))
}
