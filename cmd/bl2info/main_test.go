package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Oberacda/Borderlands2SaveEditor/internal/savetest"
)

func TestRunPrintsHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Save0001.sav")
	require.NoError(t, os.WriteFile(path, savetest.Container(savetest.SampleRecord()), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"--record", path}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "magic: WSG")
	assert.Contains(t, out, "version: 2")
	assert.Contains(t, out, "hash: 0xc0ffee42")
	assert.Contains(t, out, "class: "+savetest.SampleClass)
	assert.Contains(t, out, "money: 125,034")
}

func TestRunReportsEachFailure(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.sav")
	require.NoError(t, os.WriteFile(good, savetest.Container([]byte("x")), 0o644))

	h := savetest.DefaultHeader(1)
	h.Magic = [3]byte{'B', 'A', 'D'}
	bad := filepath.Join(dir, "bad.sav")
	require.NoError(t, os.WriteFile(bad, savetest.Seal(h.Bytes()), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{good, bad, filepath.Join(dir, "missing.sav")}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "file "+good)
	assert.Contains(t, stderr.String(), "bad.sav: header:")
	assert.Contains(t, stderr.String(), "missing.sav")
}

func TestRunHonorsFileSizeLimit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Save0001.sav")
	require.NoError(t, os.WriteFile(path, savetest.Container(savetest.SampleRecord()), 0o644))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("limits:\n  max_file_size: 16\n"), 0o644))

	var stdout, stderr bytes.Buffer
	code := run([]string{"--config", cfgPath, path}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "Save0001.sav: read: save: file too large")
}
